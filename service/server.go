// Package service exposes the assembler/disassembler pipeline as an
// assemble-as-a-service HTTP+WebSocket shell, repurposing the teacher's
// api package's broadcaster/session machinery (originally built to step
// a running CPU) onto the stateless assemble/disassemble calls this
// module's engine actually provides. Grounded on api/server.go.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riscv-tools/riscv-as/assembler"
	"github.com/riscv-tools/riscv-as/disasm"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/object"
)

// Server is the HTTP API server wrapping one Assembler/ISA pair.
type Server struct {
	asm         *assembler.Assembler
	set         *isa.ISA
	broadcaster *Broadcaster
	mux         *http.ServeMux
	server      *http.Server
	port        int
}

// NewServer creates a new API server over the given Assembler/ISA.
func NewServer(port int, asm *assembler.Assembler, set *isa.ISA) *Server {
	s := &Server{
		asm:         asm,
		set:         set,
		broadcaster: NewBroadcaster(),
		mux:         http.NewServeMux(),
		port:        port,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/ws", s.handleWebSocket)
	s.mux.HandleFunc("/api/v1/assemble", s.handleAssemble)
	s.mux.HandleFunc("/api/v1/disassemble", s.handleDisassemble)
}

// Handler returns the HTTP handler with CORS middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// Start starts the HTTP server on 127.0.0.1:port.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("assemble service starting on http://127.0.0.1:%d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its broadcaster.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	if strings.HasPrefix(origin, "file://") {
		return true
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://127.0.0.1")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// assembleRequest is the POST /api/v1/assemble body. SymbolMap optionally
// pre-seeds the symbol table (e.g. addresses resolved by a separate link
// step) before assembling.
type assembleRequest struct {
	SessionID  string            `json:"sessionId"`
	Source     []string          `json:"source"`
	SymbolMap  map[string]uint64 `json:"symbolMap,omitempty"`
	SourceHash string            `json:"sourceHash"`
}

// assembleResponse mirrors object.Program plus the per-line errors the
// pipeline produced, JSON-shaped for an editor client.
type assembleResponse struct {
	Program *object.Program `json:"program,omitempty"`
	Errors  []apiError      `json:"errors"`
}

type apiError struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) handleAssemble(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req assembleRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prog, errs := s.asm.Assemble(req.Source, req.SymbolMap, req.SourceHash)

	apiErrs := make([]apiError, 0, len(errs))
	for _, e := range errs {
		apiErrs = append(apiErrs, apiError{
			Line:    e.Pos.Line,
			Column:  e.Pos.Column,
			Kind:    e.Kind.String(),
			Message: e.Message,
		})
		if req.SessionID != "" {
			s.broadcaster.BroadcastLine(req.SessionID, e.Pos.Line, e.Message)
		}
	}
	if req.SessionID != "" {
		s.broadcaster.BroadcastDone(req.SessionID, len(apiErrs))
	}

	writeJSON(w, http.StatusOK, assembleResponse{Program: prog, Errors: apiErrs})
}

// disassembleRequest is the POST /api/v1/disassemble body: a hex-encoded
// .text byte stream plus its load base address.
type disassembleRequest struct {
	TextHex string `json:"textHex"`
	Base    uint64 `json:"base"`
}

type disassembleResponse struct {
	Lines  []string `json:"lines"`
	Errors []string `json:"errors"`
}

func (s *Server) handleDisassemble(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req disassembleRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bytes, err := decodeHex(req.TextHex)
	if err != nil {
		writeError(w, http.StatusBadRequest, "textHex: "+err.Error())
		return
	}

	prog := &object.Program{
		Sections: map[string]*object.Section{
			"text": {Name: "text", Base: req.Base, Bytes: bytes},
		},
	}

	lines, errs := disasm.Disassemble(s.set, prog, req.Base)
	errStrings := make([]string, 0, len(errs))
	for _, e := range errs {
		errStrings = append(errStrings, e.Error())
	}

	writeJSON(w, http.StatusOK, disassembleResponse{Lines: lines, Errors: errStrings})
}

func decodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("error encoding JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
		"code":    status,
	})
}

func readJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1024*1024))
	return decoder.Decode(v)
}
