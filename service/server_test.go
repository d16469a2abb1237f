package service

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riscv-tools/riscv-as/assembler"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/matcher"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	set, err := isa.New(64, "M", matcher.BuildISA)
	require.NoError(t, err)
	asm := assembler.New(set, assembler.DefaultConfig())
	return NewServer(0, asm, set)
}

func TestHandleAssemble_ValidSource(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(assembleRequest{Source: []string{"addi x1, x0, 5"}})

	req := httptest.NewRequest("POST", "/api/v1/assemble", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)

	var resp assembleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Errors)
	require.NotNil(t, resp.Program)
}

func TestHandleAssemble_ReportsErrors(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(assembleRequest{Source: []string{"notarealop x1"}})

	req := httptest.NewRequest("POST", "/api/v1/assemble", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp assembleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "unknown opcode", resp.Errors[0].Kind)
}

func TestHandleDisassemble_ValidBytes(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(disassembleRequest{TextHex: "93005000", Base: 0})

	req := httptest.NewRequest("POST", "/api/v1/disassemble", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)

	var resp disassembleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "addi x1 x0 5", resp.Lines[0])
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, 200, rec.Code)
}
