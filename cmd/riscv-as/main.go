// Command riscv-as is the assembler/disassembler CLI front end: it reads
// a source file, assembles it, and prints either the resulting sections
// or the accumulated diagnostics. Passing -disassemble walks an already
// assembled .text section back into text.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/riscv-tools/riscv-as/assembler"
	"github.com/riscv-tools/riscv-as/disasm"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/matcher"
	"github.com/riscv-tools/riscv-as/object"
	"github.com/riscv-tools/riscv-as/riscvconfig"
	"github.com/riscv-tools/riscv-as/service"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion  = flag.Bool("version", false, "Show version information")
		showHelp     = flag.Bool("help", false, "Show help information")
		disassemble  = flag.Bool("disassemble", false, "Disassemble instead of assemble")
		serveMode    = flag.Bool("serve", false, "Start the HTTP/WebSocket assemble service")
		extensions   = flag.String("extensions", "", "Enabled ISA extensions (subset of MCAFD, overrides config)")
		xlen         = flag.Int("xlen", 0, "Base integer width: 32 or 64 (overrides config)")
		baseAddr     = flag.String("base", "", "Base address for -disassemble (hex or decimal, overrides config)")
		verboseMode  = flag.Bool("verbose", false, "Verbose output")
		showSymbols  = flag.Bool("symbols", false, "Print the resolved symbol table after assembling")
		outPath      = flag.String("o", "", "Write the assembled .text section to this file instead of printing a summary")
		outFormat    = flag.String("format", "text", "Output format for -o: bin, ihex, or text")
		textStart    = flag.String("text-start", "", "Base address of the .text section (hex or decimal, overrides config)")
		dataStart    = flag.String("data-start", "", "Base address of the .data section (hex or decimal, overrides config)")
		bssStart     = flag.String("bss-start", "", "Base address of the .bss section (hex or decimal, overrides config)")
		configPath   = flag.String("config", "", "Load configuration from this TOML file instead of the default path")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("riscv-as %s (%s)\n", Version, Commit)
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	var cfg *riscvconfig.Config
	var err error
	if *configPath != "" {
		cfg, err = riscvconfig.LoadFrom(*configPath)
	} else {
		cfg, err = riscvconfig.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *extensions != "" {
		cfg.Assembler.EnabledExtensions = *extensions
	}
	if *xlen != 0 {
		cfg.Assembler.XLEN = *xlen
	}
	if *textStart != "" {
		cfg.Assembler.TextStart = *textStart
	}
	if *dataStart != "" {
		cfg.Assembler.DataStart = *dataStart
	}
	if *bssStart != "" {
		cfg.Assembler.BSSStart = *bssStart
	}

	set, err := isa.New(cfg.Assembler.XLEN, cfg.Assembler.EnabledExtensions, matcher.BuildISA)
	if err != nil {
		fmt.Fprintf(os.Stderr, "isa error: %v\n", err)
		os.Exit(1)
	}

	asmCfg, err := cfg.AssemblerConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	asm := assembler.New(set, asmCfg)

	if *serveMode {
		runServer(cfg.Service.Port, asm, set)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}
	path := flag.Arg(0)

	if *disassemble {
		runDisassemble(set, path, *baseAddr, asmCfg)
		return
	}
	runAssemble(asm, path, *verboseMode, *showSymbols, *outPath, *outFormat)
}

func runAssemble(asm *assembler.Assembler, path string, verbose, symbols bool, outPath, outFormat string) {
	lines, err := readLines(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	if verbose {
		fmt.Printf("assembling %d lines from %s\n", len(lines), path)
	}

	prog, errs := asm.Assemble(lines, nil, "")
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s\n", e.Error())
		}
		os.Exit(1)
	}

	if outPath != "" {
		if err := writeOutput(prog, outPath, outFormat); err != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
			os.Exit(1)
		}
	}

	for _, name := range []string{"text", "data", "bss"} {
		sec := prog.Section(name)
		if sec == nil || len(sec.Bytes) == 0 {
			continue
		}
		fmt.Printf("%s: base=0x%x size=%d\n", name, sec.Base, len(sec.Bytes))
	}

	if symbols {
		printSymbols(prog.Symbols)
	}
}

// writeOutput writes the assembled .text section to outPath in the
// requested format: raw binary, Intel HEX, or a plain hex-text dump.
func writeOutput(prog *object.Program, outPath, format string) error {
	text := prog.Section("text")
	if text == nil {
		return fmt.Errorf("no .text section to write")
	}

	switch format {
	case "bin":
		return os.WriteFile(outPath, text.Bytes, 0o644) // #nosec G306 -- assembler output, not sensitive

	case "ihex":
		return os.WriteFile(outPath, []byte(toIntelHex(text.Bytes, text.Base)), 0o644) // #nosec G306

	case "text":
		var sb strings.Builder
		for i, b := range text.Bytes {
			if i > 0 && i%16 == 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "%02x ", b)
		}
		sb.WriteString("\n")
		return os.WriteFile(outPath, []byte(sb.String()), 0o644) // #nosec G306

	default:
		return fmt.Errorf("unknown -format %q (want bin, ihex, or text)", format)
	}
}

// toIntelHex renders bytes as Intel HEX records (type 00 data records
// plus a type 01 end-of-file record), 16 bytes per line.
func toIntelHex(data []byte, base uint64) string {
	var sb strings.Builder
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		chunk := data[i:end]
		addr := uint16(base + uint64(i))
		sum := byte(len(chunk)) + byte(addr>>8) + byte(addr)
		fmt.Fprintf(&sb, ":%02X%04X00", len(chunk), addr)
		for _, b := range chunk {
			sum += b
			fmt.Fprintf(&sb, "%02X", b)
		}
		checksum := byte(0x100 - int(sum))
		fmt.Fprintf(&sb, "%02X\n", checksum)
	}
	sb.WriteString(":00000001FF\n")
	return sb.String()
}

func printSymbols(symbols map[uint64]string) {
	addrs := make([]uint64, 0, len(symbols))
	for addr := range symbols {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	fmt.Println("symbols:")
	for _, addr := range addrs {
		fmt.Printf("  0x%08x  %s\n", addr, symbols[addr])
	}
}

func runDisassemble(set *isa.ISA, path, baseFlag string, cfg assembler.Config) {
	bytes, err := os.ReadFile(path) // #nosec G304 -- CLI-supplied path
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	base := cfg.TextStart
	if baseFlag != "" {
		parsed, err := parseAddr(baseFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad -base: %v\n", err)
			os.Exit(1)
		}
		base = parsed
	}

	prog := &object.Program{
		Sections: map[string]*object.Section{
			"text": {Name: "text", Base: base, Bytes: bytes},
		},
	}
	lines, errs := disasm.Disassemble(set, prog, base)
	for _, line := range lines {
		fmt.Println(line)
	}
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "%v\n", e)
	}
}

func runServer(port int, asm *assembler.Assembler, set *isa.ISA) {
	srv := service.NewServer(port, asm, set)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	shutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nshutting down assemble service...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", err)
				os.Exit(1)
			}
		})
	}

	go func() {
		if err := srv.Start(); err != nil && !strings.Contains(err.Error(), "Server closed") {
			fmt.Fprintf(os.Stderr, "assemble service error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	shutdown()
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- CLI-supplied path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func parseAddr(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func printHelp() {
	fmt.Println(`riscv-as - RISC-V assembler/disassembler

Usage:
  riscv-as [flags] <file>

Flags:`)
	flag.PrintDefaults()
}
