// Command risc-gui is a minimal desktop shell around the assemble
// pipeline: a source entry, an Assemble button, and read-only
// disassembly/hex panes. It never executes anything, only
// assembles/disassembles. Grounded on debugger/gui.go's panel/toolbar
// layout idiom.
package main

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/riscv-tools/riscv-as/assembler"
	"github.com/riscv-tools/riscv-as/disasm"
	"github.com/riscv-tools/riscv-as/isa"
	"github.com/riscv-tools/riscv-as/matcher"
	"github.com/riscv-tools/riscv-as/riscvconfig"
)

// GUI is the risc-gui main window, wrapping one Assembler/ISA pair.
type GUI struct {
	App    fyne.App
	Window fyne.Window

	SourceEntry     *widget.Entry
	DisassemblyView *widget.TextGrid
	HexView         *widget.TextGrid
	StatusLabel     *widget.Label
	Toolbar         *widget.Toolbar

	asm *assembler.Assembler
	set *isa.ISA
}

func newGUI(asm *assembler.Assembler, set *isa.ISA) *GUI {
	myApp := app.New()
	myWindow := myApp.NewWindow("RISC-V Assembler")

	g := &GUI{
		App:    myApp,
		Window: myWindow,
		asm:    asm,
		set:    set,
	}

	g.initializeViews()
	g.buildLayout()
	g.setupToolbar()

	myWindow.Resize(fyne.NewSize(1100, 700))
	return g
}

func (g *GUI) initializeViews() {
	g.SourceEntry = widget.NewMultiLineEntry()
	g.SourceEntry.SetPlaceHolder("addi x1, x0, 5\nbeq x1, x2, label\nlabel:\n  jal x0, label")
	g.SourceEntry.Wrapping = fyne.TextWrapOff

	g.DisassemblyView = widget.NewTextGrid()
	g.DisassemblyView.SetText("")

	g.HexView = widget.NewTextGrid()
	g.HexView.SetText("")

	g.StatusLabel = widget.NewLabel("Ready")
}

func (g *GUI) buildLayout() {
	sourcePanel := container.NewBorder(
		widget.NewLabel("Source"),
		nil, nil, nil,
		container.NewScroll(g.SourceEntry),
	)

	disasmPanel := container.NewBorder(
		widget.NewLabel("Disassembly"),
		nil, nil, nil,
		container.NewScroll(g.DisassemblyView),
	)

	hexPanel := container.NewBorder(
		widget.NewLabel("Hex (.text)"),
		nil, nil, nil,
		container.NewScroll(g.HexView),
	)

	outputTabs := container.NewAppTabs(
		container.NewTabItem("Disassembly", disasmPanel),
		container.NewTabItem("Hex", hexPanel),
	)

	mainSplit := container.NewHSplit(sourcePanel, outputTabs)
	mainSplit.SetOffset(0.5)

	statusBar := container.NewBorder(nil, nil, nil, nil, g.StatusLabel)

	content := container.NewBorder(
		g.Toolbar,
		statusBar,
		nil, nil,
		mainSplit,
	)

	g.Window.SetContent(content)
}

func (g *GUI) setupToolbar() {
	g.Toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaPlayIcon(), func() {
			g.assemble()
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			g.clear()
		}),
	)
}

func (g *GUI) assemble() {
	lines := strings.Split(g.SourceEntry.Text, "\n")

	prog, errs := g.asm.Assemble(lines, nil, "")
	if len(errs) > 0 {
		var sb strings.Builder
		for _, e := range errs {
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
		g.DisassemblyView.SetText(sb.String())
		g.HexView.SetText("")
		g.StatusLabel.SetText(fmt.Sprintf("%d error(s)", len(errs)))
		return
	}

	text := prog.Section("text")
	if text == nil || len(text.Bytes) == 0 {
		g.DisassemblyView.SetText("(empty .text section)")
		g.HexView.SetText("")
		g.StatusLabel.SetText("assembled clean, no instructions")
		return
	}

	decoded, derrs := disasm.Disassemble(g.set, prog, text.Base)
	g.DisassemblyView.SetText(strings.Join(decoded, "\n"))

	g.HexView.SetText(hexDump(text.Bytes, text.Base))

	if len(derrs) > 0 {
		g.StatusLabel.SetText(fmt.Sprintf("assembled, %d decode error(s)", len(derrs)))
		return
	}
	g.StatusLabel.SetText(fmt.Sprintf("assembled clean: %d bytes", len(text.Bytes)))
}

func (g *GUI) clear() {
	g.SourceEntry.SetText("")
	g.DisassemblyView.SetText("")
	g.HexView.SetText("")
	g.StatusLabel.SetText("Ready")
}

func hexDump(data []byte, base uint64) string {
	var sb strings.Builder
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		sb.WriteString(fmt.Sprintf("%08x: ", base+uint64(i)))
		for _, b := range data[i:end] {
			sb.WriteString(fmt.Sprintf("%02x ", b))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func main() {
	cfg, err := riscvconfig.Load()
	if err != nil {
		fmt.Println("config error:", err)
		return
	}

	set, err := isa.New(cfg.Assembler.XLEN, cfg.Assembler.EnabledExtensions, matcher.BuildISA)
	if err != nil {
		fmt.Println("isa error:", err)
		return
	}

	asmCfg, err := cfg.AssemblerConfig()
	if err != nil {
		fmt.Println("config error:", err)
		return
	}
	asm := assembler.New(set, asmCfg)

	g := newGUI(asm, set)
	g.Window.ShowAndRun()
}
