// Package romview implements a read-only terminal browser over a compiled
// ROM: a disassembly pane, a symbol table pane, and a raw hex pane. It has
// no execution model — there is nothing to step or break on, only bytes to
// decode and display.
package romview

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jniemenmaa/c8c/config"
	"github.com/jniemenmaa/c8c/disasm"
	"github.com/jniemenmaa/c8c/parser"
)

// View is the ROM browser's terminal application.
type View struct {
	App *tview.Application

	MainLayout      *tview.Flex
	DisassemblyView *tview.TextView
	SymbolsView     *tview.TextView
	HexView         *tview.TextView

	rom     []byte
	symbols *parser.SymbolTable
	cfg     *config.Config
}

// New builds a View over an already-compiled ROM and its symbol table. If
// symbols is nil (no .sym sidecar was loaded), the symbol and annotation
// panes fall back to raw addresses only.
func New(rom []byte, symbols *parser.SymbolTable, cfg *config.Config) *View {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if symbols == nil {
		symbols = parser.NewSymbolTable()
	}

	v := &View{
		App:     tview.NewApplication(),
		rom:     rom,
		symbols: symbols,
		cfg:     cfg,
	}

	v.initializeViews()
	v.buildLayout()
	v.setupKeyBindings()
	v.refresh()

	return v
}

func (v *View) initializeViews() {
	v.DisassemblyView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	v.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	v.SymbolsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	v.SymbolsView.SetBorder(true).SetTitle(" Symbols ")

	v.HexView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	v.HexView.SetBorder(true).SetTitle(" Raw Data ")
}

func (v *View) buildLayout() {
	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.SymbolsView, 0, 1, false).
		AddItem(v.HexView, 0, 1, false)

	v.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(v.DisassemblyView, 0, 2, false).
		AddItem(rightPanel, 0, 1, false)
}

func (v *View) setupKeyBindings() {
	v.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			v.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			v.refresh()
			return nil
		}
		switch event.Rune() {
		case 'q':
			v.App.Stop()
			return nil
		}
		return event
	})
}

// refresh renders all three panes from the ROM — there is no mutable
// execution state to track, so a single pass at startup is all that's
// needed (Ctrl+L re-runs it, purely for parity with the debugger's own
// refresh binding).
func (v *View) refresh() {
	lines := disasm.Disassemble(v.rom, v.symbols, v.cfg)

	var code strings.Builder
	for _, l := range lines {
		if l.IsData {
			continue
		}
		fmt.Fprintf(&code, "[yellow]%#04x[white]  %-6s %s\n", l.Address, l.Mnemonic, l.Operand)
	}
	v.DisassemblyView.SetText(code.String())

	var data strings.Builder
	for _, row := range disasm.ChunkDataBytes(lines, v.cfg.Disasm.BytesPerLine) {
		addr, bytes, _ := strings.Cut(row, "  ")
		fmt.Fprintf(&data, "[yellow]%s[white]  %s\n", addr, bytes)
	}
	v.HexView.SetText(data.String())

	var syms strings.Builder
	for _, sym := range v.symbols.InOrder() {
		fmt.Fprintf(&syms, "%-12s %-8s offset=%-4d size=%d\n", sym.Name, sym.Kind, sym.Offset, sym.Size)
	}
	if syms.Len() == 0 {
		syms.WriteString("[yellow]no symbols loaded[white]\n")
	}
	v.SymbolsView.SetText(syms.String())
}

// Run starts the application's event loop. It blocks until the user quits.
func (v *View) Run() error {
	return v.App.SetRoot(v.MainLayout, true).SetFocus(v.DisassemblyView).Run()
}
