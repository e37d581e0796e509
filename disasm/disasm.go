// Package disasm decodes a compiled ROM back into a mnemonic and symbol
// listing. It is the address-resolution pass run in reverse: given ROM
// bytes plus the symbol table the compiler produced, it replays how those
// addresses were resolved instead of re-deriving them, so it can never
// drift out of sync with the encoder's own encoding.
package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jniemenmaa/c8c/config"
	"github.com/jniemenmaa/c8c/parser"
)

// Line is one decoded row of a disassembly listing: either a code
// instruction, a BCD scratch byte, or a data symbol byte.
type Line struct {
	Address  int
	Raw      uint16 // the 16-bit word, for code lines; 0 for data lines
	Mnemonic string
	Operand  string
	IsData   bool
	Byte     byte // valid when IsData is true
}

// Disassemble walks rom from cfg.Memory.CodeStart, decoding each 16-bit
// big-endian word using the same opcode table the encoder package emits
// from, then lists the BCD scratch bytes and each data symbol's bytes in
// declaration order. The code/scratch/data split is derived from the ROM
// length and the symbol table's declared data length, not re-parsed from
// the bytes, since the self-loop guard alone doesn't mark the boundary.
func Disassemble(rom []byte, symbols *parser.SymbolTable, cfg *config.Config) []Line {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	dataLength := symbols.DataLength()
	codeLength := len(rom) - cfg.Memory.BCDScratch - dataLength
	if codeLength < 0 {
		codeLength = 0
	}
	dataStart := cfg.Memory.CodeStart + codeLength + cfg.Memory.BCDScratch
	numberFormat := cfg.Disasm.NumberFormat

	var lines []Line

	for off := 0; off+1 < codeLength; off += 2 {
		addr := cfg.Memory.CodeStart + off
		word := uint16(rom[off])<<8 | uint16(rom[off+1])
		mnemonic, operand := decode(word, addr, dataStart, symbols, numberFormat)
		lines = append(lines, Line{Address: addr, Raw: word, Mnemonic: mnemonic, Operand: operand})
	}

	for i := 0; i < cfg.Memory.BCDScratch && codeLength+i < len(rom); i++ {
		addr := cfg.Memory.CodeStart + codeLength + i
		lines = append(lines, Line{Address: addr, IsData: true, Byte: rom[codeLength+i], Mnemonic: "scratch"})
	}

	dataOff := codeLength + cfg.Memory.BCDScratch
	for _, sym := range symbols.InOrder() {
		size := symbols.SizeOf(sym.Name)
		for i := 0; i < size && dataOff+i < len(rom); i++ {
			lines = append(lines, Line{
				Address:  dataStart + sym.Offset + i,
				IsData:   true,
				Byte:     rom[dataOff+i],
				Mnemonic: sym.Name,
			})
		}
		dataOff += size
	}

	return lines
}

// symbolAt returns the name of the data symbol containing addr, or "" if
// addr falls outside every declared symbol's range (a code address, a
// scratch address, or a relative jump target).
func symbolAt(addr, dataStart int, symbols *parser.SymbolTable) string {
	for _, sym := range symbols.InOrder() {
		start := dataStart + sym.Offset
		size := symbols.SizeOf(sym.Name)
		if addr >= start && addr < start+size {
			return sym.Name
		}
	}
	return ""
}

// formatNumber renders n per cfg.Disasm.NumberFormat ("hex", the default,
// or "dec"), zero-padded to width hex digits in the hex case.
func formatNumber(n, width int, format string) string {
	if format == "dec" {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%#0*x", width+2, n) // +2 for the "0x" prefix
}

func decode(word uint16, addr, dataStart int, symbols *parser.SymbolTable, numberFormat string) (mnemonic, operand string) {
	op := byte(word >> 12)
	x := byte((word >> 8) & 0xF)
	y := byte((word >> 4) & 0xF)
	n := byte(word & 0xF)
	kk := byte(word & 0xFF)
	nnn := int(word & 0xFFF)

	num := func(v, width int) string { return formatNumber(v, width, numberFormat) }

	switch op {
	case 0x0:
		if word == 0x00E0 {
			return "CLS", ""
		}
		return "DW", num(int(word), 4)
	case 0x1:
		return "JP", num(nnn, 3)
	case 0x4:
		return "SNE", fmt.Sprintf("V%X, %s", x, num(int(kk), 2))
	case 0x5:
		return "SE", fmt.Sprintf("V%X, V%X", x, y)
	case 0x6:
		return "LD", fmt.Sprintf("V%X, %s", x, num(int(kk), 2))
	case 0x7:
		return "ADD", fmt.Sprintf("V%X, %s", x, num(int(kk), 2))
	case 0x8:
		switch n {
		case 0x0:
			return "LD", fmt.Sprintf("V%X, V%X", x, y)
		case 0x4:
			return "ADD", fmt.Sprintf("V%X, V%X", x, y)
		case 0x5:
			return "SUB", fmt.Sprintf("V%X, V%X", x, y)
		}
		return "DW", num(int(word), 4)
	case 0x9:
		return "SNE", fmt.Sprintf("V%X, V%X", x, y)
	case 0xA:
		if name := symbolAt(nnn, dataStart, symbols); name != "" {
			return "LD", fmt.Sprintf("I, %s (%s)", name, num(nnn, 3))
		}
		return "LD", fmt.Sprintf("I, %s", num(nnn, 3))
	case 0xD:
		return "DRW", fmt.Sprintf("V%X, V%X, %d", x, y, n)
	case 0xE:
		switch kk {
		case 0x9E:
			return "SKP", fmt.Sprintf("V%X", x)
		case 0xA1:
			return "SKNP", fmt.Sprintf("V%X", x)
		}
		return "DW", num(int(word), 4)
	case 0xF:
		switch kk {
		case 0x0A:
			return "LD", fmt.Sprintf("V%X, K", x)
		case 0x29:
			return "LD", fmt.Sprintf("F, V%X", x)
		case 0x33:
			return "LD", fmt.Sprintf("B, V%X", x)
		case 0x55:
			return "LD", fmt.Sprintf("[I], V0-V%X", x)
		case 0x65:
			return "LD", fmt.Sprintf("V0-V%X, [I]", x)
		}
		return "DW", num(int(word), 4)
	}
	return "DW", num(int(word), 4)
}

// ChunkDataBytes groups the IsData lines of a disassembly into
// cfg.Disasm.BytesPerLine-wide rows, each rendered as a leading address
// followed by that many space-separated bytes — the shape a hex pane
// prints a data section in. bytesPerLine <= 0 falls back to one byte per
// line.
func ChunkDataBytes(lines []Line, bytesPerLine int) []string {
	if bytesPerLine <= 0 {
		bytesPerLine = 1
	}

	var rows []string
	var cur strings.Builder
	count := 0
	lineStart := 0

	flush := func() {
		if count > 0 {
			rows = append(rows, fmt.Sprintf("%#04x  %s", lineStart, cur.String()))
			cur.Reset()
			count = 0
		}
	}

	for _, l := range lines {
		if !l.IsData {
			continue
		}
		if count == 0 {
			lineStart = l.Address
		}
		if count > 0 {
			cur.WriteByte(' ')
		}
		fmt.Fprintf(&cur, "%02x", l.Byte)
		count++
		if count == bytesPerLine {
			flush()
		}
	}
	flush()

	return rows
}
