package encoder

import "github.com/jniemenmaa/c8c/parser"

// instructionSize is the fixed width, in bytes, of every CHIP-8 opcode.
const instructionSize = 2

// resolve converts a generator's abstract instruction list into the final
// ROM image: patches provisional NNN fields to their resolved addresses,
// appends the BCD scratch bytes, then the data section in declaration
// order.
func (g *Generator) resolve(instrs []Instr) ([]byte, error) {
	codeStart := g.opts.CodeStart
	mainLength := len(instrs) * instructionSize
	dataStart := codeStart + mainLength + g.opts.BCDScratchBytes

	dataLength := g.symbols.DataLength()
	if g.opts.StrictBounds && dataStart+dataLength > 0x1000 {
		return nil, NewError(parser.Position{}, "ROM exceeds 4 KiB address space")
	}

	rom := make([]byte, 0, mainLength+g.opts.BCDScratchBytes+dataLength)

	pc := 0
	for _, instr := range instrs {
		resolved := instr
		switch instr.Op {
		case 0xA:
			resolved.NNN = dataStart + instr.NNN
		case 0x1:
			resolved.NNN = codeStart + pc + instr.NNN
		}

		if resolved.HasNNN() && (resolved.NNN < 0 || resolved.NNN > 0xFFF) {
			return nil, NewError(parser.Position{}, "resolved address out of 12-bit range")
		}

		word := resolved.Encode()
		rom = append(rom, byte(word>>8), byte(word&0xFF))
		pc += instructionSize
	}

	for i := 0; i < g.opts.BCDScratchBytes; i++ {
		rom = append(rom, 0x00)
	}

	for _, sym := range g.symbols.InOrder() {
		switch sym.Kind {
		case parser.SymbolInteger:
			rom = append(rom, 0x00)
		case parser.SymbolSprite:
			rom = append(rom, g.sprites[sym.Name]...)
		}
	}

	return rom, nil
}
