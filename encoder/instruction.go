package encoder

// Instr is an abstract CHIP-8 instruction: the generator emits a flat list
// of these, and only the final resolution pass (resolve.go) turns NNN
// fields from provisional offsets into resolved addresses and serializes
// each one to its 16-bit big-endian word.
type Instr struct {
	Op  byte // high nibble: 0x0,0x1,0x4,0x5,0x6,0x7,0x8,0x9,0xA,0xD,0xE,0xF
	X   byte
	Y   byte
	N   byte // low nibble sub-opcode, used by 8XY_ and DXYN
	KK  byte // low byte immediate/sub-opcode, used by 4/6/7/E/F forms
	NNN int  // 12-bit address operand (provisional before resolution)
}

// HasNNN reports whether this instruction carries an address operand that
// the resolution pass must rewrite.
func (i Instr) HasNNN() bool {
	return i.Op == 0x1 || i.Op == 0xA
}

// Encode serializes the instruction to its big-endian 16-bit word, using
// whatever value NNN currently holds — callers resolve NNN first.
func (i Instr) Encode() uint16 {
	switch i.Op {
	case 0x0: // 00E0 CLS — the only instruction this generator ever emits in this family
		return 0x00E0
	case 0x1: // 1NNN JP addr
		return 0x1000 | uint16(i.NNN&0xFFF)
	case 0x4: // 4XKK SNE Vx, byte
		return 0x4000 | uint16(i.X)<<8 | uint16(i.KK)
	case 0x5: // 5XY0 SE Vx, Vy
		return 0x5000 | uint16(i.X)<<8 | uint16(i.Y)<<4
	case 0x6: // 6XKK LD Vx, byte
		return 0x6000 | uint16(i.X)<<8 | uint16(i.KK)
	case 0x7: // 7XKK ADD Vx, byte
		return 0x7000 | uint16(i.X)<<8 | uint16(i.KK)
	case 0x8: // 8XYN — ALU family, N selects the op (0=LD,4=ADD,5=SUB)
		return 0x8000 | uint16(i.X)<<8 | uint16(i.Y)<<4 | uint16(i.N)
	case 0x9: // 9XY0 SNE Vx, Vy
		return 0x9000 | uint16(i.X)<<8 | uint16(i.Y)<<4
	case 0xA: // ANNN LD I, addr
		return 0xA000 | uint16(i.NNN&0xFFF)
	case 0xD: // DXYN DRW Vx, Vy, nibble
		return 0xD000 | uint16(i.X)<<8 | uint16(i.Y)<<4 | uint16(i.N)
	case 0xE: // EX9E/EXA1 SKP/SKNP Vx
		return 0xE000 | uint16(i.X)<<8 | uint16(i.KK)
	case 0xF: // FX07/0A/15/18/1E/29/33/55/65
		return 0xF000 | uint16(i.X)<<8 | uint16(i.KK)
	default:
		return 0
	}
}

// Opcode sub-selectors for the 8XYN ALU family.
const (
	aluLoad byte = 0x0
	aluAdd  byte = 0x4
	aluSub  byte = 0x5
)

// Fx sub-opcodes (the low byte of an FX__ instruction).
const (
	fxKeyWait byte = 0x0A
	fxFont    byte = 0x29
	fxBCD     byte = 0x33
	fxStore   byte = 0x55
	fxLoad    byte = 0x65
)

// Ex sub-opcodes.
const (
	exSkipPressed    byte = 0x9E
	exSkipNotPressed byte = 0xA1
)

func clear() Instr { return Instr{Op: 0x0} }

func jump(offset int) Instr { return Instr{Op: 0x1, NNN: offset} }

func skipIfEqual(x, y byte) Instr    { return Instr{Op: 0x5, X: x, Y: y} }
func skipIfNotEqual(x, y byte) Instr { return Instr{Op: 0x9, X: x, Y: y} }

func loadImm(x, kk byte) Instr { return Instr{Op: 0x6, X: x, KK: kk} }
func addImm(x, kk byte) Instr  { return Instr{Op: 0x7, X: x, KK: kk} }
func skipNotEqualImm(x, kk byte) Instr { return Instr{Op: 0x4, X: x, KK: kk} }

func aluOp(op, x, y byte) Instr { return Instr{Op: 0x8, X: x, Y: y, N: op} }

func loadAddr(offset int) Instr { return Instr{Op: 0xA, NNN: offset} }

func draw(x, y, n byte) Instr { return Instr{Op: 0xD, X: x, Y: y, N: n} }

func skipKey(x byte, pressed bool) Instr {
	kk := exSkipNotPressed
	if pressed {
		kk = exSkipPressed
	}
	return Instr{Op: 0xE, X: x, KK: kk}
}

func waitKey(x byte) Instr { return Instr{Op: 0xF, X: x, KK: fxKeyWait} }
func fontAddr(x byte) Instr { return Instr{Op: 0xF, X: x, KK: fxFont} }
func storeBCD(x byte) Instr { return Instr{Op: 0xF, X: x, KK: fxBCD} }
func storeRegs(x byte) Instr { return Instr{Op: 0xF, X: x, KK: fxStore} }
func loadRegs(x byte) Instr { return Instr{Op: 0xF, X: x, KK: fxLoad} }
