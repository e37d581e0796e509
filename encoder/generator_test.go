package encoder

import (
	"testing"

	"github.com/jniemenmaa/c8c/parser"
)

// compile runs the full front end (lex, parse, symbol-check) and then the
// generator over src, failing the test on any front-end or codegen error.
func compile(t *testing.T, src string) *Result {
	t.Helper()
	p := parser.New(parser.NewLexer(src, "test.c8"))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	res, err := Generate(prog, p.Symbols(), DefaultOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return res
}

// words reinterprets a ROM's code region as big-endian 16-bit opcodes.
func words(rom []byte, n int) []uint16 {
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(rom[2*i])<<8 | uint16(rom[2*i+1])
	}
	return out
}

func TestGenerateIntegerDeclarationLiteral(t *testing.T) {
	res := compile(t, `var x = 5;`)

	// load-immediate, copy-to-V0 (literal allocates a non-V0 register),
	// set-I, store, guard jump.
	if res.InstructionCount != 5 {
		t.Fatalf("InstructionCount = %d, want 5", res.InstructionCount)
	}
	w := words(res.ROM, res.InstructionCount)
	if w[0]&0xF000 != 0x6000 {
		t.Errorf("instr0 = %#04x, want a 6XKK load-immediate", w[0])
	}
	if w[0]&0x00FF != 5 {
		t.Errorf("instr0 immediate = %#02x, want 5", w[0]&0x00FF)
	}
	if w[1]&0xF00F != 0x8000 {
		t.Errorf("instr1 = %#04x, want an 8XY0 register copy", w[1])
	}
	if w[2]&0xF000 != 0xA000 {
		t.Errorf("instr2 = %#04x, want an ANNN load-address", w[2])
	}
	if w[3] != 0xF055 {
		t.Errorf("instr3 = %#04x, want F055 (store V0)", w[3])
	}
	if w[4]&0xF000 != 0x1000 {
		t.Errorf("instr4 = %#04x, want the terminating 1NNN guard jump", w[4])
	}

	// One integer symbol reserves exactly one data byte, always zero —
	// the value is written at runtime by the store, never baked into ROM.
	if got := res.ROM[len(res.ROM)-1]; got != 0x00 {
		t.Errorf("data byte = %#02x, want 0x00 placeholder", got)
	}
}

func TestGenerateSpriteDeclarationEmitsNoCode(t *testing.T) {
	res := compile(t, `sprite s = {0b11111111, 0b10000001, 0b11111111}; draw(s, 0, 0);`)

	// Declaring a sprite contributes zero instructions; only the draw does
	// (x load, y load, set-I, DXYN) plus the guard jump.
	if res.InstructionCount != 5 {
		t.Errorf("InstructionCount = %d, want 5", res.InstructionCount)
	}
	w := words(res.ROM, res.InstructionCount)
	foundDraw := false
	for _, op := range w {
		if op&0xF000 == 0xD000 {
			foundDraw = true
		}
	}
	if !foundDraw {
		t.Fatal("no DXYN draw instruction found")
	}

	data := res.ROM[len(res.ROM)-3:]
	want := []byte{0xFF, 0x81, 0xFF}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("data[%d] = %#02x, want %#02x", i, data[i], want[i])
		}
	}
}

func TestGenerateIfWithoutElse(t *testing.T) {
	res := compile(t, `if (1 == 1) { clear; }`)
	w := words(res.ROM, res.InstructionCount)

	foundClear := false
	foundSkip := false
	for _, op := range w {
		if op == 0x00E0 {
			foundClear = true
		}
		if op&0xF0FF == 0x4000 {
			foundSkip = true
		}
	}
	if !foundClear {
		t.Error("no 00E0 CLS instruction emitted")
	}
	if !foundSkip {
		t.Error("no 4XKK SNE Vx,0 skip-the-false-branch instruction emitted")
	}
}

func TestGenerateWhileEmitsBodyOnce(t *testing.T) {
	res := compile(t, `while (0 != 0) { clear; }`)
	w := words(res.ROM, res.InstructionCount)

	clsCount := 0
	for _, op := range w {
		if op == 0x00E0 {
			clsCount++
		}
	}
	if clsCount != 1 {
		t.Errorf("CLS appears %d times in emitted code, want exactly 1 (loop body is generated once, guarded by a runtime test)", clsCount)
	}
}

func TestGenerateOutOfRangeLiteralIsSemanticError(t *testing.T) {
	p := parser.New(parser.NewLexer(`var x = 300;`, "test.c8"))
	p.ParseProgram()
	if !p.Errors().HasErrors() {
		t.Fatal("want a semantic error for an out-of-range literal, got none")
	}
	if p.Errors().First().Kind != parser.ErrorSemantic {
		t.Errorf("got error kind %s, want %s", p.Errors().First().Kind, parser.ErrorSemantic)
	}
}

func TestGenerateEqualityProducesFreshResultRegister(t *testing.T) {
	// l and r must stay untouched by the conditional-select preset/reset,
	// so the result has to live in a register distinct from both operands.
	res := compile(t, `var a = 2; var b = 3; a == b;`)
	w := words(res.ROM, res.InstructionCount)

	loads := 0
	for _, op := range w {
		if op&0xF000 == 0x6000 {
			loads++
		}
	}
	// a literal load each for a, b, the == preset(1) and the == reset(0).
	if loads < 4 {
		t.Errorf("saw %d load-immediate instructions, want at least 4", loads)
	}

	// The 6XKK preset right before the 5XY0 test must target a register
	// that is neither operand of the test.
	foundTest := false
	for i := 1; i < len(w); i++ {
		if w[i]&0xF00F != 0x5000 || w[i-1]&0xF000 != 0x6000 {
			continue
		}
		foundTest = true
		result := (w[i-1] >> 8) & 0xF
		if result == (w[i]>>8)&0xF || result == (w[i]>>4)&0xF {
			t.Errorf("preset %#04x reuses an operand register of %#04x", w[i-1], w[i])
		}
	}
	if !foundTest {
		t.Error("no 6XKK preset followed by a 5XY0 equality test emitted")
	}
}

func TestRegisterBudgetReturnsToBaselineAfterStatement(t *testing.T) {
	src := `var a = 1; var b = a + a; var c = (a + b) == (b - a);`
	res := compile(t, src)
	if res == nil {
		t.Fatal("Generate returned nil Result")
	}

	// Generate does not expose its allocator, so lower the same statements
	// through a Generator directly and check that all 14 usable registers
	// can be allocated again afterwards.
	p := parser.New(parser.NewLexer(src, "test.c8"))
	prog := p.ParseProgram()
	g := &Generator{alloc: NewRegisterAllocator(), symbols: p.Symbols(), sprites: make(map[string][]uint8), opts: DefaultOptions()}
	var buf []Instr
	for _, stmt := range prog.Statements {
		if err := g.genStmt(&buf, stmt); err != nil {
			t.Fatalf("genStmt: %v", err)
		}
	}
	for i := 0; i < 14; i++ {
		if _, err := g.alloc.Allocate(); err != nil {
			t.Fatalf("Allocate #%d after generation: %v (a register was not freed)", i, err)
		}
	}
}

func TestDataBoundsErrorOnOversizedProgram(t *testing.T) {
	// 300 sprites at the maximum 15 rows (4500 data bytes) exceed 4 KiB on
	// their own, and should surface as a codegen error rather than a
	// silently truncated ROM.
	src := ""
	rows := ""
	for i := 0; i < 15; i++ {
		if i > 0 {
			rows += ", "
		}
		rows += "0b11111111"
	}
	for i := 0; i < 300; i++ {
		src += sprintfSprite(i, rows)
	}
	p := parser.New(parser.NewLexer(src, "test.c8"))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	_, err := Generate(prog, p.Symbols(), DefaultOptions())
	if err == nil {
		t.Fatal("Generate: want a bounds error for an oversized ROM, got nil")
	}
}

func sprintfSprite(i int, rows string) string {
	name := "s"
	// Distinct identifiers: s0, s1, s2, ...
	digits := []byte{}
	n := i
	if n == 0 {
		digits = append(digits, '0')
	}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	name += string(digits)
	return "sprite " + name + " = {" + rows + "};"
}
