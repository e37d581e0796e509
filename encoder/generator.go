package encoder

import (
	"github.com/jniemenmaa/c8c/parser"
)

// GenOptions configures the memory layout and strictness of a single
// Generate call. DefaultOptions mirrors the values spec hard-codes; a
// config file can override them before they reach the generator.
type GenOptions struct {
	CodeStart       int
	BCDScratchBytes int
	StrictBounds    bool
}

// DefaultOptions returns the hard-coded CHIP-8 memory layout: code starts
// at 0x200 (the traditional CHIP-8 program origin, below which the
// interpreter and font data live), with 3 scratch bytes reserved for
// DrawNum's BCD conversion.
func DefaultOptions() GenOptions {
	return GenOptions{CodeStart: 0x200, BCDScratchBytes: 3, StrictBounds: true}
}

// Result is the output of a successful Generate call.
type Result struct {
	ROM              []byte
	Symbols          *parser.SymbolTable
	InstructionCount int
}

// Generator lowers a parsed Program into CHIP-8 machine code. It owns the
// register allocator and the sprite byte table; symbols is supplied
// externally since the parser already built it as a side effect of
// parsing.
type Generator struct {
	alloc   *RegisterAllocator
	symbols *parser.SymbolTable
	sprites map[string][]uint8
	opts    GenOptions
}

// Generate lowers prog to a ROM image. It is the codegen package's sole
// entry point — the compiler facade calls this after a clean parse.
func Generate(prog *parser.Program, symbols *parser.SymbolTable, opts GenOptions) (*Result, error) {
	g := &Generator{
		alloc:   NewRegisterAllocator(),
		symbols: symbols,
		sprites: make(map[string][]uint8),
		opts:    opts,
	}

	var buf []Instr
	for _, stmt := range prog.Statements {
		if err := g.genStmt(&buf, stmt); err != nil {
			return nil, err
		}
	}
	// Terminating self-loop guard: prevents the interpreter from running
	// off the end of code into the data section.
	buf = append(buf, jump(0))

	rom, err := g.resolve(buf)
	if err != nil {
		return nil, err
	}

	return &Result{ROM: rom, Symbols: symbols, InstructionCount: len(buf)}, nil
}

// --- Statement lowering ---

func (g *Generator) genStmt(buf *[]Instr, stmt parser.Stmt) error {
	switch s := stmt.(type) {
	case *parser.ExpressionStmt:
		r, err := g.genExpr(buf, s.Expr)
		if err != nil {
			return err
		}
		g.alloc.Free(r)
		return nil

	case *parser.ClearStmt:
		*buf = append(*buf, clear())
		return nil

	case *parser.IntegerDeclaration:
		r, err := g.genExpr(buf, s.Value)
		if err != nil {
			return err
		}
		if r != reservedV0 {
			*buf = append(*buf, aluOp(aluLoad, reservedV0, r))
		}
		*buf = append(*buf, loadAddr(g.symbols.LocationOf(s.Name)))
		*buf = append(*buf, storeRegs(reservedV0))
		g.alloc.Free(r)
		return nil

	case *parser.SpriteDeclaration:
		g.sprites[s.Name] = s.Rows
		return nil

	case *parser.IfStmt:
		return g.genIf(buf, s)

	case *parser.WhileStmt:
		return g.genWhile(buf, s)

	case *parser.BlockStmt:
		for _, inner := range s.Statements {
			if err := g.genStmt(buf, inner); err != nil {
				return err
			}
		}
		return nil

	default:
		return NewError(parser.Position{}, "codegen: unhandled statement type")
	}
}

func (g *Generator) genBlock(block *parser.BlockStmt) ([]Instr, error) {
	var buf []Instr
	for _, stmt := range block.Statements {
		if err := g.genStmt(&buf, stmt); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func (g *Generator) genIf(buf *[]Instr, s *parser.IfStmt) error {
	r, err := g.genExpr(buf, s.Cond)
	if err != nil {
		return err
	}
	// 4XKK SNE Vx,KK: skip the next instruction (the false-branch jump)
	// when the condition is true, falling straight into the consequence.
	*buf = append(*buf, skipNotEqualImm(r, 0))
	g.alloc.Free(r)

	consequence, err := g.genBlock(s.Then)
	if err != nil {
		return err
	}

	var alternative []Instr
	hasElse := s.Else != nil
	if hasElse {
		alternative, err = g.genBlock(s.Else)
		if err != nil {
			return err
		}
	}

	jumpIdx := len(*buf)
	*buf = append(*buf, jump(0)) // placeholder: false path skips the consequence (and trailer, if any)
	*buf = append(*buf, consequence...)

	var trailerIdx int
	if hasElse {
		// A trailing jump lets the true branch skip over the alternative
		// once it finishes executing the consequence.
		trailerIdx = len(*buf)
		*buf = append(*buf, jump(0)) // placeholder
	}

	target := len(*buf)
	(*buf)[jumpIdx] = jump((target - jumpIdx) * instructionSize)

	if hasElse {
		*buf = append(*buf, alternative...)
		afterAll := len(*buf)
		(*buf)[trailerIdx] = jump((afterAll - trailerIdx) * instructionSize)
	}

	return nil
}

func (g *Generator) genWhile(buf *[]Instr, s *parser.WhileStmt) error {
	condStart := len(*buf)
	r, err := g.genExpr(buf, s.Cond)
	if err != nil {
		return err
	}
	*buf = append(*buf, skipNotEqualImm(r, 0))
	g.alloc.Free(r)

	fwdJumpIdx := len(*buf)
	*buf = append(*buf, jump(0)) // placeholder

	body, err := g.genBlock(s.Body)
	if err != nil {
		return err
	}
	*buf = append(*buf, body...)

	backJumpIdx := len(*buf)
	*buf = append(*buf, jump((condStart-backJumpIdx)*instructionSize))

	loopEnd := len(*buf)
	(*buf)[fwdJumpIdx] = jump((loopEnd - fwdJumpIdx) * instructionSize)

	return nil
}

// --- Expression lowering ---

func (g *Generator) genExpr(buf *[]Instr, expr parser.Expr) (byte, error) {
	switch e := expr.(type) {
	case *parser.IntegerLiteral:
		r, err := g.alloc.Allocate()
		if err != nil {
			return 0, err
		}
		*buf = append(*buf, loadImm(r, e.Value))
		return r, nil

	case *parser.Identifier:
		r, err := g.alloc.Allocate()
		if err != nil {
			return 0, err
		}
		*buf = append(*buf, loadAddr(g.symbols.LocationOf(e.Name)))
		*buf = append(*buf, loadRegs(reservedV0))
		*buf = append(*buf, aluOp(aluLoad, r, reservedV0))
		return r, nil

	case *parser.InfixExpr:
		return g.genInfix(buf, e)

	case *parser.DrawExpr:
		return g.genDraw(buf, e)

	case *parser.DrawNumExpr:
		return g.genDrawNum(buf, e)

	case *parser.DrawCharExpr:
		return g.genDrawChar(buf, e)

	case *parser.PressedExpr:
		return g.genKeyTest(buf, e.Key, exSkipPressed)

	case *parser.NotPressedExpr:
		return g.genKeyTest(buf, e.Key, exSkipNotPressed)

	case *parser.UntilPressedExpr:
		r, err := g.alloc.Allocate()
		if err != nil {
			return 0, err
		}
		*buf = append(*buf, waitKey(r))
		return r, nil

	default:
		return 0, NewError(expr.Token().Pos, "codegen: unhandled expression type")
	}
}

func (g *Generator) genInfix(buf *[]Instr, e *parser.InfixExpr) (byte, error) {
	l, err := g.genExpr(buf, e.Left)
	if err != nil {
		return 0, err
	}
	r, err := g.genExpr(buf, e.Right)
	if err != nil {
		return 0, err
	}

	switch e.Op {
	case parser.OpAdd:
		*buf = append(*buf, aluOp(aluAdd, l, r))
		g.alloc.Free(r)
		return l, nil

	case parser.OpSub:
		*buf = append(*buf, aluOp(aluSub, l, r))
		g.alloc.Free(r)
		return l, nil

	case parser.OpMul:
		return g.genMultiply(buf, l, r)

	case parser.OpEq:
		result, err := g.genConditionalSelect(buf, skipIfEqual(l, r))
		g.alloc.Free(l)
		g.alloc.Free(r)
		return result, err

	case parser.OpNotEq:
		result, err := g.genConditionalSelect(buf, skipIfNotEqual(l, r))
		g.alloc.Free(l)
		g.alloc.Free(r)
		return result, err

	default:
		return 0, NewError(e.Tok.Pos, "codegen: unhandled infix operator")
	}
}

// genConditionalSelect materializes a boolean into a fresh register: preset
// 1 (optimistic), run the caller-supplied skip test, then reset to 0 when
// the test did not skip the reset. The test is expected to skip the reset
// exactly when the condition it encodes holds.
func (g *Generator) genConditionalSelect(buf *[]Instr, test Instr) (byte, error) {
	result, err := g.alloc.Allocate()
	if err != nil {
		return 0, err
	}
	*buf = append(*buf, loadImm(result, 1))
	*buf = append(*buf, test)
	*buf = append(*buf, loadImm(result, 0))
	return result, nil
}

// genMultiply has no native multiply opcode to lower to: it emits a
// counting loop, top-tested so that a zero operand terminates before the
// body ever runs.
func (g *Generator) genMultiply(buf *[]Instr, l, r byte) (byte, error) {
	idx, err := g.alloc.Allocate()
	if err != nil {
		return 0, err
	}
	acc, err := g.alloc.Allocate()
	if err != nil {
		return 0, err
	}
	*buf = append(*buf, loadImm(idx, 0))
	*buf = append(*buf, loadImm(acc, 0))

	testIdx := len(*buf)
	*buf = append(*buf, skipIfNotEqual(idx, l))

	exitJumpIdx := len(*buf)
	*buf = append(*buf, jump(0)) // placeholder: taken when idx == l (done)

	*buf = append(*buf, aluOp(aluAdd, acc, r))
	*buf = append(*buf, addImm(idx, 1))

	backJumpIdx := len(*buf)
	*buf = append(*buf, jump((testIdx-backJumpIdx)*instructionSize))

	loopEnd := len(*buf)
	(*buf)[exitJumpIdx] = jump((loopEnd - exitJumpIdx) * instructionSize)

	g.alloc.Free(idx)
	g.alloc.Free(l)
	g.alloc.Free(r)
	return acc, nil
}

func (g *Generator) genDraw(buf *[]Instr, e *parser.DrawExpr) (byte, error) {
	xr, err := g.genExpr(buf, e.X)
	if err != nil {
		return 0, err
	}
	yr, err := g.genExpr(buf, e.Y)
	if err != nil {
		return 0, err
	}

	rows := len(g.sprites[e.Name])
	*buf = append(*buf, loadAddr(g.symbols.LocationOf(e.Name)))
	*buf = append(*buf, draw(xr, yr, byte(rows)))

	g.alloc.Free(xr)
	g.alloc.Free(yr)
	return reservedVF, nil
}

func (g *Generator) genDrawNum(buf *[]Instr, e *parser.DrawNumExpr) (byte, error) {
	xr, err := g.genExpr(buf, e.X)
	if err != nil {
		return 0, err
	}
	yr, err := g.genExpr(buf, e.Y)
	if err != nil {
		return 0, err
	}
	vr, err := g.genExpr(buf, e.Value)
	if err != nil {
		return 0, err
	}

	scratchBase := -g.opts.BCDScratchBytes
	*buf = append(*buf, loadAddr(scratchBase))
	*buf = append(*buf, storeBCD(vr))
	g.alloc.Free(vr)

	for digit := 0; digit < g.opts.BCDScratchBytes; digit++ {
		*buf = append(*buf, loadAddr(scratchBase+digit))
		*buf = append(*buf, loadRegs(reservedV0))
		*buf = append(*buf, fontAddr(reservedV0))
		*buf = append(*buf, draw(xr, yr, 5))
		*buf = append(*buf, addImm(xr, 5))
	}

	g.alloc.Free(xr)
	g.alloc.Free(yr)
	return reservedVF, nil
}

func (g *Generator) genDrawChar(buf *[]Instr, e *parser.DrawCharExpr) (byte, error) {
	xr, err := g.genExpr(buf, e.X)
	if err != nil {
		return 0, err
	}
	yr, err := g.genExpr(buf, e.Y)
	if err != nil {
		return 0, err
	}
	vr, err := g.genExpr(buf, e.Value)
	if err != nil {
		return 0, err
	}

	*buf = append(*buf, fontAddr(vr))
	*buf = append(*buf, draw(xr, yr, 5))

	g.alloc.Free(xr)
	g.alloc.Free(yr)
	g.alloc.Free(vr)
	return reservedVF, nil
}

func (g *Generator) genKeyTest(buf *[]Instr, key parser.Expr, skipKK byte) (byte, error) {
	kr, err := g.genExpr(buf, key)
	if err != nil {
		return 0, err
	}
	result, err := g.genConditionalSelect(buf, Instr{Op: 0xE, X: kr, KK: skipKK})
	g.alloc.Free(kr)
	return result, err
}
