// Package compiler wires the lexer, parser, and code generator into a
// single entry point, the same shape a driver calls into an assembler's
// Assemble function.
package compiler

import (
	"fmt"

	"github.com/jniemenmaa/c8c/config"
	"github.com/jniemenmaa/c8c/encoder"
	"github.com/jniemenmaa/c8c/parser"
)

// Result is the output of a successful Compile call.
type Result struct {
	ROM              []byte
	Symbols          *parser.SymbolTable
	InstructionCount int
}

// Compile runs lexer -> parser -> codegen over source in sequence. On any
// diagnostic from either stage it returns nil and the first error — there
// is no partial ROM.
func Compile(source, filename string, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	p := parser.New(parser.NewLexer(source, filename))
	p.SetMaxSpriteRows(cfg.Compiler.MaxSpriteRows)
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		return nil, p.Errors().First()
	}

	opts := encoder.GenOptions{
		CodeStart:       cfg.Memory.CodeStart,
		BCDScratchBytes: cfg.Memory.BCDScratch,
		StrictBounds:    cfg.Compiler.StrictBounds,
	}
	res, err := encoder.Generate(prog, p.Symbols(), opts)
	if err != nil {
		return nil, fmt.Errorf("code generation failed: %w", err)
	}

	return &Result{ROM: res.ROM, Symbols: res.Symbols, InstructionCount: res.InstructionCount}, nil
}
