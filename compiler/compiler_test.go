package compiler

import (
	"testing"

	"github.com/jniemenmaa/c8c/config"
)

func TestCompileSimpleDeclaration(t *testing.T) {
	res, err := Compile(`var x = 5;`, "test.c8", config.DefaultConfig())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(res.ROM) == 0 {
		t.Fatal("ROM is empty")
	}
	if res.InstructionCount == 0 {
		t.Fatal("InstructionCount is zero")
	}
}

func TestCompileNilConfigUsesDefaults(t *testing.T) {
	res, err := Compile(`var x = 5;`, "test.c8", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(res.ROM) == 0 {
		t.Fatal("ROM is empty")
	}
}

func TestCompileSyntaxErrorReturnsNoROM(t *testing.T) {
	res, err := Compile(`var x = 5`, "test.c8", config.DefaultConfig())
	if err == nil {
		t.Fatal("Compile: want error for missing semicolon, got nil")
	}
	if res != nil {
		t.Fatal("Compile: want nil Result on error")
	}
}

func TestCompileSemanticErrorReturnsNoROM(t *testing.T) {
	res, err := Compile(`var x = 300;`, "test.c8", config.DefaultConfig())
	if err == nil {
		t.Fatal("Compile: want error for an out-of-range literal, got nil")
	}
	if res != nil {
		t.Fatal("Compile: want nil Result on error")
	}
}

func TestCompileHonorsMemoryMapOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Memory.CodeStart = 0x300

	res, err := Compile(`var x = 5;`, "test.c8", cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(res.ROM) < 10 {
		t.Fatalf("ROM is %d bytes, want at least 10", len(res.ROM))
	}
	// The fifth instruction is the guard jump; under code_start = 0x300 it
	// jumps to its own address, 0x308.
	if guard := uint16(res.ROM[8])<<8 | uint16(res.ROM[9]); guard != 0x1308 {
		t.Errorf("guard jump = %#04x, want 0x1308", guard)
	}
}

func TestCompileHonorsMaxSpriteRowsOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Compiler.MaxSpriteRows = 2

	_, err := Compile(`sprite s = {0b11111111, 0b11111111, 0b11111111};`, "test.c8", cfg)
	if err == nil {
		t.Fatal("Compile: want a sprite-row error under a max_sprite_rows=2 override, got nil")
	}

	res, err := Compile(`sprite s = {0b11111111, 0b11111111};`, "test.c8", cfg)
	if err != nil {
		t.Fatalf("Compile: a 2-row sprite should fit under max_sprite_rows=2: %v", err)
	}
	if len(res.ROM) == 0 {
		t.Fatal("ROM is empty")
	}
}

func TestCompileOversizedProgramHitsStrictBounds(t *testing.T) {
	cfg := config.DefaultConfig()
	src := "sprite s = {0b11111111};"
	for i := 0; i < 600; i++ {
		src += "draw(s, 0, 0);"
	}
	_, err := Compile(src, "test.c8", cfg)
	if err == nil {
		t.Fatal("Compile: want a bounds error for a program this large, got nil")
	}
}
