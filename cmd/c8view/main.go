// Command c8view is a read-only terminal browser over a compiled CHIP-8
// ROM: disassembly, symbol table, and raw data panes. It never executes an
// opcode — it only decodes and displays one.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jniemenmaa/c8c/config"
	"github.com/jniemenmaa/c8c/parser"
	"github.com/jniemenmaa/c8c/romview"
)

func main() {
	var (
		romPath    = flag.String("rom", "", "Path to a compiled ROM file")
		symPath    = flag.String("sym", "", "Path to a .sym sidecar (default: <rom>.sym if present)")
		configPath = flag.String("config", "", "Path to a c8c.toml configuration file")
	)
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: c8view -rom <path> [-sym <path>] [-config <path>]")
		os.Exit(1)
	}

	rom, err := os.ReadFile(*romPath) // #nosec G304 -- user-specified ROM path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", *romPath, err)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFrom(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	sidecar := *symPath
	if sidecar == "" {
		sidecar = *romPath + ".sym"
	}
	symbols, err := loadSymbols(sidecar)
	if err != nil && *symPath != "" {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", sidecar, err)
		os.Exit(1)
	}

	v := romview.New(rom, symbols, cfg)
	if err := v.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "c8view error: %v\n", err)
		os.Exit(1)
	}
}

// loadSymbols parses a .sym sidecar written by `c8c -emit-symbols`. A
// missing sidecar is not fatal — the sym/hex panes simply fall back to raw
// addresses.
func loadSymbols(path string) (*parser.SymbolTable, error) {
	f, err := os.Open(path) // #nosec G304 -- derived from user-specified ROM/sym path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table := parser.NewSymbolTable()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 {
			continue
		}
		name, kind := fields[0], fields[1]
		rows, err := strconv.Atoi(fields[3])
		if err != nil {
			continue
		}
		if kind == "sprite" {
			_ = table.DeclareSprite(name, rows)
		} else {
			_ = table.DeclareInteger(name)
		}
	}
	return table, scanner.Err()
}
