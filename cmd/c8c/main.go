// Command c8c compiles a C8 source file into a CHIP-8 ROM.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/jniemenmaa/c8c/compiler"
	"github.com/jniemenmaa/c8c/config"
	"github.com/jniemenmaa/c8c/parser"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		output      = flag.String("o", "output.ch8", "Output ROM path")
		configPath  = flag.String("config", "", "Path to a c8c.toml configuration file")
		emitSymbols = flag.Bool("emit-symbols", false, "Write a .sym sidecar file next to the output ROM")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("c8c %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}
	inputPath := flag.Arg(0)

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFrom(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	src, err := os.ReadFile(inputPath) // #nosec G304 -- user-specified source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", inputPath, err)
		os.Exit(1)
	}

	res, err := compiler.Compile(string(src), inputPath, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, res.ROM, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot write %s: %v\n", *output, err)
		os.Exit(1)
	}

	if *emitSymbols {
		symPath := *output + ".sym"
		if err := writeSymbols(symPath, res.Symbols); err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot write %s: %v\n", symPath, err)
			os.Exit(1)
		}
	}

	os.Exit(0)
}

// writeSymbols writes one "name kind offset size" line per declared symbol,
// the sidecar format c8view reads to annotate a ROM it otherwise has no
// source-level information about.
func writeSymbols(path string, symbols *parser.SymbolTable) (err error) {
	f, err := os.Create(path) // #nosec G304 -- derived from user-specified output path
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	w := bufio.NewWriter(f)
	for _, sym := range symbols.InOrder() {
		if _, err := fmt.Fprintf(w, "%s %s %d %d\n", sym.Name, sym.Kind, sym.Offset, sym.Size); err != nil {
			return err
		}
	}
	return w.Flush()
}

func printHelp() {
	fmt.Printf(`c8c %s - C8 to CHIP-8 compiler

Usage: c8c [options] <input-path>

Options:
  -o FILE            Output ROM path (default: output.ch8)
  -config FILE        Path to a c8c.toml configuration file
  -emit-symbols       Write a <output>.sym sidecar for c8view
  -version            Show version information

Examples:
  c8c program.c8
  c8c -o game.ch8 -emit-symbols program.c8
  c8view -rom game.ch8
`, Version)
}
