// ABOUTME: CLI for applying IPS patches to ROM images before a run.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/2389-research/gamepilot/rompatch"
)

func main() {
	os.Exit(run())
}

func run() int {
	var output string

	fs := flag.NewFlagSet("gbpatch", flag.ContinueOnError)
	fs.StringVar(&output, "o", "", "Output path (default: <rom>.patched)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gbpatch [-o output] <rom> <patch.ips>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}

	romPath, patchPath := fs.Arg(0), fs.Arg(1)
	if output == "" {
		output = romPath + ".patched"
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	patch, err := os.ReadFile(patchPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}

	patched, err := rompatch.Apply(rom, patch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	if err := os.WriteFile(output, patched, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}

	fmt.Printf("wrote %s (%d bytes, %d -> %d)\n", output, len(patched), len(rom), len(patched))
	return 0
}
