// Command sicsim assembles, loads, disassembles, and simulates SIC/XE
// programs. It is a thin dispatcher onto the core packages: business
// logic lives in lexer/parser/encoder/loader/disasm/vm, not here.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/sicsim/sicsim/api"
	"github.com/sicsim/sicsim/config"
	"github.com/sicsim/sicsim/debugger"
	"github.com/sicsim/sicsim/disasm"
	"github.com/sicsim/sicsim/encoder"
	"github.com/sicsim/sicsim/lexer"
	"github.com/sicsim/sicsim/parser"
	"github.com/sicsim/sicsim/vm"
)

func main() {
	app := &cli.App{
		Name:  "sicsim",
		Usage: "assemble, load, disassemble, and simulate SIC/XE programs",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dis", Usage: "disassemble instead of simulating"},
			&cli.BoolFlag{Name: "verbose", Usage: "print diagnostics while running"},
			&cli.IntFlag{Name: "break", Usage: "breakpoint address (hex, e.g. 0x1010)"},
			&cli.IntFlag{Name: "api-server", Usage: "start the websocket API server on this port instead of running a file"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if port := c.Int("api-server"); port != 0 {
		return runAPIServer(port)
	}

	if c.NArg() < 1 {
		return cli.Exit("usage: sicsim [-dis] [-verbose] <file.asm|file.txt>", 1)
	}
	file := c.Args().First()
	verbose := c.Bool("verbose")

	objText, symbols, err := toObjectText(file, verbose)
	if err != nil {
		return err
	}

	if c.Bool("dis") {
		return disassemble(objText)
	}
	return simulate(objText, symbols, c.Int("break"), verbose)
}

// toObjectText turns a .asm source file into object-program text via
// the full assemble pipeline, or passes a .txt object file through
// unchanged.
func toObjectText(file string, verbose bool) (string, map[string]uint32, error) {
	data, err := os.ReadFile(file) // #nosec G304 -- user-specified input path
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", file, err)
	}

	if strings.EqualFold(filepath.Ext(file), ".txt") {
		return string(data), nil, nil
	}

	lines, err := lexer.Tokenize(string(data), parser.IsCommandToken)
	if err != nil {
		return "", nil, fmt.Errorf("lex error: %w", err)
	}
	parsed, err := parser.Parse(lines)
	if err != nil {
		return "", nil, fmt.Errorf("parse error: %w", err)
	}
	prog, err := parser.Pass1(parsed)
	if err != nil {
		return "", nil, fmt.Errorf("pass 1 error: %w", err)
	}
	if verbose {
		fmt.Printf("assembled %s: %d lines, start=%#x length=%#x\n", prog.Name, len(prog.Lines), prog.Start, prog.Length)
	}
	obj, err := encoder.Encode(prog)
	if err != nil {
		return "", nil, fmt.Errorf("encode error: %w", err)
	}

	symbols := make(map[string]uint32)
	for _, sym := range prog.Symbols.All() {
		symbols[sym.Label] = sym.Address
	}
	return obj.String(), symbols, nil
}

func disassemble(objText string) error {
	tokens, err := disasm.Disassemble(objText)
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		fmt.Printf("%04X  %s\n", tok.Address, formatToken(tok))
	}
	return nil
}

func formatToken(tok disasm.Token) string {
	mnemonic := tok.Mnemonic
	if tok.Format == 4 && !strings.HasPrefix(mnemonic, "+") {
		mnemonic = "+" + mnemonic
	}
	if tok.Reg != nil {
		return fmt.Sprintf("%-8s%s,%s", mnemonic, tok.Reg.R1, tok.Reg.R2)
	}
	if tok.Format == 1 {
		return mnemonic
	}
	return fmt.Sprintf("%-8s%#x", mnemonic, tok.Displacement)
}

func simulate(objText string, symbols map[string]uint32, breakAddr int, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	machine := vm.New()
	if err := machine.Load(objText); err != nil {
		return fmt.Errorf("load error: %w", err)
	}

	dbg := debugger.New(machine)
	dbg.LoadSymbols(symbols)
	if breakAddr != 0 {
		dbg.SetBreakpoint(uint32(breakAddr))
	}

	cycles := uint64(0)
	for {
		if cycles >= cfg.Execution.MaxCycles {
			return fmt.Errorf("exceeded max cycles (%d)", cfg.Execution.MaxCycles)
		}
		more, err := dbg.Step()
		if err != nil {
			return fmt.Errorf("runtime error at PC=%#x: %w", machine.CPU.PC, err)
		}
		cycles++
		if !more || machine.State == vm.StateBreakpointHit {
			break
		}
	}

	if verbose {
		fmt.Printf("halted: PC=%#x A=%#x X=%#x L=%#x cycles=%d state=%s\n",
			machine.CPU.PC, machine.CPU.A, machine.CPU.X, machine.CPU.L, cycles, machine.State)
	}
	return nil
}

func runAPIServer(port int) error {
	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		return server.Shutdown(ctx)
	}
}
