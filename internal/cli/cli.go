// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	opts.Input = args[0]

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8vm [options] <program file>\n\n")
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	switch opts.Frontend {
	case options.FrontendSDL, options.FrontendTerminal, options.FrontendHeadless:
	default:
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s", opts.Frontend,
			strings.Join([]string{options.FrontendSDL, options.FrontendTerminal, options.FrontendHeadless}, ", "))
	}

	opts.TimerMode = strings.ToLower(opts.TimerMode)
	switch opts.TimerMode {
	case options.TimerModeCycle, options.TimerMode60Hz:
	default:
		return fmt.Errorf("unsupported timer mode: %s. Valid options: %s, %s",
			opts.TimerMode, options.TimerModeCycle, options.TimerMode60Hz)
	}

	if opts.Scale < 1 {
		return fmt.Errorf("invalid scale %d, must be at least 1", opts.Scale)
	}
	if opts.Speed < 0 {
		return fmt.Errorf("invalid speed %d, must not be negative", opts.Speed)
	}

	breakpoints, err := parseBreakpoints(opts.Break)
	if err != nil {
		return err
	}
	opts.Breakpoints = breakpoints
	return nil
}

// parseBreakpoints parses a comma separated list of hex addresses, each
// optionally prefixed with $ or 0x.
func parseBreakpoints(s string) ([]uint16, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var breakpoints []uint16
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		field = strings.TrimPrefix(field, "$")
		field = strings.TrimPrefix(strings.ToLower(field), "0x")

		address, err := strconv.ParseUint(field, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("parsing breakpoint address '%s': %w", field, err)
		}
		if address > machine.LastFetchAddress {
			return nil, fmt.Errorf("breakpoint address $%X is outside of the addressable memory", address)
		}
		breakpoints = append(breakpoints, uint16(address))
	}
	return breakpoints, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file for -disasm, printed on console if no name given")
	flags.StringVar(&opts.Frontend, "frontend", options.FrontendTerminal, "frontend to use (sdl/terminal/headless)")
	flags.IntVar(&opts.Scale, "scale", 10, "display magnification of the SDL frontend")
	flags.IntVar(&opts.Speed, "speed", emulator.DefaultSpeed, "instructions per second, 0 for unlimited")
	flags.StringVar(&opts.TimerMode, "timers", options.TimerModeCycle, "timer mode (cycle/60hz)")
	flags.Int64Var(&opts.Seed, "seed", 0, "random number generator seed, 0 for time based")
	flags.StringVar(&opts.Break, "break", "", "comma separated list of hex breakpoint addresses, for example 200,2a4")
	flags.Uint64Var(&opts.MaxCycles, "cycles", 0, "stop after the given number of executed instructions, 0 for no limit")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, requires -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Disasm, "disasm", false, "write a disassembly listing of the program instead of running it")
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output offsets in comments")
}
