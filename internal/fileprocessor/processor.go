// Package fileprocessor handles program loading and runs or disassembles it
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/chip8vm/internal/app"
	"github.com/retroenv/chip8vm/internal/config"
	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/disasm"
	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/frontend"
	"github.com/retroenv/chip8vm/internal/loader"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile loads the program file and either writes a disassembly listing
// or runs it in the selected frontend until the user quits.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program) error {
	program, err := loader.New().Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	app.PrintInfo(logger, opts, program)

	if opts.Disasm {
		return disassemble(logger, opts, program)
	}

	fe, err := frontend.New(opts.Frontend, logger, opts.Scale)
	if err != nil {
		return fmt.Errorf("creating frontend: %w", err)
	}
	defer func() {
		if err := fe.Close(); err != nil {
			logger.Error("Closing frontend failed", log.Err(err))
		}
	}()

	return runProgram(ctx, logger, opts, program, fe)
}

func runProgram(ctx context.Context, logger *log.Logger, opts options.Program,
	program []byte, fe emulator.Frontend) error {

	emu := emulator.New(logger, config.EmulatorConfig(opts))
	if err := emu.Load(program); err != nil {
		return err
	}

	for {
		err := emu.Run(ctx, fe)

		var bpErr *emulator.BreakpointError
		switch {
		case err == nil:
			return nil

		case errors.As(err, &bpErr):
			emu.LogState("Breakpoint reached")

		case errors.Is(err, emulator.ErrCycleLimit):
			emu.LogState("Cycle limit reached")
			return nil

		case cpu.IsFault(err):
			emu.LogState("Machine halted")
			return fmt.Errorf("running program: %w", err)

		default:
			return err
		}
	}
}

func disassemble(logger *log.Logger, opts options.Program, program []byte) error {
	output, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closer, ok := output.(io.Closer); ok && output != os.Stdout {
			_ = closer.Close()
		}
	}()

	dis, err := disasm.New(logger, program)
	if err != nil {
		return fmt.Errorf("creating disassembler: %w", err)
	}
	prog := dis.Process()

	w := writer.New(prog, output, options.NewDisassembler(opts))
	if err := w.Write(); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("chip8vm", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
