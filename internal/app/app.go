// Package app provides the main application helper for the virtual machine.
package app

import (
	"fmt"
	"hash/crc32"

	"github.com/retroenv/chip8vm/internal/options"
	archsys "github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
)

// PrintInfo prints the information about the input file and the loaded program.
func PrintInfo(logger *log.Logger, opts options.Program, program []byte) {
	if opts.Quiet {
		return
	}

	mode := "run"
	if opts.Disasm {
		mode = "disasm"
	}

	logger.Info("Processing program",
		log.String("file", opts.Input),
		log.String("system", fmt.Sprint(archsys.CHIP8System)),
		log.Int("size", len(program)),
		log.String("crc32", fmt.Sprintf("%08x", crc32.ChecksumIEEE(program))),
		log.String("mode", mode),
	)
	if !opts.Disasm {
		logger.Info("Emulation settings",
			log.String("frontend", opts.Frontend),
			log.Int("speed", opts.Speed),
			log.String("timers", opts.TimerMode),
		)
	}
}
