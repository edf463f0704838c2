// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// EmulatorConfig returns the emulator configuration for the program options.
func EmulatorConfig(opts options.Program) emulator.Config {
	return emulator.Config{
		Speed:       opts.Speed,
		TimerMode:   opts.TimerMode,
		Trace:       opts.Trace,
		MaxCycles:   opts.MaxCycles,
		Breakpoints: opts.Breakpoints,
		Seed:        opts.Seed,
	}
}
