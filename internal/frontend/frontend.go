// Package frontend implements the presentation and input backends of the
// emulator: a headless recorder, a terminal renderer and an SDL window.
package frontend

import (
	"fmt"

	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// Frontend presents frames and captures input for the emulator.
type Frontend interface {
	emulator.Frontend

	// Close releases the resources of the frontend.
	Close() error
}

// New returns the frontend with the given name.
func New(name string, logger *log.Logger, scale int) (Frontend, error) {
	switch name {
	case options.FrontendHeadless:
		return NewHeadless(), nil
	case options.FrontendTerminal:
		t, err := NewTerminal(logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	case options.FrontendSDL:
		return NewSDL(logger, scale)
	default:
		return nil, fmt.Errorf("unsupported frontend '%s'", name)
	}
}
