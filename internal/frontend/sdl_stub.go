//go:build !sdl

package frontend

import (
	"errors"

	"github.com/retroenv/retrogolib/log"
)

// ErrSDLUnavailable is returned when the binary was built without SDL support.
var ErrSDLUnavailable = errors.New("SDL frontend not available, build with '-tags sdl' or use the terminal frontend")

// NewSDL returns ErrSDLUnavailable.
func NewSDL(_ *log.Logger, _ int) (Frontend, error) {
	return nil, ErrSDLUnavailable
}
