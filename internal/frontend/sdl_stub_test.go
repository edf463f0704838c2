//go:build !sdl

package frontend

import (
	"errors"
	"testing"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestNew_SDLUnavailable(t *testing.T) {
	_, err := New(options.FrontendSDL, log.NewTestLogger(t), 10)
	assert.True(t, errors.Is(err, ErrSDLUnavailable))
}
