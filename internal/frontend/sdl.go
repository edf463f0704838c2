//go:build sdl

package frontend

import (
	"fmt"
	"runtime"

	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const windowTitle = "chip8vm"

// SDL presents frames in a window and reads key events from it.
type SDL struct {
	logger   *log.Logger
	window   *sdl.Window
	renderer *sdl.Renderer
	scale    int32
	title    string
}

// NewSDL opens a window that shows the display magnified by scale.
func NewSDL(logger *log.Logger, scale int) (Frontend, error) {
	runtime.LockOSThread() // Latch this goroutine to the same thread for SDL.

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("initializing SDL: %w", err)
	}

	width := int32(machine.DisplayWidth * scale)
	height := int32(machine.DisplayHeight * scale)
	window, err := sdl.CreateWindow(windowTitle, sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED, width, height, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("creating window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		_ = window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	logger.Debug("SDL window created", log.Int("width", int(width)), log.Int("height", int(height)))

	return &SDL{
		logger:   logger,
		window:   window,
		renderer: renderer,
		scale:    int32(scale),
	}, nil
}

// Present draws every lit pixel as a scaled rectangle.
func (s *SDL) Present(frame emulator.Frame) error {
	if err := s.renderer.SetDrawColor(0, 0, 0, 255); err != nil {
		return fmt.Errorf("setting draw color: %w", err)
	}
	if err := s.renderer.Clear(); err != nil {
		return fmt.Errorf("clearing renderer: %w", err)
	}
	if err := s.renderer.SetDrawColor(255, 255, 255, 255); err != nil {
		return fmt.Errorf("setting draw color: %w", err)
	}

	for y := 0; y < machine.DisplayHeight; y++ {
		for x := 0; x < machine.DisplayWidth; x++ {
			if !frame.Pixel(x, y) {
				continue
			}
			rect := &sdl.Rect{
				X: int32(x) * s.scale,
				Y: int32(y) * s.scale,
				W: s.scale,
				H: s.scale,
			}
			if err := s.renderer.FillRect(rect); err != nil {
				return fmt.Errorf("drawing pixel: %w", err)
			}
		}
	}
	s.renderer.Present()

	s.updateTitle(frame)
	return nil
}

// updateTitle shows the register overview of the debug overlay in the
// window title, the remaining lines are logged at debug level.
func (s *SDL) updateTitle(frame emulator.Frame) {
	lines := DebugText(frame.Debug)
	title := windowTitle + " - " + lines[0]
	if frame.Sound {
		title += " - beep"
	}
	if title != s.title {
		s.title = title
		s.window.SetTitle(title)
	}

	for _, line := range lines[1:] {
		s.logger.Debug(line)
	}
}

// Poll forwards all pending keyboard events. Escape or closing the window
// requests to quit, backspace resets the machine.
func (s *SDL) Poll(keys emulator.Controls) (bool, error) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.QuitEvent:
			return true, nil

		case *sdl.KeyboardEvent:
			switch t.Keysym.Sym {
			case sdl.K_ESCAPE:
				return true, nil
			case sdl.K_BACKSPACE:
				if t.Type == sdl.KEYDOWN && t.Repeat == 0 {
					keys.Reset()
				}
				continue
			}
			index, ok := KeyIndex(rune(t.Keysym.Sym))
			if !ok {
				continue
			}
			if err := keys.SetKey(index, t.Type == sdl.KEYDOWN); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

// Close destroys the window and shuts SDL down.
func (s *SDL) Close() error {
	if err := s.renderer.Destroy(); err != nil {
		return fmt.Errorf("destroying renderer: %w", err)
	}
	if err := s.window.Destroy(); err != nil {
		return fmt.Errorf("destroying window: %w", err)
	}
	sdl.Quit()
	return nil
}
