package frontend

import (
	"sync"

	"github.com/retroenv/chip8vm/internal/emulator"
)

// KeyEvent is a scripted key pad change or reset of a headless frontend.
type KeyEvent struct {
	Poll    int // number of the poll that applies the event, starting at 0
	Key     uint8
	Pressed bool
	Reset   bool // reset the machine instead of changing a key
}

// Headless is a frontend without any output that records the presented
// frames and replays scripted input, used for tests and batch runs.
type Headless struct {
	QuitAfter int // quit at the given poll, 0 never quits
	Events    []KeyEvent

	mu     sync.Mutex
	frames []emulator.Frame
	polls  int
	closed bool
}

// NewHeadless returns a new headless frontend.
func NewHeadless() *Headless {
	return &Headless{}
}

// Present records the frame.
func (h *Headless) Present(frame emulator.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.frames = append(h.frames, frame)
	return nil
}

// Poll applies all scripted key events of the current poll.
func (h *Headless) Poll(keys emulator.Controls) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	poll := h.polls
	h.polls++

	for _, event := range h.Events {
		if event.Poll != poll {
			continue
		}
		if event.Reset {
			keys.Reset()
			continue
		}
		if err := keys.SetKey(event.Key, event.Pressed); err != nil {
			return false, err
		}
	}

	return h.QuitAfter > 0 && poll >= h.QuitAfter, nil
}

// Close marks the frontend as closed.
func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	return nil
}

// Frames returns all presented frames.
func (h *Headless) Frames() []emulator.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()

	frames := make([]emulator.Frame, len(h.frames))
	copy(frames, h.frames)
	return frames
}

// LastFrame returns the last presented frame.
func (h *Headless) LastFrame() (emulator.Frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.frames) == 0 {
		return emulator.Frame{}, false
	}
	return h.frames[len(h.frames)-1], true
}

// Closed returns whether the frontend was closed.
func (h *Headless) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.closed
}
