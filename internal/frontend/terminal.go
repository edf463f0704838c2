package frontend

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tm "github.com/buger/goterm"
	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

const (
	keyEscape    = 0x1b
	keyBackspace = 0x7f
	keyCtrlH     = 0x08 // backspace on some terminals

	// keyHoldDuration is how long a key stays pressed after its last
	// character was read, terminals do not report key releases.
	keyHoldDuration = 150 * time.Millisecond

	pixelOn  = "██"
	pixelOff = "  "
)

// Terminal renders the display with ANSI escape sequences and reads keys
// from stdin in raw mode.
type Terminal struct {
	logger  *log.Logger
	restore func() error

	input chan byte
	done  chan struct{}
	wg    sync.WaitGroup

	held    map[uint8]time.Time // release deadline of pressed keys
	cleared bool
	sound   bool
}

// NewTerminal switches stdin to raw mode and starts reading keys.
func NewTerminal(logger *log.Logger) (*Terminal, error) {
	restore, err := enterRawMode(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("entering raw terminal mode: %w", err)
	}

	t := &Terminal{
		logger:  logger,
		restore: restore,
		input:   make(chan byte, 64),
		done:    make(chan struct{}),
		held:    map[uint8]time.Time{},
	}

	t.wg.Add(1)
	go t.readInput()

	logger.Debug("Terminal switched to raw mode")
	return t, nil
}

// readInput forwards stdin bytes until the terminal is closed. Reads return
// after a short timeout in raw mode, so the done channel is checked
// regularly.
func (t *Terminal) readInput() {
	defer t.wg.Done()

	buf := make([]byte, 16)
	for {
		select {
		case <-t.done:
			return
		default:
		}

		n, err := os.Stdin.Read(buf)
		if err != nil && n == 0 {
			select {
			case <-t.done:
				return
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}

		for _, b := range buf[:n] {
			select {
			case t.input <- b:
			case <-t.done:
				return
			}
		}
	}
}

// Present draws the display and the debug overlay. A rising edge of the
// sound state rings the terminal bell.
func (t *Terminal) Present(frame emulator.Frame) error {
	if !t.cleared {
		tm.Clear()
		t.cleared = true
	}
	tm.MoveCursor(1, 1)

	buf := &strings.Builder{}
	for y := 0; y < machine.DisplayHeight; y++ {
		for x := 0; x < machine.DisplayWidth; x++ {
			if frame.Pixel(x, y) {
				buf.WriteString(pixelOn)
			} else {
				buf.WriteString(pixelOff)
			}
		}
		buf.WriteString("\r\n")
	}
	if _, err := tm.Print(buf.String()); err != nil {
		return fmt.Errorf("printing display: %w", err)
	}

	for _, line := range DebugText(frame.Debug) {
		if _, err := tm.Print(tm.ResetLine(line) + "\r\n"); err != nil {
			return fmt.Errorf("printing debug overlay: %w", err)
		}
	}

	if frame.Sound && !t.sound {
		if _, err := tm.Print("\a"); err != nil {
			return fmt.Errorf("ringing bell: %w", err)
		}
	}
	t.sound = frame.Sound

	tm.Flush()
	return nil
}

// Poll forwards all keys read since the last poll and releases keys whose
// hold time expired. Escape requests to quit, backspace resets the machine.
func (t *Terminal) Poll(keys emulator.Controls) (bool, error) {
	now := time.Now()

	for {
		var b byte
		select {
		case b = <-t.input:
		default:
			return false, t.releaseKeys(keys, now)
		}

		switch b {
		case keyEscape:
			return true, nil
		case keyBackspace, keyCtrlH:
			keys.Reset()
			clear(t.held)
			continue
		}

		index, ok := KeyIndex(rune(b))
		if !ok {
			continue
		}
		if _, pressed := t.held[index]; !pressed {
			if err := keys.SetKey(index, true); err != nil {
				return false, err
			}
		}
		t.held[index] = now.Add(keyHoldDuration)
	}
}

func (t *Terminal) releaseKeys(keys emulator.Controls, now time.Time) error {
	for index, deadline := range t.held {
		if now.Before(deadline) {
			continue
		}
		if err := keys.SetKey(index, false); err != nil {
			return err
		}
		delete(t.held, index)
	}
	return nil
}

// Close stops reading input and restores the terminal mode.
func (t *Terminal) Close() error {
	close(t.done)
	t.wg.Wait()

	if _, err := tm.Print("\r\n"); err == nil {
		tm.Flush()
	}
	if err := t.restore(); err != nil {
		return fmt.Errorf("restoring terminal mode: %w", err)
	}
	return nil
}
