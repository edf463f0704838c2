package emulator

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// timerFrequency is the decrement rate of the timers in the 60hz timer mode.
const timerFrequency = 60

// Controls receives the user input of a frontend.
type Controls interface {
	// SetKey sets the pressed state of a key pad key.
	SetKey(index uint8, pressed bool) error
	// Reset restarts the loaded program.
	Reset()
}

// Frontend presents frames and captures input.
type Frontend interface {
	// Present renders the frame. It is called after every instruction that
	// modified the display and whenever the sound state changes.
	Present(frame Frame) error
	// Poll forwards pending input events to the controls and returns
	// whether the user requested to quit.
	Poll(controls Controls) (bool, error)
}

// Run steps the machine at the configured speed until the context is
// cancelled, the frontend requests to quit or stepping returns an error.
// Breakpoints, the cycle limit and faults are returned as errors, a
// *BreakpointError can be resumed by calling Run again.
func (e *Emulator) Run(ctx context.Context, frontend Frontend) error {
	var pace <-chan time.Time
	if e.cfg.Speed > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(e.cfg.Speed))
		defer ticker.Stop()
		pace = ticker.C
	}

	var timers <-chan time.Time
	if e.cfg.TimerMode == options.TimerMode60Hz {
		ticker := time.NewTicker(time.Second / timerFrequency)
		defer ticker.Stop()
		timers = ticker.C
	}

	if err := frontend.Present(e.Frame()); err != nil {
		return fmt.Errorf("presenting frame: %w", err)
	}
	sound := e.soundActive()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		quit, err := frontend.Poll(e)
		if err != nil {
			return fmt.Errorf("polling input: %w", err)
		}
		if quit {
			e.logger.Info("Quit requested")
			return nil
		}

		select {
		case <-timers:
			e.TickTimers()
		default:
		}

		result, err := e.Step()
		if err != nil {
			return err
		}

		soundNow := e.soundActive()
		reset := e.takeReset()
		if result.Drew || soundNow != sound || reset {
			sound = soundNow
			if err := frontend.Present(e.Frame()); err != nil {
				return fmt.Errorf("presenting frame: %w", err)
			}
		}

		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace:
			}
		}
	}
}

// LogState logs the registers of the machine, used after a halt or when a
// breakpoint is reached.
func (e *Emulator) LogState(msg string) {
	snap := e.Snapshot()
	e.logger.Info(msg,
		log.Hex("pc", snap.PC),
		log.Hex("i", snap.I),
		log.Uint8("sp", snap.SP),
		log.Uint8("dt", snap.DelayTimer),
		log.Uint8("st", snap.SoundTimer),
		log.String("v", fmt.Sprintf("% X", snap.V[:])),
		log.String("next", snap.Next))
}
