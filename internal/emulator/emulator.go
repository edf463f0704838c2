// Package emulator schedules the CHIP-8 cycle driver for a host frontend.
//
// The machine state is owned by an Emulator and guarded by a single mutex.
// Instruction steps, timer ticks, key writes and snapshots each take the
// lock, so observers never see the effects of a partially executed
// instruction.
package emulator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/disasm"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// DefaultSpeed is the default number of executed instructions per second.
const DefaultSpeed = 500

// Config of the emulator.
type Config struct {
	Speed       int    // instructions per second, 0 or less runs unthrottled
	TimerMode   string // options.TimerModeCycle or options.TimerMode60Hz
	Trace       bool   // log every executed instruction
	MaxCycles   uint64 // stop after the number of instructions, 0 for no limit
	Breakpoints []uint16
	Seed        int64 // random number generator seed, 0 for time based
}

// BreakpointError is returned when execution reaches a breakpoint address.
// Stepping again executes the instruction at the breakpoint.
type BreakpointError struct {
	PC uint16
}

func (e *BreakpointError) Error() string {
	return fmt.Sprintf("breakpoint reached at $%03X", e.PC)
}

// ErrCycleLimit is returned when the configured maximum number of executed
// instructions has been reached.
var ErrCycleLimit = errors.New("cycle limit reached")

// Emulator runs a CHIP-8 machine.
type Emulator struct {
	logger *log.Logger
	cfg    Config

	mu          sync.Mutex
	state       *machine.State
	cycles      uint64
	breakpoints set.Set[uint16]
	resumed     bool // the breakpoint at the current PC was already reported
	reset       bool // the display has to be presented again after a reset
}

// New returns a new emulator with a fresh machine.
func New(logger *log.Logger, cfg Config) *Emulator {
	e := &Emulator{
		logger:      logger,
		cfg:         cfg,
		state:       machine.New(cfg.Seed),
		breakpoints: set.New[uint16](),
	}
	for _, address := range cfg.Breakpoints {
		e.breakpoints.Add(address)
	}
	return e
}

// Load copies the program into the machine memory.
func (e *Emulator) Load(program []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.state.Load(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	e.logger.Debug("Program loaded", log.Int("size", e.state.ProgramSize()), log.Hex("start", uint16(machine.ProgramStart)))
	return nil
}

// Reset restores the power-on state of the machine while keeping the loaded
// program. A halted machine can be run again after a reset. Frontends call
// it from Poll when the user presses the reset key.
func (e *Emulator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Reset()
	e.cycles = 0
	e.resumed = false
	e.reset = true
	e.logger.Info("Machine reset")
}

// takeReset returns whether a reset happened since the last call.
func (e *Emulator) takeReset() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	reset := e.reset
	e.reset = false
	return reset
}

// SetKey sets the pressed state of a key pad key. It is safe to call from
// any goroutine, the write is visible to the next executed instruction.
func (e *Emulator) SetKey(index uint8, pressed bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.state.SetKey(index, pressed); err != nil {
		return fmt.Errorf("setting key: %w", err)
	}
	return nil
}

// TickTimers decrements the delay and sound timer if they are nonzero.
func (e *Emulator) TickTimers() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.TickTimers()
}

// Step executes a single instruction. It returns a *BreakpointError before
// executing an instruction at a breakpoint address, ErrCycleLimit once the
// cycle limit is reached and a *cpu.ExecutionError if the instruction
// faulted.
func (e *Emulator) Step() (cpu.StepResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg.MaxCycles > 0 && e.cycles >= e.cfg.MaxCycles {
		return cpu.StepResult{}, ErrCycleLimit
	}

	pc := e.state.PC
	if e.breakpoints.Contains(pc) && !e.resumed && !e.state.Halted {
		e.resumed = true
		return cpu.StepResult{PC: pc}, &BreakpointError{PC: pc}
	}

	var result cpu.StepResult
	var err error
	if e.cfg.TimerMode == options.TimerMode60Hz {
		result, err = cpu.StepInstruction(e.state)
	} else {
		result, err = cpu.Step(e.state)
	}
	if err != nil {
		e.logFault(err)
		return result, err
	}

	e.cycles++
	if e.state.PC != pc {
		// waiting for a key or jumping to itself does not rearm the breakpoint
		e.resumed = false
	}
	if e.cfg.Trace {
		e.logger.Debug("Executed instruction",
			log.Hex("pc", result.PC),
			log.Hex("opcode", result.Instruction.Opcode),
			log.String("instruction", disasm.Format(result.Instruction.Opcode)))
	}
	return result, nil
}

func (e *Emulator) logFault(err error) {
	var execErr *cpu.ExecutionError
	if !errors.As(err, &execErr) {
		return
	}
	e.logger.Error("Instruction fault",
		log.Hex("pc", execErr.PC),
		log.Hex("opcode", execErr.Opcode),
		log.Stringer("instruction", execErr.Kind),
		log.Err(execErr.Err))
}
