// Package cpu implements the CHIP-8 instruction set and the
// fetch-decode-execute cycle driver.
package cpu

import (
	"errors"
	"fmt"

	"github.com/retroenv/chip8vm/internal/decoder"
	"github.com/retroenv/chip8vm/internal/machine"
)

// ExecutionError is returned when an instruction faults. The machine is
// halted afterwards until it is reset, its program counter is left at the
// faulting instruction.
type ExecutionError struct {
	PC     uint16 // address of the faulting instruction
	Opcode uint16
	Kind   decoder.Kind
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.Kind == decoder.KindNOP {
		// no-ops can not fault, the fetch itself failed
		return fmt.Sprintf("fetching instruction at $%04X: %v", e.PC, e.Err)
	}
	return fmt.Sprintf("executing %s (opcode $%04X) at $%03X: %v", e.Kind, e.Opcode, e.PC, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// StepResult describes the instruction that a Step executed.
type StepResult struct {
	PC          uint16 // address the instruction was fetched from
	Instruction decoder.Instruction
	Drew        bool // the display buffer was modified
}

// Step runs one fetch-decode-execute cycle and then decrements both timers
// if they are nonzero.
func Step(s *machine.State) (StepResult, error) {
	return step(s, true)
}

// StepInstruction runs one fetch-decode-execute cycle without touching the
// timers, for hosts that tick the timers at an independent rate.
func StepInstruction(s *machine.State) (StepResult, error) {
	return step(s, false)
}

func step(s *machine.State, tickTimers bool) (StepResult, error) {
	if s.Halted {
		return StepResult{}, machine.ErrHalted
	}

	pc := s.PC
	if pc > machine.LastFetchAddress {
		return StepResult{PC: pc}, halt(s, pc, decoder.Instruction{}, machine.ErrAddressOutOfRange)
	}

	s.Opcode = uint16(s.Memory[pc])<<8 | uint16(s.Memory[pc+1])
	s.PC += 2

	in := decoder.Decode(s.Opcode)
	result := StepResult{
		PC:          pc,
		Instruction: in,
		Drew:        in.Kind == decoder.KindCLS || in.Kind == decoder.KindDRW,
	}

	if err := checkNext(s, in); err != nil {
		return result, halt(s, pc, in, err)
	}
	if err := Execute(s, in); err != nil {
		return result, halt(s, pc, in, err)
	}

	if tickTimers {
		s.TickTimers()
	}
	return result, nil
}

// checkNext faults instructions that continue with, or return to, the
// following instruction when it lies beyond the last fetchable address.
// Jumps and returns replace the program counter and are checked on execution.
func checkNext(s *machine.State, in decoder.Instruction) error {
	switch in.Kind {
	case decoder.KindJP, decoder.KindJPV0, decoder.KindRET:
		return nil
	}
	if s.PC > machine.LastFetchAddress {
		return fmt.Errorf("%w: next instruction at $%04X", machine.ErrAddressOutOfRange, s.PC)
	}
	return nil
}

// halt stops the machine with the program counter pointing at the faulting
// instruction.
func halt(s *machine.State, pc uint16, in decoder.Instruction, err error) error {
	s.PC = pc
	s.Halted = true
	return &ExecutionError{
		PC:     pc,
		Opcode: in.Opcode,
		Kind:   in.Kind,
		Err:    err,
	}
}

// IsFault returns whether the error was caused by a faulting instruction.
func IsFault(err error) bool {
	var execErr *ExecutionError
	return errors.As(err, &execErr)
}
