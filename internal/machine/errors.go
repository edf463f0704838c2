package machine

import "errors"

var (
	// ErrEmptyProgram is returned when loading a program without any bytes.
	ErrEmptyProgram = errors.New("program is empty")
	// ErrProgramTooLarge is returned when a program does not fit into memory at ProgramStart.
	ErrProgramTooLarge = errors.New("program too large")

	// ErrAddressOutOfRange is returned when an instruction would access memory outside of [0, MemorySize).
	ErrAddressOutOfRange = errors.New("memory address out of range")
	// ErrIndexOutOfRange is returned when a register value used as a glyph or key index exceeds 0xF.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrStackOverflow is returned when calling a subroutine with 16 frames already on the stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned when returning from a subroutine with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrHalted is returned when stepping a machine that was halted by a fault.
	ErrHalted = errors.New("machine is halted")
)
