// Package machine contains the CHIP-8 machine state: registers, memory,
// stack, timers, display buffer and key pad.
//
// The state has no behavior beyond bookkeeping helpers that keep its
// invariants; instruction semantics live in the cpu package.
package machine

import (
	"fmt"
	"math/rand"
	"time"
)

// State is the complete mutable state of a CHIP-8 machine.
type State struct {
	V      [RegisterCount]uint8 // general purpose registers V0-VF
	Memory [MemorySize]uint8
	I      uint16 // index register, 12 bits significant
	PC     uint16
	Stack  [StackSize]uint16
	SP     uint8 // number of return addresses on the stack

	DelayTimer uint8
	SoundTimer uint8

	Display [DisplaySize]bool // row-major, true is a lit pixel
	Keys    [KeyCount]bool

	Opcode uint16 // last fetched instruction word
	Halted bool   // set when an instruction faulted

	seed    int64
	rng     *rand.Rand
	program []byte
}

// New returns a freshly initialized machine. A seed of 0 seeds the random
// generator from the current time.
func New(seed int64) *State {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &State{
		seed: seed,
	}
	s.Reset()
	return s
}

// Reset returns the machine to its power-on state. A previously loaded
// program is copied into memory again so that the session can restart
// after a fault.
func (s *State) Reset() {
	*s = State{
		seed:    s.seed,
		program: s.program,
	}
	copy(s.Memory[GlyphStart:], Glyphs[:])
	copy(s.Memory[ProgramStart:], s.program)
	s.PC = ProgramStart
	s.rng = rand.New(rand.NewSource(s.seed))
}

// Load copies the program into memory starting at ProgramStart and clears
// the rest of the program area. Nothing is written if the program is empty
// or does not fit into memory.
func (s *State) Load(program []byte) error {
	if len(program) == 0 {
		return ErrEmptyProgram
	}
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	s.program = make([]byte, len(program))
	copy(s.program, program)
	clear(s.Memory[ProgramStart:])
	copy(s.Memory[ProgramStart:], s.program)
	return nil
}

// ProgramSize returns the size of the loaded program in bytes.
func (s *State) ProgramSize() int {
	return len(s.program)
}

// CheckRange returns an error if the length bytes starting at address are
// not all inside of memory.
func (s *State) CheckRange(address uint16, length int) error {
	if length <= 0 {
		return nil
	}
	if int(address)+length > MemorySize {
		return fmt.Errorf("%w: $%03X+%d", ErrAddressOutOfRange, address, length)
	}
	return nil
}

// Push pushes a return address onto the stack.
func (s *State) Push(address uint16) error {
	if int(s.SP) >= StackSize {
		return fmt.Errorf("%w: %d frames", ErrStackOverflow, s.SP)
	}
	s.Stack[s.SP] = address
	s.SP++
	return nil
}

// Pop removes the most recent return address from the stack.
func (s *State) Pop() (uint16, error) {
	if s.SP == 0 {
		return 0, ErrStackUnderflow
	}
	s.SP--
	return s.Stack[s.SP], nil
}

// RandomByte returns a uniformly distributed random byte.
func (s *State) RandomByte() uint8 {
	return uint8(s.rng.Intn(256))
}

// TickTimers decrements each nonzero timer by one.
func (s *State) TickTimers() {
	if s.DelayTimer > 0 {
		s.DelayTimer--
	}
	if s.SoundTimer > 0 {
		s.SoundTimer--
	}
}

// SetKey sets the pressed state of a key pad key.
func (s *State) SetKey(index uint8, pressed bool) error {
	if int(index) >= KeyCount {
		return fmt.Errorf("%w: key $%X", ErrIndexOutOfRange, index)
	}
	s.Keys[index] = pressed
	return nil
}

// ClearDisplay turns all pixels off.
func (s *State) ClearDisplay() {
	s.Display = [DisplaySize]bool{}
}

// Pixel returns whether the pixel at the given coordinates is lit.
// Coordinates wrap around the display edges.
func (s *State) Pixel(x, y int) bool {
	return s.Display[pixelIndex(x, y)]
}

// TogglePixel flips the pixel at the given coordinates and returns whether
// it was lit before. Coordinates wrap around the display edges.
func (s *State) TogglePixel(x, y int) bool {
	i := pixelIndex(x, y)
	wasOn := s.Display[i]
	s.Display[i] = !wasOn
	return wasOn
}

func pixelIndex(x, y int) int {
	x %= DisplayWidth
	if x < 0 {
		x += DisplayWidth
	}
	y %= DisplayHeight
	if y < 0 {
		y += DisplayHeight
	}
	return y*DisplayWidth + x
}
