package emulator

import (
	"github.com/retroenv/chip8vm/internal/disasm"
	"github.com/retroenv/chip8vm/internal/machine"
)

// Snapshot is a consistent copy of the machine registers, taken between two
// instructions.
type Snapshot struct {
	PC     uint16
	I      uint16
	SP     uint8
	V      [machine.RegisterCount]uint8
	Stack  [machine.StackSize]uint16
	Opcode uint16 // last fetched instruction word

	DelayTimer uint8
	SoundTimer uint8

	Cycles uint64
	Halted bool
	Next   string // disassembly of the instruction at PC
}

// Frame is a copy of the display buffer to be presented by a frontend.
type Frame struct {
	Pixels []bool // row-major, machine.DisplayWidth * machine.DisplayHeight
	Sound  bool   // the sound timer is active
	Debug  Snapshot
}

// Pixel returns whether the pixel at the given position is lit.
func (f Frame) Pixel(x, y int) bool {
	return f.Pixels[y*machine.DisplayWidth+x]
}

// Snapshot returns a copy of the machine registers.
func (e *Emulator) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshot()
}

// Frame returns a copy of the display buffer together with the registers.
func (e *Emulator) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	pixels := make([]bool, machine.DisplaySize)
	copy(pixels, e.state.Display[:])

	return Frame{
		Pixels: pixels,
		Sound:  e.state.SoundTimer > 0,
		Debug:  e.snapshot(),
	}
}

func (e *Emulator) snapshot() Snapshot {
	s := e.state
	snap := Snapshot{
		PC:         s.PC,
		I:          s.I,
		SP:         s.SP,
		V:          s.V,
		Stack:      s.Stack,
		Opcode:     s.Opcode,
		DelayTimer: s.DelayTimer,
		SoundTimer: s.SoundTimer,
		Cycles:     e.cycles,
		Halted:     s.Halted,
	}
	if s.PC <= machine.LastFetchAddress {
		word := uint16(s.Memory[s.PC])<<8 | uint16(s.Memory[s.PC+1])
		snap.Next = disasm.Format(word)
	}
	return snap
}

func (e *Emulator) soundActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state.SoundTimer > 0
}
