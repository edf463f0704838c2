package disasm

import (
	"github.com/retroenv/chip8vm/internal/decoder"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Instruction is a decoded instruction together with its entry in the
// retrogolib CHIP-8 instruction table, used for control flow analysis.
type Instruction struct {
	decoder.Instruction

	ins *chip8.Instruction
}

// NewInstruction decodes an instruction word.
func NewInstruction(word uint16) Instruction {
	i := Instruction{
		Instruction: decoder.Decode(word),
	}
	if op, ok := lookupOpcode(word); ok {
		i.ins = op.Instruction
	}
	return i
}

// IsCall returns true if the instruction is a call instruction.
func (i Instruction) IsCall() bool {
	return i.Kind == decoder.KindCALL
}

// IsJump returns true if the instruction is a jump to a fixed address.
// Jumps relative to V0 have no static target.
func (i Instruction) IsJump() bool {
	return i.Kind == decoder.KindJP
}

// IsReturn returns true if the instruction is a return instruction.
func (i Instruction) IsReturn() bool {
	return i.Kind == decoder.KindRET
}

// IsSkip returns true if the instruction is a conditional skip instruction.
func (i Instruction) IsSkip() bool {
	if i.ins == nil {
		return false
	}
	return chip8.SkipInstructions.Contains(i.ins.Name)
}

// IsDataReference returns true if the instruction loads an address into the
// index register.
func (i Instruction) IsDataReference() bool {
	return i.Kind == decoder.KindLDI
}
