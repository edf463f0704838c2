// Package disasm renders CHIP-8 instruction words as assembly text.
// Instruction names are taken from the retrogolib CHIP-8 opcode table,
// operands from the decoded instruction fields.
package disasm

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/retroenv/chip8vm/internal/decoder"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Format returns the assembly form of an instruction word, for example
// "drw V1, V2, $5". Words without an instruction are rendered as a data
// directive.
func Format(word uint16) string {
	in := decoder.Decode(word)
	if in.Kind == decoder.KindNOP {
		return fmt.Sprintf(".word $%04X", word)
	}

	name := Name(in)
	if params := formatInstruction(in); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

// Name returns the lowercase instruction name of a decoded instruction.
func Name(in decoder.Instruction) string {
	if op, ok := lookupOpcode(in.Opcode); ok {
		return op.Instruction.Name
	}
	// the opcode table has no entry for machine code calls
	form := in.Kind.String()
	if i := strings.IndexByte(form, ' '); i > 0 {
		form = form[:i]
	}
	return strings.ToLower(form)
}

// lookupOpcode returns the opcode table entry that matches the word. If
// multiple entries match, the one with the most specific mask wins.
func lookupOpcode(word uint16) (chip8.Opcode, bool) {
	firstNibble := (word & 0xF000) >> 12

	var opcode chip8.Opcode
	maskBits := -1
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&word != op.Info.Value || op.Instruction == nil {
			continue
		}
		if n := bits.OnesCount16(op.Info.Mask); n > maskBits {
			opcode = op
			maskBits = n
		}
	}
	return opcode, maskBits >= 0
}

// formatInstruction formats the parameters of an instruction.
func formatInstruction(in decoder.Instruction) string {
	switch in.Kind {
	case decoder.KindCLS, decoder.KindRET:
		return "" // No parameters

	case decoder.KindSYS, decoder.KindJP, decoder.KindCALL:
		return fmt.Sprintf("$%03X", in.NNN)

	case decoder.KindJPV0:
		return fmt.Sprintf("V0, $%03X", in.NNN)

	case decoder.KindSEImm, decoder.KindSNEImm, decoder.KindLDImm, decoder.KindADDImm, decoder.KindRND:
		return fmt.Sprintf("V%X, $%02X", in.X, in.NN)

	case decoder.KindSEReg, decoder.KindSNEReg, decoder.KindLDReg, decoder.KindADDReg,
		decoder.KindOR, decoder.KindAND, decoder.KindXOR, decoder.KindSUB, decoder.KindSUBN:
		return fmt.Sprintf("V%X, V%X", in.X, in.Y)

	case decoder.KindSHR, decoder.KindSHL, decoder.KindSKP, decoder.KindSKNP:
		return fmt.Sprintf("V%X", in.X)

	case decoder.KindLDI:
		return fmt.Sprintf("I, $%03X", in.NNN)

	case decoder.KindDRW:
		return fmt.Sprintf("V%X, V%X, $%X", in.X, in.Y, in.N)

	default:
		return formatTimerAndMemory(in)
	}
}

// formatTimerAndMemory formats the FX group of instructions.
func formatTimerAndMemory(in decoder.Instruction) string {
	switch in.Kind {
	case decoder.KindLDVxDT:
		return fmt.Sprintf("V%X, DT", in.X)
	case decoder.KindLDVxK:
		return fmt.Sprintf("V%X, K", in.X)
	case decoder.KindLDDTVx:
		return fmt.Sprintf("DT, V%X", in.X)
	case decoder.KindLDSTVx:
		return fmt.Sprintf("ST, V%X", in.X)
	case decoder.KindADDIVx:
		return fmt.Sprintf("I, V%X", in.X)
	case decoder.KindLDFVx:
		return fmt.Sprintf("F, V%X", in.X)
	case decoder.KindLDBVx:
		return fmt.Sprintf("B, V%X", in.X)
	case decoder.KindLDIVx:
		return fmt.Sprintf("[I], V%X", in.X)
	case decoder.KindLDVxI:
		return fmt.Sprintf("V%X, [I]", in.X)
	}
	return ""
}
