// Package decoder maps fetched CHIP-8 instruction words to instructions.
//
// Decoding is a two level table lookup. The top nibble selects an entry of
// the primary table. The nibbles 0x0, 0x8, 0xE and 0xF are ambiguous on
// their own and select a secondary table that is indexed by the low nibble
// or the low byte of the word. Secondary entries without an instruction
// decode to KindNOP.
package decoder

// Instruction is a decoded instruction word with its operand fields.
type Instruction struct {
	Kind   Kind
	Opcode uint16

	X   uint8  // register index from bits 8-11
	Y   uint8  // register index from bits 4-7
	N   uint8  // 4 bit immediate from bits 0-3
	NN  uint8  // 8 bit immediate from bits 0-7
	NNN uint16 // 12 bit address from bits 0-11
}

// group is a secondary decoding table for an ambiguous top nibble.
type group struct {
	byByte bool // index by the low byte instead of the low nibble
	kinds  [256]Kind
}

func (g *group) lookup(word uint16) Kind {
	if g.byByte {
		return g.kinds[word&0x00FF]
	}
	return g.kinds[word&0x000F]
}

var (
	primary [16]Kind
	groups  [16]*group
)

func init() {
	primary = [16]Kind{
		0x1: KindJP,
		0x2: KindCALL,
		0x3: KindSEImm,
		0x4: KindSNEImm,
		0x5: KindSEReg,
		0x6: KindLDImm,
		0x7: KindADDImm,
		0x9: KindSNEReg,
		0xA: KindLDI,
		0xB: KindJPV0,
		0xC: KindRND,
		0xD: KindDRW,
	}

	group0 := &group{byByte: true}
	for i := range group0.kinds {
		group0.kinds[i] = KindSYS
	}
	group0.kinds[0xE0] = KindCLS
	group0.kinds[0xEE] = KindRET

	group8 := &group{}
	group8.kinds[0x0] = KindLDReg
	group8.kinds[0x1] = KindOR
	group8.kinds[0x2] = KindAND
	group8.kinds[0x3] = KindXOR
	group8.kinds[0x4] = KindADDReg
	group8.kinds[0x5] = KindSUB
	group8.kinds[0x6] = KindSHR
	group8.kinds[0x7] = KindSUBN
	group8.kinds[0xE] = KindSHL

	groupE := &group{byByte: true}
	groupE.kinds[0x9E] = KindSKP
	groupE.kinds[0xA1] = KindSKNP

	groupF := &group{byByte: true}
	groupF.kinds[0x07] = KindLDVxDT
	groupF.kinds[0x0A] = KindLDVxK
	groupF.kinds[0x15] = KindLDDTVx
	groupF.kinds[0x18] = KindLDSTVx
	groupF.kinds[0x1E] = KindADDIVx
	groupF.kinds[0x29] = KindLDFVx
	groupF.kinds[0x33] = KindLDBVx
	groupF.kinds[0x55] = KindLDIVx
	groupF.kinds[0x65] = KindLDVxI

	groups[0x0] = group0
	groups[0x8] = group8
	groups[0xE] = groupE
	groups[0xF] = groupF
}

// Decode returns the instruction encoded by the given word. Decoding never
// fails, words without an assigned instruction decode to KindNOP.
func Decode(word uint16) Instruction {
	in := Instruction{
		Opcode: word,
		X:      uint8((word & 0x0F00) >> 8),
		Y:      uint8((word & 0x00F0) >> 4),
		N:      uint8(word & 0x000F),
		NN:     uint8(word & 0x00FF),
		NNN:    word & 0x0FFF,
	}

	nibble := word >> 12
	g := groups[nibble]
	switch {
	case g == nil:
		in.Kind = primary[nibble]
	case nibble == 0x0 && in.X != 0:
		// only 00E0 and 00EE are defined, every other 0NNN is a machine code call
		in.Kind = KindSYS
	default:
		in.Kind = g.lookup(word)
	}
	return in
}
