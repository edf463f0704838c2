package decoder

// Kind identifies one of the CHIP-8 instructions.
type Kind uint8

// Instruction kinds. The comment of each kind shows its opcode pattern.
const (
	KindNOP Kind = iota // unassigned sub-opcode, executes as a no-op

	KindSYS     // 0NNN
	KindCLS     // 00E0
	KindRET     // 00EE
	KindJP      // 1NNN
	KindCALL    // 2NNN
	KindSEImm   // 3XNN
	KindSNEImm  // 4XNN
	KindSEReg   // 5XY0
	KindLDImm   // 6XNN
	KindADDImm  // 7XNN
	KindLDReg   // 8XY0
	KindOR      // 8XY1
	KindAND     // 8XY2
	KindXOR     // 8XY3
	KindADDReg  // 8XY4
	KindSUB     // 8XY5
	KindSHR     // 8XY6
	KindSUBN    // 8XY7
	KindSHL     // 8XYE
	KindSNEReg  // 9XY0
	KindLDI     // ANNN
	KindJPV0    // BNNN
	KindRND     // CXNN
	KindDRW     // DXYN
	KindSKP     // EX9E
	KindSKNP    // EXA1
	KindLDVxDT  // FX07
	KindLDVxK   // FX0A
	KindLDDTVx  // FX15
	KindLDSTVx  // FX18
	KindADDIVx  // FX1E
	KindLDFVx   // FX29
	KindLDBVx   // FX33
	KindLDIVx   // FX55
	KindLDVxI   // FX65

	kindCount
)

// InstructionCount is the number of defined instructions, excluding KindNOP.
const InstructionCount = int(kindCount) - 1

var kindNames = [kindCount]string{
	KindNOP:    "NOP",
	KindSYS:    "SYS addr",
	KindCLS:    "CLS",
	KindRET:    "RET",
	KindJP:     "JP addr",
	KindCALL:   "CALL addr",
	KindSEImm:  "SE Vx, byte",
	KindSNEImm: "SNE Vx, byte",
	KindSEReg:  "SE Vx, Vy",
	KindLDImm:  "LD Vx, byte",
	KindADDImm: "ADD Vx, byte",
	KindLDReg:  "LD Vx, Vy",
	KindOR:     "OR Vx, Vy",
	KindAND:    "AND Vx, Vy",
	KindXOR:    "XOR Vx, Vy",
	KindADDReg: "ADD Vx, Vy",
	KindSUB:    "SUB Vx, Vy",
	KindSHR:    "SHR Vx",
	KindSUBN:   "SUBN Vx, Vy",
	KindSHL:    "SHL Vx",
	KindSNEReg: "SNE Vx, Vy",
	KindLDI:    "LD I, addr",
	KindJPV0:   "JP V0, addr",
	KindRND:    "RND Vx, byte",
	KindDRW:    "DRW Vx, Vy, nibble",
	KindSKP:    "SKP Vx",
	KindSKNP:   "SKNP Vx",
	KindLDVxDT: "LD Vx, DT",
	KindLDVxK:  "LD Vx, K",
	KindLDDTVx: "LD DT, Vx",
	KindLDSTVx: "LD ST, Vx",
	KindADDIVx: "ADD I, Vx",
	KindLDFVx:  "LD F, Vx",
	KindLDBVx:  "LD B, Vx",
	KindLDIVx:  "LD [I], Vx",
	KindLDVxI:  "LD Vx, [I]",
}

// String returns the instruction form of the kind, for example "ADD Vx, Vy".
func (k Kind) String() string {
	if k >= kindCount {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// IsBranch returns whether the instruction may set the program counter to
// something other than the next instruction.
func (k Kind) IsBranch() bool {
	switch k {
	case KindJP, KindJPV0, KindCALL, KindRET,
		KindSEImm, KindSNEImm, KindSEReg, KindSNEReg,
		KindSKP, KindSKNP, KindLDVxK:
		return true
	default:
		return false
	}
}
