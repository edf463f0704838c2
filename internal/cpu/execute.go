package cpu

import (
	"fmt"

	"github.com/retroenv/chip8vm/internal/decoder"
	"github.com/retroenv/chip8vm/internal/machine"
)

// Execute performs the state transition of a single decoded instruction.
// The program counter is expected to already point to the next instruction.
// On error the state is left unchanged, every program counter an instruction
// produces is checked to be fetchable before it is set.
func Execute(s *machine.State, in decoder.Instruction) error {
	vx := s.V[in.X]
	vy := s.V[in.Y]

	switch in.Kind {
	case decoder.KindNOP, decoder.KindSYS:

	// 00E0 CLS
	case decoder.KindCLS:
		s.ClearDisplay()

	// 00EE RET
	case decoder.KindRET:
		address, err := s.Pop()
		if err != nil {
			return err
		}
		s.PC = address

	// 1NNN JP addr
	case decoder.KindJP:
		return jump(s, in.NNN)

	// 2NNN CALL addr
	case decoder.KindCALL:
		if err := checkTarget(in.NNN); err != nil {
			return err
		}
		if err := s.Push(s.PC); err != nil {
			return err
		}
		s.PC = in.NNN

	// 3XNN SE Vx, byte
	case decoder.KindSEImm:
		return skipIf(s, vx == in.NN)

	// 4XNN SNE Vx, byte
	case decoder.KindSNEImm:
		return skipIf(s, vx != in.NN)

	// 5XY0 SE Vx, Vy
	case decoder.KindSEReg:
		return skipIf(s, vx == vy)

	// 9XY0 SNE Vx, Vy
	case decoder.KindSNEReg:
		return skipIf(s, vx != vy)

	// 6XNN LD Vx, byte
	case decoder.KindLDImm:
		s.V[in.X] = in.NN

	// 7XNN ADD Vx, byte, no carry flag
	case decoder.KindADDImm:
		s.V[in.X] = vx + in.NN

	// 8XY0 LD Vx, Vy
	case decoder.KindLDReg:
		s.V[in.X] = vy

	// 8XY1 OR Vx, Vy
	case decoder.KindOR:
		s.V[in.X] = vx | vy

	// 8XY2 AND Vx, Vy
	case decoder.KindAND:
		s.V[in.X] = vx & vy

	// 8XY3 XOR Vx, Vy
	case decoder.KindXOR:
		s.V[in.X] = vx ^ vy

	// 8XY4 ADD Vx, Vy, VF = carry
	case decoder.KindADDReg:
		sum := uint16(vx) + uint16(vy)
		s.V[in.X] = uint8(sum)
		s.V[machine.FlagRegister] = flag(sum > 0xFF)

	// 8XY5 SUB Vx, Vy, VF = not borrow
	case decoder.KindSUB:
		s.V[in.X] = vx - vy
		s.V[machine.FlagRegister] = flag(vx > vy)

	// 8XY7 SUBN Vx, Vy, Vx = Vy - Vx, VF = not borrow
	case decoder.KindSUBN:
		s.V[in.X] = vy - vx
		s.V[machine.FlagRegister] = flag(vy > vx)

	// 8XY6 SHR Vx, VF = shifted out bit
	case decoder.KindSHR:
		s.V[in.X] = vx >> 1
		s.V[machine.FlagRegister] = vx & 0x01

	// 8XYE SHL Vx, VF = shifted out bit
	case decoder.KindSHL:
		s.V[in.X] = vx << 1
		s.V[machine.FlagRegister] = (vx & 0x80) >> 7

	// ANNN LD I, addr
	case decoder.KindLDI:
		s.I = in.NNN

	// BNNN JP V0, addr
	case decoder.KindJPV0:
		return jump(s, in.NNN+uint16(s.V[0]))

	// CXNN RND Vx, byte
	case decoder.KindRND:
		s.V[in.X] = s.RandomByte() & in.NN

	// DXYN DRW Vx, Vy, nibble
	case decoder.KindDRW:
		return draw(s, vx, vy, in.N)

	// EX9E SKP Vx
	case decoder.KindSKP:
		if err := checkKey(vx); err != nil {
			return err
		}
		return skipIf(s, s.Keys[vx])

	// EXA1 SKNP Vx
	case decoder.KindSKNP:
		if err := checkKey(vx); err != nil {
			return err
		}
		return skipIf(s, !s.Keys[vx])

	// FX07 LD Vx, DT
	case decoder.KindLDVxDT:
		s.V[in.X] = s.DelayTimer

	// FX0A LD Vx, K
	case decoder.KindLDVxK:
		waitKey(s, in.X)

	// FX15 LD DT, Vx
	case decoder.KindLDDTVx:
		s.DelayTimer = vx

	// FX18 LD ST, Vx
	case decoder.KindLDSTVx:
		s.SoundTimer = vx

	// FX1E ADD I, Vx
	case decoder.KindADDIVx:
		address := s.I + uint16(vx)
		if address >= machine.MemorySize {
			return fmt.Errorf("%w: I=$%03X+$%02X", machine.ErrAddressOutOfRange, s.I, vx)
		}
		s.I = address

	// FX29 LD F, Vx
	case decoder.KindLDFVx:
		if vx > 0xF {
			return fmt.Errorf("%w: glyph $%02X", machine.ErrIndexOutOfRange, vx)
		}
		s.I = machine.GlyphStart + machine.GlyphSize*uint16(vx)

	// FX33 LD B, Vx
	case decoder.KindLDBVx:
		return storeBCD(s, vx)

	// FX55 LD [I], Vx
	case decoder.KindLDIVx:
		return storeRegisters(s, in.X)

	// FX65 LD Vx, [I]
	case decoder.KindLDVxI:
		return loadRegisters(s, in.X)

	default:
		return fmt.Errorf("unsupported instruction kind %d", in.Kind)
	}

	return nil
}

// jump sets the program counter to target. Targets that no instruction can
// be fetched from fault at the jump instead of at the next fetch.
func jump(s *machine.State, target uint16) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	s.PC = target
	return nil
}

func checkTarget(target uint16) error {
	if target > machine.LastFetchAddress {
		return fmt.Errorf("%w: jump target $%04X", machine.ErrAddressOutOfRange, target)
	}
	return nil
}

// skipIf skips the next instruction if the condition holds.
func skipIf(s *machine.State, condition bool) error {
	if !condition {
		return nil
	}
	if s.PC+2 > machine.LastFetchAddress {
		return fmt.Errorf("%w: skip target $%04X", machine.ErrAddressOutOfRange, s.PC+2)
	}
	s.PC += 2
	return nil
}

func flag(set bool) uint8 {
	if set {
		return 1
	}
	return 0
}

func checkKey(key uint8) error {
	if int(key) >= machine.KeyCount {
		return fmt.Errorf("%w: key $%02X", machine.ErrIndexOutOfRange, key)
	}
	return nil
}

// waitKey stores the lowest pressed key into Vx. Without a pressed key the
// program counter is moved back so that the instruction is fetched again by
// the next cycle.
func waitKey(s *machine.State, x uint8) {
	for key, pressed := range s.Keys {
		if pressed {
			s.V[x] = uint8(key)
			return
		}
	}
	s.PC -= 2
}

// storeBCD writes the hundreds, tens and ones digit of value to I, I+1 and I+2.
func storeBCD(s *machine.State, value uint8) error {
	if err := s.CheckRange(s.I, 3); err != nil {
		return err
	}
	s.Memory[s.I] = value / 100
	s.Memory[s.I+1] = value / 10 % 10
	s.Memory[s.I+2] = value % 10
	return nil
}

func storeRegisters(s *machine.State, x uint8) error {
	count := int(x) + 1
	if err := s.CheckRange(s.I, count); err != nil {
		return err
	}
	copy(s.Memory[s.I:int(s.I)+count], s.V[:count])
	return nil
}

func loadRegisters(s *machine.State, x uint8) error {
	count := int(x) + 1
	if err := s.CheckRange(s.I, count); err != nil {
		return err
	}
	copy(s.V[:count], s.Memory[s.I:int(s.I)+count])
	return nil
}
