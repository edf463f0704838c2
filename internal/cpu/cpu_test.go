package cpu

import (
	"errors"
	"testing"

	"github.com/retroenv/chip8vm/internal/decoder"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/retrogolib/assert"
)

// newState returns a machine with the given instruction words loaded.
func newState(t *testing.T, words ...uint16) *machine.State {
	t.Helper()

	program := make([]byte, 0, 2*len(words))
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}

	s := machine.New(1)
	assert.NoError(t, s.Load(program))
	return s
}

func steps(t *testing.T, s *machine.State, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		_, err := Step(s)
		assert.NoError(t, err)
	}
}

func TestStep_FetchAdvancesPC(t *testing.T) {
	s := newState(t, 0x6A42)

	result, err := Step(s)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x200), result.PC)
	assert.Equal(t, decoder.KindLDImm, result.Instruction.Kind)
	assert.False(t, result.Drew)
	assert.Equal(t, uint16(0x202), s.PC)
	assert.Equal(t, uint16(0x6A42), s.Opcode)
	assert.Equal(t, uint8(0x42), s.V[0xA])
}

func TestStep_UnassignedWordIsNOP(t *testing.T) {
	s := newState(t, 0x8008, 0xE000, 0xF0FF)
	before := s.V

	steps(t, s, 3)
	assert.Equal(t, uint16(0x206), s.PC)
	assert.Equal(t, before, s.V)
	assert.False(t, s.Halted)
}

func TestStep_SystemCallIsNOP(t *testing.T) {
	s := newState(t, 0x0123)

	steps(t, s, 1)
	assert.Equal(t, uint16(0x202), s.PC)
	assert.Equal(t, uint8(0), s.SP)
}

func TestClearDisplay(t *testing.T) {
	s := newState(t, 0x00E0)
	s.Display[5] = true

	result, err := Step(s)
	assert.NoError(t, err)
	assert.True(t, result.Drew)
	assert.False(t, s.Display[5])
}

func TestJumps(t *testing.T) {
	t.Run("JP", func(t *testing.T) {
		s := newState(t, 0x1345)
		steps(t, s, 1)
		assert.Equal(t, uint16(0x345), s.PC)
	})

	t.Run("JP V0", func(t *testing.T) {
		s := newState(t, 0x6010, 0xB300)
		steps(t, s, 2)
		assert.Equal(t, uint16(0x310), s.PC)
	})

	t.Run("CALL and RET", func(t *testing.T) {
		// 200: CALL 206, 202: LD V1 7, 204: JP 204, 206: LD V0 9, 208: RET
		s := newState(t, 0x2206, 0x6107, 0x1204, 0x6009, 0x00EE)
		steps(t, s, 1)
		assert.Equal(t, uint16(0x206), s.PC)
		assert.Equal(t, uint8(1), s.SP)
		assert.Equal(t, uint16(0x202), s.Stack[0])

		steps(t, s, 3)
		assert.Equal(t, uint16(0x204), s.PC)
		assert.Equal(t, uint8(0), s.SP)
		assert.Equal(t, uint8(9), s.V[0])
		assert.Equal(t, uint8(7), s.V[1])
	})
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *machine.State)
		word  uint16
		skip  bool
	}{
		{"SE byte equal", func(s *machine.State) { s.V[2] = 0x33 }, 0x3233, true},
		{"SE byte different", func(s *machine.State) { s.V[2] = 0x34 }, 0x3233, false},
		{"SNE byte equal", func(s *machine.State) { s.V[2] = 0x33 }, 0x4233, false},
		{"SNE byte different", func(s *machine.State) { s.V[2] = 0x34 }, 0x4233, true},
		{"SE reg equal", func(s *machine.State) { s.V[1], s.V[2] = 5, 5 }, 0x5120, true},
		{"SE reg different", func(s *machine.State) { s.V[1], s.V[2] = 5, 6 }, 0x5120, false},
		{"SNE reg equal", func(s *machine.State) { s.V[1], s.V[2] = 5, 5 }, 0x9120, false},
		{"SNE reg different", func(s *machine.State) { s.V[1], s.V[2] = 5, 6 }, 0x9120, true},
		{"SKP pressed", func(s *machine.State) { s.V[3], s.Keys[0xA] = 0xA, true }, 0xE39E, true},
		{"SKP released", func(s *machine.State) { s.V[3] = 0xA }, 0xE39E, false},
		{"SKNP pressed", func(s *machine.State) { s.V[3], s.Keys[0xA] = 0xA, true }, 0xE3A1, false},
		{"SKNP released", func(s *machine.State) { s.V[3] = 0xA }, 0xE3A1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, tt.word)
			tt.setup(s)
			steps(t, s, 1)

			expected := uint16(0x202)
			if tt.skip {
				expected = 0x204
			}
			assert.Equal(t, expected, s.PC)
		})
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		vx, vy uint8
		word   uint16
		result uint8
		vf     uint8
	}{
		{"LD", 1, 2, 0x8120, 2, 0},
		{"OR", 0xF0, 0x0F, 0x8121, 0xFF, 0},
		{"AND", 0xF3, 0x3F, 0x8122, 0x33, 0},
		{"XOR", 0xFF, 0x0F, 0x8123, 0xF0, 0},
		{"ADD no carry", 10, 20, 0x8124, 30, 0},
		{"ADD carry", 250, 10, 0x8124, 4, 1},
		{"SUB no borrow", 10, 3, 0x8125, 7, 1},
		{"SUB borrow", 3, 10, 0x8125, 249, 0},
		{"SUB equal", 5, 5, 0x8125, 0, 0},
		{"SUBN no borrow", 3, 10, 0x8127, 7, 1},
		{"SUBN borrow", 10, 3, 0x8127, 249, 0},
		{"SHR odd", 0x05, 0, 0x8126, 0x02, 1},
		{"SHR even", 0x04, 0, 0x8126, 0x02, 0},
		{"SHL high bit", 0x81, 0, 0x812E, 0x02, 1},
		{"SHL no high bit", 0x41, 0, 0x812E, 0x82, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, tt.word)
			s.V[1] = tt.vx
			s.V[2] = tt.vy
			s.V[machine.FlagRegister] = 0xAA

			steps(t, s, 1)
			assert.Equal(t, tt.result, s.V[1])
			assert.Equal(t, tt.vy, s.V[2])
			if tt.word&0x000F >= 0x4 {
				assert.Equal(t, tt.vf, s.V[machine.FlagRegister])
			} else {
				assert.Equal(t, uint8(0xAA), s.V[machine.FlagRegister])
			}
		})
	}
}

func TestArithmetic_FlagRegisterOperand(t *testing.T) {
	// the flag is written after the result, so VF holds the flag
	s := newState(t, 0x8F14)
	s.V[0xF] = 250
	s.V[1] = 10

	steps(t, s, 1)
	assert.Equal(t, uint8(1), s.V[0xF])
}

func TestArithmetic_FlagRegisterResult(t *testing.T) {
	tests := []struct {
		name string
		word uint16
		vf   uint8 // operand value of VF
		v1   uint8
		flag uint8
	}{
		{"SUB VF, V1", 0x8F15, 10, 3, 1},
		{"SUB VF, V1 borrow", 0x8F15, 3, 10, 0},
		{"SUBN VF, V1", 0x8F17, 3, 10, 1},
		{"SUBN VF, V1 borrow", 0x8F17, 10, 3, 0},
		{"SHR VF odd", 0x8FF6, 0x03, 0, 1},
		{"SHR VF even", 0x8FF6, 0x02, 0, 0},
		{"SHL VF high bit", 0x8F0E, 0x80, 0, 1},
		{"SHL VF no high bit", 0x8F0E, 0x7F, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, tt.word)
			s.V[machine.FlagRegister] = tt.vf
			s.V[1] = tt.v1

			steps(t, s, 1)
			assert.Equal(t, tt.flag, s.V[machine.FlagRegister])
		})
	}
}

func TestKeySkips_IndexOutOfRange(t *testing.T) {
	for _, word := range []uint16{0xE09E, 0xE0A1} {
		s := newState(t, word)
		s.V[0] = 0x10

		_, err := Step(s)
		assert.True(t, errors.Is(err, machine.ErrIndexOutOfRange))
		assert.ErrorContains(t, err, "key $10")
		assert.True(t, s.Halted)
		assert.Equal(t, uint16(0x200), s.PC)
	}
}

func TestImmediates(t *testing.T) {
	s := newState(t, 0x6AFF, 0x7A02, 0xA123, 0xC50F)
	s.V[machine.FlagRegister] = 0x55

	steps(t, s, 2)
	assert.Equal(t, uint8(0x01), s.V[0xA])
	assert.Equal(t, uint8(0x55), s.V[machine.FlagRegister])

	steps(t, s, 1)
	assert.Equal(t, uint16(0x123), s.I)

	steps(t, s, 1)
	assert.Equal(t, uint8(0), s.V[5]&0xF0)
}

func TestRandom_Seeded(t *testing.T) {
	a := newState(t, 0xC0FF, 0xC1FF, 0xC2FF)
	b := newState(t, 0xC0FF, 0xC1FF, 0xC2FF)

	steps(t, a, 3)
	steps(t, b, 3)
	assert.Equal(t, a.V, b.V)
}

func TestDraw(t *testing.T) {
	// LD I glyph 0, LD V0 0, DRW V0 V0 5, DRW V0 V0 5
	s := newState(t, 0xA050, 0x6000, 0xD005, 0xD005)

	steps(t, s, 2)
	result, err := Step(s)
	assert.NoError(t, err)
	assert.True(t, result.Drew)
	assert.Equal(t, uint8(0), s.V[machine.FlagRegister])

	// glyph 0 top row is 0xF0
	for x := 0; x < 4; x++ {
		assert.True(t, s.Pixel(x, 0))
	}
	assert.False(t, s.Pixel(4, 0))
	assert.True(t, s.Pixel(0, 1))
	assert.False(t, s.Pixel(1, 1))

	steps(t, s, 1)
	assert.Equal(t, uint8(1), s.V[machine.FlagRegister])
	for _, pixel := range s.Display {
		assert.False(t, pixel)
	}
}

func TestDraw_Wraps(t *testing.T) {
	// LD I 300, LD V1 62, LD V2 31, DRW V1 V2 2
	s := newState(t, 0xA300, 0x613E, 0x621F, 0xD122)
	s.Memory[0x300] = 0xFF
	s.Memory[0x301] = 0x80

	steps(t, s, 4)
	assert.True(t, s.Pixel(62, 31))
	assert.True(t, s.Pixel(63, 31))
	assert.True(t, s.Pixel(0, 31))
	assert.True(t, s.Pixel(5, 31))
	assert.True(t, s.Pixel(62, 0))
	assert.False(t, s.Pixel(63, 0))
}

func TestDraw_StartPositionModulo(t *testing.T) {
	// LD I 300, LD V1 66, LD V2 33, DRW V1 V2 1
	s := newState(t, 0xA300, 0x6142, 0x6221, 0xD121)
	s.Memory[0x300] = 0x80

	steps(t, s, 4)
	assert.True(t, s.Pixel(2, 1))
}

func TestDraw_OutOfRange(t *testing.T) {
	// LD I FFE, DRW V0 V0 3
	s := newState(t, 0xAFFE, 0xD003)
	steps(t, s, 1)

	_, err := Step(s)
	assert.True(t, errors.Is(err, machine.ErrAddressOutOfRange))
	assert.True(t, s.Halted)
	for _, pixel := range s.Display {
		assert.False(t, pixel)
	}
}

func TestTimers(t *testing.T) {
	// LD V0 3, LD DT V0, LD ST V0, LD V1 DT
	s := newState(t, 0x6003, 0xF015, 0xF018, 0xF107)

	steps(t, s, 2)
	assert.Equal(t, uint8(2), s.DelayTimer)

	steps(t, s, 1)
	assert.Equal(t, uint8(1), s.DelayTimer)
	assert.Equal(t, uint8(2), s.SoundTimer)

	steps(t, s, 1)
	assert.Equal(t, uint8(1), s.V[1])
	assert.Equal(t, uint8(0), s.DelayTimer)
	assert.Equal(t, uint8(1), s.SoundTimer)
}

func TestStepInstruction_DoesNotTick(t *testing.T) {
	s := newState(t, 0x6003, 0xF015, 0x6100)

	for i := 0; i < 3; i++ {
		_, err := StepInstruction(s)
		assert.NoError(t, err)
	}
	assert.Equal(t, uint8(3), s.DelayTimer)
}

func TestWaitKey(t *testing.T) {
	s := newState(t, 0xF30A)

	steps(t, s, 3)
	assert.Equal(t, uint16(0x200), s.PC)
	assert.Equal(t, uint8(0), s.V[3])

	assert.NoError(t, s.SetKey(0xC, true))
	assert.NoError(t, s.SetKey(0x7, true))
	steps(t, s, 1)
	assert.Equal(t, uint16(0x202), s.PC)
	assert.Equal(t, uint8(0x7), s.V[3])
}

func TestIndexInstructions(t *testing.T) {
	t.Run("ADD I", func(t *testing.T) {
		s := newState(t, 0xA100, 0x6020, 0xF01E)
		steps(t, s, 3)
		assert.Equal(t, uint16(0x120), s.I)
	})

	t.Run("ADD I out of range", func(t *testing.T) {
		s := newState(t, 0xAFFF, 0x6001, 0xF01E)
		steps(t, s, 2)

		_, err := Step(s)
		assert.True(t, errors.Is(err, machine.ErrAddressOutOfRange))
		assert.Equal(t, uint16(0xFFF), s.I)
	})

	t.Run("LD F", func(t *testing.T) {
		s := newState(t, 0x600A, 0xF029)
		steps(t, s, 2)
		assert.Equal(t, uint16(0x050+5*0xA), s.I)
	})

	t.Run("LD F invalid digit", func(t *testing.T) {
		s := newState(t, 0x6010, 0xF029)
		steps(t, s, 1)

		_, err := Step(s)
		assert.True(t, errors.Is(err, machine.ErrIndexOutOfRange))
		assert.Equal(t, uint16(0), s.I)
	})
}

func TestStoreBCD(t *testing.T) {
	// LD V5 156, LD I 300, LD B V5
	s := newState(t, 0x659C, 0xA300, 0xF533)

	steps(t, s, 3)
	assert.Equal(t, uint8(1), s.Memory[0x300])
	assert.Equal(t, uint8(5), s.Memory[0x301])
	assert.Equal(t, uint8(6), s.Memory[0x302])
}

func TestStoreBCD_OutOfRange(t *testing.T) {
	s := newState(t, 0xAFFE, 0xF033)
	steps(t, s, 1)

	_, err := Step(s)
	assert.True(t, errors.Is(err, machine.ErrAddressOutOfRange))
	assert.Equal(t, uint8(0), s.Memory[0xFFE])
}

func TestRegisterTransfer(t *testing.T) {
	// LD I 300, LD [I] V2, LD V0 0, LD V1 0, LD V2 0, LD V1 [I]
	s := newState(t, 0xA300, 0xF255, 0x6000, 0x6100, 0x6200, 0xF165)
	s.V[0], s.V[1], s.V[2], s.V[3] = 11, 22, 33, 44

	steps(t, s, 2)
	assert.Equal(t, uint8(11), s.Memory[0x300])
	assert.Equal(t, uint8(22), s.Memory[0x301])
	assert.Equal(t, uint8(33), s.Memory[0x302])
	assert.Equal(t, uint8(0), s.Memory[0x303])
	assert.Equal(t, uint16(0x300), s.I)

	steps(t, s, 4)
	assert.Equal(t, uint8(11), s.V[0])
	assert.Equal(t, uint8(22), s.V[1])
	assert.Equal(t, uint8(0), s.V[2])
}

func TestRegisterTransfer_OutOfRange(t *testing.T) {
	s := newState(t, 0xAFFE, 0xF265)
	steps(t, s, 1)
	s.V[0] = 5

	_, err := Step(s)
	assert.True(t, errors.Is(err, machine.ErrAddressOutOfRange))
	assert.Equal(t, uint8(5), s.V[0])
}

func TestStackFaults(t *testing.T) {
	t.Run("underflow", func(t *testing.T) {
		s := newState(t, 0x00EE)

		_, err := Step(s)
		assert.True(t, errors.Is(err, machine.ErrStackUnderflow))
		assert.True(t, IsFault(err))

		var execErr *ExecutionError
		assert.True(t, errors.As(err, &execErr))
		assert.Equal(t, uint16(0x200), execErr.PC)
		assert.Equal(t, decoder.KindRET, execErr.Kind)
	})

	t.Run("overflow", func(t *testing.T) {
		// recursive CALL 200
		s := newState(t, 0x2200)
		steps(t, s, machine.StackSize)

		_, err := Step(s)
		assert.True(t, errors.Is(err, machine.ErrStackOverflow))
		assert.Equal(t, uint8(machine.StackSize), s.SP)
		assert.Equal(t, uint16(0x200), s.PC)
	})
}

func TestHalted(t *testing.T) {
	s := newState(t, 0x00EE)

	_, err := Step(s)
	assert.Error(t, err)
	assert.True(t, s.Halted)

	_, err = Step(s)
	assert.True(t, errors.Is(err, machine.ErrHalted))
	assert.False(t, IsFault(err))

	s.Reset()
	assert.False(t, s.Halted)
	assert.Equal(t, uint16(0x200), s.PC)
}

func TestFetchOutOfRange(t *testing.T) {
	s := newState(t, 0x00E0)
	s.PC = 0xFFF

	_, err := Step(s)
	assert.True(t, errors.Is(err, machine.ErrAddressOutOfRange))
	assert.ErrorContains(t, err, "fetching instruction at $0FFF")
	assert.True(t, s.Halted)
}

func TestFetchLastWord(t *testing.T) {
	s := newState(t, 0x1FFE)
	s.Memory[0xFFE] = 0x12 // JP 200
	s.Memory[0xFFF] = 0x00
	steps(t, s, 2)

	assert.Equal(t, uint16(0x200), s.PC)
}

func TestProgramCounterTargets(t *testing.T) {
	tests := []struct {
		name   string
		v0     uint8
		words  []uint16
		high   map[uint16]uint16 // instruction words at the end of memory
		steps  int               // steps before the faulting one
		pc     uint16            // faulting instruction
		opcode uint16
		kind   decoder.Kind
	}{
		{"JP beyond last word", 0, []uint16{0x1FFF}, nil, 0, 0x200, 0x1FFF, decoder.KindJP},
		{"CALL beyond last word", 0, []uint16{0x2FFF}, nil, 0, 0x200, 0x2FFF, decoder.KindCALL},
		{"JP V0 beyond memory", 0, []uint16{0x60FF, 0xBF01}, nil, 1, 0x202, 0xBF01, decoder.KindJPV0},
		{"JP V0 beyond last word", 1, []uint16{0xBFFE}, nil, 0, 0x200, 0xBFFE, decoder.KindJPV0},
		{"execution falls off memory", 0, []uint16{0x1FFE}, map[uint16]uint16{0xFFE: 0x6042}, 1, 0xFFE, 0x6042, decoder.KindLDImm},
		{"CALL from last word", 0, []uint16{0x1FFE}, map[uint16]uint16{0xFFE: 0x2200}, 1, 0xFFE, 0x2200, decoder.KindCALL},
		{"skip taken beyond memory", 0, []uint16{0x1FFC}, map[uint16]uint16{0xFFC: 0x3000}, 1, 0xFFC, 0x3000, decoder.KindSEImm},
		{"skip not taken falls off", 1, []uint16{0x1FFE}, map[uint16]uint16{0xFFE: 0x3000}, 1, 0xFFE, 0x3000, decoder.KindSEImm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, tt.words...)
			s.V[0] = tt.v0
			for address, word := range tt.high {
				s.Memory[address] = byte(word >> 8)
				s.Memory[address+1] = byte(word)
			}
			steps(t, s, tt.steps)
			v := s.V

			_, err := Step(s)
			assert.True(t, errors.Is(err, machine.ErrAddressOutOfRange))

			var execErr *ExecutionError
			assert.True(t, errors.As(err, &execErr))
			assert.Equal(t, tt.pc, execErr.PC)
			assert.Equal(t, tt.opcode, execErr.Opcode)
			assert.Equal(t, tt.kind, execErr.Kind)

			assert.True(t, s.Halted)
			assert.Equal(t, tt.pc, s.PC)
			assert.Equal(t, v, s.V)
			assert.Equal(t, uint8(0), s.SP)
		})
	}
}

func TestExecutionError_Message(t *testing.T) {
	err := &ExecutionError{
		PC:     0x204,
		Opcode: 0x00EE,
		Kind:   decoder.KindRET,
		Err:    machine.ErrStackUnderflow,
	}
	assert.ErrorContains(t, err, "executing RET (opcode $00EE) at $204")
}
