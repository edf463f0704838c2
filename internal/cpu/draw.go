package cpu

import "github.com/retroenv/chip8vm/internal/machine"

const spriteWidth = 8

// draw XORs an 8 pixel wide sprite of height rows, read from memory at I,
// onto the display. The start position is Vx mod 64 and Vy mod 32, pixels
// that cross an edge wrap around to the opposite side. VF is set to 1 if
// any lit pixel was turned off, otherwise to 0.
func draw(s *machine.State, vx, vy, height uint8) error {
	if err := s.CheckRange(s.I, int(height)); err != nil {
		return err
	}

	x := int(vx) % machine.DisplayWidth
	y := int(vy) % machine.DisplayHeight
	collision := false

	for row := 0; row < int(height); row++ {
		sprite := s.Memory[int(s.I)+row]

		for col := 0; col < spriteWidth; col++ {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			if s.TogglePixel(x+col, y+row) {
				collision = true
			}
		}
	}

	s.V[machine.FlagRegister] = flag(collision)
	return nil
}
