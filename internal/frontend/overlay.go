package frontend

import (
	"fmt"
	"strings"

	"github.com/retroenv/chip8vm/internal/emulator"
)

// DebugText returns the debug overlay lines for a register snapshot.
func DebugText(snap emulator.Snapshot) []string {
	lines := []string{
		fmt.Sprintf("PC: $%03X  I: $%03X  SP: %d  DT: %3d  ST: %3d  cycles: %d",
			snap.PC, snap.I, snap.SP, snap.DelayTimer, snap.SoundTimer, snap.Cycles),
	}

	for row := 0; row < 2; row++ {
		buf := &strings.Builder{}
		for i := row * 8; i < row*8+8; i++ {
			fmt.Fprintf(buf, "V%X: $%02X  ", i, snap.V[i])
		}
		lines = append(lines, strings.TrimRight(buf.String(), " "))
	}

	next := snap.Next
	if snap.Halted {
		next = "halted"
	}
	lines = append(lines, fmt.Sprintf("next: %s", next))
	return lines
}
