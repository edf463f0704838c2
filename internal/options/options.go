// Package options contains the program options.
package options

// Frontend names.
const (
	FrontendSDL      = "sdl"
	FrontendTerminal = "terminal"
	FrontendHeadless = "headless"
)

// Timer modes.
const (
	TimerModeCycle = "cycle" // timers decrement once per executed instruction
	TimerMode60Hz  = "60hz"  // timers decrement at 60 Hz independent of the speed
)

// Parameters contains file path options.
type Parameters struct {
	Input  string `arg:"positional" usage:"CHIP-8 program file"`
	Output string `flag:"o" usage:"output .asm file for -disasm (default: stdout)"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend  string `flag:"frontend" usage:"frontend: sdl, terminal, headless" default:"terminal"`
	Scale     int    `flag:"scale" usage:"display magnification" default:"10"`
	Speed     int    `flag:"speed" usage:"instructions per second, 0 for unlimited" default:"500"`
	TimerMode string `flag:"timers" usage:"timer mode: cycle, 60hz" default:"cycle"`
	Seed      int64  `flag:"seed" usage:"random number generator seed, 0 for time based"`
	Break     string `flag:"break" usage:"comma separated hex breakpoint addresses"`
	MaxCycles uint64 `flag:"cycles" usage:"stop after the given number of instructions, 0 for no limit"`
	Trace     bool   `flag:"trace" usage:"log every executed instruction"`
	Debug     bool   `flag:"debug" usage:"enable debug logging"`
	Quiet     bool   `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains listing output options.
type OutputFlags struct {
	Disasm        bool `flag:"disasm" usage:"write a disassembly listing instead of running the program"`
	NoHexComments bool `flag:"nohexcomments" usage:"omit hex opcode bytes in comments"`
	NoOffsets     bool `flag:"nooffsets" usage:"omit addresses in comments"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	OutputFlags

	Breakpoints []uint16 // parsed from Break
}

// Disassembler defines options to control the listing output.
type Disassembler struct {
	HexComments    bool
	OffsetComments bool
}

// NewDisassembler returns the listing options for the program options.
func NewDisassembler(opts Program) Disassembler {
	return Disassembler{
		HexComments:    !opts.NoHexComments,
		OffsetComments: !opts.NoOffsets,
	}
}
