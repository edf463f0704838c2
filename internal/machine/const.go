package machine

// CHIP-8 memory layout constants.
//
//	0x000-0x04F: unused interpreter area
//	0x050-0x09F: built-in hex digit glyphs (16 glyphs, 5 bytes each)
//	0x0A0-0x1FF: unused interpreter area
//	0x200-0xFFF: program space
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// ProgramStart is the address where programs are loaded and execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program that fits between ProgramStart and the end of memory.
	MaxProgramSize = MemorySize - ProgramStart

	// LastFetchAddress is the highest program counter value an instruction can be fetched from.
	LastFetchAddress = MemorySize - 2

	// GlyphStart is the address of the first built-in hex digit glyph.
	GlyphStart = 0x050

	// GlyphSize is the number of bytes (rows) of a single glyph.
	GlyphSize = 5
)

// Register file, stack and input dimensions.
const (
	RegisterCount = 16
	StackSize     = 16
	KeyCount      = 16

	// FlagRegister is VF, overwritten by arithmetic, shift and draw instructions.
	FlagRegister = 0xF
)

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
	DisplaySize   = DisplayWidth * DisplayHeight
)

// Glyphs contains the sprites of the hex digits 0-F, 5 rows of 4 pixels each
// stored in the high nibble.
var Glyphs = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}
