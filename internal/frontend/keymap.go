package frontend

import "unicode"

// keyLayout maps the physical keyboard layout
//
//	1 2 3 4
//	Q W E R
//	A S D F
//	Z X C V
//
// onto the CHIP-8 key pad layout
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
var keyLayout = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyIndex returns the key pad index for a physical key. Letters are
// matched case insensitive.
func KeyIndex(r rune) (uint8, bool) {
	index, ok := keyLayout[unicode.ToLower(r)]
	return index, ok
}
