package frontend

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestKeyIndex(t *testing.T) {
	tests := []struct {
		key   rune
		index uint8
	}{
		{'1', 0x1}, {'2', 0x2}, {'3', 0x3}, {'4', 0xC},
		{'q', 0x4}, {'w', 0x5}, {'e', 0x6}, {'r', 0xD},
		{'a', 0x7}, {'s', 0x8}, {'d', 0x9}, {'f', 0xE},
		{'z', 0xA}, {'x', 0x0}, {'c', 0xB}, {'v', 0xF},
		{'Q', 0x4}, {'V', 0xF},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			index, ok := KeyIndex(tt.key)
			assert.True(t, ok)
			assert.Equal(t, tt.index, index)
		})
	}
}

func TestKeyIndex_Unmapped(t *testing.T) {
	for _, key := range []rune{'5', 't', 'g', 'b', ' ', 0x1b} {
		_, ok := KeyIndex(key)
		assert.False(t, ok)
	}
}

func TestKeyIndex_CoversKeyPad(t *testing.T) {
	seen := map[uint8]bool{}
	for key := range keyLayout {
		index, ok := KeyIndex(key)
		assert.True(t, ok)
		seen[index] = true
	}
	assert.Len(t, seen, 16)
}
