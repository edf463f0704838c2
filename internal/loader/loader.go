// Package loader handles program file loading operations.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/chip8vm/internal/machine"
)

// Loader handles loading program files from disk.
type Loader struct{}

// New creates a new program loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the raw program file. Files that are empty or do not fit into
// the machine memory at the program start address are rejected without
// reading them completely.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return l.LoadFromReader(file)
}

// LoadFromReader reads a raw program from the reader.
func (l *Loader) LoadFromReader(reader io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, machine.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}

	switch {
	case len(data) == 0:
		return nil, machine.ErrEmptyProgram
	case len(data) > machine.MaxProgramSize:
		return nil, fmt.Errorf("%w: maximum is %d bytes", machine.ErrProgramTooLarge, machine.MaxProgramSize)
	}
	return data, nil
}
