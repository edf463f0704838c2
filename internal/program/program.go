// Package program represents a disassembled CHIP-8 program.
package program

import (
	"fmt"
	"hash/crc32"
	"strings"
)

// Offset defines the content of an offset in a program that can represent data or code.
type Offset struct {
	Address uint16
	Data    []byte // data byte or both opcode bytes that are part of the instruction

	Type OffsetType

	Label   string // name of label or subroutine if identified as a jump destination
	Code    string // asm output of this instruction
	Comment string

	BranchFrom []uint16 // addresses of instructions that reference this offset
}

// HexCodeComment returns the data bytes of the offset formatted as hex values.
func (o Offset) HexCodeComment() (string, error) {
	buf := &strings.Builder{}
	for _, b := range o.Data {
		if _, err := fmt.Fprintf(buf, "%02X ", b); err != nil {
			return "", fmt.Errorf("writing hex byte: %w", err)
		}
	}
	return strings.TrimRight(buf.String(), " "), nil
}

// Program defines a CHIP-8 program that contains code or data.
type Program struct {
	Offsets []Offset // one entry per program byte

	CodeBaseAddress uint16
	Checksum        uint32 // CRC32 of the program image
}

// New creates a new program for the given program image that is located
// at the base address.
func New(data []byte, baseAddress uint16) *Program {
	app := &Program{
		Offsets:         make([]Offset, len(data)),
		CodeBaseAddress: baseAddress,
		Checksum:        crc32.ChecksumIEEE(data),
	}
	for i, b := range data {
		app.Offsets[i] = Offset{
			Address: baseAddress + uint16(i),
			Data:    []byte{b},
		}
	}
	return app
}

// OffsetInfo returns the offset at the given memory address or nil if the
// address is outside of the program.
func (p *Program) OffsetInfo(address uint16) *Offset {
	if address < p.CodeBaseAddress {
		return nil
	}
	index := int(address - p.CodeBaseAddress)
	if index >= len(p.Offsets) {
		return nil
	}
	return &p.Offsets[index]
}
