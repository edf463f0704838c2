// Package writer implements the assembly listing output of a disassembled program.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/program"
)

const dataBytesPerLine = 8

// Writer writes a program as an assembly listing.
type Writer struct {
	app     *program.Program
	options options.Disassembler
	writer  io.Writer
}

// New creates a new writer.
func New(app *program.Program, writer io.Writer, options options.Disassembler) *Writer {
	return &Writer{
		app:     app,
		options: options,
		writer:  writer,
	}
}

// Write writes the comment header and all code offsets, labels and their comments.
func (w Writer) Write() error {
	if err := w.writeCommentHeader(); err != nil {
		return err
	}

	var previousLineWasCode bool
	offsets := w.app.Offsets

	for i := 0; i < len(offsets); i++ {
		offset := offsets[i]

		if err := w.writeLabel(i, offset); err != nil {
			return err
		}

		// print an empty line in case of data after code and vice versa
		isCode := offset.IsType(program.CodeOffset)
		if i > 0 && offset.Label == "" && isCode != previousLineWasCode {
			if _, err := fmt.Fprintln(w.writer); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
		}
		previousLineWasCode = isCode

		adjustment, err := w.writeOffset(i, offset)
		if err != nil {
			return err
		}
		i += adjustment
	}
	return nil
}

func (w Writer) writeCommentHeader() error {
	if _, err := fmt.Fprintf(w.writer, "; CRC32 checksum: %08x\n", w.app.Checksum); err != nil {
		return fmt.Errorf("writing checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Code base address: $%04x\n\n", w.app.CodeBaseAddress); err != nil {
		return fmt.Errorf("writing code base address: %w", err)
	}
	return nil
}

// writeOffset writes the offset and returns the number of additional
// offsets that were written as part of it.
func (w Writer) writeOffset(index int, offset program.Offset) (int, error) {
	if offset.IsType(program.CodeOffset) {
		if len(offset.Data) == 0 {
			return 0, nil // second byte of an instruction
		}
		if err := w.writeCodeLine(offset); err != nil {
			return 0, fmt.Errorf("writing code line: %w", err)
		}
		return 0, nil
	}

	count, err := w.bundleDataWrites(index)
	if err != nil {
		return 0, err
	}
	return count - 1, nil
}

func (w Writer) writeLabel(index int, offset program.Offset) error {
	if offset.Label == "" {
		return nil
	}

	if index > 0 {
		if _, err := fmt.Fprintln(w.writer); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}

	if _, err := fmt.Fprintf(w.writer, "%s:\n", offset.Label); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

func (w Writer) writeCodeLine(offset program.Offset) error {
	comment, err := w.comment(offset, offset.Data)
	if err != nil {
		return err
	}

	if comment == "" {
		_, err = fmt.Fprintf(w.writer, "  %s\n", offset.Code)
	} else {
		_, err = fmt.Fprintf(w.writer, "  %-30s ; %s\n", offset.Code, comment)
	}
	if err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// bundleDataWrites writes up to dataBytesPerLine data bytes per line,
// starting at the given index and stopping at the next label or code offset.
// It returns the number of offsets written.
func (w Writer) bundleDataWrites(startIndex int) (int, error) {
	offsets := w.app.Offsets
	end := startIndex + 1
	for end < len(offsets) && end-startIndex < dataBytesPerLine {
		next := offsets[end]
		if next.Label != "" || next.IsType(program.CodeOffset) || next.Comment != "" {
			break
		}
		end++
	}

	first := offsets[startIndex]
	data := make([]byte, 0, end-startIndex)
	for _, offset := range offsets[startIndex:end] {
		data = append(data, offset.Data...)
	}

	buf := &strings.Builder{}
	buf.WriteString(".byte ")
	for _, b := range data {
		if _, err := fmt.Fprintf(buf, "$%02x, ", b); err != nil {
			return 0, fmt.Errorf("writing data byte: %w", err)
		}
	}
	line := strings.TrimRight(buf.String(), ", ")

	comment, err := w.comment(first, nil)
	if err != nil {
		return 0, err
	}

	if comment == "" {
		_, err = fmt.Fprintf(w.writer, "%s\n", line)
	} else {
		_, err = fmt.Fprintf(w.writer, "%-32s ; %s\n", line, comment)
	}
	if err != nil {
		return 0, fmt.Errorf("writing data line: %w", err)
	}
	return end - startIndex, nil
}

// comment builds the line comment from the enabled offset and hex comments
// and the comment of the offset.
func (w Writer) comment(offset program.Offset, hexData []byte) (string, error) {
	var parts []string

	if w.options.OffsetComments {
		parts = append(parts, fmt.Sprintf("$%04X", offset.Address))
	}
	if w.options.HexComments && len(hexData) > 0 {
		hex, err := program.Offset{Data: hexData}.HexCodeComment()
		if err != nil {
			return "", fmt.Errorf("formatting hex comment: %w", err)
		}
		parts = append(parts, hex)
	}
	if offset.Comment != "" {
		parts = append(parts, offset.Comment)
	}
	return strings.Join(parts, "  "), nil
}
