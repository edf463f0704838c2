package disasm

import (
	"fmt"
	"slices"

	"github.com/retroenv/chip8vm/internal/decoder"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/program"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const (
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"
	dataNaming  = "_data_%04x"
	startLabel  = "Start"
)

// Disasm traces the control flow of a program to separate code from data.
type Disasm struct {
	logger *log.Logger
	app    *program.Program

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
	branchDestinations  set.Set[uint16] // set of all addresses that are branched to
	dataReferences      set.Set[uint16] // set of all addresses loaded into I
}

// New returns a disassembler for the given program image.
func New(logger *log.Logger, data []byte) (*Disasm, error) {
	if len(data) == 0 {
		return nil, machine.ErrEmptyProgram
	}
	if len(data) > machine.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes", machine.ErrProgramTooLarge, len(data))
	}

	dis := &Disasm{
		logger:              logger,
		app:                 program.New(data, machine.ProgramStart),
		offsetsToParseAdded: set.New[uint16](),
		branchDestinations:  set.New[uint16](),
		dataReferences:      set.New[uint16](),
	}
	dis.app.Offsets[0].Label = startLabel
	return dis, nil
}

// Process traces all code reachable from the program start and returns the
// program with formatted instructions, labels and data offsets.
func (dis *Disasm) Process() *program.Program {
	dis.addAddressToParse(machine.ProgramStart, machine.ProgramStart, false, false)

	for len(dis.offsetsToParse) > 0 {
		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]
		dis.processOffset(address)
	}

	dis.processJumpDestinations()
	dis.processDataReferences()
	dis.markData()
	return dis.app
}

// processOffset decodes the instruction at the address and queues all
// addresses that execution can continue at.
func (dis *Disasm) processOffset(address uint16) {
	offsetInfo := dis.app.OffsetInfo(address)
	secondInfo := dis.app.OffsetInfo(address + 1)
	if offsetInfo == nil || secondInfo == nil {
		return // single trailing byte
	}
	if offsetInfo.IsType(program.CodeOffset) || secondInfo.IsType(program.CodeOffset) {
		return
	}

	word := uint16(offsetInfo.Data[0])<<8 | uint16(secondInfo.Data[0])
	ins := NewInstruction(word)
	if ins.Kind == decoder.KindNOP {
		// consider an unknown instruction as start of data
		dis.logger.Debug("unknown instruction word", log.Hex("address", address), log.Hex("word", word))
		return
	}

	offsetInfo.Data = []byte{offsetInfo.Data[0], secondInfo.Data[0]}
	secondInfo.Data = nil
	offsetInfo.SetType(program.CodeOffset)
	secondInfo.SetType(program.CodeOffset)
	offsetInfo.Code = Format(word)

	next := address + 2

	if !ins.Kind.IsBranch() {
		if ins.IsDataReference() {
			if target := dis.app.OffsetInfo(ins.NNN); target != nil {
				target.SetType(program.DataReference)
				target.BranchFrom = append(target.BranchFrom, address)
				dis.dataReferences.Add(ins.NNN)
			}
		}
		dis.addAddressToParse(next, address, false, false)
		return
	}

	switch {
	case ins.IsJump():
		dis.addAddressToParse(ins.NNN, address, true, false)

	case ins.IsCall():
		dis.addAddressToParse(ins.NNN, address, true, true)
		dis.addAddressToParse(next, address, false, false)

	case ins.IsSkip():
		dis.addAddressToParse(next, address, false, false)
		dis.addAddressToParse(next+2, address, false, false)

	case ins.Kind == decoder.KindLDVxK:
		// continues after a key press
		dis.addAddressToParse(next, address, false, false)

	default:
		// returns and jumps relative to V0 have no static successor
	}
}

// addAddressToParse adds an address to the list to be processed if the
// address has not been processed yet. Branch destinations remember the
// address of the referencing instruction.
func (dis *Disasm) addAddressToParse(address, from uint16, isBranch, isCall bool) {
	offsetInfo := dis.app.OffsetInfo(address)
	if offsetInfo == nil {
		return // outside of the program, for example an interpreter routine
	}

	if isBranch {
		dis.branchDestinations.Add(address)
		offsetInfo.BranchFrom = append(offsetInfo.BranchFrom, from)
		if isCall {
			offsetInfo.SetType(program.CallDestination)
		}
	}

	if dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

// processJumpDestinations processes all jump destinations and updates the callers with
// the generated jump destination label name.
func (dis *Disasm) processJumpDestinations() {
	for _, address := range sortedAddresses(dis.branchDestinations) {
		offsetInfo := dis.app.OffsetInfo(address)

		name := offsetInfo.Label
		if name == "" {
			if offsetInfo.IsType(program.CallDestination) {
				name = fmt.Sprintf(funcNaming, address)
			} else {
				name = fmt.Sprintf(labelNaming, address)
			}
			offsetInfo.Label = name
		}

		// if the offset is marked as code but does not have opcode bytes, the jump destination
		// is inside the second byte of an instruction.
		if offsetInfo.IsType(program.CodeOffset) && len(offsetInfo.Data) == 0 {
			dis.handleJumpIntoInstruction(address)
		}

		for _, from := range offsetInfo.BranchFrom {
			caller := dis.app.OffsetInfo(from)
			if !caller.IsType(program.CodeOffset) {
				continue
			}
			ins := NewInstruction(wordOf(caller))
			if ins.IsJump() || ins.IsCall() {
				caller.Code = fmt.Sprintf("%s %s", Name(ins.Instruction), name)
			}
		}
	}
}

// processDataReferences names all addresses that are loaded into the index
// register and updates the loading instructions.
func (dis *Disasm) processDataReferences() {
	for _, address := range sortedAddresses(dis.dataReferences) {
		offsetInfo := dis.app.OffsetInfo(address)
		if offsetInfo.IsType(program.CodeOffset) && len(offsetInfo.Data) == 0 {
			continue // inside of an instruction, no label possible
		}

		name := offsetInfo.Label
		if name == "" {
			name = fmt.Sprintf(dataNaming, address)
			offsetInfo.Label = name
		}

		for _, from := range offsetInfo.BranchFrom {
			caller := dis.app.OffsetInfo(from)
			if !caller.IsType(program.CodeOffset) {
				continue
			}
			if ins := NewInstruction(wordOf(caller)); ins.IsDataReference() {
				caller.Code = fmt.Sprintf("%s I, %s", Name(ins.Instruction), name)
			}
		}
	}
}

// handleJumpIntoInstruction converts an instruction that has a jump destination label inside
// its second opcode byte into data.
func (dis *Disasm) handleJumpIntoInstruction(address uint16) {
	offsetInfo := dis.app.OffsetInfo(address - 1)
	second := dis.app.OffsetInfo(address)

	offsetInfo.Comment = "branch into instruction detected: " + offsetInfo.Code
	offsetInfo.Code = ""
	offsetInfo.ClearType(program.CodeOffset)
	offsetInfo.SetType(program.CodeAsData)

	second.Data = offsetInfo.Data[1:]
	offsetInfo.Data = offsetInfo.Data[:1]
	second.ClearType(program.CodeOffset)
	second.SetType(program.CodeAsData)
}

// markData marks all offsets that are not part of traced code as data.
func (dis *Disasm) markData() {
	for i := range dis.app.Offsets {
		offsetInfo := &dis.app.Offsets[i]
		if !offsetInfo.IsType(program.CodeOffset) {
			offsetInfo.SetType(program.DataOffset)
		}
	}
}

func wordOf(offsetInfo *program.Offset) uint16 {
	if len(offsetInfo.Data) < 2 {
		return 0
	}
	return uint16(offsetInfo.Data[0])<<8 | uint16(offsetInfo.Data[1])
}

func sortedAddresses(addresses set.Set[uint16]) []uint16 {
	sorted := make([]uint16, 0, len(addresses))
	for address := range addresses {
		sorted = append(sorted, address)
	}
	slices.Sort(sorted)
	return sorted
}
