package elf

import (
	"io"
	"os"
)

// lifecycle states
type lifecycleState int

const (
	stateParsed lifecycleState = iota
	stateMutated
	stateEmitted
)

// Elf is a parsed ELF64 little-endian object file: a decoded header, the
// original program-header vector, the original section-header vector
// (for introspection and the editor operations), and the reconciled
// block tree.
//
// The zero value is not useful; construct one with Parse, ParseBytes, or
// FromFile.
type Elf struct {
	Header         Header
	ProgramHeaders []ProgramHeaderEntry
	SectionHeaders []SectionHeaderEntry
	Blocks         []Block

	raw                   []byte
	droppedSectionHeaders []SectionHeaderEntry
	sectionHeadersRemoved bool
	state                 lifecycleState
}

// Parse reads an entire ELF64 little-endian object file from r and
// builds its block tree.
func Parse(r io.Reader) (*Elf, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapParsingError(err, "failed to read input")
	}
	return ParseBytes(buf)
}

// ParseBytes builds an Elf from an in-memory byte slice.
// buf is retained for the lifetime of the Elf: Section and RawData
// blocks hold sub-slices of it rather than copies.
func ParseBytes(buf []byte) (*Elf, error) {
	header, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}

	phdrs, err := parseProgramHeaderTable(buf, header)
	if err != nil {
		return nil, err
	}

	shdrs, err := parseSectionHeaderTable(buf, header)
	if err != nil {
		return nil, err
	}

	e := &Elf{
		Header:         header,
		ProgramHeaders: phdrs,
		SectionHeaders: shdrs,
		raw:            buf,
		state:          stateParsed,
	}

	pht := newPhdrTableWindow(header, &e.ProgramHeaders)
	e.Blocks, e.droppedSectionHeaders = buildTree(e.ProgramHeaders, shdrs, buf, pht)

	return e, nil
}

// FromFile opens path and parses it. The file is
// mapped into memory with mmap where the platform supports it, falling
// back to a single read otherwise (see file_unix.go / file_other.go).
func FromFile(path string) (*Elf, error) {
	buf, err := readFileBytes(path)
	if err != nil {
		return nil, wrapParsingError(err, "failed to open %s", path)
	}
	return ParseBytes(buf)
}

// WriteFile serializes the Elf and writes it to path with mode 0o644.
func (e *Elf) WriteFile(path string) error {
	return os.WriteFile(path, e.ToBytes(), 0o644)
}

// ToBytes serializes the current state of the Elf back to a byte slice.
// The Elf may continue to be used afterwards; each
// call re-flattens the live tree and header, so edits made between two
// ToBytes calls are reflected in the second.
func (e *Elf) ToBytes() []byte {
	out := serialize(e.Header, e.Blocks, e.droppedSectionHeaders, e.sectionHeadersRemoved)
	e.state = stateEmitted
	return out
}

// Walk calls visit once for every block in the tree, depth first,
// starting from each root block in order, passing the running absolute
// file offset alongside each block. Returning
// false from visit stops the walk early.
func (e *Elf) Walk(visit func(b Block, absOffset uint64) bool) {
	for _, root := range e.Blocks {
		if !walkBlock(root, root.RelativeOffset(), visit) {
			return
		}
	}
}

func walkBlock(b Block, absOffset uint64, visit func(Block, uint64) bool) bool {
	if !visit(b, absOffset) {
		return false
	}
	seg, ok := b.(*SegmentBlock)
	if !ok {
		return true
	}
	for _, child := range seg.Children {
		if !walkBlock(child, absOffset+child.RelativeOffset(), visit) {
			return false
		}
	}
	return true
}

// SectionName re-derives a section header's name from the current
// string-table section, rather than trusting the Name field cached at
// parse time. Returns "" if shstrndx is out of range or the index
// doesn't resolve.
func (e *Elf) SectionName(s SectionHeaderEntry) string {
	shstrndx := int(e.Header.SectionStringTableIndex)
	if shstrndx <= SectionIndexUndefined || shstrndx >= len(e.SectionHeaders) {
		return ""
	}
	table := e.SectionHeaders[shstrndx]
	start, end := table.Offset, table.Offset+table.Size
	if end > uint64(len(e.raw)) || start > end {
		return ""
	}
	return lookupString(e.raw[start:end], s.NameIndex)
}
