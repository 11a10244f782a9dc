package elf

import (
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"
)

type BlockSuite struct{}

func TestBlock(t *testing.T) {
	suite.RunTests(t, &BlockSuite{})
}

func (BlockSuite) TestContainsOffsetOrdinary(t *testing.T) {
	expect.True(t, containsOffset(0, 100, 0, 10, false))
	expect.True(t, containsOffset(0, 100, 90, 10, false))
	expect.False(t, containsOffset(0, 100, 100, 1, false))
	expect.False(t, containsOffset(0, 100, 91, 10, false))
	expect.False(t, containsOffset(10, 100, 5, 10, false))
}

func (BlockSuite) TestContainsOffsetNoBits(t *testing.T) {
	// NOBITS has no file footprint: start must lie strictly inside, but
	// may end exactly at the container's end.
	expect.True(t, containsOffset(0, 100, 100, 0, true))
	expect.False(t, containsOffset(0, 100, 0, 0, true))
	expect.False(t, containsOffset(0, 100, 101, 0, true))
}

func (BlockSuite) TestContainsSegment(t *testing.T) {
	outer := ProgramHeaderEntry{Offset: 0, FileSize: 100}
	inner := ProgramHeaderEntry{Offset: 10, FileSize: 50}
	expect.True(t, containsSegment(outer, inner))

	sibling := ProgramHeaderEntry{Offset: 10, FileSize: 200}
	expect.False(t, containsSegment(outer, sibling))
}

func (BlockSuite) TestSortBlocksOrdersAndBreaksTies(t *testing.T) {
	section := &SectionBlock{Header: SectionHeaderEntry{Offset: 10, Size: 5}, Content: make([]byte, 5)}
	segment := &SegmentBlock{Header: ProgramHeaderEntry{Offset: 10, FileSize: 5}}
	raw := &RawDataBlock{Offset: 0, Content: make([]byte, 10)}

	blocks := []Block{section, raw, segment}
	sortBlocks(blocks)

	expect.Equal(t, Block(raw), blocks[0])
	// segment sorts before section at the same relative offset.
	expect.Equal(t, Block(segment), blocks[1])
	expect.Equal(t, Block(section), blocks[2])
}

func (BlockSuite) TestBlockEnd(t *testing.T) {
	r := &RawDataBlock{Offset: 4, Content: make([]byte, 6)}
	expect.Equal(t, uint64(10), blockEnd(r))
}

func (BlockSuite) TestProgramHeaderTableBlockPadsShrunkenEntries(t *testing.T) {
	entries := []ProgramHeaderEntry{
		{Type: ProgramLoad, Offset: 0, FileSize: 64},
		{Type: ProgramNote, Offset: 64, FileSize: 32},
	}
	block := &ProgramHeaderTableBlock{Offset: 0, Span: 2 * Elf64ProgramHeaderEntrySize, Entries: &entries}

	full := block.flatten()
	expect.Equal(t, 2*Elf64ProgramHeaderEntrySize, len(full))

	// Simulate RemovePhdrsByType dropping the NOTE entry: Span stays
	// frozen so the LOAD entry keeps its original file position, and the
	// vacated tail is zero, not removed.
	entries = entries[:1]
	shrunk := block.flatten()
	expect.Equal(t, 2*Elf64ProgramHeaderEntrySize, len(shrunk))
	expect.Equal(t, full[:Elf64ProgramHeaderEntrySize], shrunk[:Elf64ProgramHeaderEntrySize])
	for _, b := range shrunk[Elf64ProgramHeaderEntrySize:] {
		expect.Equal(t, byte(0), b)
	}
}
