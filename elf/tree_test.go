package elf

import (
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"
)

type TreeSuite struct{}

func TestTree(t *testing.T) {
	suite.RunTests(t, &TreeSuite{})
}

func (TreeSuite) TestNarrowestFitPicksSmallestContainer(t *testing.T) {
	content := make([]byte, 200)
	phdrs := []ProgramHeaderEntry{
		{Type: ProgramLoad, Offset: 0, FileSize: 200},
		{Type: ProgramLoad, Offset: 10, FileSize: 30}, // narrower, nested inside the first
	}
	shdrs := []SectionHeaderEntry{
		{Type: SectionTypeProgBits, Offset: 15, Size: 10, Name: ".text"},
	}

	blocks, _ := buildTree(phdrs, shdrs, content, phdrTableWindow{})
	expect.Equal(t, 1, len(blocks))

	outer := blocks[0].(*SegmentBlock)
	// [0,10) raw gap, the nested inner segment, [40,200) raw gap.
	expect.Equal(t, 3, len(outer.Children))

	var inner *SegmentBlock
	for _, c := range outer.Children {
		if s, ok := c.(*SegmentBlock); ok {
			inner = s
		}
	}
	expect.NotNil(t, inner)
	expect.Equal(t, uint64(10), inner.RelativeOffset())

	var section *SectionBlock
	for _, c := range inner.Children {
		if s, ok := c.(*SectionBlock); ok {
			section = s
		}
	}
	expect.NotNil(t, section)
	expect.Equal(t, uint64(5), section.RelativeOffset()) // 15 - 10
}

func (TreeSuite) TestSectionWithNoContainerIsDropped(t *testing.T) {
	content := make([]byte, 100)
	for i := range content {
		content[i] = byte(i)
	}
	phdrs := []ProgramHeaderEntry{
		{Type: ProgramLoad, Offset: 0, FileSize: 50},
	}
	shdrs := []SectionHeaderEntry{
		{Type: SectionTypeStrTab, Offset: 70, Size: 10, Name: ".shstrtab"},
	}

	blocks, dropped := buildTree(phdrs, shdrs, content, phdrTableWindow{})
	seg := blocks[0].(*SegmentBlock)

	for _, c := range seg.Children {
		_, isSection := c.(*SectionBlock)
		expect.False(t, isSection)
	}

	// Dropped from the tree, but its header survives for re-emission and
	// its bytes still round-trip through the top-level gap covering the
	// region past the segment's end, exactly like .shstrtab in a real
	// linked executable.
	expect.Equal(t, 1, len(dropped))
	expect.Equal(t, ".shstrtab", dropped[0].Name)

	// No section-header table existed in this synthetic content, so its
	// notional position is past the end of the 100-byte buffer; serialize
	// must append the regenerated table there rather than overwrite real
	// content. The first Elf64HeaderSize bytes are the (here synthetic)
	// patched header; everything from there on, including the dropped
	// section's own bytes at [70,80), must reproduce the original
	// content exactly.
	out := serialize(Header{SectionHeaderOffset: uint64(len(content))}, blocks, dropped, false)
	expect.Equal(t, content[Elf64HeaderSize:], out[Elf64HeaderSize:len(content)])
}

func (TreeSuite) TestNoBitsSectionHasZeroFileFootprint(t *testing.T) {
	content := make([]byte, 100)
	phdrs := []ProgramHeaderEntry{
		{Type: ProgramLoad, Offset: 0, FileSize: 40},
	}
	shdrs := []SectionHeaderEntry{
		{Type: SectionTypeProgBits, Offset: 0, Size: 20, Name: ".data"},
		{Type: SectionTypeNoBits, Offset: 40, Size: 1000, Name: ".bss"},
	}

	blocks, _ := buildTree(phdrs, shdrs, content, phdrTableWindow{})
	seg := blocks[0].(*SegmentBlock)

	var bss *SectionBlock
	for _, c := range seg.Children {
		if s, ok := c.(*SectionBlock); ok && s.Header.Type == SectionTypeNoBits {
			bss = s
		}
	}
	expect.NotNil(t, bss)
	expect.Equal(t, uint64(0), bss.Size())
	expect.Equal(t, uint64(40), bss.RelativeOffset()) // starts exactly at the segment's file end

	flattened := seg.flatten()
	// .data (20 bytes) + the [20,40) gap raw-filled ahead of .bss; .bss
	// itself contributes no bytes.
	expect.Equal(t, 40, len(flattened))
}

func (TreeSuite) TestGapsAreFilledWithRawData(t *testing.T) {
	content := make([]byte, 100)
	for i := range content {
		content[i] = byte(i)
	}
	phdrs := []ProgramHeaderEntry{
		{Type: ProgramLoad, Offset: 0, FileSize: 50},
	}
	shdrs := []SectionHeaderEntry{
		{Type: SectionTypeProgBits, Offset: 20, Size: 5, Name: ".text"},
	}

	blocks, _ := buildTree(phdrs, shdrs, content, phdrTableWindow{})
	seg := blocks[0].(*SegmentBlock)

	// [0,20) raw, [20,25) section, [25,50) raw.
	expect.Equal(t, 3, len(seg.Children))
	expect.Equal(t, uint64(0), seg.Children[0].RelativeOffset())
	expect.Equal(t, uint64(20), seg.Children[0].Size())
	expect.Equal(t, uint64(25), seg.Children[2].RelativeOffset())
	expect.Equal(t, uint64(25), seg.Children[2].Size())

	expect.Equal(t, content[:50], seg.flatten())
}

func (TreeSuite) TestTopLevelGapsCoverBytesOutsideAllSegments(t *testing.T) {
	content := make([]byte, 200)
	for i := range content {
		content[i] = byte(i)
	}
	phdrs := []ProgramHeaderEntry{
		// Leaves [0,10) before the first segment, [60,100) between the
		// two segments, and [150,200) after the last one uncovered.
		{Type: ProgramLoad, Offset: 10, FileSize: 50},
		{Type: ProgramLoad, Offset: 100, FileSize: 50},
	}

	blocks, dropped := buildTree(phdrs, nil, content, phdrTableWindow{})
	expect.Equal(t, 0, len(dropped))
	expect.Equal(t, 5, len(blocks)) // raw, seg, raw, seg, raw

	raw0, ok := blocks[0].(*RawDataBlock)
	expect.True(t, ok)
	expect.Equal(t, uint64(0), raw0.RelativeOffset())
	expect.Equal(t, uint64(10), raw0.Size())

	seg0, ok := blocks[1].(*SegmentBlock)
	expect.True(t, ok)
	expect.Equal(t, uint64(10), seg0.RelativeOffset())

	raw1, ok := blocks[2].(*RawDataBlock)
	expect.True(t, ok)
	expect.Equal(t, uint64(60), raw1.RelativeOffset())
	expect.Equal(t, uint64(40), raw1.Size())

	seg1, ok := blocks[3].(*SegmentBlock)
	expect.True(t, ok)
	expect.Equal(t, uint64(100), seg1.RelativeOffset())

	raw2, ok := blocks[4].(*RawDataBlock)
	expect.True(t, ok)
	expect.Equal(t, uint64(150), raw2.RelativeOffset())
	expect.Equal(t, uint64(50), raw2.Size())

	var body []byte
	for _, b := range blocks {
		body = append(body, b.flatten()...)
	}
	expect.Equal(t, content, body)
}

func (TreeSuite) TestProgramHeaderTableIsCarvedOutOfItsGap(t *testing.T) {
	content := make([]byte, 128)
	phdrs := []ProgramHeaderEntry{
		{Type: ProgramLoad, Offset: 0, FileSize: 128},
	}
	header := Header{
		ProgramHeaderOffset:     64,
		ProgramHeaderEntrySize:  Elf64ProgramHeaderEntrySize,
		NumProgramHeaderEntries: 1,
	}
	pht := newPhdrTableWindow(header, &phdrs)

	blocks, _ := buildTree(phdrs, nil, content, pht)
	seg := blocks[0].(*SegmentBlock)

	var table *ProgramHeaderTableBlock
	for _, c := range seg.Children {
		if p, ok := c.(*ProgramHeaderTableBlock); ok {
			table = p
		}
	}
	expect.NotNil(t, table)
	expect.Equal(t, uint64(64), table.RelativeOffset())
	expect.Equal(t, uint64(Elf64ProgramHeaderEntrySize), table.Size())
}

func (TreeSuite) TestNestSegmentsReversesRootOrder(t *testing.T) {
	outer := &SegmentBlock{Header: ProgramHeaderEntry{Offset: 0, FileSize: 100}}
	inner := &SegmentBlock{Header: ProgramHeaderEntry{Offset: 10, FileSize: 20}}

	// nestSegments receives [inner, outer]; inner nests into outer,
	// leaving [outer], then the whole (single-element) result is reversed.
	result := nestSegments([]*SegmentBlock{inner, outer})
	expect.Equal(t, 1, len(result))
	expect.Equal(t, outer, result[0])
	expect.Equal(t, 1, len(outer.Children))
	expect.Equal(t, uint64(10), inner.RelativeOffset())
}
