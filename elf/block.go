package elf

// Block is the tagged variant at the heart of the tree: every byte of an
// ELF file, once parsed, lives in exactly one of the shapes below
// (SegmentBlock, SectionBlock, RawDataBlock, PaddingBlock,
// ProgramHeaderTableBlock). Implemented as an interface over these five
// concrete struct types rather
// than a sum type, the idiomatic Go rendering of a closed set of
// variants.
type Block interface {
	// RelativeOffset is this block's byte distance from the start of its
	// immediate parent (absolute file offset for a root Segment).
	RelativeOffset() uint64

	// Size is the block's on-disk footprint in bytes (zero for NOBITS
	// sections).
	Size() uint64

	// flatten returns this block's bytes in tree order. Segments
	// concatenate their children; everything else returns its payload
	// verbatim.
	flatten() []byte
}

// SegmentBlock is a Block carrying a program header and its ordered
// children: sections narrow-fit into it, nested segments, and raw-data
// gap fillers.
type SegmentBlock struct {
	Header   ProgramHeaderEntry
	Children []Block
}

func (s *SegmentBlock) RelativeOffset() uint64 { return s.Header.Offset }
func (s *SegmentBlock) Size() uint64           { return s.Header.FileSize }

func (s *SegmentBlock) flatten() []byte {
	out := make([]byte, 0, s.Size())
	for _, child := range s.Children {
		out = append(out, child.flatten()...)
	}
	return out
}

// SectionBlock is a Block carrying a section header and its content.
// Content is a plain byte slice rather than a recursive Block: parsing
// into e.g. dynamic-link entries or symbol tables is premature
// generality until a consumer actually needs it.
type SectionBlock struct {
	Header  SectionHeaderEntry
	Content []byte
}

func (s *SectionBlock) RelativeOffset() uint64 { return s.Header.Offset }

// Size is the section's on-disk footprint. NOBITS sections have none,
// regardless of what Header.Size (their memory footprint) claims.
func (s *SectionBlock) Size() uint64 {
	if s.Header.Type == SectionTypeNoBits {
		return 0
	}
	return uint64(len(s.Content))
}

func (s *SectionBlock) flatten() []byte { return s.Content }

// RawDataBlock is opaque bytes filling a gap between classified blocks,
// either inside a segment or outside every segment (which is where the
// bytes of a section dropped from the tree end up).
type RawDataBlock struct {
	Offset  uint64
	Content []byte
}

func (r *RawDataBlock) RelativeOffset() uint64 { return r.Offset }
func (r *RawDataBlock) Size() uint64           { return uint64(len(r.Content)) }
func (r *RawDataBlock) flatten() []byte        { return r.Content }

// PaddingBlock is a run of zero bytes of known length. The tree builder
// never emits one (gaps are modelled as RawDataBlock, whose content
// happens to be zero when the source file was itself zero-padded); it
// exists so editor operations that need to insert alignment padding
// without borrowing from the original buffer have a block type for it.
type PaddingBlock struct {
	Offset uint64
	Length uint64
}

func (p *PaddingBlock) RelativeOffset() uint64 { return p.Offset }
func (p *PaddingBlock) Size() uint64           { return p.Length }
func (p *PaddingBlock) flatten() []byte        { return make([]byte, p.Length) }

// ProgramHeaderTableBlock is the program-header table's own bytes,
// carved out of whatever raw-data gap they fall in during gap filling.
// Unlike RawDataBlock its content isn't frozen: it re-encodes the live
// entries behind Entries on every flatten, so that
// RemovePhdrsByType is visible on re-serialization without the
// serializer needing a special case. Span is the table's original byte
// footprint, frozen at parse time; shrinking the entry count never
// shrinks Span, so surviving entries keep their original file position
// and the leftover tail is zero-padded rather than compacted away.
type ProgramHeaderTableBlock struct {
	Offset  uint64
	Span    uint64
	Entries *[]ProgramHeaderEntry
}

func (p *ProgramHeaderTableBlock) RelativeOffset() uint64 { return p.Offset }
func (p *ProgramHeaderTableBlock) Size() uint64           { return p.Span }

func (p *ProgramHeaderTableBlock) flatten() []byte {
	out := make([]byte, 0, p.Span)
	for _, entry := range *p.Entries {
		out = append(out, encodeProgramHeaderEntry(entry, 0)...)
	}
	if uint64(len(out)) > p.Span {
		return out[:p.Span]
	}
	if pad := p.Span - uint64(len(out)); pad > 0 {
		out = append(out, make([]byte, pad)...)
	}
	return out
}

// containsOffset is the narrowest-fit containment predicate: whether a
// byte range starting at start (of size size, NOBITS or not) lies
// inside [containerStart, containerStart+containerSize).
func containsOffset(containerStart, containerSize, start, size uint64, noBits bool) bool {
	containerEnd := containerStart + containerSize
	if noBits {
		// start must lie strictly inside; end may touch, since NOBITS has
		// no file footprint to overrun.
		return containerStart < start && start <= containerEnd
	}
	return containerStart <= start && start < containerEnd && start+size <= containerEnd
}

// containsSegment is the segment-nesting containment predicate, reusing
// the same offset-range shape as section assignment (a segment has no
// NOBITS analogue, so noBits is always false here).
func containsSegment(outer, inner ProgramHeaderEntry) bool {
	return containsOffset(outer.Offset, outer.FileSize, inner.Offset, inner.FileSize, false)
}

// blockEnd returns RelativeOffset()+Size(), used throughout for
// adjacency checks between sibling blocks.
func blockEnd(b Block) uint64 {
	return b.RelativeOffset() + b.Size()
}

// sortBlocks orders children ascending by relative offset, breaking ties
// by container-before-contained: a Segment sorts before a
// Section/RawData/Padding block at the same offset.
func sortBlocks(blocks []Block) {
	less := func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.RelativeOffset() != b.RelativeOffset() {
			return a.RelativeOffset() < b.RelativeOffset()
		}
		_, aIsSegment := a.(*SegmentBlock)
		_, bIsSegment := b.(*SegmentBlock)
		if aIsSegment != bIsSegment {
			return aIsSegment
		}
		return false
	}

	// insertion sort: block counts per segment are small, and this keeps
	// equal elements in their prior relative order beyond the single
	// tie-break above.
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			blocks[j], blocks[j-1] = blocks[j-1], blocks[j]
		}
	}
}
