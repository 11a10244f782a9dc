package elf

// phdrTableWindow locates the program-header table's absolute byte span
// in the original file, together with a pointer to the Elf's live
// ProgramHeaders slice. The tree builder carves this span out of
// whatever RawData gap it falls in and replaces it with a
// ProgramHeaderTableBlock, so that editor operations touching
// ProgramHeaders (RemovePhdrsByType) are reflected on re-serialization
// without the serializer needing to special-case the program-header
// table separately.
type phdrTableWindow struct {
	absStart uint64
	absEnd   uint64
	entries  *[]ProgramHeaderEntry
}

func newPhdrTableWindow(header Header, entries *[]ProgramHeaderEntry) phdrTableWindow {
	span := uint64(header.NumProgramHeaderEntries) * uint64(header.ProgramHeaderEntrySize)
	return phdrTableWindow{
		absStart: header.ProgramHeaderOffset,
		absEnd:   header.ProgramHeaderOffset + span,
		entries:  entries,
	}
}

func (w phdrTableWindow) valid() bool {
	return w.entries != nil && w.absEnd > w.absStart
}

// buildTree seeds root segments, assigns sections by narrowest fit,
// nests segments, fills the remaining in-segment gaps with raw data,
// and finally fills whatever the program headers don't cover at all.
// It returns the root block list together with the header of every
// section that landed in no segment — those sections have no block of
// their own, but their raw bytes are still carried forward as part of
// whichever raw span now covers that range, and their headers need to
// be re-emitted by the caller alongside the ones recovered from the
// tree walk.
func buildTree(
	phdrs []ProgramHeaderEntry,
	shdrs []SectionHeaderEntry,
	content []byte,
	pht phdrTableWindow,
) ([]Block, []SectionHeaderEntry) {
	// Phase A: seed root segments.
	roots := make([]*SegmentBlock, 0, len(phdrs))
	for _, p := range phdrs {
		roots = append(roots, &SegmentBlock{Header: p})
	}

	// Phase B: narrowest-fit section assignment.
	var dropped []SectionHeaderEntry
	for _, s := range shdrs {
		if !assignSectionNarrowestFit(roots, s, content) {
			dropped = append(dropped, s)
		}
	}

	// Phase C: segment nesting (+ cosmetic outermost-last reversal).
	roots = nestSegments(roots)

	// Phase D: raw-data gap filling, depth first, starting from each
	// root segment's own absolute offset.
	for _, root := range roots {
		fillGaps(root, root.Header.Offset, content, pht)
	}

	// Phase E: top-level gap filling. Root segments need not cover the
	// whole file — bytes before the first segment, between disjoint
	// segments, or past the last segment's end (where the section-header
	// table and a dropped section like .shstrtab conventionally live)
	// belong to no segment at all. Those bytes are still part of the
	// file and must round-trip, so they're covered with raw data at the
	// top level the same way fillGaps covers gaps inside one segment.
	out := fillTopLevelGaps(roots, uint64(len(content)), content, pht)
	return out, dropped
}

// assignSectionNarrowestFit assigns a single section header to the
// smallest root segment that fully contains it, reporting whether it
// found one.
func assignSectionNarrowestFit(roots []*SegmentBlock, s SectionHeaderEntry, content []byte) bool {
	noBits := s.Type == SectionTypeNoBits

	bestIdx := -1
	var bestSize uint64
	for i, seg := range roots {
		if !containsOffset(seg.Header.Offset, seg.Header.FileSize, s.Offset, s.Size, noBits) {
			continue
		}
		if bestIdx == -1 || seg.Header.FileSize < bestSize {
			bestIdx = i
			bestSize = seg.Header.FileSize
		}
	}

	if bestIdx == -1 {
		// No containing segment: section is dropped from the tree but its
		// header is preserved by the caller's full shdrs slice, and its
		// bytes are preserved by the top-level gap fill.
		return false
	}

	seg := roots[bestIdx]
	clone := s
	clone.Offset = s.Offset - seg.Header.Offset

	var payload []byte
	if !noBits {
		payload = content[s.Offset : s.Offset+s.Size]
	}

	seg.Children = append(seg.Children, &SectionBlock{Header: clone, Content: payload})
	sortBlocks(seg.Children)
	return true
}

// nestSegments repeatedly folds each root segment into the first other
// root segment that fully contains it, until none remain unfolded, then
// reverses the remaining top-level order.
func nestSegments(blocks []*SegmentBlock) []*SegmentBlock {
	idx := 0
	for idx < len(blocks) {
		item := blocks[idx]
		blocks = append(blocks[:idx], blocks[idx+1:]...)

		added := false
		for _, container := range blocks {
			if containsSegment(container.Header, item.Header) {
				item.Header.Offset -= container.Header.Offset
				container.Children = append(container.Children, item)
				sortBlocks(container.Children)
				added = true
				break
			}
		}

		if !added {
			blocks = append([]*SegmentBlock{item}, blocks...)
			idx++
		}
	}

	reverse(blocks)
	return blocks
}

func reverse(blocks []*SegmentBlock) {
	for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}
}

// fillTopLevelGaps orders root segments by absolute offset and covers
// every byte of [0, fileLen) not claimed by one of them with raw data,
// so the returned block list accounts for the entire file regardless
// of how little of it the program headers describe.
func fillTopLevelGaps(roots []*SegmentBlock, fileLen uint64, content []byte, pht phdrTableWindow) []Block {
	sortSegmentsByOffset(roots)

	var out []Block
	cursor := uint64(0)
	for _, root := range roots {
		start := root.Header.Offset
		if cursor < start {
			out = append(out, rawSpan(cursor, cursor, content[cursor:start], pht)...)
		}
		out = append(out, root)
		if end := start + root.Header.FileSize; end > cursor {
			cursor = end
		}
	}
	if cursor < fileLen {
		out = append(out, rawSpan(cursor, cursor, content[cursor:fileLen], pht)...)
	}
	return out
}

// sortSegmentsByOffset is an insertion sort over the (small) root
// segment list, mirroring sortBlocks's approach for the same reason:
// the count is small enough that simplicity wins over an import.
func sortSegmentsByOffset(roots []*SegmentBlock) {
	for i := 1; i < len(roots); i++ {
		for j := i; j > 0 && roots[j].Header.Offset < roots[j-1].Header.Offset; j-- {
			roots[j], roots[j-1] = roots[j-1], roots[j]
		}
	}
}

// fillGaps covers every byte of one segment not already claimed by a
// child block with raw data, recursing into nested child segments
// using their absolute origin.
func fillGaps(seg *SegmentBlock, absOffset uint64, content []byte, pht phdrTableWindow) {
	if len(seg.Children) == 0 {
		if seg.Header.FileSize > 0 {
			span := rawSpan(0, absOffset, content[absOffset:absOffset+seg.Header.FileSize], pht)
			seg.Children = span
		}
		return
	}

	var filled []Block
	cursor := uint64(0)
	for _, child := range seg.Children {
		rs := child.RelativeOffset()
		if cursor < rs {
			gap := content[absOffset+cursor : absOffset+rs]
			filled = append(filled, rawSpan(cursor, absOffset+cursor, gap, pht)...)
		}

		filled = append(filled, child)
		cursor = rs + child.Size()

		if childSeg, ok := child.(*SegmentBlock); ok {
			fillGaps(childSeg, absOffset+childSeg.Header.Offset, content, pht)
		}
	}

	if cursor < seg.Header.FileSize {
		gap := content[absOffset+cursor : absOffset+seg.Header.FileSize]
		filled = append(filled, rawSpan(cursor, absOffset+cursor, gap, pht)...)
	}

	seg.Children = filled
}

// rawSpan returns the block(s) covering [absStart, absStart+len(data))
// at relative offset relOffset within the current segment: either a
// single RawDataBlock, or — if this span fully contains the
// program-header table's absolute byte range — up to three blocks with
// the table carved out into a ProgramHeaderTableBlock.
func rawSpan(relOffset, absStart uint64, data []byte, pht phdrTableWindow) []Block {
	if !pht.valid() {
		return []Block{&RawDataBlock{Offset: relOffset, Content: data}}
	}

	absEnd := absStart + uint64(len(data))
	if pht.absStart < absStart || pht.absEnd > absEnd {
		// Table isn't fully contained in this span; leave it as plain
		// raw data rather than risk an unsafe partial carve.
		return []Block{&RawDataBlock{Offset: relOffset, Content: data}}
	}

	var out []Block
	lo := pht.absStart - absStart
	hi := pht.absEnd - absStart

	if lo > 0 {
		out = append(out, &RawDataBlock{Offset: relOffset, Content: data[:lo]})
	}
	out = append(out, &ProgramHeaderTableBlock{
		Offset:  relOffset + lo,
		Span:    hi - lo,
		Entries: pht.entries,
	})
	if hi < uint64(len(data)) {
		out = append(out, &RawDataBlock{Offset: relOffset + hi, Content: data[hi:]})
	}

	return out
}
