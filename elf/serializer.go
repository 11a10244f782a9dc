package elf

// serialize flattens the block tree, regenerates the section-header
// table from the Sections still reachable in the tree plus whatever
// section headers buildTree reported as dropped, and patches the
// header. Never fails.
//
// The flattened body already carries the original section-header
// table's bytes forward as raw data (nothing in buildTree special-cases
// that range), and no editor operation changes how many section headers
// there are — an in-tree Section and a dropped one are a strict
// partition of the original set, so the regenerated table is always
// exactly the byte size of the one already sitting in body at its
// original position. serialize overwrites it there in place rather than
// appending a second copy after body, which would otherwise duplicate
// it.
//
// If sectionHeadersRemoved is set (RemoveSectionHeaders was called), the
// table is skipped entirely: RemoveSectionHeaders already zeroed that
// range of the backing buffer and cleared the header fields describing
// it, so body is emitted untouched and the output stays the same length
// as the input with just that range zeroed.
func serialize(header Header, blocks []Block, dropped []SectionHeaderEntry, sectionHeadersRemoved bool) []byte {
	var body []byte
	for _, b := range blocks {
		body = append(body, b.flatten()...)
	}

	if !sectionHeadersRemoved {
		shdrEntries := collectSectionHeaders(body, blocks)
		shdrEntries = append(shdrEntries, dropped...)

		tableStart := header.SectionHeaderOffset
		tableSize := uint64(len(shdrEntries)) * Elf64SectionHeaderEntrySize
		if tableStart+tableSize <= uint64(len(body)) {
			for i, s := range shdrEntries {
				off := tableStart + uint64(i)*Elf64SectionHeaderEntrySize
				copy(body[off:off+Elf64SectionHeaderEntrySize], encodeSectionHeaderEntry(s, 0))
			}
		} else {
			// Table no longer fits where it used to; fall back to appending
			// rather than corrupting whatever else occupies that range.
			header.SectionHeaderOffset = uint64(len(body))
			for _, s := range shdrEntries {
				body = append(body, encodeSectionHeaderEntry(s, 0)...)
			}
		}
		header.NumSectionHeaderEntries = uint16(len(shdrEntries))
	}

	copy(body[:Elf64HeaderSize], encodeHeader(header))
	return body
}

// collectSectionHeaders walks the tree with a running absolute-offset
// cursor and clones every SectionBlock's header with its offset
// corrected to where it actually landed in body.
func collectSectionHeaders(body []byte, blocks []Block) []SectionHeaderEntry {
	var entries []SectionHeaderEntry
	cursor := uint64(0)
	for _, b := range blocks {
		walkForSectionHeaders(b, &cursor, &entries)
	}
	return entries
}

func walkForSectionHeaders(b Block, cursor *uint64, entries *[]SectionHeaderEntry) {
	switch v := b.(type) {
	case *SegmentBlock:
		for _, child := range v.Children {
			walkForSectionHeaders(child, cursor, entries)
		}
	case *SectionBlock:
		clone := v.Header
		clone.Offset = *cursor
		*entries = append(*entries, clone)
		*cursor += v.Size()
	default:
		*cursor += b.Size()
	}
}
