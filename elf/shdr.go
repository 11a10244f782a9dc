package elf

import "bytes"

// parseSectionHeaderTable decodes the shnum consecutive SectionHeaderEntry
// records at header.SectionHeaderOffset and resolves every entry's Name
// via the header.SectionStringTableIndex-th section.
func parseSectionHeaderTable(buf []byte, header Header) ([]SectionHeaderEntry, error) {
	count := int(header.NumSectionHeaderEntries)
	if count == 0 {
		return nil, nil
	}

	entrySize := int(header.SectionHeaderEntrySize)
	start := header.SectionHeaderOffset
	end := start + uint64(count*entrySize)
	if end > uint64(len(buf)) {
		return nil, newParsingError(
			"section header table out of bounds (%d > %d)", end, len(buf))
	}

	entries := make([]SectionHeaderEntry, 0, count)
	for i := 0; i < count; i++ {
		off := start + uint64(i*entrySize)
		entry, err := decodeSectionHeaderEntry(buf[off : off+uint64(entrySize)])
		if err != nil {
			return nil, wrapParsingError(err, "failed to decode section header entry %d", i)
		}
		entries = append(entries, entry)
	}

	resolveSectionNames(buf, entries, int(header.SectionStringTableIndex))

	return entries, nil
}

// resolveSectionNames looks up each entry's NameIndex inside the
// shstrndx-th section's byte range, treated as a NUL-terminated string
// pool. If shstrndx is zero or out of range, every section keeps an
// empty name and parsing continues.
func resolveSectionNames(buf []byte, entries []SectionHeaderEntry, shstrndx int) {
	if shstrndx <= SectionIndexUndefined || shstrndx >= len(entries) {
		return
	}

	table := entries[shstrndx]
	start, end := table.Offset, table.Offset+table.Size
	if end > uint64(len(buf)) || start > end {
		return
	}
	pool := buf[start:end]

	for i := range entries {
		entries[i].Name = lookupString(pool, entries[i].NameIndex)
	}
}

// lookupString reads a NUL-terminated string out of pool starting at
// index, trimmed at the first NUL. Out of range indices resolve to "".
func lookupString(pool []byte, index uint32) string {
	if index >= uint32(len(pool)) {
		return ""
	}
	chunk := pool[index:]
	end := bytes.IndexByte(chunk, 0)
	if end == -1 {
		return string(chunk)
	}
	return string(chunk[:end])
}
