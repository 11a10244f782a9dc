package elf

// parseProgramHeaderTable decodes the phnum consecutive ProgramHeaderEntry
// records at header.ProgramHeaderOffset
func parseProgramHeaderTable(buf []byte, header Header) ([]ProgramHeaderEntry, error) {
	count := int(header.NumProgramHeaderEntries)
	if count == 0 {
		return nil, nil
	}

	entrySize := int(header.ProgramHeaderEntrySize)
	start := header.ProgramHeaderOffset
	end := start + uint64(count*entrySize)
	if end > uint64(len(buf)) {
		return nil, newParsingError(
			"program header table out of bounds (%d > %d)", end, len(buf))
	}

	entries := make([]ProgramHeaderEntry, 0, count)
	for i := 0; i < count; i++ {
		off := start + uint64(i*entrySize)
		entry, err := decodeProgramHeaderEntry(buf[off : off+uint64(entrySize)])
		if err != nil {
			return nil, wrapParsingError(err, "failed to decode program header entry %d", i)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
