package elf

// RemoveSectionHeaders drops the section-header table from future
// output. The backing raw buffer's former shdr-table bytes are zeroed
// in place (any block whose content aliases that range observes the
// zeroing too, since raw spans hold sub-slices of the same buffer
// rather than copies); the header fields that describe the table are
// cleared; the block tree itself is left untouched, so accessors still
// see every Segment/Section that was there before the call, and every
// other byte of the file — including bytes that belonged to a section
// dropped from the tree — still reaches the output unchanged.
func (e *Elf) RemoveSectionHeaders() {
	start := e.Header.SectionHeaderOffset
	count := uint64(e.Header.NumSectionHeaderEntries)
	size := count * uint64(e.Header.SectionHeaderEntrySize)
	end := start + size

	if end <= uint64(len(e.raw)) {
		for i := start; i < end; i++ {
			e.raw[i] = 0
		}
	}

	e.Header.SectionHeaderOffset = 0
	e.Header.NumSectionHeaderEntries = 0
	e.Header.SectionHeaderEntrySize = 0
	e.Header.SectionStringTableIndex = 0
	e.SectionHeaders = nil
	e.droppedSectionHeaders = nil
	e.sectionHeadersRemoved = true

	e.state = stateMutated
}

// RemovePhdrsByType drops every ProgramHeaderEntry whose Type makes
// keep return false, and updates NumProgramHeaderEntries to match.
// Surviving entries keep their
// original relative order. The program-header table's on-disk file
// position (ProgramHeaderOffset) is left untouched, and the block tree
// is not rebuilt: the segment blocks of removed entries, and their
// bytes, stay in the tree. Where the parser carved the table into a
// ProgramHeaderTableBlock, that block re-encodes only the survivors and
// zero-fills the rest of its original span (no compaction, no
// relocation of survivors).
func (e *Elf) RemovePhdrsByType(keep func(ProgramType) bool) {
	survivors := make([]ProgramHeaderEntry, 0, len(e.ProgramHeaders))
	for _, p := range e.ProgramHeaders {
		if keep(p.Type) {
			survivors = append(survivors, p)
		}
	}

	e.ProgramHeaders = survivors
	e.Header.NumProgramHeaderEntries = uint16(len(survivors))

	e.state = stateMutated
}
