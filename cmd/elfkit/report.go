package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/afaal/elf-kit/elf"
)

// dumpTables prints the ELF header, program-header table, section-header
// table, and block tree as fixed-width tables, in the style of
// thqw0925-go2elf's options package.
func dumpTables(w io.Writer, e *elf.Elf) {
	fmt.Fprintln(w, "ELF Header:")
	fmt.Fprintf(w, "  Class:\t%v\n", e.Header.Class)
	fmt.Fprintf(w, "  Data:\t%v\n", e.Header.DataEncoding)
	fmt.Fprintf(w, "  Type:\t%v\n", e.Header.FileType)
	fmt.Fprintf(w, "  Entry:\t0x%x\n", e.Header.Entry)
	fmt.Fprintf(w, "  ProgramHeaderOffset:\t0x%x\n", e.Header.ProgramHeaderOffset)
	fmt.Fprintf(w, "  SectionHeaderOffset:\t0x%x\n", e.Header.SectionHeaderOffset)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Program Headers:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.TabIndent)
	fmt.Fprintln(tw, "Type:\tFlags:\tOffset:\tVAddr:\tPAddr:\tFileSize:\tMemSize:\tAlign:")
	for _, p := range e.ProgramHeaders {
		fmt.Fprintf(tw, "%v\t%v\t0x%x\t0x%x\t0x%x\t%d\t%d\t%d\n",
			p.Type, p.Flags, p.Offset, p.VirtualAddress, p.PhysicalAddress,
			p.FileSize, p.MemorySize, p.Align)
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Section Headers:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.TabIndent)
	fmt.Fprintln(tw, "Name:\tType:\tFlags:\tAddr:\tOffset:\tSize:")
	for _, s := range e.SectionHeaders {
		fmt.Fprintf(tw, "%s\t%v\t%v\t0x%x\t0x%x\t%d\n",
			s.Name, s.Type, s.Flags, s.Address, s.Offset, s.Size)
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Block Tree:")
	e.Walk(func(b elf.Block, absOffset uint64) bool {
		fmt.Fprintf(w, "0x%x (len %d) %s\n", absOffset, b.Size(), describeBlock(b))
		return true
	})
}

func describeBlock(b elf.Block) string {
	switch v := b.(type) {
	case *elf.SegmentBlock:
		return fmt.Sprintf("Segment %v", v.Header.Type)
	case *elf.SectionBlock:
		name := v.Header.Name
		if name == "" {
			name = "<unnamed>"
		}
		return fmt.Sprintf("Section %s (%v)", name, v.Header.Type)
	case *elf.ProgramHeaderTableBlock:
		return "ProgramHeaderTable"
	case *elf.RawDataBlock:
		return "RawData"
	case *elf.PaddingBlock:
		return "Padding"
	default:
		return "Block"
	}
}
