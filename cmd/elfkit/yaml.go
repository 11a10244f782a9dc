package main

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/afaal/elf-kit/elf"
)

// yamlBlock is a marshalable projection of elf.Block: the library's
// Block interface deliberately keeps flatten() unexported, so the CLI
// builds its own plain-struct tree from the exported accessor surface
// (RelativeOffset, Size, and each concrete type's exported fields)
// instead of trying to marshal the library types directly.
type yamlBlock struct {
	Kind     string       `yaml:"kind"`
	Offset   uint64       `yaml:"relative_offset"`
	Size     uint64       `yaml:"size"`
	Name     string       `yaml:"name,omitempty"`
	Children []*yamlBlock `yaml:"children,omitempty"`
}

type yamlDump struct {
	FileType string       `yaml:"file_type"`
	Entry    uint64       `yaml:"entry"`
	Blocks   []*yamlBlock `yaml:"blocks"`
}

func dumpYAML(w io.Writer, e *elf.Elf) error {
	doc := yamlDump{
		FileType: e.Header.FileType.String(),
		Entry:    e.Header.Entry,
	}
	for _, b := range e.Blocks {
		doc.Blocks = append(doc.Blocks, toYAMLBlock(b))
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(doc)
}

func toYAMLBlock(b elf.Block) *yamlBlock {
	node := &yamlBlock{
		Kind:   blockKind(b),
		Offset: b.RelativeOffset(),
		Size:   b.Size(),
		Name:   blockName(b),
	}
	if seg, ok := b.(*elf.SegmentBlock); ok {
		for _, child := range seg.Children {
			node.Children = append(node.Children, toYAMLBlock(child))
		}
	}
	return node
}

func blockKind(b elf.Block) string {
	switch b.(type) {
	case *elf.SegmentBlock:
		return "segment"
	case *elf.SectionBlock:
		return "section"
	case *elf.ProgramHeaderTableBlock:
		return "phdr_table"
	case *elf.RawDataBlock:
		return "raw"
	case *elf.PaddingBlock:
		return "padding"
	default:
		return "unknown"
	}
}

func blockName(b elf.Block) string {
	if s, ok := b.(*elf.SectionBlock); ok {
		return s.Header.Name
	}
	return ""
}
