package symbol

import (
	"fmt"
	"strconv"
)

/*
Package symbol holds the records the size report is built from: linker symbols
as listed in an ELF symbol table, optionally annotated with the source file and
line that defined them, and the section headers those symbols live in.

Records are plain values. The extraction layer fills them in, the demangler may
rewrite a symbol's name once, and from then on they are read-only.
*/

////////////////////////////////////////////////////////////////////////////////

// SectionRef identifies the section a symbol belongs to. readelf reports
// either a section number or a special name such as UND or ABS.
type SectionRef struct {
	num     int
	name    string
	numeric bool
}

// NewSectionRef parses the Ndx column of a symbol table listing.
func NewSectionRef(s string) SectionRef {
	if n, err := strconv.Atoi(s); err == nil {
		return SectionRef{num: n, numeric: true}
	}
	return SectionRef{name: s}
}

// SectionNumber returns a reference to the numbered section.
func SectionNumber(n int) SectionRef {
	return SectionRef{num: n, numeric: true}
}

// Num returns the section number and whether the reference is numeric.
func (r SectionRef) Num() (int, bool) {
	return r.num, r.numeric
}

func (r SectionRef) String() string {
	if r.numeric {
		return strconv.Itoa(r.num)
	}
	return r.name
}

// Symbol is a named, sized entity from a binary's symbol table.
type Symbol struct {
	Num        int
	Name       string
	Value      uint64
	Size       uint64
	Type       string
	Bind       string
	Visibility string
	Section    SectionRef

	// File is the absolute path of the defining source file, empty when the
	// symbol could not be attributed.
	File string
	// Line is the defining line, zero when unknown.
	Line int
}

// HasFile reports whether the symbol is attributed to a source file.
func (s *Symbol) HasFile() bool {
	return s.File != ""
}

func (s *Symbol) String() string {
	return fmt.Sprintf("Symbol(%s)", s.Name)
}

// ByName orders symbols by name.
func ByName(a, b *Symbol) int {
	switch {
	case a.Name < b.Name:
		return -1
	case a.Name > b.Name:
		return 1
	default:
		return 0
	}
}

// BySize orders symbols by size, smallest first.
func BySize(a, b *Symbol) int {
	switch {
	case a.Size < b.Size:
		return -1
	case a.Size > b.Size:
		return 1
	default:
		return 0
	}
}

// TotalSize sums the sizes of the given symbols.
func TotalSize(symbols []*Symbol) uint64 {
	var total uint64
	for _, s := range symbols {
		total += s.Size
	}
	return total
}
