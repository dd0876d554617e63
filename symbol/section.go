package symbol

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Flag is a single-character section flag code as printed by readelf.
type Flag byte

// Section flag codes. See the key printed under `readelf -WS`.
const (
	FlagWrite                     Flag = 'W'
	FlagAlloc                     Flag = 'A'
	FlagExecute                   Flag = 'X'
	FlagMerge                     Flag = 'M'
	FlagStrings                   Flag = 'S'
	FlagInfo                      Flag = 'I'
	FlagLinkOrder                 Flag = 'L'
	FlagExtraOSProcessingRequired Flag = 'O'
	FlagGroup                     Flag = 'G'
	FlagTLS                       Flag = 'T'
	FlagCompressed                Flag = 'C'
	FlagUnknown                   Flag = 'x'
	FlagOSSpecific                Flag = 'o'
	FlagExclude                   Flag = 'E'
	FlagPurecode                  Flag = 'y'
	FlagProcessorSpecific         Flag = 'p'
	FlagPPCVLE                    Flag = 'v'
	FlagGNUMBind                  Flag = 'D'
	FlagX8664Large                Flag = 'l'
	FlagGNURetain                 Flag = 'R'
)

const sectionTypeNoBits = "NOBITS"

var flagNames = map[Flag]string{ // nolint:gochecknoglobals
	FlagWrite:                     "WRITE",
	FlagAlloc:                     "ALLOC",
	FlagExecute:                   "EXECUTE",
	FlagMerge:                     "MERGE",
	FlagStrings:                   "STRINGS",
	FlagInfo:                      "INFO",
	FlagLinkOrder:                 "LINK_ORDER",
	FlagExtraOSProcessingRequired: "EXTRA_OS_PROCESSING_REQUIRED",
	FlagGroup:                     "GROUP",
	FlagTLS:                       "TLS",
	FlagCompressed:                "COMPRESSED",
	FlagUnknown:                   "UNKNOWN",
	FlagOSSpecific:                "OS_SPECIFIC",
	FlagExclude:                   "EXCLUDE",
	FlagPurecode:                  "PURECODE",
	FlagProcessorSpecific:         "PROCESSOR_SPECIFIC",
	FlagPPCVLE:                    "PPC_VLE",
	FlagGNUMBind:                  "GNU_MBIND",
	FlagX8664Large:                "X86_64_LARGE",
	FlagGNURetain:                 "GNU_RETAIN",
}

func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return "?" + string(f)
}

// Section is an ELF section header as listed by `readelf -WS`.
type Section struct {
	Num       int
	Name      string
	Type      string
	Address   uint64
	Offset    uint64
	Size      uint64
	EntrySize uint64
	Flags     string
	Link      int
	Info      int
	Alignment int
}

// HasFlag reports whether the section carries the flag.
func (s *Section) HasFlag(f Flag) bool {
	return strings.IndexByte(s.Flags, byte(f)) >= 0
}

// IsWritable reports whether the section is writable at runtime.
func (s *Section) IsWritable() bool {
	return s.HasFlag(FlagWrite)
}

// OccupiesMemory reports whether the section is allocated in the memory image.
func (s *Section) OccupiesMemory() bool {
	return s.HasFlag(FlagAlloc)
}

// OccupiesROM reports whether the section is stored in the image. This holds
// for small embedded targets and is a simplification elsewhere.
func (s *Section) OccupiesROM() bool {
	return s.OccupiesMemory() && s.Type != sectionTypeNoBits
}

// OccupiesRAM reports whether the section needs RAM at runtime.
func (s *Section) OccupiesRAM() bool {
	return s.OccupiesMemory() && s.IsWritable()
}

// FlagNames returns the section's flags as comma-separated title-case names,
// e.g. "Write,Alloc".
func (s *Section) FlagNames() string {
	caser := cases.Title(language.English)
	names := make([]string, 0, len(s.Flags))
	for i := 0; i < len(s.Flags); i++ {
		name := strings.ReplaceAll(Flag(s.Flags[i]).String(), "_", " ")
		names = append(names, strings.ReplaceAll(caser.String(name), " ", "_"))
	}
	return strings.Join(names, ",")
}

// SectionIndex maps section numbers to sections.
type SectionIndex map[int]*Section

// NewSectionIndex indexes sections by number.
func NewSectionIndex(sections []*Section) SectionIndex {
	index := make(SectionIndex, len(sections))
	for _, s := range sections {
		index[s.Num] = s
	}
	return index
}

// Lookup resolves a symbol's section reference. Non-numeric references such as
// UND or ABS never resolve.
func (idx SectionIndex) Lookup(ref SectionRef) (*Section, bool) {
	num, ok := ref.Num()
	if !ok {
		return nil, false
	}
	s, ok := idx[num]
	return s, ok
}
