package binutils

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/wkalt/elfsize/symbol"
	"github.com/wkalt/elfsize/util/log"
)

// Lines of `readelf --wide --syms`:
//
//	Num:    Value  Size Type    Bind   Vis      Ndx Name
//	565: 08002bf9     2 FUNC    WEAK   DEFAULT    2 TIM2_IRQHandler
//	566: 200002a8    88 OBJECT  GLOBAL DEFAULT    8 hspi1
var symbolPattern = regexp.MustCompile(`^\s*` + // nolint:gochecknoglobals
	`(?P<num>\d+):\s+` +
	`(?P<value>[0-9a-fA-F]+)\s+` +
	`(?P<size>(?:0x)?[0-9A-Fa-f]+)\s+` +
	`(?P<type>\S+)\s+` +
	`(?P<bind>\S+)\s+` +
	`(?P<visibility>\S+)\s+` +
	`(?P<section>\S+)\s+` +
	`(?P<name>.*)$`)

// Lines of `readelf --wide --section-headers`:
//
//	[Nr] Name              Type            Addr     Off    Size   ES Flg Lk Inf Al
//	[ 1] .isr_vector       PROGBITS        08000000 010000 000188 00   A  0   0  1
//	[ 2] .text             PROGBITS        08000190 010190 00490c 00  AX  0   0 16
var sectionPattern = regexp.MustCompile(`^\s*` + // nolint:gochecknoglobals
	`\[\s*(?P<num>\d+)\]\s+` +
	`(?P<name>\S+)\s+` +
	`(?P<type>\S+)\s+` +
	`(?P<address>[0-9a-fA-F]+)\s+` +
	`(?P<offset>[0-9a-fA-F]+)\s+` +
	`(?P<size>[0-9a-fA-F]+)\s+` +
	`(?P<entry_size>[0-9a-fA-F]+)\s+` +
	`(?P<flags>\S*)\s+` +
	`(?P<link>[0-9a-fA-F]+)\s+` +
	`(?P<info>[0-9a-fA-F]+)\s+` +
	`(?P<alignment>[0-9a-fA-F]+)\s*$`)

var ignoredSymbolTypes = []string{"NOTYPE", "SECTION", "FILE"} // nolint:gochecknoglobals

// groups returns the named groups of a match.
func groups(re *regexp.Regexp, line string) (map[string]string, bool) {
	match := re.FindStringSubmatch(line)
	if match == nil {
		return nil, false
	}
	m := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if name != "" {
			m[name] = match[i]
		}
	}
	return m, true
}

// parseSize parses a symbol size, which readelf prints in decimal unless it
// is too wide for the column, in which case it switches to 0x-prefixed hex.
func parseSize(s string) (uint64, error) {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}
	return strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
}

// ParseSymbols parses readelf's symbol table listing. Symbols without a
// name, with a type of NOTYPE, SECTION or FILE, or with zero size are
// skipped. It returns the kept symbols and the number of lines skipped.
func ParseSymbols(ctx context.Context, r io.Reader) ([]*symbol.Symbol, int, error) {
	var symbols []*symbol.Symbol
	ignored := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		s, err := parseSymbol(line)
		if err != nil {
			return nil, 0, err
		}
		if s == nil {
			log.Debugf(ctx, "ignoring: %s", strings.TrimSpace(line))
			ignored++
			continue
		}
		symbols = append(symbols, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read symbols: %w", err)
	}
	return symbols, ignored, nil
}

func parseSymbol(line string) (*symbol.Symbol, error) {
	m, ok := groups(symbolPattern, line)
	if !ok {
		return nil, nil
	}
	num, err := strconv.Atoi(m["num"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse symbol number %q: %w", m["num"], err)
	}
	value, err := strconv.ParseUint(m["value"], 16, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse symbol value %q: %w", m["value"], err)
	}
	size, err := parseSize(m["size"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse symbol size %q: %w", m["size"], err)
	}
	name := strings.TrimSpace(m["name"])
	if name == "" || size == 0 {
		return nil, nil
	}
	for _, t := range ignoredSymbolTypes {
		if strings.EqualFold(m["type"], t) {
			return nil, nil
		}
	}
	return &symbol.Symbol{
		Num:        num,
		Name:       name,
		Value:      value,
		Size:       size,
		Type:       m["type"],
		Bind:       m["bind"],
		Visibility: m["visibility"],
		Section:    symbol.NewSectionRef(m["section"]),
	}, nil
}

// ParseSections parses readelf's section header listing.
func ParseSections(ctx context.Context, r io.Reader) ([]*symbol.Section, error) {
	var sections []*symbol.Section
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		m, ok := groups(sectionPattern, line)
		if !ok {
			log.Debugf(ctx, "no match: %s", strings.TrimSpace(line))
			continue
		}
		section, err := newSection(m)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sections: %w", err)
	}
	return sections, nil
}

func newSection(m map[string]string) (*symbol.Section, error) {
	s := &symbol.Section{
		Name:  m["name"],
		Type:  m["type"],
		Flags: m["flags"],
	}
	var err error
	decimal := []struct {
		field string
		dst   *int
	}{
		{"num", &s.Num},
		{"link", &s.Link},
		{"info", &s.Info},
		{"alignment", &s.Alignment},
	}
	for _, d := range decimal {
		if *d.dst, err = strconv.Atoi(m[d.field]); err != nil {
			return nil, fmt.Errorf("failed to parse section %s %q: %w", d.field, m[d.field], err)
		}
	}
	hex := []struct {
		field string
		dst   *uint64
	}{
		{"address", &s.Address},
		{"offset", &s.Offset},
		{"size", &s.Size},
		{"entry_size", &s.EntrySize},
	}
	for _, h := range hex {
		if *h.dst, err = strconv.ParseUint(m[h.field], 16, 64); err != nil {
			return nil, fmt.Errorf("failed to parse section %s %q: %w", h.field, m[h.field], err)
		}
	}
	return s, nil
}

// ReadSymbols lists the symbols of an ELF file.
func (t *Toolchain) ReadSymbols(ctx context.Context, elf string) ([]*symbol.Symbol, error) {
	out, err := t.run(ctx, "readelf", "--wide", "--syms", elf)
	if err != nil {
		return nil, err
	}
	log.Infof(ctx, "using readelf symbols regex: %s", symbolPattern)
	symbols, ignored, err := ParseSymbols(ctx, bytes.NewReader(out))
	if err != nil {
		return nil, err
	}
	log.Infof(ctx, "ignored %d/%d symbols", ignored, ignored+len(symbols))
	return symbols, nil
}

// ReadSections lists the section headers of an ELF file.
func (t *Toolchain) ReadSections(ctx context.Context, elf string) ([]*symbol.Section, error) {
	out, err := t.run(ctx, "readelf", "--wide", "--section-headers", elf)
	if err != nil {
		return nil, err
	}
	log.Infof(ctx, "using readelf sections regex: %s", sectionPattern)
	return ParseSections(ctx, bytes.NewReader(out))
}
