package symbol_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/elfsize/symbol"
)

func TestSectionRef(t *testing.T) {
	cases := []struct {
		assertion string
		input     string
		num       int
		numeric   bool
		str       string
	}{
		{"numeric", "12", 12, true, "12"},
		{"undefined", "UND", 0, false, "UND"},
		{"absolute", "ABS", 0, false, "ABS"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			ref := symbol.NewSectionRef(c.input)
			num, ok := ref.Num()
			assert.Equal(t, c.numeric, ok)
			assert.Equal(t, c.num, num)
			assert.Equal(t, c.str, ref.String())
		})
	}
}

func TestSymbolOrdering(t *testing.T) {
	a := &symbol.Symbol{Name: "alpha", Size: 30}
	b := &symbol.Symbol{Name: "beta", Size: 10}
	c := &symbol.Symbol{Name: "gamma", Size: 20}

	t.Run("by name", func(t *testing.T) {
		symbols := []*symbol.Symbol{c, a, b}
		slices.SortStableFunc(symbols, symbol.ByName)
		assert.Equal(t, []*symbol.Symbol{a, b, c}, symbols)
	})
	t.Run("by size", func(t *testing.T) {
		symbols := []*symbol.Symbol{c, a, b}
		slices.SortStableFunc(symbols, symbol.BySize)
		assert.Equal(t, []*symbol.Symbol{b, c, a}, symbols)
	})
	t.Run("total", func(t *testing.T) {
		assert.Equal(t, uint64(60), symbol.TotalSize([]*symbol.Symbol{a, b, c}))
	})
	t.Run("has file", func(t *testing.T) {
		assert.False(t, a.HasFile())
		assert.True(t, (&symbol.Symbol{File: "/a.c"}).HasFile())
	})
}

func TestSectionPredicates(t *testing.T) {
	cases := []struct {
		assertion string
		section   symbol.Section
		rom       bool
		ram       bool
	}{
		{"text", symbol.Section{Name: ".text", Type: "PROGBITS", Flags: "AX"}, true, false},
		{"rodata", symbol.Section{Name: ".rodata", Type: "PROGBITS", Flags: "A"}, true, false},
		{"data", symbol.Section{Name: ".data", Type: "PROGBITS", Flags: "WA"}, true, true},
		{"bss", symbol.Section{Name: ".bss", Type: "NOBITS", Flags: "WA"}, false, true},
		{"debug info", symbol.Section{Name: ".debug_info", Type: "PROGBITS", Flags: ""}, false, false},
		{"comment", symbol.Section{Name: ".comment", Type: "PROGBITS", Flags: "MS"}, false, false},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			assert.Equal(t, c.rom, c.section.OccupiesROM())
			assert.Equal(t, c.ram, c.section.OccupiesRAM())
		})
	}
}

func TestFlagNames(t *testing.T) {
	cases := []struct {
		assertion string
		flags     string
		expected  string
	}{
		{"empty", "", ""},
		{"code", "AX", "Alloc,Execute"},
		{"data", "WA", "Write,Alloc"},
		{"multi word", "AL", "Alloc,Link_Order"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			s := symbol.Section{Flags: c.flags}
			assert.Equal(t, c.expected, s.FlagNames())
		})
	}
	assert.Equal(t, "GNU_RETAIN", symbol.FlagGNURetain.String())
}

func TestSectionIndex(t *testing.T) {
	text := &symbol.Section{Num: 1, Name: ".text"}
	data := &symbol.Section{Num: 4, Name: ".data"}
	index := symbol.NewSectionIndex([]*symbol.Section{text, data})

	s, ok := index.Lookup(symbol.SectionNumber(4))
	require.True(t, ok)
	assert.Equal(t, data, s)

	_, ok = index.Lookup(symbol.SectionNumber(2))
	assert.False(t, ok)

	_, ok = index.Lookup(symbol.NewSectionRef("UND"))
	assert.False(t, ok)
}

func TestDemangle(t *testing.T) {
	symbols := []*symbol.Symbol{
		{Name: "_ZN3foo3barEv"},
		{Name: "main"},
	}
	n := symbol.Demangle(symbols)
	assert.Equal(t, 1, n)
	assert.Equal(t, "foo::bar()", symbols[0].Name)
	assert.Equal(t, "main", symbols[1].Name)
}
