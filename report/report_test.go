package report_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/elfsize/report"
	"github.com/wkalt/elfsize/selector"
	"github.com/wkalt/elfsize/symbol"
	"github.com/wkalt/elfsize/util/testutils"
)

func fixtures() ([]*symbol.Symbol, []*symbol.Section) {
	sections := []*symbol.Section{
		{Num: 1, Name: ".text", Type: "PROGBITS", Address: 0x100, Size: 2048, Flags: "AX"},
		{Num: 2, Name: ".data", Type: "PROGBITS", Address: 0x20000000, Size: 4, Flags: "WA"},
		{Num: 3, Name: ".bss", Type: "NOBITS", Address: 0x20000004, Size: 64, Flags: "WA"},
		{Num: 4, Name: ".comment", Type: "PROGBITS", Size: 16, Flags: "MS"},
	}
	symbols := []*symbol.Symbol{
		{Name: "main", Size: 100, Section: symbol.SectionNumber(1), File: "/src/app/main.c"},
		{Name: "helper", Size: 20, Section: symbol.SectionNumber(1), File: "/src/app/util.c"},
		{Name: "counter", Size: 4, Section: symbol.SectionNumber(2), File: "/src/app/main.c"},
		{Name: "buffer", Size: 64, Section: symbol.SectionNumber(3), File: "/src/app/util.c"},
		{Name: "orphan", Size: 8, Section: symbol.SectionNumber(1)},
		{Name: "external", Size: 5, Section: symbol.NewSectionRef("UND")},
	}
	return symbols, sections
}

func names(symbols []*symbol.Symbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = s.Name
	}
	return out
}

func mustSelect(t *testing.T, exprs ...string) *selector.Selector {
	t.Helper()
	sel, err := selector.Parse(exprs...)
	require.NoError(t, err)
	return sel
}

func TestViews(t *testing.T) {
	_, sections := fixtures()
	cases := []struct {
		assertion  string
		view       report.View
		name       string
		considered []string
	}{
		{"rom", report.ROM(), "ROM", []string{".text", ".data"}},
		{"ram", report.RAM(), "RAM", []string{".data", ".bss"}},
		{
			"sections",
			report.Sections(mustSelect(t, "3", ".comment")),
			"SECTIONS: 3,.comment",
			[]string{".bss", ".comment"},
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			assert.Equal(t, c.name, c.view.Name())
			assert.Equal(t, c.considered, c.view.Considered(sections))
			assert.False(t, c.view.Accepts(nil))
		})
	}
}

func TestFilterSymbols(t *testing.T) {
	ctx := context.Background()
	symbols, sections := fixtures()
	cases := []struct {
		assertion string
		view      report.View
		expected  []string
	}{
		{"rom", report.ROM(), []string{"main", "helper", "counter", "orphan"}},
		{"ram", report.RAM(), []string{"counter", "buffer"}},
		{"sections", report.Sections(mustSelect(t, "1-2")), []string{"main", "helper", "counter", "orphan"}},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			filtered, err := report.FilterSymbols(ctx, c.view, symbols, sections)
			require.NoError(t, err)
			assert.Equal(t, c.expected, names(filtered))
		})
	}
	t.Run("no symbols", func(t *testing.T) {
		_, err := report.FilterSymbols(ctx, report.Sections(mustSelect(t, "4")), symbols, sections)
		require.ErrorIs(t, err, report.ErrNoSymbols)
		assert.Contains(t, err.Error(), "sections were: .comment")
	})
}

func TestPrepare(t *testing.T) {
	ctx := context.Background()
	symbols, sections := fixtures()
	rom, err := report.FilterSymbols(ctx, report.ROM(), symbols, sections)
	require.NoError(t, err)

	cases := []struct {
		assertion string
		opts      []report.Option
		order     []string
		total     uint64
		hasTotal  bool
	}{
		{
			"defaults",
			nil,
			[]string{"main", "counter", "helper", "orphan"},
			132,
			true,
		},
		{
			"sort by name",
			[]report.Option{report.WithSortByName(true)},
			[]string{"counter", "main", "helper", "orphan"},
			132,
			true,
		},
		{
			"without totals",
			[]report.Option{report.WithTotals(false)},
			[]string{"main", "counter", "helper", "orphan"},
			0,
			false,
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			tree, err := report.Prepare(ctx, rom, c.opts...)
			require.NoError(t, err)
			assert.Equal(t, c.order, names(tree.Symbols()))
			total, ok := tree.Total()
			assert.Equal(t, c.hasTotal, ok)
			assert.Equal(t, c.total, total)
		})
	}

	t.Run("merge paths", func(t *testing.T) {
		tree, err := report.Prepare(ctx, rom)
		require.NoError(t, err)
		labels := []string{}
		for _, child := range tree.Root().Children() {
			labels = append(labels, child.Value.Label())
		}
		assert.Equal(t, []string{"/src/app", "?"}, labels)
	})
	t.Run("fish paths", func(t *testing.T) {
		tree, err := report.Prepare(ctx, rom, report.WithFishPaths(true))
		require.NoError(t, err)
		assert.Equal(t, "/s/app", tree.Root().Children()[0].Value.Label())
	})
	t.Run("without merge", func(t *testing.T) {
		tree, err := report.Prepare(ctx, rom, report.WithMergePaths(false))
		require.NoError(t, err)
		assert.Equal(t, "/", tree.Root().Children()[0].Value.Label())
	})
	t.Run("without accumulation", func(t *testing.T) {
		tree, err := report.Prepare(ctx, rom, report.WithAccumulate(false))
		require.NoError(t, err)
		_, ok := tree.Root().Children()[0].Value.CumulativeSize()
		assert.False(t, ok)
	})
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	symbols, sections := fixtures()

	t.Run("text", func(t *testing.T) {
		r, err := report.Render(ctx, "firmware.elf", report.ROM(), symbols, sections,
			report.FormatText, report.WithColors(false))
		require.NoError(t, err)
		assert.Equal(t, "ROM", r.View)
		buf := &bytes.Buffer{}
		require.NoError(t, r.Write(buf))
		assert.Equal(t, testutils.Lines(
			"========== ROM ===========",
			"Symbol        Size   %    ",
			"==========================",
			"/src/app       124   93.94",
			"  main.c       104   78.79",
			"    main       100   75.76",
			"    counter      4    3.03",
			"  util.c        20   15.15",
			"    helper      20   15.15",
			"?                8    6.06",
			"  orphan         8    6.06",
			"============================",
			"Symbols total    132        ",
			"============================",
		), buf.String())
	})
	t.Run("json files only", func(t *testing.T) {
		r, err := report.Render(ctx, "firmware.elf", report.ROM(), symbols, sections,
			report.FormatJSON, report.WithFilesOnly(true))
		require.NoError(t, err)
		buf := &bytes.Buffer{}
		require.NoError(t, r.Write(buf))
		assert.Equal(t,
			`{"/src/app":{"name":"/src/app","cumulative_size":124,"children":{`+
				`"main.c":{"name":"main.c","cumulative_size":104,"children":{}},`+
				`"util.c":{"name":"util.c","cumulative_size":20,"children":{}}}},`+
				`"?":{"name":"?","cumulative_size":8,"children":{}}}`+"\n",
			buf.String(),
		)
	})
	t.Run("html", func(t *testing.T) {
		r, err := report.Render(ctx, "build/firmware.elf", report.RAM(), symbols, sections,
			report.FormatHTML, report.WithCSS("td { color: red; }"))
		require.NoError(t, err)
		buf := &bytes.Buffer{}
		require.NoError(t, r.Write(buf))
		html := buf.String()
		assert.Contains(t, html, "<title>ELF size information for firmware.elf - RAM</title>")
		assert.Contains(t, html, "td { color: red; }")
		assert.Contains(t, html, "buffer")
		assert.NotContains(t, html, "helper")
	})
	t.Run("no symbols", func(t *testing.T) {
		_, err := report.Render(ctx, "firmware.elf", report.Sections(mustSelect(t, ".comment")),
			symbols, sections, report.FormatText)
		require.ErrorIs(t, err, report.ErrNoSymbols)
	})
}

func TestFormat(t *testing.T) {
	cases := []struct {
		assertion string
		format    report.Format
		name      string
		ext       string
	}{
		{"text", report.FormatText, "text", "txt"},
		{"json", report.FormatJSON, "json", "json"},
		{"html", report.FormatHTML, "html", "html"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			assert.Equal(t, c.name, c.format.String())
			assert.Equal(t, c.ext, c.format.Ext())
		})
	}
}

func TestPrintSections(t *testing.T) {
	_, sections := fixtures()
	t.Run("table", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, report.PrintSections(buf, sections[:2], 80, false))
		assert.Equal(t, testutils.Lines(
			"============================ SECTIONS =============================",
			"|  N  |  Name  |   Type   |    Addr    |   Size   |     Flags     |",
			"|-----|--------|----------|------------|----------|---------------|",
			"| 1   | .text  | PROGBITS | 0x100      | 2.0 KiB  | Alloc,Execute |",
			"| 2   | .data  | PROGBITS | 0x20000000 | 4.0 B    | Write,Alloc   |",
		), buf.String())
	})
	t.Run("narrow", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, report.PrintSections(buf, sections[:2], 30, false))
		lines := strings.Split(buf.String(), "\n")
		assert.Contains(t, lines[0], " SECTIONS ")
		assert.Equal(t, "-[ RECORD 1 ]", lines[1][:13])
		assert.Contains(t, lines, "Flags        | Alloc,Execute")
	})
}
