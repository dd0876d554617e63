package report

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/wkalt/elfsize/render"
	"github.com/wkalt/elfsize/symbol"
	"github.com/wkalt/elfsize/symtree"
	"github.com/wkalt/elfsize/util/log"
)

/*
Package report glues extraction output to the renderers. A report covers one
view of a binary: its symbols are filtered to the sections the view accepts,
built into a symbol tree, refined according to the options and rendered in
the requested format.
*/

////////////////////////////////////////////////////////////////////////////////

// Format is an output format.
type Format int

const (
	// FormatText is the aligned text table.
	FormatText Format = iota
	// FormatJSON is the nested JSON document.
	FormatJSON
	// FormatHTML is the collapsible HTML page.
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatHTML:
		return "html"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatHTML:
		return "html"
	default:
		return "txt"
	}
}

// Report is a rendered report.
type Report struct {
	View   string
	Format Format

	lines []render.Line
	data  []byte
}

// Write writes the report to w. Text reports are colored according to the
// classes assigned at render time; the other formats end with a newline.
func (r *Report) Write(w io.Writer) error {
	if r.Format == FormatText {
		return render.WriteLines(w, r.lines)
	}
	if _, err := w.Write(r.data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// FilterSymbols returns the symbols whose section the view accepts, in input
// order. A view that selects nothing is an error wrapping ErrNoSymbols.
func FilterSymbols(
	ctx context.Context,
	view View,
	symbols []*symbol.Symbol,
	sections []*symbol.Section,
) ([]*symbol.Symbol, error) {
	considered := view.Considered(sections)
	log.Infof(ctx, "considering sections: %s", strings.Join(considered, ", "))
	index := symbol.NewSectionIndex(sections)
	var filtered []*symbol.Symbol
	for _, s := range symbols {
		if section, ok := index.Lookup(s.Section); ok && view.Accepts(section) {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return nil, noSymbolsError(considered)
	}
	return filtered, nil
}

// Prepare builds a tree from symbols and refines it: paths are merged, sizes
// accumulated, siblings sorted and the total computed, each step subject to
// the options.
func Prepare(ctx context.Context, symbols []*symbol.Symbol, opts ...Option) (*symtree.SymbolTree, error) {
	o := newOptions(opts...)
	t := symtree.New(ctx, symbols)
	if o.mergePaths {
		if err := t.MergePaths(o.fishPaths); err != nil {
			return nil, fmt.Errorf("failed to merge paths: %w", err)
		}
	}
	if o.accumulate {
		if err := t.AccumulateSizes(false); err != nil {
			return nil, fmt.Errorf("failed to accumulate sizes: %w", err)
		}
	}
	var err error
	if o.sortByName {
		err = t.Sort(symbol.ByName, false)
	} else {
		err = t.Sort(symbol.BySize, true)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sort tree: %w", err)
	}
	if o.totals {
		total := t.CalculateTotal()
		log.Debugw(ctx, "calculated total",
			"symbols", humanize.Comma(int64(len(symbols))),
			"total", humanize.IBytes(total),
		)
	}
	return t, nil
}

// Render produces the report for one view of a binary. elf names the binary
// in HTML titles.
func Render(
	ctx context.Context,
	elf string,
	view View,
	symbols []*symbol.Symbol,
	sections []*symbol.Section,
	format Format,
	opts ...Option,
) (*Report, error) {
	ctx = log.AddTags(ctx, "view", view.Name())
	filtered, err := FilterSymbols(ctx, view, symbols, sections)
	if err != nil {
		return nil, err
	}
	t, err := Prepare(ctx, filtered, opts...)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts...)
	report := &Report{View: view.Name(), Format: format}
	switch format {
	case FormatText:
		report.lines, err = render.Text(t, render.TextConfig{
			Header:        view.Name(),
			MaxWidth:      o.maxWidth,
			MinSize:       o.effectiveMinSize(),
			Indent:        2,
			Colors:        o.colors,
			Alternating:   o.alternatingColor,
			HumanReadable: o.humanReadable,
		})
	case FormatJSON:
		report.data, err = render.JSON(t, o.effectiveMinSize())
	case FormatHTML:
		report.data, err = renderHTML(t, elf, view, o)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s report: %w", format, err)
	}
	log.Infof(ctx, "rendered %s report for %d symbols", format, len(filtered))
	return report, nil
}

func renderHTML(t *symtree.SymbolTree, elf string, view View, o *options) ([]byte, error) {
	m, err := render.Tree(t, o.effectiveMinSize())
	if err != nil {
		return nil, err
	}
	var htmlOpts []render.HTMLOption
	if o.css != "" {
		htmlOpts = append(htmlOpts, render.WithCSS(o.css))
	}
	title := fmt.Sprintf("ELF size information for %s - %s", filepath.Base(elf), view.Name())
	return render.HTML(m, title, htmlOpts...)
}
