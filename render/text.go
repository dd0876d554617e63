package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wkalt/elfsize/symtree"
	"github.com/wkalt/elfsize/util"
)

/*
Package render turns a finished SymbolTree into output: an aligned text table,
an ordered JSON document or an HTML page. Renderers only read the tree. They
expect it to have been merged, sorted and accumulated already, and degrade to
"-" placeholders where sizes or totals are missing.
*/

////////////////////////////////////////////////////////////////////////////////

const (
	columnSeparator = "   "
	separatorFill   = '='
	totalsLabel     = "Symbols total"
	minLabelWidth   = 3
)

var tableHeaders = [3]string{"Symbol", "Size", "%"} // nolint:gochecknoglobals

// Line is one line of text output.
type Line struct {
	Text  string
	Class LineClass
}

// TextConfig controls the text table.
type TextConfig struct {
	// Header is centered in the title line. Empty prints a bare separator.
	Header string
	// MaxWidth bounds the table width by shrinking the label column. Zero
	// means unlimited.
	MaxWidth int
	// MinSize hides symbols smaller than it. Path segments are never hidden.
	MinSize float64
	// Indent is the number of spaces per tree level.
	Indent int
	// Colors assigns color classes to lines. Without it every line is plain.
	Colors bool
	// Alternating alternates the color of consecutive symbols.
	Alternating bool
	// HumanReadable formats sizes with binary units.
	HumanReadable bool
}

// DefaultTextConfig returns the default table configuration.
func DefaultTextConfig() TextConfig {
	return TextConfig{
		MaxWidth: 80,
		Indent:   2,
		Colors:   true,
	}
}

type protoline struct {
	fields [3]string
	class  LineClass
}

// Text renders the tree as an aligned three-column table of label, size and
// share of the total.
func Text(t *symtree.SymbolTree, cfg TextConfig) ([]Line, error) {
	total, hasTotal := t.Total()
	protolines, err := buildProtolines(t, cfg, total, hasTotal)
	if err != nil {
		return nil, err
	}
	widths := fieldWidths(protolines, cfg.MaxWidth)
	for i := range protolines {
		for j, field := range protolines[i].fields {
			if utf8.RuneCountInString(field) > widths[j] {
				protolines[i].fields[j] = util.Truncate(field, widths[j])
			}
		}
	}

	tableHeader := padRight(tableHeaders[0], widths[0]) + columnSeparator +
		padRight(tableHeaders[1], widths[1]) + columnSeparator +
		padRight(tableHeaders[2], widths[2])
	separator := strings.Repeat(string(separatorFill), utf8.RuneCountInString(tableHeader))

	lines := make([]Line, 0, len(protolines)+6)
	lines = append(lines,
		Line{Text: util.Center(cfg.Header, separatorFill, utf8.RuneCountInString(separator)), Class: ClassHeader},
		Line{Text: tableHeader, Class: ClassHeader},
		Line{Text: separator, Class: ClassHeader},
	)
	for _, p := range protolines {
		lines = append(lines, Line{Text: formatRow(p.fields, widths), Class: p.class})
	}
	if hasTotal {
		totals := formatRow([3]string{totalsLabel, sizeString(total, cfg.HumanReadable), ""}, widths)
		totalsSeparator := strings.Repeat(string(separatorFill), utf8.RuneCountInString(totals))
		lines = append(lines,
			Line{Text: totalsSeparator, Class: ClassHeader},
			Line{Text: totals, Class: ClassHeader},
			Line{Text: totalsSeparator, Class: ClassHeader},
		)
	}
	if !cfg.Colors {
		for i := range lines {
			lines[i].Class = ClassPlain
		}
	}
	return lines, nil
}

func buildProtolines(t *symtree.SymbolTree, cfg TextConfig, total uint64, hasTotal bool) ([]protoline, error) {
	var lines []protoline
	alternate := false
	it := t.Root().PreOrder()
	for it.More() {
		node, depth := it.Next()
		if node == t.Root() {
			continue
		}
		indent := strings.Repeat(" ", cfg.Indent*(depth-1))
		switch el := node.Value.Element.(type) {
		case *symtree.PathSegment:
			size, percent := "-", "-"
			if cumulative, ok := node.Value.CumulativeSize(); ok {
				size = sizeString(cumulative, cfg.HumanReadable)
				percent = percentString(cumulative, total, hasTotal)
			}
			class := ClassFile
			if el.Kind == symtree.Directory {
				class = ClassDirectory
			}
			lines = append(lines, protoline{[3]string{indent + el.Name, size, percent}, class})
		case symtree.SymbolLeaf:
			if float64(el.Symbol.Size) < cfg.MinSize {
				continue
			}
			class := ClassSymbol
			if alternate && cfg.Alternating {
				class = ClassSymbolAlternate
				alternate = false
			} else {
				alternate = true
			}
			lines = append(lines, protoline{
				[3]string{
					indent + el.Symbol.Name,
					sizeString(el.Symbol.Size, cfg.HumanReadable),
					percentString(el.Symbol.Size, total, hasTotal),
				},
				class,
			})
		default:
			return nil, symtree.NewUnexpectedElementError(node.Value.Element)
		}
	}
	return lines, nil
}

// fieldWidths returns the width of each column: the widest of its header and
// fields, with the label column shrunk until the table fits maxWidth.
func fieldWidths(lines []protoline, maxWidth int) [3]int {
	var widths [3]int
	for i, header := range tableHeaders {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, line := range lines {
		for i, field := range line.fields {
			widths[i] = max(widths[i], utf8.RuneCountInString(field))
		}
	}
	if maxWidth > 0 {
		sum := widths[0] + widths[1] + widths[2] + 2*len(columnSeparator)
		if sum > maxWidth {
			widths[0] = max(widths[0]-(sum-maxWidth), minLabelWidth)
		}
	}
	return widths
}

func formatRow(fields [3]string, widths [3]int) string {
	return padRight(fields[0], widths[0]) + columnSeparator +
		padLeft(fields[1], widths[1]) + columnSeparator +
		padLeft(fields[2], widths[2])
}

func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(width-utf8.RuneCountInString(s), 0))
}

func padLeft(s string, width int) string {
	return strings.Repeat(" ", max(width-utf8.RuneCountInString(s), 0)) + s
}

func sizeString(size uint64, humanReadable bool) string {
	if humanReadable {
		return util.SizeOf(size)
	}
	return strconv.FormatUint(size, 10)
}

func percentString(size, total uint64, hasTotal bool) string {
	if !hasTotal || total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(size)/float64(total)*100)
}
