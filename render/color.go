package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// LineClass is the semantic color class of a rendered line.
type LineClass int

const (
	// ClassPlain lines are printed without color.
	ClassPlain LineClass = iota
	// ClassHeader covers titles, separators, column headers and totals.
	ClassHeader
	// ClassDirectory covers directory segments.
	ClassDirectory
	// ClassFile covers file segments and buckets.
	ClassFile
	// ClassSymbol covers symbols.
	ClassSymbol
	// ClassSymbolAlternate covers every second symbol in alternating mode.
	ClassSymbolAlternate
)

func (c LineClass) String() string {
	switch c {
	case ClassPlain:
		return "plain"
	case ClassHeader:
		return "header"
	case ClassDirectory:
		return "directory"
	case ClassFile:
		return "file"
	case ClassSymbol:
		return "symbol"
	case ClassSymbolAlternate:
		return "symbol-alternate"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

var palette = map[LineClass]*color.Color{ // nolint:gochecknoglobals
	ClassHeader:          color.New(color.Bold, color.FgBlue),
	ClassDirectory:       color.New(color.FgBlue),
	ClassFile:            color.New(color.FgHiBlue),
	ClassSymbol:          color.New(color.FgHiYellow),
	ClassSymbolAlternate: color.New(color.FgHiGreen),
}

// Color returns the terminal color for a class, or nil for plain lines.
func Color(class LineClass) *color.Color {
	return palette[class]
}

// WriteLines writes lines to w, one per row, colored according to their
// class. Color output follows fatih/color's terminal detection.
func WriteLines(w io.Writer, lines []Line) error {
	for _, line := range lines {
		c := Color(line.Class)
		var err error
		if c == nil {
			_, err = fmt.Fprintln(w, line.Text)
		} else {
			_, err = c.Fprintln(w, line.Text)
		}
		if err != nil {
			return fmt.Errorf("failed to write line: %w", err)
		}
	}
	return nil
}
