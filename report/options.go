package report

import "math"

// Option is a functional option for report preparation and rendering.
type Option func(*options)

type options struct {
	maxWidth         int
	minSize          float64
	filesOnly        bool
	mergePaths       bool
	fishPaths        bool
	accumulate       bool
	sortByName       bool
	colors           bool
	alternatingColor bool
	humanReadable    bool
	totals           bool
	css              string
}

func newOptions(opts ...Option) *options {
	o := &options{
		maxWidth:   80,
		mergePaths: true,
		accumulate: true,
		colors:     true,
		totals:     true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// effectiveMinSize returns the symbol size threshold. Files-only reports hide
// every symbol.
func (o *options) effectiveMinSize() float64 {
	if o.filesOnly {
		return math.Inf(1)
	}
	return o.minSize
}

// WithMaxWidth bounds the width of text reports. Zero means unlimited.
func WithMaxWidth(width int) Option {
	return func(o *options) {
		o.maxWidth = width
	}
}

// WithMinSize hides symbols smaller than size.
func WithMinSize(size float64) Option {
	return func(o *options) {
		o.minSize = size
	}
}

// WithFilesOnly hides all symbols, leaving only paths.
func WithFilesOnly(filesOnly bool) Option {
	return func(o *options) {
		o.filesOnly = filesOnly
	}
}

// WithMergePaths controls whether single-child directory chains are merged.
func WithMergePaths(merge bool) Option {
	return func(o *options) {
		o.mergePaths = merge
	}
}

// WithFishPaths abbreviates merged directory names fish-shell style.
func WithFishPaths(fish bool) Option {
	return func(o *options) {
		o.fishPaths = fish
	}
}

// WithAccumulate controls whether cumulative path sizes are computed.
func WithAccumulate(accumulate bool) Option {
	return func(o *options) {
		o.accumulate = accumulate
	}
}

// WithSortByName sorts symbols by name instead of by descending size.
func WithSortByName(byName bool) Option {
	return func(o *options) {
		o.sortByName = byName
	}
}

// WithColors enables colored text output.
func WithColors(colors bool) Option {
	return func(o *options) {
		o.colors = colors
	}
}

// WithAlternatingColors alternates the color of consecutive symbols.
func WithAlternatingColors(alternating bool) Option {
	return func(o *options) {
		o.alternatingColor = alternating
	}
}

// WithHumanReadable prints sizes with binary units.
func WithHumanReadable(humanReadable bool) Option {
	return func(o *options) {
		o.humanReadable = humanReadable
	}
}

// WithTotals controls whether the tree total is computed and printed.
func WithTotals(totals bool) Option {
	return func(o *options) {
		o.totals = totals
	}
}

// WithCSS replaces the stylesheet of HTML reports.
func WithCSS(css string) Option {
	return func(o *options) {
		o.css = css
	}
}
