package symbol

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter selects symbols by the source file they were attributed to.
type PathFilter struct {
	include []string
	exclude []string
}

// NewPathFilter validates the glob patterns and returns a filter. A symbol is
// kept when it matches no exclude pattern and, if include patterns are given,
// at least one of them. Unattributed symbols only survive an empty include
// list.
func NewPathFilter(include, exclude []string) (*PathFilter, error) {
	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid path pattern %q", pattern)
		}
	}
	return &PathFilter{include: include, exclude: exclude}, nil
}

// Empty reports whether the filter keeps everything.
func (f *PathFilter) Empty() bool {
	return len(f.include) == 0 && len(f.exclude) == 0
}

// Keep reports whether the symbol passes the filter.
func (f *PathFilter) Keep(s *Symbol) bool {
	if !s.HasFile() {
		return len(f.include) == 0
	}
	file := filepath.ToSlash(s.File)
	for _, pattern := range f.exclude {
		if match(pattern, file) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, pattern := range f.include {
		if match(pattern, file) {
			return true
		}
	}
	return false
}

// Apply returns the symbols that pass the filter, preserving order.
func (f *PathFilter) Apply(symbols []*Symbol) []*Symbol {
	if f.Empty() {
		return symbols
	}
	kept := make([]*Symbol, 0, len(symbols))
	for _, s := range symbols {
		if f.Keep(s) {
			kept = append(kept, s)
		}
	}
	return kept
}

func match(pattern, file string) bool {
	ok, err := doublestar.Match(pattern, file)
	return err == nil && ok
}
