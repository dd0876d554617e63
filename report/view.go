package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wkalt/elfsize/selector"
	"github.com/wkalt/elfsize/symbol"
)

// ErrNoSymbols is returned when a view selects no symbols.
var ErrNoSymbols = errors.New("no symbols from given sections found or all were ignored")

// View selects the sections a report covers.
type View struct {
	name    string
	accepts func(*symbol.Section) bool
}

// ROM covers sections stored in the image.
func ROM() View {
	return View{name: "ROM", accepts: (*symbol.Section).OccupiesROM}
}

// RAM covers sections occupying RAM at runtime.
func RAM() View {
	return View{name: "RAM", accepts: (*symbol.Section).OccupiesRAM}
}

// Sections covers the sections matched by sel.
func Sections(sel *selector.Selector) View {
	return View{
		name:    fmt.Sprintf("SECTIONS: %s", sel),
		accepts: sel.Match,
	}
}

// Name is the view's header, e.g. "ROM".
func (v View) Name() string {
	return v.name
}

// Accepts reports whether the view covers the section. Nil sections are never
// covered.
func (v View) Accepts(s *symbol.Section) bool {
	return s != nil && v.accepts(s)
}

// Considered returns the names of the sections the view covers.
func (v View) Considered(sections []*symbol.Section) []string {
	var names []string
	for _, s := range sections {
		if v.Accepts(s) {
			names = append(names, s.Name)
		}
	}
	return names
}

func (v View) String() string {
	return v.name
}

func noSymbolsError(considered []string) error {
	return fmt.Errorf("%w; sections were: %s", ErrNoSymbols, strings.Join(considered, ", "))
}
