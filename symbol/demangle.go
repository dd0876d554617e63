package symbol

import (
	"github.com/ianlancetaylor/demangle"
)

// Demangle rewrites mangled C++ and Rust symbol names in place. It must run
// after file information has been attached, since nm output is joined to the
// symbol table by mangled name. Names that are not mangled are left alone.
func Demangle(symbols []*Symbol, options ...demangle.Option) int {
	if len(options) == 0 {
		options = []demangle.Option{demangle.NoClones}
	}
	var rewritten int
	for _, s := range symbols {
		name := demangle.Filter(s.Name, options...)
		if name != s.Name {
			s.Name = name
			rewritten++
		}
	}
	return rewritten
}
