package selector

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/wkalt/elfsize/symbol"
)

/*
Package selector implements the section selection expressions accepted on the
command line. An expression is a list of terms separated by commas or
whitespace. Each term is a section number, an inclusive range of numbers or a
section name:

	1,3-5,.data
	2 7 ".text.startup"

A section is selected when any term matches it.
*/

////////////////////////////////////////////////////////////////////////////////

var sectionLexer = lexer.MustSimple([]lexer.SimpleRule{ // nolint:gochecknoglobals
	{Name: "QuotedString", Pattern: `"(?:\\.|[^"])*"`},
	{Name: "Name", Pattern: `[a-zA-Z_.$][a-zA-Z0-9_.$-]*`},
	{Name: "Integer", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[,-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[Selector]( // nolint:gochecknoglobals
	participle.Lexer(sectionLexer),
	participle.Unquote("QuotedString"),
	participle.Elide("Whitespace"),
)

var bareName = regexp.MustCompile(`^[a-zA-Z_.$][a-zA-Z0-9_.$-]*$`) // nolint:gochecknoglobals

// Selector is a parsed section selection expression.
type Selector struct {
	Terms []*Term `@@ ( ","? @@ )*`
}

// Term is a single number, range or name.
type Term struct {
	Range *Range  `  @@`
	Name  *string `| @(Name | QuotedString)`
}

// Range is an inclusive range of section numbers. A single number has no To.
type Range struct {
	From int  `@Integer`
	To   *int `( "-" @Integer )?`
}

// Parse parses one or more expressions into a single selector.
func Parse(exprs ...string) (*Selector, error) {
	input := strings.TrimSpace(strings.Join(exprs, ","))
	if input == "" {
		return nil, errors.New("empty section selection")
	}
	sel, err := parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("failed to parse section selection %q: %w", input, err)
	}
	for _, term := range sel.Terms {
		if r := term.Range; r != nil && r.To != nil && *r.To < r.From {
			return nil, fmt.Errorf("invalid section range %d-%d", r.From, *r.To)
		}
	}
	return sel, nil
}

// Match reports whether any term selects the section.
func (s *Selector) Match(section *symbol.Section) bool {
	for _, term := range s.Terms {
		if term.Match(section) {
			return true
		}
	}
	return false
}

func (s *Selector) String() string {
	terms := make([]string, len(s.Terms))
	for i, term := range s.Terms {
		terms[i] = term.String()
	}
	return strings.Join(terms, ",")
}

// Match reports whether the term selects the section.
func (t *Term) Match(section *symbol.Section) bool {
	if t.Name != nil {
		return section.Name == *t.Name
	}
	if t.Range.To == nil {
		return section.Num == t.Range.From
	}
	return section.Num >= t.Range.From && section.Num <= *t.Range.To
}

func (t *Term) String() string {
	if t.Name != nil {
		if bareName.MatchString(*t.Name) {
			return *t.Name
		}
		return strconv.Quote(*t.Name)
	}
	if t.Range.To == nil {
		return strconv.Itoa(t.Range.From)
	}
	return fmt.Sprintf("%d-%d", t.Range.From, *t.Range.To)
}
