package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wkalt/elfsize/render"
	"github.com/wkalt/elfsize/symbol"
	"github.com/wkalt/elfsize/util"
)

const sectionsTitle = "SECTIONS"

var sectionHeaders = []string{"N", "Name", "Type", "Addr", "Size", "Flags"} // nolint:gochecknoglobals

// PrintSections writes a table of the section headers under a centered title.
// Tables wider than width are written one record per block. A width of zero
// means unlimited.
func PrintSections(w io.Writer, sections []*symbol.Section, width int, colors bool) error {
	data := make([][]string, 0, len(sections))
	for _, s := range sections {
		data = append(data, []string{
			strconv.Itoa(s.Num),
			s.Name,
			s.Type,
			fmt.Sprintf("%#x", s.Address),
			util.SizeOf(s.Size),
			s.FlagNames(),
		})
	}
	buf := &bytes.Buffer{}
	util.PrintTable(buf, width, sectionHeaders, data)
	firstLine, _, _ := strings.Cut(buf.String(), "\n")
	class := render.ClassHeader
	if !colors {
		class = render.ClassPlain
	}
	title := render.Line{
		Text:  util.Center(sectionsTitle, '=', utf8.RuneCountInString(firstLine)),
		Class: class,
	}
	if err := render.WriteLines(w, []render.Line{title}); err != nil {
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write sections: %w", err)
	}
	return nil
}
