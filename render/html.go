package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strconv"
)

//go:embed assets/styles.css
var defaultCSS string

//go:embed assets/index.js
var collapseScript string

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
    <head>
        <title>{{.Title}}</title>
        <meta charset="UTF-8">
        <meta name="viewport" content="width=device-width, initial-scale=1">
        <style>{{.CSS}}</style>
        <script>{{.Script}}</script>
    </head>
    <body>
        <h3>{{.Title}}</h3>
        <div class="collapse-buttons">
            <span>Collapse</span>
            <button class="all">All</button>
            <button class="none">None</button>
            <button class="less">Less</button>
            <button class="more">More</button>
            <span>or click on rows</span>
        </div>
        <table>{{range .Rows}}
            <tr class="collapsible level-{{.Level}}">
                <td style="padding-left:{{.Padding}}px;word-break:break-all;word-wrap:break-word">{{.Name}}</td>
                <td width="200px" align="right">{{.Size}}</td>
            </tr>{{end}}
            <tr>
                <td align="right"><b>Overall size in bytes</b></td>
                <td align="right">{{.Overall}}</td>
            </tr>
        </table>
    </body>
</html>
`)) // nolint:gochecknoglobals

type htmlRow struct {
	Level   int
	Padding int
	Name    string
	Size    string
}

type htmlPage struct {
	Title   string
	CSS     template.CSS
	Script  template.JS
	Rows    []htmlRow
	Overall uint64
}

type htmlConfig struct {
	css string
}

// HTMLOption configures the HTML renderer.
type HTMLOption func(*htmlConfig)

// WithCSS replaces the embedded stylesheet.
func WithCSS(css string) HTMLOption {
	return func(c *htmlConfig) {
		c.css = css
	}
}

// HTML renders a projected tree as a page holding a collapsible table, one
// row per entry indented by depth. The last row holds the overall size, the
// sum of the top-level entries.
func HTML(m *Map, title string, opts ...HTMLOption) ([]byte, error) {
	cfg := htmlConfig{css: defaultCSS}
	for _, opt := range opts {
		opt(&cfg)
	}
	data := htmlPage{
		Title:  title,
		CSS:    template.CSS(cfg.css),
		Script: template.JS(collapseScript),
	}
	data.Rows = appendRows(data.Rows, m, 0)
	for _, key := range m.Keys() {
		entry, _ := m.Get(key)
		if entry.CumulativeSize != nil {
			data.Overall += *entry.CumulativeSize
		}
	}
	buf := &bytes.Buffer{}
	if err := page.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("failed to render html: %w", err)
	}
	return buf.Bytes(), nil
}

func appendRows(rows []htmlRow, m *Map, level int) []htmlRow {
	for _, key := range m.Keys() {
		entry, _ := m.Get(key)
		size := "-"
		if entry.CumulativeSize != nil {
			size = strconv.FormatUint(*entry.CumulativeSize, 10)
		}
		rows = append(rows, htmlRow{
			Level:   level,
			Padding: 10 * level,
			Name:    key,
			Size:    size,
		})
		if entry.Children != nil {
			rows = appendRows(rows, entry.Children, level+1)
		}
	}
	return rows
}
