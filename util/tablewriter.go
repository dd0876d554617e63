/*
tablewriter.go

MIT License

Copyright (c) Foxglove Technologies Inc

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

/*
 Adapted from https://github.com/foxglove/foxglove-cli/blob/main/foxglove/util/tablewriter/tablewriter.go
*/

package util

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

func width(s string) int {
	return utf8.RuneCountInString(s)
}

func computeHotdogCellWidths(headers []string, data [][]string) (int, []int) {
	cellWidths := make([]int, len(headers))
	for i, header := range headers {
		cellWidths[i] = width(header) + 4 // pad two spaces each side
	}
	for _, row := range data {
		for i, column := range row {
			columnWidth := width(column) + 2 // pad one space per side
			if cellWidths[i] < columnWidth {
				cellWidths[i] = columnWidth
			}
		}
	}

	// size the cells so the headers can be center-spaced
	for i, header := range headers {
		if (cellWidths[i]-width(header))%2 == 1 {
			cellWidths[i]++
		}
	}

	tableWidth := len(headers) + 1
	for _, w := range cellWidths {
		tableWidth += w
	}
	return tableWidth, cellWidths
}

/*
printHotDog outputs a table of records formatted like this:

	|  N  |    Name    |    Type    |   Addr   |   Size    |
	|-----|------------|------------|----------|-----------|
	| 1   | .text      | PROGBITS   | 00000100 | 2.0 KiB   |
*/
func printHotDog(w io.Writer, headers []string, data [][]string) {
	_, cellWidths := computeHotdogCellWidths(headers, data)

	fmt.Fprintf(w, "|")
	for i, header := range headers {
		padding := (cellWidths[i] - width(header)) / 2
		fmt.Fprintf(w, "%s%s%s|", strings.Repeat(" ", padding), header, strings.Repeat(" ", padding))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "|")
	for _, cw := range cellWidths {
		fmt.Fprint(w, strings.Repeat("-", cw))
		fmt.Fprintf(w, "|")
	}
	fmt.Fprintln(w)

	for _, row := range data {
		fmt.Fprint(w, "|")
		for i, col := range row {
			fmt.Fprintf(w, " %s%s|", col, strings.Repeat(" ", cellWidths[i]-width(col)-1))
		}
		fmt.Fprintln(w)
	}
}

/*
printHamburger outputs a series of records formatted like this:

	-[ RECORD 1 ]-+---------------------
	N             | 1
	Name          | .text
	Type          | PROGBITS
*/
func printHamburger(w io.Writer, termwidth int, headers []string, data [][]string) {
	var maxHeaderWidth int
	var maxRecordWidth int

	for _, header := range headers {
		maxHeaderWidth = max(maxHeaderWidth, width(header))
	}
	for _, row := range data {
		for _, col := range row {
			maxRecordWidth = max(maxRecordWidth, width(col))
		}
	}

	// ensure there is sufficient room to accommodate the highest record header
	// required.
	longestRecordHeader := fmt.Sprintf("-[ RECORD %d ]", len(data)+1)
	maxHeaderWidth = max(maxHeaderWidth, len(longestRecordHeader))

	// extend the dashes 15 past the widest record unless that would wrap.
	dashesRightExtent := min(maxRecordWidth+15, termwidth-maxHeaderWidth-1)
	dashesRightExtent = max(dashesRightExtent, 1)
	rightDashes := strings.Repeat("-", dashesRightExtent)

	for i, row := range data {
		recordHeader := fmt.Sprintf("-[ RECORD %d ]", i+1)
		fmt.Fprintf(w, "%s%s+%s\n",
			recordHeader,
			strings.Repeat("-", maxHeaderWidth-len(recordHeader)),
			rightDashes,
		)
		for j, col := range row {
			line := fmt.Sprintf("%-*s| %-*s", maxHeaderWidth, headers[j], dashesRightExtent-1, col)
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	}
}

// PrintTable writes data as a table with the given column headers. Tables
// wider than termwidth are written one record per block instead. A termwidth
// of zero never switches layout.
func PrintTable(w io.Writer, termwidth int, headers []string, data [][]string) {
	tableWidth, _ := computeHotdogCellWidths(headers, data)
	if termwidth > 0 && termwidth < tableWidth {
		printHamburger(w, termwidth, headers, data)
		return
	}
	printHotDog(w, headers, data)
}
