package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/wkalt/elfsize/binutils"
	"github.com/wkalt/elfsize/report"
	"github.com/wkalt/elfsize/selector"
	"github.com/wkalt/elfsize/storage"
	"github.com/wkalt/elfsize/symbol"
	"github.com/wkalt/elfsize/util/log"
)

const sectionsListing = "SECTIONS"

var errNoAction = errors.New("no memory type action specified (RAM/ROM or special), see -h for help")

// analysis is one run of the command over an ELF file.
type analysis struct {
	elf       string
	fs        afero.Fs
	toolchain *binutils.Toolchain
	stdout    io.Writer
	// sink receives the reports instead of stdout when set.
	sink storage.Provider

	rom           bool
	ram           bool
	printSections bool
	sections      []string

	format   report.Format
	demangle bool
	colors   bool
	maxWidth int
	include  []string
	exclude  []string
	opts     []report.Option
}

// views returns the requested views in output order.
func (a *analysis) views() ([]report.View, error) {
	var views []report.View
	if a.rom {
		views = append(views, report.ROM())
	}
	if a.ram {
		views = append(views, report.RAM())
	}
	if len(a.sections) > 0 {
		sel, err := selector.Parse(a.sections...)
		if err != nil {
			return nil, err
		}
		views = append(views, report.Sections(sel))
	}
	return views, nil
}

func (a *analysis) run(ctx context.Context) error {
	exists, err := afero.Exists(a.fs, a.elf)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", a.elf, err)
	}
	if !exists {
		return fmt.Errorf("ELF file %s does not exist", a.elf)
	}
	views, err := a.views()
	if err != nil {
		return err
	}
	if len(views) == 0 && !a.printSections {
		return errNoAction
	}
	filter, err := symbol.NewPathFilter(a.include, a.exclude)
	if err != nil {
		return err
	}

	binary, err := a.toolchain.Extract(ctx, a.elf)
	if err != nil {
		return fmt.Errorf("failed to extract symbols: %w", err)
	}
	// File info is joined on mangled names.
	if a.demangle {
		n := symbol.Demangle(binary.Symbols)
		log.Infof(ctx, "demangled %d of %d symbols", n, len(binary.Symbols))
	}
	symbols := filter.Apply(binary.Symbols)
	if !filter.Empty() {
		log.Infof(ctx, "path filters kept %d of %d symbols", len(symbols), len(binary.Symbols))
	}

	if a.printSections {
		buf := &bytes.Buffer{}
		if err := report.PrintSections(buf, binary.Sections, a.maxWidth, a.colors); err != nil {
			return err
		}
		if err := a.emit(ctx, sectionsListing, "txt", buf); err != nil {
			return err
		}
	}
	for _, view := range views {
		r, err := report.Render(ctx, a.elf, view, symbols, binary.Sections, a.format, a.opts...)
		if err != nil {
			return err
		}
		buf := &bytes.Buffer{}
		if err := r.Write(buf); err != nil {
			return err
		}
		if err := a.emit(ctx, r.View, r.Format.Ext(), buf); err != nil {
			return err
		}
	}
	return nil
}

// emit writes a report to stdout, or stores it in the sink.
func (a *analysis) emit(ctx context.Context, view string, ext string, r io.Reader) error {
	if a.sink == nil {
		if _, err := io.Copy(a.stdout, r); err != nil {
			return fmt.Errorf("failed to write %s report: %w", view, err)
		}
		return nil
	}
	id := storage.ReportName(a.elf, view, ext)
	if err := a.sink.Put(ctx, id, r); err != nil {
		return fmt.Errorf("failed to store %s: %w", id, err)
	}
	log.Infof(ctx, "stored %s in %s", id, a.sink)
	return nil
}
