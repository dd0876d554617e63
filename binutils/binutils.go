package binutils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/wkalt/elfsize/symbol"
	"github.com/wkalt/elfsize/util/log"
	"golang.org/x/sync/errgroup"
)

/*
Package binutils extracts symbols, sections and source locations from an ELF
file by running the readelf and nm programs of a GNU or LLVM toolchain and
parsing their text output.

Executables are resolved as <prefix><name>, so a cross toolchain is selected
with a triplet prefix such as "arm-none-eabi-". Commands run through a Runner,
which tests replace with canned output.
*/

////////////////////////////////////////////////////////////////////////////////

// Runner runs a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands as subprocesses. A non-zero exit is reported as a
// CommandError carrying the command's stderr.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, NewCommandError(append([]string{name}, args...), exitErr.ExitCode(), stderr.String())
		}
		return nil, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// Toolchain locates and runs binutils programs.
type Toolchain struct {
	prefix   string
	runner   Runner
	lookPath func(string) (string, error)
}

// Option configures a Toolchain.
type Option func(*Toolchain)

// WithToolchain sets the prefix prepended to every executable name, such as a
// target triplet or a directory path ending in a separator.
func WithToolchain(prefix string) Option {
	return func(t *Toolchain) {
		t.prefix = prefix
	}
}

// WithRunner replaces the command runner.
func WithRunner(runner Runner) Option {
	return func(t *Toolchain) {
		t.runner = runner
	}
}

// WithLookPath replaces the function used to verify executables exist.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(t *Toolchain) {
		t.lookPath = lookPath
	}
}

// New returns a toolchain using the host's binutils unless configured
// otherwise.
func New(opts ...Option) *Toolchain {
	t := &Toolchain{
		runner:   ExecRunner,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Executable resolves the named program, e.g. "readelf", to the command that
// runs it.
func (t *Toolchain) Executable(name string) (string, error) {
	cmd := t.prefix + name
	if runtime.GOOS == "windows" {
		cmd += ".exe"
	}
	if _, err := t.lookPath(cmd); err != nil {
		return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, cmd)
	}
	return cmd, nil
}

func (t *Toolchain) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd, err := t.Executable(name)
	if err != nil {
		return nil, err
	}
	log.Debugw(ctx, "running", "command", cmd, "args", args)
	return t.runner(ctx, cmd, args...)
}

// Binary is what Extract learns about an ELF file.
type Binary struct {
	Symbols  []*symbol.Symbol
	Sections []*symbol.Section
}

// Extract reads symbols, sections and source locations concurrently and
// attributes symbols to their source files.
func (t *Toolchain) Extract(ctx context.Context, elf string) (*Binary, error) {
	var symbols []*symbol.Symbol
	var sections []*symbol.Section
	var fileinfo map[string]FileInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		symbols, err = t.ReadSymbols(gctx, elf)
		return err
	})
	g.Go(func() (err error) {
		sections, err = t.ReadSections(gctx, elf)
		return err
	})
	g.Go(func() (err error) {
		fileinfo, err = t.ReadFileInfo(gctx, elf)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	AttachFileInfo(ctx, fileinfo, symbols)
	return &Binary{Symbols: symbols, Sections: sections}, nil
}
