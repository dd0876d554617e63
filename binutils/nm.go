package binutils

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/wkalt/elfsize/symbol"
	"github.com/wkalt/elfsize/util"
	"github.com/wkalt/elfsize/util/log"
)

// Flavor identifies an nm implementation. GNU and LLVM nm print file
// information in different layouts.
type Flavor int

const (
	// GNU is binutils nm.
	GNU Flavor = iota
	// LLVM is llvm-nm.
	LLVM
)

func (f Flavor) String() string {
	switch f {
	case GNU:
		return "gnu"
	case LLVM:
		return "llvm"
	default:
		return fmt.Sprintf("flavor(%d)", int(f))
	}
}

// GNU nm in POSIX mode with line numbers:
//
//	NAME TYPE VALUE SIZE[\tFILE[:LINE]]
//	MemManage_Handler T 08004130 00000002	/some/path/file.c:80
//	memset T 08000bf0 00000010
var gnuPattern = regexp.MustCompile(`^` + // nolint:gochecknoglobals
	`(?P<name>\S+)\s+` +
	`(?P<type>\S+)\s+` +
	`(?P<value>[0-9a-fA-F]+)\s+` +
	`(?P<size>[0-9a-fA-F]+)` +
	`(?P<fileinfo>.*)$`)

// llvm-nm in POSIX mode with file names:
//
//	/some/path/file.c: memset t 800a2ea 6e
var llvmPattern = regexp.MustCompile(`^` + // nolint:gochecknoglobals
	`(?P<fileinfo>[^:]*):\s+` +
	`(?P<name>\S+)\s+` +
	`(?P<type>\S+)\s+` +
	`(?P<value>[0-9a-fA-F]+)\s+` +
	`(?P<size>[0-9a-fA-F]+)$`)

func (f Flavor) args() []string {
	if f == LLVM {
		return []string{"--portability", "--print-file-name"}
	}
	return []string{"--portability", "--line-numbers"}
}

func (f Flavor) pattern() *regexp.Regexp {
	if f == LLVM {
		return llvmPattern
	}
	return gnuPattern
}

// DetectFlavor classifies the output of `nm --version`. Unrecognized output
// is treated as GNU.
func DetectFlavor(ctx context.Context, version string) Flavor {
	v := strings.ToLower(version)
	if strings.Contains(v, "llvm") {
		return LLVM
	}
	// llvm-nm mentions "compatible with GNU nm", hence the prefix match.
	if !strings.HasPrefix(strings.TrimSpace(v), "gnu nm") {
		log.Warnf(ctx, "could not detect nm version, assuming GNU nm")
	}
	return GNU
}

// FileInfo is the source location nm reports for a symbol.
type FileInfo struct {
	File string
	Line int
}

// parseLocation splits "FILE[:LINE]". A suffix that is not a line number is
// left as part of the file.
func parseLocation(s string) FileInfo {
	s = strings.TrimSpace(s)
	if s == "" {
		return FileInfo{}
	}
	file, line := s, 0
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		if n, err := strconv.Atoi(s[i+1:]); err == nil {
			file, line = s[:i], n
		}
	}
	return FileInfo{File: filepath.Clean(file), Line: line}
}

// ParseFileInfo parses nm output of the given flavor into source locations
// keyed by symbol name. Symbols listed without a location are omitted.
func ParseFileInfo(r io.Reader, flavor Flavor) (map[string]FileInfo, error) {
	pattern := flavor.pattern()
	info := make(map[string]FileInfo)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m, ok := groups(pattern, scanner.Text())
		if !ok {
			continue
		}
		loc := parseLocation(m["fileinfo"])
		if loc.File == "" {
			delete(info, m["name"])
			continue
		}
		info[m["name"]] = loc
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nm output: %w", err)
	}
	return info, nil
}

// NMFlavor runs `nm --version` and classifies the result.
func (t *Toolchain) NMFlavor(ctx context.Context) (Flavor, error) {
	out, err := t.run(ctx, "nm", "--version")
	if err != nil {
		return GNU, err
	}
	return DetectFlavor(ctx, string(out)), nil
}

// ReadFileInfo returns the source location of every symbol nm can attribute.
func (t *Toolchain) ReadFileInfo(ctx context.Context, elf string) (map[string]FileInfo, error) {
	flavor, err := t.NMFlavor(ctx)
	if err != nil {
		return nil, err
	}
	log.Infof(ctx, "using nm symbols regex: %s", flavor.pattern())
	out, err := t.run(ctx, "nm", append(flavor.args(), elf)...)
	if err != nil {
		return nil, err
	}
	return ParseFileInfo(bytes.NewReader(out), flavor)
}

// AttachFileInfo sets the file and line of every symbol nm located. Where
// several symbols share a name the last one listed receives the location.
// Locations for names absent from symbols are logged and skipped. It returns
// the number of symbols attributed.
func AttachFileInfo(ctx context.Context, info map[string]FileInfo, symbols []*symbol.Symbol) int {
	byName := make(map[string]*symbol.Symbol, len(symbols))
	for _, s := range symbols {
		byName[s.Name] = s
	}
	attached := 0
	for _, name := range util.Okeys(info) {
		s, ok := byName[name]
		if !ok {
			log.Warnf(ctx, "nm found fileinfo for symbol %q, which has not been found by readelf", name)
			continue
		}
		loc := info[name]
		s.File = loc.File
		s.Line = loc.Line
		attached++
	}
	return attached
}
