package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/wkalt/elfsize/util"
)

/*
The storage provider interface describes the minimal set of operations needed
to persist rendered reports. A local directory and any S3-compatible object
store satisfy it.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrObjectNotFound is returned when an object is not found.
var ErrObjectNotFound = errors.New("object not found")

// Provider is the interface for a storage provider.
type Provider interface {
	Put(ctx context.Context, id string, r io.Reader) error
	Get(ctx context.Context, id string) (io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
	String() string
}

// ReportName returns the object name a report for the given ELF file and view
// is stored under, e.g. "firmware_ROMAnalysis.json" for firmware.elf.
func ReportName(elf string, view string, ext string) string {
	base := strings.TrimSuffix(filepath.Base(elf), ".elf")
	return fmt.Sprintf("%s_%sAnalysis.%s",
		util.SanitizeName(base),
		util.SanitizeName(view),
		strings.TrimPrefix(ext, "."),
	)
}
