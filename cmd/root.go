package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/wkalt/elfsize/binutils"
	"github.com/wkalt/elfsize/report"
	"github.com/wkalt/elfsize/storage"
	"github.com/wkalt/elfsize/util/log"
)

var (
	ram              bool
	rom              bool
	printSections    bool
	useSections      []string
	toolchainTriplet string
	verbosity        int

	maxWidth          int
	minSize           float64
	fishPaths         bool
	sortByName        bool
	humanReadable     bool
	filesOnly         bool
	alternatingColors bool
	jsonOutput        bool
	htmlOutput        bool
	cssFile           string

	noDemangle       bool
	noMergePaths     bool
	noColor          bool
	noCumulativeSize bool
	noTotals         bool

	includeGlobs []string
	excludeGlobs []string

	// Directory sink options
	outputDir string

	// S3 sink options
	s3Endpoint  string
	s3AccessKey string
	s3SecretKey string
	s3Bucket    string
	s3UseTLS    bool
	s3Region    string
)

var osfs = afero.NewOsFs() // nolint:gochecknoglobals

var rootCmd = &cobra.Command{
	Use:   "elfsize [flags] ELF_FILE",
	Short: "Print symbol sizes of an ELF binary as a tree of source paths",
	Long: `Print symbol sizes of an ELF binary as a tree of source paths.

Symbols are read with readelf and attributed to source files with nm, so the
binary should carry debug information. Select at least one of --rom, --ram,
--print-sections or --use-sections.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		slog.SetDefault(slog.New(log.NewHandler(os.Stderr, log.LevelFromVerbosity(verbosity))))

		sink, err := newSink(osfs)
		if err != nil {
			bailf("%s", err)
		}
		colors := !noColor && sink == nil
		opts := []report.Option{
			report.WithMaxWidth(maxWidth),
			report.WithMinSize(minSize),
			report.WithFilesOnly(filesOnly),
			report.WithMergePaths(!noMergePaths),
			report.WithFishPaths(fishPaths),
			report.WithAccumulate(!noCumulativeSize),
			report.WithSortByName(sortByName),
			report.WithColors(colors),
			report.WithAlternatingColors(alternatingColors),
			report.WithHumanReadable(humanReadable),
			report.WithTotals(!noTotals),
		}
		if cssFile != "" {
			css, err := afero.ReadFile(osfs, cssFile)
			if err != nil {
				bailf("error reading CSS file: %s", err)
			}
			opts = append(opts, report.WithCSS(string(css)))
		}
		format := report.FormatText
		switch {
		case jsonOutput:
			format = report.FormatJSON
		case htmlOutput:
			format = report.FormatHTML
		}
		a := &analysis{
			elf:           args[0],
			fs:            osfs,
			toolchain:     binutils.New(binutils.WithToolchain(toolchainTriplet)),
			stdout:        os.Stdout,
			sink:          sink,
			rom:           rom,
			ram:           ram,
			printSections: printSections,
			sections:      useSections,
			format:        format,
			demangle:      !noDemangle,
			colors:        colors,
			maxWidth:      maxWidth,
			include:       includeGlobs,
			exclude:       excludeGlobs,
			opts:          opts,
		}
		checkErr(a.run(ctx))
	},
}

func newSink(fs afero.Fs) (storage.Provider, error) {
	s3requested := s3Endpoint != "" ||
		s3AccessKey != "" ||
		s3SecretKey != "" ||
		s3Bucket != ""
	if outputDir != "" && s3requested {
		return nil, fmt.Errorf("cannot specify both --output-dir and S3 options")
	}
	if s3requested {
		if s3Endpoint == "" || s3Bucket == "" {
			return nil, fmt.Errorf("--s3-endpoint and --s3-bucket are required for S3 output")
		}
		mc, err := storage.NewS3Client(storage.S3Config{
			Endpoint:  s3Endpoint,
			AccessKey: s3AccessKey,
			SecretKey: s3SecretKey,
			Region:    s3Region,
			UseTLS:    s3UseTLS,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(mc, s3Bucket), nil
	}
	if outputDir != "" {
		store, err := storage.NewDirectoryStore(fs, outputDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, nil
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func bailf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func checkErr(err error) {
	if err != nil {
		bailf("error: %v", err)
	}
}

func normalizeFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "toolchain-path" {
		name = "toolchain-triplet"
	}
	return pflag.NormalizedName(name)
}

func init() {
	flags := rootCmd.Flags()
	flags.SetNormalizeFunc(normalizeFlags)

	flags.BoolVarP(&ram, "ram", "R", false, "Print RAM statistics")
	flags.BoolVarP(&rom, "rom", "F", false, "Print ROM statistics (\"Flash\")")
	flags.BoolVarP(&printSections, "print-sections", "P", false, "Print section headers that can be used for filtering symbols with -S")
	flags.StringArrayVarP(&useSections, "use-sections", "S", nil, "Select sections by number, range or name, e.g. 1,3-5,.data")
	flags.StringVarP(&toolchainTriplet, "toolchain-triplet", "t", "", "Toolchain triplet or path prefix, e.g. arm-none-eabi-")
	flags.CountVarP(&verbosity, "verbose", "v", "Verbose output (repeat for more)")

	flags.IntVarP(&maxWidth, "max-width", "w", 80, "Maximum output width, 0 for unlimited")
	flags.Float64VarP(&minSize, "min-size", "m", 0, "Hide symbols smaller than this size")
	flags.BoolVarP(&fishPaths, "fish-paths", "f", false, "Abbreviate merged paths fish-shell style")
	flags.BoolVarP(&sortByName, "sort-by-name", "s", false, "Sort symbols by name instead of size")
	flags.BoolVarP(&humanReadable, "human-readable", "H", false, "Print sizes in human readable format")
	flags.BoolVarP(&filesOnly, "files-only", "o", false, "Print only files, hiding symbols")
	flags.BoolVarP(&alternatingColors, "alternating-colors", "a", false, "Alternate symbol colors")
	flags.BoolVarP(&jsonOutput, "json", "j", false, "Output JSON")
	flags.BoolVarP(&htmlOutput, "html", "W", false, "Output HTML")
	flags.StringVarP(&cssFile, "css", "c", "", "Custom CSS file for HTML output")
	rootCmd.MarkFlagsMutuallyExclusive("json", "html")

	flags.BoolVar(&noDemangle, "no-demangle", false, "Do not demangle C++ and Rust symbol names")
	flags.BoolVar(&noMergePaths, "no-merge-paths", false, "Do not merge single-child directories")
	flags.BoolVar(&noColor, "no-color", false, "Do not use terminal colors")
	flags.BoolVar(&noCumulativeSize, "no-cumulative-size", false, "Do not compute cumulative sizes of paths")
	flags.BoolVar(&noTotals, "no-totals", false, "Do not print the total size")

	flags.StringArrayVar(&includeGlobs, "include", nil, "Only include symbols from source files matching this glob")
	flags.StringArrayVar(&excludeGlobs, "exclude", nil, "Exclude symbols from source files matching this glob")

	flags.StringVar(&outputDir, "output-dir", "", "Write reports to this directory instead of stdout")
	flags.StringVar(&s3Endpoint, "s3-endpoint", "", "S3 endpoint (for S3 output)")
	flags.StringVar(&s3AccessKey, "s3-access-key-id", "", "S3 access key ID (for S3 output)")
	flags.StringVar(&s3SecretKey, "s3-secret-key", "", "S3 secret key (for S3 output)")
	flags.StringVar(&s3Bucket, "s3-bucket", "", "S3 bucket (for S3 output)")
	flags.BoolVar(&s3UseTLS, "s3-tls", false, "Use TLS (for S3 output)")
	flags.StringVar(&s3Region, "s3-region", "", "S3 region")
}
