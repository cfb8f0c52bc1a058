package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	apppkg "github.com/kk-code-lab/vgrid/internal/app"
	"github.com/kk-code-lab/vgrid/internal/config"
	"github.com/kk-code-lab/vgrid/internal/sheet"
)

func main() {
	if err := Main(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "vgrid: %v\n", err)
		os.Exit(1)
	}
}

// flags holds the command-line overrides of the option table.
type flags struct {
	config     string
	logFile    string
	debug      bool
	strict     bool
	readOnly   bool
	encoding   string
	delimiter  string
	width      int
	headerRows int
}

func newFlagSet(f *flags) *flag.FlagSet {
	fs := flag.NewFlagSet("vgrid", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", config.DefaultPath(), "config file")
	fs.StringVar(&f.logFile, "log", "", "write logs to this file")
	fs.BoolVar(&f.debug, "debug", false, "debug logging")
	fs.BoolVar(&f.strict, "strict", false, "crash on draw errors instead of recovering")
	fs.BoolVar(&f.readOnly, "read-only", false, "refuse edits and deletions")
	fs.StringVar(&f.encoding, "encoding", "", "csv charset name")
	fs.StringVar(&f.delimiter, "delimiter", "", "csv delimiter (default: sniffed)")
	fs.IntVar(&f.width, "default-width", 0, "widest a measured non-key column may grow")
	fs.IntVar(&f.headerRows, "header-rows", 0, "number of header rows")
	return fs
}

func Main(args []string) error {
	var f flags
	fs := newFlagSet(&f)
	cmd := ffcli.Command{
		Name:       "vgrid",
		ShortUsage: "vgrid [flags] FILE...",
		ShortHelp:  "browse tabular files in the terminal",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix("VGRID")},
		Exec: func(ctx context.Context, args []string) error {
			opts, err := loadOptions(fs, &f)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(f.logFile, f.debug)
			if err != nil {
				return err
			}
			defer closeLog()
			return run(opts, logger, args)
		},
	}
	if err := cmd.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	return cmd.Run(context.Background())
}

// loadOptions reads the config file and overlays the flags that were set
// on the command line or through VGRID_* variables.
func loadOptions(fs *flag.FlagSet, f *flags) (*config.Options, error) {
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	opts, err := config.Load(f.config, !set["config"])
	if err != nil {
		return nil, err
	}
	if set["strict"] {
		opts.Strict = f.strict
	}
	if set["read-only"] {
		opts.ReadOnly = f.readOnly
	}
	if set["encoding"] {
		opts.Encoding = f.encoding
	}
	if set["delimiter"] {
		opts.CSVDelimiter = f.delimiter
	}
	if set["default-width"] {
		opts.DefaultWidth = f.width
	}
	if set["header-rows"] {
		opts.HeaderRows = f.headerRows
	}
	return opts, opts.Validate()
}

// newLogger logs to path with tint; the terminal belongs to the UI, so
// without a path logs are discarded.
func newLogger(path string, debug bool) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return newTintLogger(fh, debug), func() { _ = fh.Close() }, nil
}

func newTintLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{Level: level, NoColor: true}))
}

func run(opts *config.Options, logger *slog.Logger, paths []string) error {
	screen, err := apppkg.NewScreen()
	if err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	app := apppkg.NewApplication(screen, sheet.NewEnv(opts, logger))
	defer func() {
		_ = app.Close()
	}()

	if err := app.Open(paths...); err != nil {
		return err
	}
	logger.Info("started", "files", paths)
	app.Run()
	return nil
}
