package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/oy3o/datafilter"
)

// CLI runs one algorithm over files or stdin.
type CLI struct {
	Verbose int `help:"Log verbosity (-v info, -vv debug)" short:"v" type:"counter"`

	List bool `help:"List the available algorithms and exit" short:"l"`

	Algorithm string            `arg:"" optional:"" help:"Algorithm to apply, e.g. base64_encode"`
	Files     []string          `arg:"" optional:"" help:"Input files, read in order (default: stdin)"`
	Output    string            `help:"Write output to this file instead of stdout" short:"o" type:"path"`
	Option    map[string]string `help:"Algorithm option as key=value, repeatable (e.g. -O include_padding=false)" short:"O"`
}

func (c *CLI) Run(logger *slog.Logger) error {
	if c.List {
		for _, name := range datafilter.Algorithms() {
			fmt.Println(name)
		}
		return nil
	}
	if c.Algorithm == "" {
		return fmt.Errorf("missing algorithm name (use --list to see them)")
	}

	opts, err := parseOptions(c.Option)
	if err != nil {
		return err
	}

	var sink datafilter.Sink = datafilter.Writer(os.Stdout)
	if c.Output != "" && c.Output != "-" {
		sink = datafilter.File(c.Output)
	}

	e, err := datafilter.New(c.Algorithm, opts, sink, datafilter.WithLogger(logger))
	if err != nil {
		return err
	}
	defer e.Close()

	start := time.Now()
	if len(c.Files) == 0 {
		if _, err := e.ReadFrom(os.Stdin); err != nil {
			return err
		}
	}
	for _, name := range c.Files {
		logger.Info("reading input", slog.String("file", name))
		if err := e.AddFile(name); err != nil {
			return err
		}
	}
	if err := e.Finish(); err != nil {
		return err
	}

	logger.Info("done",
		slog.String("algorithm", c.Algorithm),
		slog.Int64("bytes_in", e.Consumed()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// parseOptions turns command-line strings into typed option values:
// true/false become bools, integers become ints, Go-quoted strings are
// unquoted (so -O 'line_ending="\n"' works), anything else stays a string.
func parseOptions(raw map[string]string) (datafilter.Options, error) {
	opts := datafilter.Options{}
	for key, val := range raw {
		switch {
		case val == "true" || val == "false":
			opts[key] = val == "true"
		case isInteger(val):
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("option %s: %w", key, err)
			}
			opts[key] = n
		case strings.HasPrefix(val, `"`) || strings.HasPrefix(val, "`"):
			s, err := strconv.Unquote(val)
			if err != nil {
				return nil, fmt.Errorf("option %s: bad quoted string: %w", key, err)
			}
			opts[key] = s
		default:
			opts[key] = val
		}
	}
	return opts, nil
}

func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func newLogger(w io.Writer, verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity >= 2:
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("datafilter"),
		kong.Description("Apply a streaming encoder, decoder or digest to files or stdin."),
		kong.UsageOnError(),
	)
	logger := newLogger(os.Stderr, cli.Verbose)
	if err := ctx.Run(logger); err != nil {
		logger.Error("failed", slog.Any("error", err))
		os.Exit(1)
	}
}
