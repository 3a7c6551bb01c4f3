package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/oy3o/datafilter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions(map[string]string{
		"include_padding": "false",
		"max_line_length": "64",
		"line_ending":     `"\n"`,
		"safe_bytes":      "/:",
	})
	require.NoError(t, err)
	assert.Equal(t, datafilter.Options{
		"include_padding": false,
		"max_line_length": 64,
		"line_ending":     "\n",
		"safe_bytes":      "/:",
	}, opts)

	_, err = parseOptions(map[string]string{"line_ending": `"\q"`})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in1 := filepath.Join(dir, "a.txt")
	in2 := filepath.Join(dir, "b.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in1, []byte("Ma"), 0o644))
	require.NoError(t, os.WriteFile(in2, []byte("nM"), 0o644))

	var logs bytes.Buffer
	cli := &CLI{
		Algorithm: "base64_encode",
		Files:     []string{in1, in2},
		Output:    out,
		Option:    map[string]string{"include_padding": "false"},
	}
	require.NoError(t, cli.Run(newLogger(&logs, 2)))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "TWFuTQ", string(got))
	assert.Contains(t, logs.String(), "filter finished")
}

func TestRunErrors(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	dir := t.TempDir()

	err := (&CLI{}).Run(logger)
	assert.Error(t, err)

	err = (&CLI{Algorithm: "nope", Output: filepath.Join(dir, "x")}).Run(logger)
	assert.ErrorIs(t, err, datafilter.ErrUnknownAlgorithm)

	in := filepath.Join(dir, "bad.b64")
	require.NoError(t, os.WriteFile(in, []byte("TWFuQ"), 0o644))
	err = (&CLI{Algorithm: "base64_decode", Files: []string{in}, Output: filepath.Join(dir, "y")}).Run(logger)
	assert.ErrorIs(t, err, datafilter.ErrInvalidInput)
}
