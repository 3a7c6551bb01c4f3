package datafilter

import (
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/lmittmann/tint"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *slog.Logger {
	return slog.New(tint.NewHandler(t.Output(), &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "15:04:05",
	}))
}

// randomBytes returns n deterministic pseudo-random bytes.
func randomBytes(seed byte, n int) []byte {
	src := rand.NewChaCha8([32]byte{seed})
	b := make([]byte, n)
	_, _ = src.Read(b)
	return b
}

// feed runs data through a fresh engine in chunks of random size (at most
// maxChunk bytes) and returns the result.
func feed(t *testing.T, name string, opts Options, data []byte, maxChunk int, options ...Option) ([]byte, error) {
	t.Helper()
	e, err := New(name, opts, nil, options...)
	require.NoError(t, err)
	defer e.Close()

	rng := rand.New(rand.NewPCG(uint64(len(data)), uint64(maxChunk)))
	for len(data) > 0 {
		n := min(1+rng.IntN(maxChunk), len(data))
		if err := e.Add(data[:n]); err != nil {
			return nil, err
		}
		data = data[n:]
	}
	return e.Result()
}

// countingTransform records how often it was destroyed.
type countingTransform struct {
	destroyed int
}

func (c *countingTransform) Transform(out *Output, in []byte, _ bool) (int, error) {
	if err := out.Reserve(len(in)); err != nil {
		return 0, err
	}
	out.PutBytes(in)
	return len(in), nil
}

func (c *countingTransform) Destroy() { c.destroyed++ }

var lastCounting *countingTransform

func init() {
	// copies input, and lets tests check Destroy is called exactly once
	mustRegister("test_counting", func(Options) (Transform, error) {
		lastCounting = &countingTransform{}
		return lastCounting, nil
	})
	// never consumes anything before end of stream
	mustRegister("test_stall", func(Options) (Transform, error) {
		return TransformFunc(func(_ *Output, in []byte, eof bool) (int, error) {
			if eof {
				return len(in), nil
			}
			return 0, nil
		}), nil
	})
}
