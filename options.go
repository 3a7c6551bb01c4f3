package datafilter

import (
	"fmt"
	"log/slog"
	"math"
)

// Options carries per-codec settings keyed by name, for example
// Options{"include_padding": false}. Keys a codec does not recognize are ignored.
type Options map[string]any

// optionParser reads typed values out of Options, remembering the first problem.
type optionParser struct {
	algo string
	opts Options
	err  error
}

func newOptionParser(algo string, opts Options) *optionParser {
	return &optionParser{algo: algo, opts: opts}
}

func (p *optionParser) fail(key, reason string) {
	if p.err == nil {
		p.err = &OptionError{Algorithm: p.algo, Key: key, Reason: reason}
	}
}

func (p *optionParser) lookup(key string) (any, bool) {
	v, ok := p.opts[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Bool returns the option as a bool, or def when it is absent.
func (p *optionParser) Bool(key string, def bool) bool {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		p.fail(key, fmt.Sprintf("should be a boolean, got %T", v))
		return def
	}
	return b
}

// Bytes returns a private copy of a string or []byte option. present reports
// whether the key was given at all, so an empty value can be told from absence.
func (p *optionParser) Bytes(key string) (b []byte, present bool) {
	v, ok := p.lookup(key)
	if !ok {
		return nil, false
	}
	switch s := v.(type) {
	case string:
		return []byte(s), true
	case []byte:
		return append([]byte(nil), s...), true
	}
	p.fail(key, fmt.Sprintf("should be a string, got %T", v))
	return nil, false
}

// PositiveInt returns an integer option that must be greater than zero.
// Whole floats are accepted since decoded config formats often produce them.
func (p *optionParser) PositiveInt(key string) (n int, present bool) {
	v, ok := p.lookup(key)
	if !ok {
		return 0, false
	}
	var i int64
	switch x := v.(type) {
	case int:
		i = int64(x)
	case int8:
		i = int64(x)
	case int16:
		i = int64(x)
	case int32:
		i = int64(x)
	case int64:
		i = x
	case uint:
		i = int64(min(x, math.MaxInt32))
	case uint8:
		i = int64(x)
	case uint16:
		i = int64(x)
	case uint32:
		i = int64(x)
	case uint64:
		i = int64(min(x, math.MaxInt32))
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			p.fail(key, "should be a whole number")
			return 0, false
		}
		i = int64(max(min(x, math.MaxInt32), math.MinInt32))
	default:
		p.fail(key, fmt.Sprintf("should be a number, got %T", v))
		return 0, false
	}
	if i <= 0 {
		p.fail(key, "must be greater than zero")
		return 0, false
	}
	if i > math.MaxInt32 {
		p.fail(key, "is too large")
		return 0, false
	}
	return int(i), true
}

// Err returns the first problem found, if any.
func (p *optionParser) Err() error { return p.err }

// Option configures an Engine.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	bufferSize int
}

func defaultConfig() config {
	return config{
		logger:     slog.New(slog.DiscardHandler),
		bufferSize: BUFFER_SIZE,
	}
}

// WithLogger sets the logger the engine reports its lifecycle to, at debug level.
//
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBufferSize sets the size of the staging buffer and of the flush buffer
// used for non-growable sinks. Values below MIN_BUFFER_SIZE are raised to it.
//
// Default: BUFFER_SIZE (4096 bytes)
func WithBufferSize(n int) Option {
	return func(c *config) {
		c.bufferSize = max(n, MIN_BUFFER_SIZE)
	}
}
