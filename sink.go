package datafilter

import (
	"fmt"
	"io"
	"os"
)

// Sink receives the engine's output each time its flush buffer fills up and
// once more when the engine finishes. A nil Sink selects the growable
// in-memory buffer, whose content is returned by Engine.Result.
//
// Flush must not retain p; the engine reuses it as soon as Flush returns.
type Sink interface {
	Flush(p []byte) error
	Close() error
}

// opener is implemented by sinks that acquire their resource when bound to an engine.
type opener interface {
	open() error
}

// fileSink writes synchronously to a file it creates and owns.
type fileSink struct {
	name string
	f    *os.File
}

// File returns a Sink that creates (or truncates) the named file when the
// engine is constructed and closes it when the engine finishes.
func File(name string) Sink {
	return &fileSink{name: name}
}

func (s *fileSink) open() error {
	f, err := os.Create(s.name)
	if err != nil {
		return ioError("opening output file", err)
	}
	s.f = f
	return nil
}

func (s *fileSink) Flush(p []byte) error {
	if s.f == nil {
		return ioError("writing output file", os.ErrClosed)
	}
	if _, err := s.f.Write(p); err != nil {
		return ioError("writing output file", err)
	}
	return nil
}

func (s *fileSink) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	if err != nil {
		return ioError("closing output file", err)
	}
	return nil
}

// funcSink hands every filled region to a caller-supplied function.
type funcSink func(p []byte) error

// Func returns a Sink that calls fn with each filled region. Any error from fn
// fails the engine with ErrIO.
func Func(fn func(p []byte) error) Sink {
	return funcSink(fn)
}

func (fn funcSink) Flush(p []byte) error {
	if err := fn(p); err != nil {
		return ioError("output function", err)
	}
	return nil
}

func (fn funcSink) Close() error { return nil }

// writerSink delegates to a writer owned by the caller.
type writerSink struct {
	w io.Writer
}

// Writer returns a Sink that writes to w. The engine never closes w.
func Writer(w io.Writer) Sink {
	if w == nil {
		panic("datafilter: Writer called with a nil io.Writer")
	}
	return &writerSink{w: w}
}

func (s *writerSink) Flush(p []byte) error {
	n, err := s.w.Write(p)
	if err != nil {
		return ioError("writing output", err)
	}
	if n != len(p) {
		return ioError("writing output", fmt.Errorf("%w: wrote %d of %d bytes", io.ErrShortWrite, n, len(p)))
	}
	return nil
}

func (s *writerSink) Close() error { return nil }
