package datafilter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Engine feeds a stream of chunks through one Transform. Input that the
// transform cannot consume yet (an incomplete codec unit at the tail of a
// chunk) is kept in a staging buffer and presented again with the next chunk.
// Output goes either to a growable buffer (nil Sink) or, through a fixed flush
// buffer, to a Sink.
//
// An Engine is not safe for concurrent use. The first error it reports is
// terminal: it is latched and returned by every later call.
type Engine struct {
	name string
	t    Transform
	sink Sink
	log  *slog.Logger

	in     []byte // staging buffer, len(in) bytes are staged
	out    Output
	result []byte // final output when sink is nil

	consumed int64 // input bytes fully consumed by the transform
	written  int64 // output bytes handed to the sink or kept as result

	finished   bool
	completed  bool // the end-of-stream transform ran, so the output is whole
	closed     bool
	sinkClosed bool
	err        error // first error encountered. Subsequent calls return it.
}

var (
	_ io.WriteCloser  = (*Engine)(nil)
	_ io.ReaderFrom   = (*Engine)(nil)
	_ io.StringWriter = (*Engine)(nil)
)

// New creates an engine for the named algorithm. opts are validated by the
// algorithm itself; on any failure nothing is left open.
func New(name string, opts Options, sink Sink, options ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, o := range options {
		o(&cfg)
	}

	t, err := newTransform(name, opts)
	if err != nil {
		cfg.logger.Debug("filter not created", slog.String("algorithm", name), slog.Any("error", err))
		return nil, err
	}

	if o, ok := sink.(opener); ok {
		if err := o.open(); err != nil {
			if d, ok := t.(Destroyer); ok {
				d.Destroy()
			}
			return nil, err
		}
	}

	e := &Engine{
		name: name,
		t:    t,
		sink: sink,
		log:  cfg.logger,
		in:   getBuffer(cfg.bufferSize)[:0],
	}
	if sink == nil {
		// The result escapes to the caller, so it never comes from the pool.
		e.out = Output{B: make([]byte, cfg.bufferSize), grow: growInPlace}
	} else {
		e.out = Output{B: getBuffer(cfg.bufferSize), grow: e.flushOutput}
	}

	e.log.Debug("filter created",
		slog.String("algorithm", name),
		slog.String("sink", sinkKind(sink)),
		slog.Int("buffer_size", cfg.bufferSize),
	)
	return e, nil
}

// Name returns the algorithm name the engine was created with.
func (e *Engine) Name() string { return e.name }

// Finished reports whether the output has been finalized.
func (e *Engine) Finished() bool { return e.finished }

// Err returns the latched error, if any.
func (e *Engine) Err() error { return e.err }

// Consumed returns the number of input bytes the transform has consumed so far.
func (e *Engine) Consumed() int64 { return e.consumed }

// Write implements io.Writer: it feeds p through the transform. Writing zero
// bytes is a no-op.
func (e *Engine) Write(p []byte) (int, error) {
	return feedChunk(e, p)
}

// WriteString implements io.StringWriter.
func (e *Engine) WriteString(s string) (int, error) {
	return feedChunk(e, s)
}

// feedChunk tops up the staging buffer from p and filters, until p is used up.
func feedChunk[S ~[]byte | ~string](e *Engine, p S) (int, error) {
	if err := e.usable(); err != nil {
		return 0, err
	}
	n := 0
	for n < len(p) {
		k := copy(e.in[len(e.in):cap(e.in)], p[n:])
		e.in = e.in[:len(e.in)+k]
		n += k
		if err := e.filter(false); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Add feeds p through the transform.
func (e *Engine) Add(p []byte) error {
	_, err := e.Write(p)
	return err
}

// ReadFrom implements io.ReaderFrom. It reads r until EOF directly into the
// staging buffer, filtering after every read.
func (e *Engine) ReadFrom(r io.Reader) (int64, error) {
	if err := e.usable(); err != nil {
		return 0, err
	}
	if r == nil {
		return 0, fmt.Errorf("%w: ReadFrom called with a nil io.Reader", ErrIO)
	}

	var total int64
	for {
		free := e.in[len(e.in):cap(e.in)]
		n, err := r.Read(free)
		if n < 0 || n > len(free) {
			return total, e.fail(ioError("reading input", fmt.Errorf("reader returned invalid count %d", n)))
		}
		e.in = e.in[:len(e.in)+n]
		total += int64(n)
		if n > 0 {
			if ferr := e.filter(false); ferr != nil {
				return total, ferr
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, e.fail(ioError("reading input", err))
		}
	}
}

// AddFile feeds the whole content of the named file.
func (e *Engine) AddFile(name string) error {
	if err := e.usable(); err != nil {
		return err
	}
	f, err := os.Open(name)
	if err != nil {
		return ioError("opening input file", err)
	}
	defer f.Close()
	_, err = e.ReadFrom(f)
	return err
}

// Finish runs the transform one last time with end-of-stream set, flushes
// the remaining output and closes the sink. Calling it twice is an error.
func (e *Engine) Finish() error {
	if err := e.usable(); err != nil {
		return err
	}
	if err := e.filter(true); err != nil {
		return err
	}
	e.completed = true
	return e.finalize()
}

// Result finishes the engine if needed and returns the output. It is only
// available when the engine was created without a sink, and may be called
// again after finishing. An engine closed before it was finished has no result.
func (e *Engine) Result() ([]byte, error) {
	if e.sink != nil {
		return nil, ErrNoResult
	}
	if e.err != nil {
		return nil, e.err
	}
	if e.finished && !e.completed {
		return nil, fmt.Errorf("%w: closed before the end of input was reached", ErrUseAfterFinish)
	}
	if !e.finished {
		if err := e.Finish(); err != nil {
			return nil, err
		}
	}
	return e.result, nil
}

// Close releases the engine. If it was never finished, output produced so far
// is flushed first, but the transform is not run to end-of-stream. Close is
// idempotent.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	var err error
	if !e.finished && e.err == nil {
		err = e.finalize()
	}
	e.release()
	return err
}

// usable reports why the engine cannot take more calls, if it cannot.
func (e *Engine) usable() error {
	if e.err != nil {
		return e.err
	}
	if e.finished || e.closed {
		return fmt.Errorf("%w: it's too late to add more input", ErrUseAfterFinish)
	}
	return nil
}

// filter runs the transform over everything staged and moves whatever was not
// consumed to the front of the staging buffer.
func (e *Engine) filter(eof bool) error {
	used, err := e.t.Transform(&e.out, e.in, eof)
	if err != nil {
		return e.fail(annotate(err, e.name, e.consumed+int64(max(used, 0))))
	}
	if used < 0 || used > len(e.in) {
		panic(fmt.Sprintf("datafilter: %s reported %d bytes consumed of %d", e.name, used, len(e.in)))
	}
	if eof && used != len(e.in) {
		panic(fmt.Sprintf("datafilter: %s left %d bytes unconsumed at end of stream", e.name, len(e.in)-used))
	}

	e.consumed += int64(used)
	e.in = e.in[:copy(e.in, e.in[used:])]

	if !eof && used == 0 && len(e.in) == cap(e.in) {
		return e.fail(fmt.Errorf("%w: %s", ErrStalled, e.name))
	}
	return nil
}

// flushOutput is the grow hook for sinks: hand over the filled region and
// start again at the front of the same buffer.
func (e *Engine) flushOutput(o *Output, need int) error {
	if o.N > 0 {
		if err := e.sink.Flush(o.B[:o.N]); err != nil {
			return err
		}
		e.written += int64(o.N)
		o.N = 0
	}
	if len(o.B) < need {
		putBuffer(o.B)
		o.B = make([]byte, Roundup(need, BUFFER_SIZE))
	}
	return nil
}

// finalize marks the engine finished and pushes out residual output.
func (e *Engine) finalize() error {
	e.finished = true
	if e.sink == nil {
		e.result = e.out.Bytes()
		e.written = int64(len(e.result))
	} else {
		if e.out.N > 0 {
			if err := e.flushOutput(&e.out, 0); err != nil {
				return e.fail(err)
			}
		}
		e.sinkClosed = true
		if err := e.sink.Close(); err != nil {
			return e.fail(err)
		}
	}
	e.log.Debug("filter finished",
		slog.String("algorithm", e.name),
		slog.Int64("bytes_in", e.consumed),
		slog.Int64("bytes_out", e.written),
	)
	return nil
}

// fail latches err and tears the engine down: partial output is flushed on a
// best-effort basis, then buffers, sink and codec state are released.
func (e *Engine) fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	if e.sink != nil && !e.sinkClosed && !e.closed && e.out.N > 0 && !errors.Is(err, ErrIO) {
		_ = e.sink.Flush(e.out.B[:e.out.N])
		e.out.N = 0
	}
	e.log.Debug("filter failed", slog.String("algorithm", e.name), slog.Any("error", err))
	e.release()
	return e.err
}

// release frees everything the engine owns, exactly once.
func (e *Engine) release() {
	if e.closed {
		return
	}
	e.closed = true
	if e.sink != nil {
		if !e.sinkClosed {
			e.sinkClosed = true
			if err := e.sink.Close(); err != nil {
				e.log.Debug("closing sink failed", slog.String("algorithm", e.name), slog.Any("error", err))
			}
		}
		putBuffer(e.out.B)
	}
	e.out = Output{}
	putBuffer(e.in)
	e.in = nil
	if d, ok := e.t.(Destroyer); ok {
		d.Destroy()
	}
	e.t = nil
}

// annotate fills in the algorithm name and absolute offset of input errors.
func annotate(err error, name string, offset int64) error {
	var ie *InputError
	if errors.As(err, &ie) {
		if ie.Algorithm == "" {
			ie.Algorithm = name
		}
		ie.Offset = offset
	}
	return err
}

func sinkKind(s Sink) string {
	switch s.(type) {
	case nil:
		return "buffer"
	case *fileSink:
		return "file"
	case funcSink:
		return "func"
	case *writerSink:
		return "writer"
	}
	return fmt.Sprintf("%T", s)
}
