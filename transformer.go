package datafilter

import (
	"io"

	"golang.org/x/text/transform"
)

// transformer adapts a Transform to golang.org/x/text/transform. Our
// transforms cannot stop in the middle of a unit when dst is full, so their
// output goes to a private buffer first and is drained into dst from there.
type transformer struct {
	name string
	opts Options

	t        Transform
	pending  Output
	off      int // drained prefix of pending
	consumed int64
	done     bool
	err      error
}

var _ transform.Transformer = (*transformer)(nil)

// NewTransformer returns the named algorithm as a transform.Transformer, for
// use with transform.NewReader, transform.NewWriter, transform.Chain and friends.
func NewTransformer(name string, opts Options) (transform.Transformer, error) {
	t, err := newTransform(name, opts)
	if err != nil {
		return nil, err
	}
	return &transformer{
		name:    name,
		opts:    opts,
		t:       t,
		pending: Output{B: make([]byte, MIN_BUFFER_SIZE), grow: growInPlace},
	}, nil
}

// NewReader returns a reader that yields r's content transformed by the named algorithm.
func NewReader(r io.Reader, name string, opts Options) (io.Reader, error) {
	t, err := NewTransformer(name, opts)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, t), nil
}

// NewWriter returns a writer that transforms what is written to it before
// passing it on to w. Close must be called to finish the stream; it does not close w.
func NewWriter(w io.Writer, name string, opts Options) (io.WriteCloser, error) {
	t, err := NewTransformer(name, opts)
	if err != nil {
		return nil, err
	}
	return transform.NewWriter(w, t), nil
}

func (x *transformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if x.err != nil {
		return 0, 0, x.err
	}

	nDst = x.drain(dst)
	if x.off < x.pending.N {
		return nDst, 0, transform.ErrShortDst
	}
	if x.done {
		return nDst, 0, nil
	}

	used, err := x.t.Transform(&x.pending, src, atEOF)
	if err != nil {
		x.err = annotate(err, x.name, x.consumed+int64(max(used, 0)))
		return nDst, 0, x.err
	}
	x.consumed += int64(used)
	x.done = atEOF

	nDst += x.drain(dst[nDst:])
	switch {
	case x.off < x.pending.N:
		return nDst, used, transform.ErrShortDst
	case used < len(src):
		return nDst, used, transform.ErrShortSrc
	}
	return nDst, used, nil
}

// Reset starts over with fresh codec state.
func (x *transformer) Reset() {
	if d, ok := x.t.(Destroyer); ok {
		d.Destroy()
	}
	t, err := newTransform(x.name, x.opts)
	x.t, x.err = t, err
	x.pending.Reset()
	x.off = 0
	x.consumed = 0
	x.done = false
}

func (x *transformer) drain(dst []byte) int {
	n := copy(dst, x.pending.B[x.off:x.pending.N])
	x.off += n
	if x.off == x.pending.N {
		x.off = 0
		x.pending.N = 0
	}
	return n
}
