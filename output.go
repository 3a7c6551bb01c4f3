package datafilter

import "io"

// GrowFunc makes room for at least need more bytes in o, either by growing
// o.B or by flushing o.B[:o.N] somewhere and resetting o.N.
type GrowFunc func(o *Output, need int) error

// Output is the writable region a Transform emits into. The engine owns the
// buffer; a transform only ever appends at N after a successful Reserve.
type Output struct {
	B []byte // destination buffer, len(B) is the usable capacity
	N int    // current write position

	grow GrowFunc
}

// NewOutput creates an Output over p. A nil grow makes it fixed-size: Reserve
// then reports ErrIO once p is full.
func NewOutput(p []byte, grow GrowFunc) *Output {
	return &Output{B: p[:cap(p)], grow: grow}
}

// Reserve guarantees that at least n bytes can be written at N. The grow hook
// may be called any number of times over the life of a transform call,
// including zero.
func (o *Output) Reserve(n int) error {
	if len(o.B)-o.N >= n {
		return nil
	}
	if o.grow == nil {
		return ioError("output", io.ErrShortBuffer)
	}
	if err := o.grow(o, n); err != nil {
		return err
	}
	if len(o.B)-o.N < n {
		return ioError("output", io.ErrShortBuffer)
	}
	return nil
}

// Put appends one byte. The caller must have reserved room for it.
func (o *Output) Put(c byte) {
	o.B[o.N] = c
	o.N++
}

// PutBytes appends p. The caller must have reserved room for it.
func (o *Output) PutBytes(p []byte) {
	o.N += copy(o.B[o.N:], p)
}

// Write implements the io.Writer interface, reserving as it goes.
func (o *Output) Write(p []byte) (int, error) {
	if err := o.Reserve(len(p)); err != nil {
		return 0, err
	}
	o.PutBytes(p)
	return len(p), nil
}

// Reset allows the underlying byte slice to be reused.
func (o *Output) Reset() { o.N = 0 }

// Len returns the number of bytes written and not yet flushed.
func (o *Output) Len() int { return o.N }

// Size returns the capacity of the underlying byte slice.
func (o *Output) Size() int { return len(o.B) }

// Available returns the number of bytes available for writing without growth.
func (o *Output) Available() int { return len(o.B) - o.N }

// Bytes returns a slice view of the written data.
func (o *Output) Bytes() []byte { return o.B[:o.N] }

// growInPlace is the GrowableBuffer policy: reallocate keeping written bytes.
func growInPlace(o *Output, need int) error {
	b := make([]byte, grownSize(len(o.B), o.N, need))
	copy(b, o.B[:o.N])
	o.B = b
	return nil
}
