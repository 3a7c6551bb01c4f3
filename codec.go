package datafilter

// Transform is one incremental codec. It reads from in and appends to out,
// returning how many leading bytes of in it has fully consumed. Bytes before
// that point are never presented again; the rest are presented again, at the
// front, together with the next chunk.
//
// eof is true exactly once, for the final call. The transform must then
// consume everything and emit whatever completes the stream (padding, digest,
// trailing line ending).
//
// On error the returned count is the offset in in of the offending byte. Any
// error is terminal for the engine.
type Transform interface {
	Transform(out *Output, in []byte, eof bool) (int, error)
}

// Destroyer is implemented by transforms that hold resources beyond their own
// struct. Destroy is called exactly once, when the engine is closed.
type Destroyer interface {
	Destroy()
}

// TransformFunc adapts a stateless function to the Transform interface.
type TransformFunc func(out *Output, in []byte, eof bool) (int, error)

func (f TransformFunc) Transform(out *Output, in []byte, eof bool) (int, error) {
	return f(out, in, eof)
}
