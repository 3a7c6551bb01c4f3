package datafilter

import "sync"

// bufPool reuses the staging and flush buffers of engines created with the
// default buffer size. This reduces GC pressure for short-lived engines, which
// is the common case for one chunk of work per request.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, BUFFER_SIZE)
		return &b
	},
}

func getBuffer(size int) []byte {
	if size != BUFFER_SIZE {
		return make([]byte, size)
	}
	return *bufPool.Get().(*[]byte)
}

func putBuffer(b []byte) {
	if cap(b) != BUFFER_SIZE {
		return // grown or custom-sized, let the GC have it
	}
	b = b[:BUFFER_SIZE]
	bufPool.Put(&b)
}
