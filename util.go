package datafilter

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

var (
	BE = binary.BigEndian
	LE = binary.LittleEndian
)

// BUFFER_SIZE is the default size of the staging and flush buffers.
const BUFFER_SIZE = 4096

// MIN_BUFFER_SIZE is the smallest accepted buffer size. It has to hold the
// largest unit any built-in transform may leave unconsumed (a quoted-printable
// whitespace run of QP_TOLERATE_LINE_LEN bytes plus the byte that ends it).
const MIN_BUFFER_SIZE = 512

// Roundup rounds n up to the nearest multiple of align.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// grownSize returns the capacity for a buffer of size cur that must hold need
// more bytes after used: at least double, in whole BUFFER_SIZE steps.
func grownSize(cur, used, need int) int {
	return Roundup(max(cur*2, used+need), BUFFER_SIZE)
}
