package datafilter

import "math/bits"

func init() {
	mustRegister("md5", func(Options) (Transform, error) { return newMD5(), nil })
}

const (
	digestBlockSize = 64
	// a final block needs room for the 0x80 marker and the 8-byte length
	digestLengthRoom = 9

	MD5_SIZE = 16
)

// bitLength is the message length in bits, as two 32-bit halves.
type bitLength struct {
	low, high uint32
}

func (l *bitLength) add(n int) {
	total := (uint64(l.high)<<32 | uint64(l.low)) + uint64(n)*8
	l.low, l.high = uint32(total), uint32(total>>32)
}

// finalBlocks copies the tail of the message into one or two padded blocks
// with room for the length at the end of the last one.
func finalBlocks(buf *[2 * digestBlockSize]byte, tail []byte) []byte {
	n := copy(buf[:], tail)
	buf[n] = 0x80
	if n > digestBlockSize-digestLengthRoom {
		return buf[:2*digestBlockSize]
	}
	return buf[:digestBlockSize]
}

type md5Digest struct {
	s   [4]uint32
	len bitLength
}

func newMD5() *md5Digest {
	return &md5Digest{s: [4]uint32{0x67452301, 0xEFCDAB89, 0x98BADCFE, 0x10325476}}
}

func (m *md5Digest) Transform(out *Output, in []byte, eof bool) (int, error) {
	i := 0
	for len(in)-i >= digestBlockSize {
		m.block(in[i : i+digestBlockSize])
		i += digestBlockSize
	}
	if !eof {
		m.len.add(i)
		return i, nil
	}

	m.len.add(len(in))
	var buf [2 * digestBlockSize]byte
	final := finalBlocks(&buf, in[i:])
	LE.PutUint32(final[len(final)-8:], m.len.low)
	LE.PutUint32(final[len(final)-4:], m.len.high)
	for len(final) > 0 {
		m.block(final[:digestBlockSize])
		final = final[digestBlockSize:]
	}

	if err := out.Reserve(MD5_SIZE); err != nil {
		return len(in), err
	}
	for _, v := range m.s {
		LE.PutUint32(out.B[out.N:], v)
		out.N += 4
	}
	return len(in), nil
}

func (m *md5Digest) block(p []byte) {
	var x [16]uint32
	for j := range x {
		x[j] = LE.Uint32(p[4*j:])
	}

	a, b, c, d := m.s[0], m.s[1], m.s[2], m.s[3]
	for i := range 64 {
		var f uint32
		var g int
		switch i / 16 {
		case 0:
			f = (b & c) | (^b & d)
			g = i
		case 1:
			f = (b & d) | (c &^ d)
			g = (5*i + 1) % 16
		case 2:
			f = b ^ c ^ d
			g = (3*i + 5) % 16
		default:
			f = c ^ (b | ^d)
			g = (7 * i) % 16
		}
		f += a + md5T[i] + x[g]
		a, d, c = d, c, b
		b += bits.RotateLeft32(f, md5S[(i/16)*4+i%4])
	}

	m.s[0] += a
	m.s[1] += b
	m.s[2] += c
	m.s[3] += d
}
