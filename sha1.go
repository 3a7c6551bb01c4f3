package datafilter

import "math/bits"

const SHA1_SIZE = 20

func init() {
	mustRegister("sha1", func(Options) (Transform, error) { return newSHA1(), nil })
}

type sha1Digest struct {
	h   [5]uint32
	len bitLength
	w   [80]uint32 // message schedule, kept here to avoid a large stack frame per block
}

func newSHA1() *sha1Digest {
	return &sha1Digest{h: [5]uint32{0x67452301, 0xEFCDAB89, 0x98BADCFE, 0x10325476, 0xC3D2E1F0}}
}

func (s *sha1Digest) Transform(out *Output, in []byte, eof bool) (int, error) {
	i := 0
	for len(in)-i >= digestBlockSize {
		s.block(in[i : i+digestBlockSize])
		i += digestBlockSize
	}
	if !eof {
		s.len.add(i)
		return i, nil
	}

	s.len.add(len(in))
	var buf [2 * digestBlockSize]byte
	final := finalBlocks(&buf, in[i:])
	BE.PutUint32(final[len(final)-8:], s.len.high)
	BE.PutUint32(final[len(final)-4:], s.len.low)
	for len(final) > 0 {
		s.block(final[:digestBlockSize])
		final = final[digestBlockSize:]
	}

	if err := out.Reserve(SHA1_SIZE); err != nil {
		return len(in), err
	}
	for _, v := range s.h {
		BE.PutUint32(out.B[out.N:], v)
		out.N += 4
	}
	return len(in), nil
}

func (s *sha1Digest) block(p []byte) {
	w := &s.w
	for t := range 16 {
		w[t] = BE.Uint32(p[4*t:])
	}
	for t := 16; t < 80; t++ {
		w[t] = bits.RotateLeft32(w[t-3]^w[t-8]^w[t-14]^w[t-16], 1)
	}

	a, b, c, d, e := s.h[0], s.h[1], s.h[2], s.h[3], s.h[4]
	for t := range 80 {
		var f uint32
		switch {
		case t < 20:
			f = (b & c) | (^b & d)
		case t < 40:
			f = b ^ c ^ d
		case t < 60:
			f = (b & c) | (b & d) | (c & d)
		default:
			f = b ^ c ^ d
		}
		temp := bits.RotateLeft32(a, 5) + f + e + w[t] + sha1K[t/20]
		e, d, c, b, a = d, c, bits.RotateLeft32(b, 30), a, temp
	}

	s.h[0] += a
	s.h[1] += b
	s.h[2] += c
	s.h[3] += d
	s.h[4] += e
}
