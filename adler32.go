package datafilter

func init() {
	mustRegister("adler32", func(Options) (Transform, error) { return &adler32Digest{s1: 1}, nil })
}

const (
	// adlerMod is the largest prime that is less than 65536.
	adlerMod = 65521
	// adlerNMax is the largest n such that
	// 255 * n * (n+1) / 2 + (n+1) * (mod-1) <= 2^32-1.
	// It is mentioned in RFC 1950 (search for "5552").
	adlerNMax = 5552

	ADLER32_SIZE = 4
)

type adler32Digest struct {
	s1, s2 uint32
}

func (a *adler32Digest) Transform(out *Output, in []byte, eof bool) (int, error) {
	// The modulo is only taken every adlerNMax bytes, which cannot overflow.
	for p := in; len(p) > 0; {
		var q []byte
		if len(p) > adlerNMax {
			p, q = p[:adlerNMax], p[adlerNMax:]
		}
		for _, x := range p {
			a.s1 += uint32(x)
			a.s2 += a.s1
		}
		a.s1 %= adlerMod
		a.s2 %= adlerMod
		p = q
	}

	if eof {
		if err := out.Reserve(ADLER32_SIZE); err != nil {
			return len(in), err
		}
		BE.PutUint32(out.B[out.N:], a.s2<<16|a.s1)
		out.N += ADLER32_SIZE
	}
	return len(in), nil
}
