package datafilter

import "fmt"

func init() {
	mustRegister("percent_encode", newPercentEncoder)
	mustRegister("percent_decode", func(Options) (Transform, error) { return TransformFunc(percentDecode), nil })
}

type percentEncoder struct {
	safe [256]bool
}

func newPercentEncoder(opts Options) (Transform, error) {
	p := newOptionParser("percent_encode", opts)
	safe, ok := p.Bytes("safe_bytes")
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !ok {
		safe = []byte(unreservedBytes)
	}

	e := &percentEncoder{}
	for _, c := range safe {
		if c == '%' {
			return nil, &OptionError{Algorithm: "percent_encode", Key: "safe_bytes", Reason: "percent bytes must always be encoded"}
		}
		if e.safe[c] {
			return nil, &OptionError{Algorithm: "percent_encode", Key: "safe_bytes", Reason: fmt.Sprintf("byte value %#02x listed twice", c)}
		}
		e.safe[c] = true
	}
	return e, nil
}

func (e *percentEncoder) Transform(out *Output, in []byte, _ bool) (int, error) {
	for i, c := range in {
		if e.safe[c] {
			if err := out.Reserve(1); err != nil {
				return i, err
			}
			out.Put(c)
			continue
		}
		if err := out.Reserve(3); err != nil {
			return i, err
		}
		out.Put('%')
		out.Put(hexUpper[c>>4])
		out.Put(hexUpper[c&0xF])
	}
	return len(in), nil
}

// percentDecode keeps no state of its own: an escape cut off by the end of a
// chunk is left unconsumed and presented again with the next one.
func percentDecode(out *Output, in []byte, eof bool) (int, error) {
	i := 0
	for i < len(in) {
		if err := out.Reserve(1); err != nil {
			return i, err
		}
		c := in[i]
		if c != '%' {
			out.Put(c)
			i++
			continue
		}
		if len(in)-i < 3 {
			if !eof {
				break // wait for more to come
			}
			return i, invalid("percent-encoded character incomplete at end of input")
		}
		hi, lo := in[i+1], in[i+2]
		if !isHex(hi) || !isHex(lo) {
			return i, invalid("bad percent-encoded byte in input")
		}
		out.Put(hexValues[hi]<<4 | hexValues[lo])
		i += 3
	}
	return i, nil
}
