package datafilter

func init() {
	mustRegister("hex_lower", func(Options) (Transform, error) { return hexEncoder(&hexLower), nil })
	mustRegister("hex_upper", func(Options) (Transform, error) { return hexEncoder(&hexUpper), nil })
	mustRegister("hex_decode", func(Options) (Transform, error) { return &hexDecoder{}, nil })
}

// hexEncoder is stateless: every byte becomes two digits from the given table.
func hexEncoder(digits *[16]byte) Transform {
	return TransformFunc(func(out *Output, in []byte, _ bool) (int, error) {
		for i, c := range in {
			if err := out.Reserve(2); err != nil {
				return i, err
			}
			out.Put(digits[c>>4])
			out.Put(digits[c&0xF])
		}
		return len(in), nil
	})
}

// hexDecoder turns pairs of hex digits back into bytes, ignoring whitespace
// anywhere in the input. The first digit of an unfinished pair is carried over.
type hexDecoder struct {
	high    byte
	hasHigh bool
}

func (d *hexDecoder) Transform(out *Output, in []byte, eof bool) (int, error) {
	for i, c := range in {
		if isSpace(c) {
			continue
		}
		v := hexValues[c]
		if v == 0xFF {
			return i, invalid("unexpected character in input (not hex digit)")
		}
		if !d.hasHigh {
			d.high, d.hasHigh = v, true
			continue
		}
		if err := out.Reserve(1); err != nil {
			return i, err
		}
		out.Put(d.high<<4 | v)
		d.hasHigh = false
	}
	if eof && d.hasHigh {
		return len(in), invalid("spare character at end of input")
	}
	return len(in), nil
}
