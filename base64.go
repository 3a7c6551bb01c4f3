package datafilter

func init() {
	mustRegister("base64_encode", newBase64Encoder)
	mustRegister("base64_decode", newBase64Decoder)
}

type base64Encoder struct {
	lineEnding []byte // nil disables wrapping
	maxLine    int
	lineLen    int
	padding    bool
}

func newBase64Encoder(opts Options) (Transform, error) {
	p := newOptionParser("base64_encode", opts)
	e := &base64Encoder{padding: p.Bool("include_padding", true)}

	le, specified := p.Bytes("line_ending")
	if len(le) > 0 {
		e.lineEnding = le
		e.maxLine = EMAIL_MAX_LINE_LENGTH
	}
	if n, ok := p.PositiveInt("max_line_length"); ok {
		e.maxLine = n
		if !specified {
			e.lineEnding = defaultLineEnding
		}
	}

	if err := p.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *base64Encoder) Destroy() {
	e.lineEnding = nil
}

// emit writes symbols, breaking lines as they fill up. Room for all of syms
// must already be reserved; after a line break, room for the rest is reserved again.
func (e *base64Encoder) emit(out *Output, syms []byte) error {
	for k, c := range syms {
		out.Put(c)
		if e.lineEnding == nil {
			continue
		}
		e.lineLen++
		if e.lineLen == e.maxLine {
			if err := out.Reserve(len(e.lineEnding) + len(syms) - 1 - k); err != nil {
				return err
			}
			out.PutBytes(e.lineEnding)
			e.lineLen = 0
		}
	}
	return nil
}

func (e *base64Encoder) Transform(out *Output, in []byte, eof bool) (int, error) {
	var q [4]byte
	i := 0
	for len(in)-i >= 3 {
		if err := out.Reserve(4); err != nil {
			return i, err
		}
		n := uint32(in[i])<<16 | uint32(in[i+1])<<8 | uint32(in[i+2])
		i += 3
		q[0] = base64Alphabet[n>>18]
		q[1] = base64Alphabet[(n>>12)&0x3F]
		q[2] = base64Alphabet[(n>>6)&0x3F]
		q[3] = base64Alphabet[n&0x3F]
		if err := e.emit(out, q[:]); err != nil {
			return i, err
		}
	}

	if !eof {
		return i, nil
	}

	if i < len(in) {
		if err := out.Reserve(4); err != nil {
			return i, err
		}
		var syms []byte
		if len(in)-i == 1 {
			n := in[i]
			q[0] = base64Alphabet[n>>2]
			q[1] = base64Alphabet[(n&3)<<4]
			q[2], q[3] = base64Padding, base64Padding
			syms = q[:2]
			if e.padding {
				syms = q[:4]
			}
		} else {
			n := uint32(in[i])<<8 | uint32(in[i+1])
			q[0] = base64Alphabet[n>>10]
			q[1] = base64Alphabet[(n>>4)&0x3F]
			q[2] = base64Alphabet[(n&0xF)<<2]
			q[3] = base64Padding
			syms = q[:3]
			if e.padding {
				syms = q[:4]
			}
		}
		if err := e.emit(out, syms); err != nil {
			return i, err
		}
		i = len(in)
	}

	if e.lineLen > 0 && e.lineEnding != nil {
		if err := out.Reserve(len(e.lineEnding)); err != nil {
			return i, err
		}
		out.PutBytes(e.lineEnding)
		e.lineLen = 0
	}
	return i, nil
}

type base64Decoder struct {
	quad    [4]byte // symbol values of the quartet being collected
	count   int
	seenEnd bool // a padded quartet has been decoded

	allowWhitespace     bool
	allowInvalid        bool
	allowMissingPadding bool
}

func newBase64Decoder(opts Options) (Transform, error) {
	p := newOptionParser("base64_decode", opts)
	d := &base64Decoder{
		allowWhitespace:     p.Bool("allow_whitespace", true),
		allowInvalid:        p.Bool("allow_invalid_characters", false),
		allowMissingPadding: p.Bool("allow_missing_padding", false),
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *base64Decoder) Transform(out *Output, in []byte, eof bool) (int, error) {
	for i, b := range in {
		c := base64Values[b]
		if c > b64Pad {
			if d.allowInvalid || (d.allowWhitespace && isSpace(b)) {
				continue
			}
			return i, invalid("invalid character in input")
		}
		if d.seenEnd {
			if c == b64Pad {
				return i, invalid("padding characters should only occur at the end")
			}
			return i, invalid("data after padding")
		}
		if c == b64Pad && d.count < 2 {
			return i, invalid("padding characters should only occur at the end")
		}
		d.quad[d.count] = c
		d.count++
		if d.count == 4 {
			if err := d.block(out); err != nil {
				return i, err
			}
		}
	}

	if eof {
		switch {
		case d.count == 1:
			return len(in), invalid("spare character at end of input")
		case d.count >= 2:
			if !d.allowMissingPadding {
				return len(in), invalid("padding characters missing at end of input")
			}
			for d.count < 4 {
				d.quad[d.count] = b64Pad
				d.count++
			}
			if err := d.block(out); err != nil {
				return len(in), err
			}
		}
	}
	return len(in), nil
}

// block decodes a complete quartet.
func (d *base64Decoder) block(out *Output) error {
	n := d.quad
	if n[2] == b64Pad && n[3] != b64Pad {
		return invalid("padding characters should only occur at the end")
	}
	if err := out.Reserve(3); err != nil {
		return err
	}

	switch {
	case n[3] != b64Pad: // no padding, block of 3 bytes
		out.Put(n[0]<<2 | n[1]>>4)
		out.Put(n[1]<<4 | n[2]>>2)
		out.Put(n[2]<<6 | n[3])
	case n[2] != b64Pad: // ends with '=', block of 2 bytes
		if n[2]&3 != 0 {
			return invalid("spare bits set in last character of input data")
		}
		d.seenEnd = true
		out.Put(n[0]<<2 | n[1]>>4)
		out.Put(n[1]<<4 | n[2]>>2)
	default: // ends with '==', block of 1 byte
		if n[1]&0xF != 0 {
			return invalid("spare bits set in last character of input data")
		}
		d.seenEnd = true
		out.Put(n[0]<<2 | n[1]>>4)
	}

	d.count = 0
	return nil
}
