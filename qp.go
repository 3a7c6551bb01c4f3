package datafilter

func init() {
	mustRegister("qp_encode", newQPEncoder)
	mustRegister("qp_decode", func(Options) (Transform, error) { return TransformFunc(qpDecode), nil })
}

// QP_TOLERATE_LINE_LEN bounds the run of whitespace the decoder holds back.
// Encoded lines should not exceed 76 characters, so whitespace that might be
// trailing (and hence dropped) is only tracked this far; a longer run is
// assumed to be significant and passed through.
const QP_TOLERATE_LINE_LEN = 256

func isLineBreak(c byte) bool { return c == '\r' || c == '\n' }

func isQPLiteral(c byte) bool { return c >= 33 && c <= 126 && c != '=' }

// qpDecode keeps no state of its own. Whitespace that may turn out to be
// trailing, an '=' without the two bytes after it, and a CR that may be
// followed by LF are all left unconsumed until more input shows what they are.
func qpDecode(out *Output, in []byte, eof bool) (int, error) {
	wsStart := 0 // start of the pending whitespace run, == i when there is none
	i := 0

	flushWhitespace := func() error {
		if err := out.Reserve(i - wsStart); err != nil {
			return err
		}
		out.PutBytes(in[wsStart:i])
		wsStart = i
		return nil
	}

loop:
	for i < len(in) {
		if i-wsStart == QP_TOLERATE_LINE_LEN {
			// Can't keep track of it forever, so assume it's significant.
			if err := flushWhitespace(); err != nil {
				return wsStart, err
			}
		}

		c := in[i]
		switch {
		case c == '=':
			if wsStart != i {
				if err := flushWhitespace(); err != nil {
					return wsStart, err
				}
			}
			if len(in)-i < 3 && !eof {
				break loop // wait until we know what comes after
			}
			if err := out.Reserve(1); err != nil {
				return i, err
			}
			i++
			switch {
			case i == len(in):
				out.Put('=')
			case isLineBreak(in[i]): // soft line break, skip
				if in[i] == '\r' && i+1 < len(in) && in[i+1] == '\n' {
					i++
				}
				i++
			case i+1 < len(in) && isHex(in[i]) && isHex(in[i+1]):
				out.Put(hexValues[in[i]]<<4 | hexValues[in[i+1]])
				i += 2
			default: // not an escape, keep the '=' and read on from the next byte
				out.Put('=')
			}
			wsStart = i

		case c == ' ' || c == '\t':
			i++

		case c >= 33 && c <= 126:
			if wsStart != i {
				if err := flushWhitespace(); err != nil {
					return wsStart, err
				}
			}
			if err := out.Reserve(1); err != nil {
				return i, err
			}
			out.Put(c)
			i++
			wsStart = i

		case isLineBreak(c):
			if c == '\r' && i+1 == len(in) && !eof {
				break loop // CR at end of buffer, wait to see if LF is next
			}
			i++
			if c == '\r' && i < len(in) && in[i] == '\n' {
				i++
			}
			if err := out.Reserve(1); err != nil {
				return i, err
			}
			out.Put('\n')
			wsStart = i // trailing whitespace is discarded

		default:
			return i, invalid("character not allowed in quoted-printable data")
		}
	}

	if eof {
		return len(in), nil // whatever whitespace is still pending is dropped
	}
	return wsStart, nil
}

type qpEncoder struct {
	lineEnding []byte // empty means hard line breaks are dropped
	lineLen    int
	last       byte // last byte consumed, to know if the input ended with a line break
}

func newQPEncoder(opts Options) (Transform, error) {
	p := newOptionParser("qp_encode", opts)
	e := &qpEncoder{lineEnding: defaultLineEnding, last: '\r'}
	if le, ok := p.Bytes("line_ending"); ok {
		e.lineEnding = le
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *qpEncoder) Destroy() {
	e.lineEnding = nil
}

func (e *qpEncoder) escape(out *Output, c byte) error {
	if err := out.Reserve(3); err != nil {
		return err
	}
	out.Put('=')
	out.Put(hexUpper[c>>4])
	out.Put(hexUpper[c&0xF])
	e.lineLen += 3
	return nil
}

func (e *qpEncoder) softBreak(out *Output) error {
	if err := out.Reserve(len(e.lineEnding) + 1); err != nil {
		return err
	}
	out.Put('=')
	out.PutBytes(e.lineEnding)
	e.lineLen = 0
	return nil
}

// needed estimates how many columns the unit starting at in[i] will take.
func (e *qpEncoder) needed(in []byte, i int) int {
	c := in[i]
	next := i + 1
	switch {
	case isQPLiteral(c):
		return 1
	case c == ' ' || c == '\t':
		if next == len(in) || isLineBreak(in[next]) {
			return 3 // will be escaped
		}
		return 1
	case isLineBreak(c):
		return 0
	}
	return 3
}

func (e *qpEncoder) Transform(out *Output, in []byte, eof bool) (int, error) {
	i := 0
	for i < len(in) {
		if len(in)-i < 4 && !eof {
			break // enough lookahead to decide about soft line breaks
		}

		// Decide whether to output a soft line break.
		if room := EMAIL_MAX_LINE_LENGTH - e.lineLen; room <= 4 {
			needed := e.needed(in, i)
			if next := i + 1; next == len(in) || !isLineBreak(in[next]) {
				room-- // space for '=' at end of line
			}
			if needed > 0 && needed > room {
				if err := e.softBreak(out); err != nil {
					return i, err
				}
			}
		}

		c := in[i]
		switch {
		case isQPLiteral(c):
			if err := out.Reserve(1); err != nil {
				return i, err
			}
			out.Put(c)
			e.lineLen++
			i++

		case isLineBreak(c):
			if c == '\r' && i+1 == len(in) && !eof {
				return i, nil // wait to see if LF is next
			}
			i++
			if c == '\r' && i < len(in) && in[i] == '\n' {
				i++
				c = '\n'
			}
			if len(e.lineEnding) > 0 {
				if err := out.Reserve(len(e.lineEnding)); err != nil {
					return i, err
				}
				out.PutBytes(e.lineEnding)
			}
			e.lineLen = 0

		case c == ' ' || c == '\t':
			if i+1 == len(in) && !eof {
				return i, nil // wait to see what comes next
			}
			i++
			if i == len(in) || isLineBreak(in[i]) {
				// Escape it so it won't end up as ignorable whitespace at the end of a line.
				if err := e.escape(out, c); err != nil {
					return i, err
				}
			} else {
				if err := out.Reserve(1); err != nil {
					return i, err
				}
				out.Put(c)
				e.lineLen++
			}

		default:
			if err := e.escape(out, c); err != nil {
				return i, err
			}
			i++
		}
		e.last = c
	}

	// Without a line break at the very end, add a soft one so that no real
	// line break gets assumed (or added) in transit.
	if eof && i == len(in) && !isLineBreak(e.last) {
		if err := e.softBreak(out); err != nil {
			return i, err
		}
	}
	return i, nil
}
