// Package datafilter applies named, incremental byte transforms (encoders,
// decoders and digests) to streams supplied in chunks of any size.
//
// Every codec produces the same bytes however its input is split: a chunk may
// end in the middle of a Base64 quartet, a percent escape or a digest block,
// and the codec resumes where it left off when the next chunk arrives.
//
// One-shot use:
//
//	out, err := datafilter.Apply("base64_encode", data, nil)
//
// Streaming use:
//
//	e, err := datafilter.New("sha1", nil, nil)
//	...
//	e.Write(chunk1)
//	e.Write(chunk2)
//	sum, err := e.Result()
//	e.Close()
//
// Built-in algorithms: adler32, base64_decode, base64_encode, hex_decode,
// hex_lower, hex_upper, md5, percent_decode, percent_encode, qp_decode,
// qp_encode, sha1.
package datafilter

import "fmt"

// Apply runs the named algorithm over data in a single end-of-stream call and
// returns the complete output.
func Apply(name string, data []byte, opts Options) ([]byte, error) {
	t, err := newTransform(name, opts)
	if err != nil {
		return nil, err
	}
	if d, ok := t.(Destroyer); ok {
		defer d.Destroy()
	}

	out := Output{B: make([]byte, Roundup(len(data)+len(data)/2+64, 64)), grow: growInPlace}
	used, err := t.Transform(&out, data, true)
	if err != nil {
		return nil, annotate(err, name, int64(max(used, 0)))
	}
	if used != len(data) {
		panic(fmt.Sprintf("datafilter: %s left %d bytes unconsumed at end of stream", name, len(data)-used))
	}
	return out.Bytes(), nil
}

// ApplyString is Apply for string input.
func ApplyString(name string, data string, opts Options) (string, error) {
	out, err := Apply(name, []byte(data), opts)
	return string(out), err
}
