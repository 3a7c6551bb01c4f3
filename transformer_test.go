package datafilter

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"slices"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/transform"
)

func TestNewReader(t *testing.T) {
	data := randomBytes(21, 20000)

	r, err := NewReader(bytes.NewReader(data), "base64_encode", Options{"line_ending": "\n"})
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, wrapLines(base64.StdEncoding.EncodeToString(data), EMAIL_MAX_LINE_LENGTH, "\n"), string(out))

	r, err = NewReader(iotest.OneByteReader(bytes.NewReader(data)), "sha1", nil)
	require.NoError(t, err)
	out, err = io.ReadAll(r)
	require.NoError(t, err)
	sum := sha1.Sum(data)
	assert.Equal(t, sum[:], out)
}

func TestNewReaderSmallReads(t *testing.T) {
	// 4 KiB of input expands to 8 KiB of hex, read back a few bytes at a time.
	data := randomBytes(22, 4096)
	r, err := NewReader(bytes.NewReader(data), "hex_upper", nil)
	require.NoError(t, err)

	var got []byte
	p := make([]byte, 7)
	for {
		n, err := r.Read(p)
		got = append(got, p[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	want, err := Apply("hex_upper", data, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewReaderInvalidInput(t *testing.T) {
	r, err := NewReader(strings.NewReader("TWFuQ"), "base64_decode", nil)
	require.NoError(t, err)
	_, err = io.ReadAll(r)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewWriter(t *testing.T) {
	data := randomBytes(23, 10000)
	var buf bytes.Buffer

	w, err := NewWriter(&buf, "qp_encode", nil)
	require.NoError(t, err)
	for chunk := range slices.Chunk(data, 77) {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	want, err := Apply("qp_encode", data, nil)
	require.NoError(t, err)
	assert.Equal(t, want, buf.Bytes())
}

func TestTransformerChain(t *testing.T) {
	enc, err := NewTransformer("percent_encode", nil)
	require.NoError(t, err)
	dec, err := NewTransformer("percent_decode", nil)
	require.NoError(t, err)

	in := "a b/c%d é"
	out, _, err := transform.String(transform.Chain(enc, dec), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTransformerReset(t *testing.T) {
	tr, err := NewTransformer("base64_encode", nil)
	require.NoError(t, err)

	out, _, err := transform.String(tr, "Man")
	require.NoError(t, err)
	assert.Equal(t, "TWFu", out)

	// transform.String resets the transformer before use
	out, _, err = transform.String(tr, "M")
	require.NoError(t, err)
	assert.Equal(t, "TQ==", out)
}

func TestNewTransformerErrors(t *testing.T) {
	_, err := NewTransformer("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = NewReader(strings.NewReader(""), "percent_encode", Options{"safe_bytes": "%"})
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = NewWriter(io.Discard, "base64_decode", Options{"allow_whitespace": "no"})
	assert.ErrorIs(t, err, ErrInvalidOption)
}
