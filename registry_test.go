package datafilter

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithms(t *testing.T) {
	names := Algorithms()
	assert.True(t, slices.IsSorted(names))
	for _, name := range []string{
		"adler32", "base64_decode", "base64_encode", "hex_decode", "hex_lower", "hex_upper",
		"md5", "percent_decode", "percent_encode", "qp_decode", "qp_encode", "sha1",
	} {
		assert.Contains(t, names, name)
	}
}

func TestLookup(t *testing.T) {
	a, err := Lookup("sha1")
	require.NoError(t, err)
	assert.Equal(t, "sha1", a.Name)

	_, err = Lookup("SHA1")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	_, err = Lookup("")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestRegister(t *testing.T) {
	upper := &Algorithm{
		Name: "test_ascii_upper",
		New: func(Options) (Transform, error) {
			return TransformFunc(func(out *Output, in []byte, _ bool) (int, error) {
				if err := out.Reserve(len(in)); err != nil {
					return 0, err
				}
				for _, c := range in {
					if 'a' <= c && c <= 'z' {
						c -= 'a' - 'A'
					}
					out.Put(c)
				}
				return len(in), nil
			}), nil
		},
	}
	if _, err := Lookup(upper.Name); err != nil {
		require.NoError(t, Register(upper))
	}

	out, err := ApplyString("test_ascii_upper", "hello, World", nil)
	require.NoError(t, err)
	assert.Equal(t, "HELLO, WORLD", out)

	assert.ErrorIs(t, Register(upper), ErrDuplicateAlgorithm)
	assert.ErrorIs(t, Register(&Algorithm{Name: "md5", New: upper.New}), ErrDuplicateAlgorithm)

	assert.Error(t, Register(nil))
	assert.Error(t, Register(&Algorithm{Name: "test_no_constructor"}))
	assert.Error(t, Register(&Algorithm{New: upper.New}))
}
