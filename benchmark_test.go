package datafilter

import (
	"crypto/sha1"
	"encoding/base64"
	"io"
	"testing"
)

var benchData = randomBytes(99, 1<<20)

func benchmarkEngine(b *testing.B, name string, opts Options) {
	b.SetBytes(int64(len(benchData)))
	b.ReportAllocs()
	for b.Loop() {
		e, err := New(name, opts, Writer(io.Discard))
		if err != nil {
			b.Fatal(err)
		}
		if _, err := e.Write(benchData); err != nil {
			b.Fatal(err)
		}
		if err := e.Finish(); err != nil {
			b.Fatal(err)
		}
		e.Close()
	}
}

func BenchmarkBase64Encode(b *testing.B) { benchmarkEngine(b, "base64_encode", nil) }
func BenchmarkHexLower(b *testing.B) { benchmarkEngine(b, "hex_lower", nil) }
func BenchmarkPercentEncode(b *testing.B) { benchmarkEngine(b, "percent_encode", nil) }
func BenchmarkQPEncode(b *testing.B) { benchmarkEngine(b, "qp_encode", nil) }
func BenchmarkMD5(b *testing.B) { benchmarkEngine(b, "md5", nil) }
func BenchmarkSHA1(b *testing.B) { benchmarkEngine(b, "sha1", nil) }
func BenchmarkAdler32(b *testing.B) { benchmarkEngine(b, "adler32", nil) }

func BenchmarkBase64Decode(b *testing.B) {
	enc := []byte(base64.StdEncoding.EncodeToString(benchData))
	b.SetBytes(int64(len(enc)))
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Apply("base64_decode", enc, nil); err != nil {
			b.Fatal(err)
		}
	}
}

// Baseline comparisons against the standard library, to see the overhead of
// resumable state.
func BenchmarkStdBase64Encode(b *testing.B) {
	b.SetBytes(int64(len(benchData)))
	enc := base64.NewEncoder(base64.StdEncoding, io.Discard)
	for b.Loop() {
		_, _ = enc.Write(benchData)
	}
	enc.Close()
}

func BenchmarkStdSHA1(b *testing.B) {
	b.SetBytes(int64(len(benchData)))
	for b.Loop() {
		_ = sha1.Sum(benchData)
	}
}
