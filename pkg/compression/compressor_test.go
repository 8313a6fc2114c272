package compression

import (
	"bytes"
	"io"
	"testing"

	"github.com/ajitpratap0/quasar/pkg/errors"
)

var allAlgorithms = []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2, Deflate}

func testPayload() []byte {
	return bytes.Repeat([]byte("symbol,price,volume\nAAPL,189.50,1200\nMSFT,402.10,800\n"), 50)
}

func TestRoundTripAllAlgorithms(t *testing.T) {
	original := testPayload()

	for _, algo := range allAlgorithms {
		t.Run(string(algo), func(t *testing.T) {
			comp, err := NewCompressor(&Config{Algorithm: algo, Level: Default})
			if err != nil {
				t.Fatalf("NewCompressor: %v", err)
			}

			compressed, err := comp.Compress(original)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			decompressed, err := comp.Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(original, decompressed) {
				t.Errorf("in-memory round trip mismatch: got %d bytes, want %d",
					len(decompressed), len(original))
			}

			var stream bytes.Buffer
			if err := comp.CompressStream(&stream, bytes.NewReader(original)); err != nil {
				t.Fatalf("CompressStream: %v", err)
			}
			var restored bytes.Buffer
			if err := comp.DecompressStream(&restored, &stream); err != nil {
				t.Fatalf("DecompressStream: %v", err)
			}
			if !bytes.Equal(original, restored.Bytes()) {
				t.Errorf("stream round trip mismatch: got %d bytes, want %d",
					restored.Len(), len(original))
			}

			if algo != None && comp.Algorithm() != algo {
				t.Errorf("Algorithm() = %s, want %s", comp.Algorithm(), algo)
			}
		})
	}
}

func TestCompressionLevels(t *testing.T) {
	original := testPayload()
	levels := []Level{Fastest, Default, Better, Best}

	for _, algo := range []Algorithm{Gzip, LZ4, Zstd, Deflate} {
		for _, level := range levels {
			t.Run(string(algo)+"/"+level.String(), func(t *testing.T) {
				comp, err := NewCompressor(&Config{Algorithm: algo, Level: level})
				if err != nil {
					t.Fatalf("NewCompressor: %v", err)
				}

				compressed, err := comp.Compress(original)
				if err != nil {
					t.Fatalf("Compress: %v", err)
				}
				decompressed, err := comp.Decompress(compressed)
				if err != nil {
					t.Fatalf("Decompress: %v", err)
				}
				if !bytes.Equal(original, decompressed) {
					t.Errorf("round trip mismatch at level %s", level)
				}
				if comp.Level() != level {
					t.Errorf("Level() = %s, want %s", comp.Level(), level)
				}
			})
		}
	}
}

func TestNewCompressorUnknownAlgorithm(t *testing.T) {
	_, err := NewCompressor(&Config{Algorithm: "brotli"})
	if err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
	if !errors.IsType(err, errors.ErrorTypeConfig) {
		t.Errorf("error type = %v, want config", err)
	}
}

func TestNewCompressorNilConfig(t *testing.T) {
	comp, err := NewCompressor(nil)
	if err != nil {
		t.Fatalf("NewCompressor(nil): %v", err)
	}
	if comp.Algorithm() != Snappy {
		t.Errorf("default algorithm = %s, want snappy", comp.Algorithm())
	}
}

func TestCompressorPool(t *testing.T) {
	cp := NewCompressorPool(&Config{Algorithm: Zstd, Level: Default})
	original := testPayload()

	compressed, err := cp.Compress(original)
	if err != nil {
		t.Fatalf("pool Compress: %v", err)
	}
	decompressed, err := cp.Decompress(compressed)
	if err != nil {
		t.Fatalf("pool Decompress: %v", err)
	}
	if !bytes.Equal(original, decompressed) {
		t.Error("pooled round trip mismatch")
	}

	// Explicit checkout works too
	c := cp.Get()
	if c.Algorithm() != Zstd {
		t.Errorf("pooled compressor algorithm = %s, want zstd", c.Algorithm())
	}
	cp.Put(c)
}

func TestByExtension(t *testing.T) {
	tests := []struct {
		path     string
		want     Algorithm
		detected bool
	}{
		{"trades.csv.gz", Gzip, true},
		{"trades.csv.GZIP", Gzip, true},
		{"rows.json.zst", Zstd, true},
		{"rows.json.zstd", Zstd, true},
		{"data.avro.lz4", LZ4, true},
		{"data.csv.sz", Snappy, true},
		{"data.csv.s2", S2, true},
		{"blob.deflate", Deflate, true},
		{"plain.csv", None, false},
		{"noext", None, false},
	}
	for _, tt := range tests {
		algo, ok := ByExtension(tt.path)
		if algo != tt.want || ok != tt.detected {
			t.Errorf("ByExtension(%q) = (%s, %t), want (%s, %t)",
				tt.path, algo, ok, tt.want, tt.detected)
		}
	}
}

func TestTrimExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"trades.csv.gz", "trades.csv"},
		{"rows.json.zst", "rows.json"},
		{"plain.csv", "plain.csv"},
		{"archive.lz4", "archive"},
	}
	for _, tt := range tests {
		if got := TrimExtension(tt.path); got != tt.want {
			t.Errorf("TrimExtension(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	for _, algo := range allAlgorithms {
		got, err := Parse(string(algo))
		if err != nil || got != algo {
			t.Errorf("Parse(%q) = (%s, %v), want (%s, nil)", algo, got, err, algo)
		}
	}

	if got, err := Parse(""); err != nil || got != None {
		t.Errorf("Parse(\"\") = (%s, %v), want (none, nil)", got, err)
	}
	if got, err := Parse("ZSTD"); err != nil || got != Zstd {
		t.Errorf("Parse(\"ZSTD\") = (%s, %v), want (zstd, nil)", got, err)
	}

	if _, err := Parse("brotli"); err == nil {
		t.Error("Parse(\"brotli\") should fail")
	}
}

func TestNewReaderDecompressesStreams(t *testing.T) {
	original := testPayload()

	for _, algo := range allAlgorithms {
		t.Run(string(algo), func(t *testing.T) {
			comp, err := NewCompressor(&Config{Algorithm: algo, Level: Default})
			if err != nil {
				t.Fatalf("NewCompressor: %v", err)
			}

			var stream bytes.Buffer
			if err := comp.CompressStream(&stream, bytes.NewReader(original)); err != nil {
				t.Fatalf("CompressStream: %v", err)
			}

			rc, err := NewReader(&stream, algo)
			if err != nil {
				t.Fatalf("NewReader: %v", err)
			}
			restored, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if err := rc.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			if !bytes.Equal(original, restored) {
				t.Errorf("NewReader round trip mismatch: got %d bytes, want %d",
					len(restored), len(original))
			}
		})
	}

	if _, err := NewReader(bytes.NewReader(nil), "brotli"); err == nil {
		t.Error("NewReader with unknown algorithm should fail")
	}
}
