package compression

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/quasar/pkg/errors"
	stringpool "github.com/ajitpratap0/quasar/pkg/strings"
)

// Algorithms lists the supported algorithm names in configuration order.
func Algorithms() []string {
	return []string{
		string(None), string(Gzip), string(Snappy), string(LZ4),
		string(Zstd), string(S2), string(Deflate),
	}
}

// extensions maps file suffixes to the algorithm they imply.
var extensions = map[string]Algorithm{
	".gz":      Gzip,
	".gzip":    Gzip,
	".zst":     Zstd,
	".zstd":    Zstd,
	".lz4":     LZ4,
	".sz":      Snappy,
	".s2":      S2,
	".deflate": Deflate,
}

// ByExtension reports the compression algorithm a file name implies, and
// whether the extension named one. Unrecognized extensions report None.
func ByExtension(path string) (Algorithm, bool) {
	algo, ok := extensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return None, false
	}
	return algo, true
}

// TrimExtension returns path without its compression suffix, so the inner
// format extension becomes visible: "trades.csv.gz" yields "trades.csv".
// Paths without a compression suffix come back unchanged.
func TrimExtension(path string) string {
	if _, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path
}

// Parse maps a configuration string onto an Algorithm. The empty string
// means None.
func Parse(s string) (Algorithm, error) {
	switch algo := Algorithm(strings.ToLower(s)); algo {
	case "":
		return None, nil
	case None, Gzip, Snappy, LZ4, Zstd, S2, Deflate:
		return algo, nil
	default:
		return "", errors.New(errors.ErrorTypeConfig, "unsupported compression algorithm").
			WithDetail("algorithm", s).
			WithDetail("valid", stringpool.Join(Algorithms(), ", "))
	}
}

// NewReader wraps r so reads yield decompressed bytes. None (and the empty
// algorithm) pass r through. The caller owns closing the returned reader;
// closing it does not close r.
func NewReader(r io.Reader, algorithm Algorithm) (io.ReadCloser, error) {
	switch algorithm {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case Deflate:
		return flate.NewReader(r), nil
	default:
		return nil, errors.New(errors.ErrorTypeConfig, "unsupported compression algorithm").
			WithDetail("algorithm", string(algorithm))
	}
}
