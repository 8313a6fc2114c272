// Package compression provides compression and decompression for the data
// files Quasar ingests. It supports multiple algorithms behind one
// interface, with pooled compressor instances and pooled scratch buffers
// for streaming work.
//
// # Overview
//
// The package provides:
//   - Multiple algorithms (Gzip, Snappy, LZ4, Zstd, S2, Deflate)
//   - Configurable levels (Fastest, Default, Better, Best)
//   - In-memory and streaming operations
//   - Compression detection from file extensions
//
// # Algorithm Selection
//
// Speed (fastest to slowest): LZ4 > Snappy/S2 > Zstd > Gzip/Deflate.
// Ratio (best to worst): Zstd > Gzip/Deflate > Snappy/S2 > LZ4.
// Input files usually dictate the algorithm anyway; see ByExtension.
//
// # Basic Usage
//
//	comp, err := compression.NewCompressor(&compression.Config{
//	    Algorithm: compression.Zstd,
//	    Level:     compression.Default,
//	})
//	compressed, err := comp.Compress(data)
//	original, err := comp.Decompress(compressed)
//
// # Reading Compressed Inputs
//
//	algo, _ := compression.ByExtension("trades.csv.zst")
//	rc, err := compression.NewReader(f, algo)
//	defer rc.Close()
package compression

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/pool"
	stringpool "github.com/ajitpratap0/quasar/pkg/strings"
)

// Algorithm identifies a compression algorithm.
type Algorithm string

const (
	// None passes data through unchanged
	None Algorithm = "none"
	// Gzip is the gzip container format
	Gzip Algorithm = "gzip"
	// Snappy is the framed snappy stream format
	Snappy Algorithm = "snappy"
	// LZ4 is the lz4 frame format
	LZ4 Algorithm = "lz4"
	// Zstd is zstandard
	Zstd Algorithm = "zstd"
	// S2 is snappy-compatible with better ratios
	S2 Algorithm = "s2"
	// Deflate is raw DEFLATE without a container
	Deflate Algorithm = "deflate"
)

// Level trades compression speed against ratio.
type Level int

const (
	// Fastest prioritizes speed over ratio
	Fastest Level = 1
	// Default balances speed and ratio
	Default Level = 5
	// Better improves ratio at some speed cost
	Better Level = 7
	// Best maximizes ratio
	Best Level = 9
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case Fastest:
		return "fastest"
	case Default:
		return "default"
	case Better:
		return "better"
	case Best:
		return "best"
	default:
		return "unknown"
	}
}

// Compressor compresses and decompresses byte slices and streams.
// Implementations are safe for concurrent use.
type Compressor interface {
	// Compress returns the compressed form of data without modifying it.
	Compress(data []byte) ([]byte, error)

	// Decompress returns the original bytes without modifying data.
	Decompress(data []byte) ([]byte, error)

	// CompressStream compresses src into dst.
	CompressStream(dst io.Writer, src io.Reader) error

	// DecompressStream decompresses src into dst.
	DecompressStream(dst io.Writer, src io.Reader) error

	// Algorithm returns the configured algorithm.
	Algorithm() Algorithm

	// Level returns the configured level.
	Level() Level
}

// Config configures a compressor.
type Config struct {
	Algorithm  Algorithm // algorithm to use
	Level      Level     // speed/ratio trade-off
	BufferSize int       // scratch buffer size for streaming copies
}

// DefaultConfig returns a balanced configuration: Snappy at the default
// level with 64KB streaming buffers.
func DefaultConfig() *Config {
	return &Config{
		Algorithm:  Snappy,
		Level:      Default,
		BufferSize: 64 * 1024,
	}
}

// NewCompressor creates a compressor for the configured algorithm. A nil
// config gets DefaultConfig.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Algorithm {
	case None:
		return &noneCompressor{base(config, None)}, nil
	case Gzip:
		return newGzipCompressor(config)
	case Snappy:
		return &snappyCompressor{base(config, Snappy)}, nil
	case LZ4:
		return newLZ4Compressor(config)
	case Zstd:
		return newZstdCompressor(config)
	case S2:
		return &s2Compressor{base(config, S2)}, nil
	case Deflate:
		return newDeflateCompressor(config)
	default:
		return nil, errors.New(errors.ErrorTypeConfig, "unsupported compression algorithm").
			WithDetail("algorithm", string(config.Algorithm))
	}
}

// baseCompressor carries the configuration shared by every implementation.
type baseCompressor struct {
	algorithm  Algorithm
	level      Level
	bufferSize int
}

func base(config *Config, algo Algorithm) baseCompressor {
	return baseCompressor{
		algorithm:  algo,
		level:      config.Level,
		bufferSize: config.BufferSize,
	}
}

// Algorithm returns the configured algorithm.
func (bc *baseCompressor) Algorithm() Algorithm {
	return bc.algorithm
}

// Level returns the configured level.
func (bc *baseCompressor) Level() Level {
	return bc.level
}

// copyStream copies src to dst through a pooled scratch buffer.
func (bc *baseCompressor) copyStream(dst io.Writer, src io.Reader) error {
	size := bc.bufferSize
	if size <= 0 {
		size = 64 * 1024
	}
	buf := pool.GlobalBufferPool.Get(size)
	defer pool.GlobalBufferPool.Put(buf)

	_, err := io.CopyBuffer(dst, src, buf)
	return err
}

// collect drains r into a pooled builder and returns a copy of the bytes.
func collect(r io.Reader) ([]byte, error) {
	builder := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(builder, stringpool.Medium)

	if _, err := io.Copy(builder, r); err != nil {
		return nil, err
	}

	result := make([]byte, builder.Len())
	copy(result, builder.Bytes())
	return result, nil
}

// noneCompressor passes data through unchanged.
type noneCompressor struct {
	baseCompressor
}

func (nc *noneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (nc *noneCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

func (nc *noneCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	return nc.copyStream(dst, src)
}

func (nc *noneCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	return nc.copyStream(dst, src)
}

// gzipCompressor pools its writers and readers; gzip state is expensive to
// rebuild per call.
type gzipCompressor struct {
	baseCompressor
	writers *pool.Pool[*gzip.Writer]
	readers *pool.Pool[*gzip.Reader]
}

func newGzipCompressor(config *Config) (*gzipCompressor, error) {
	level := mapGzipLevel(config.Level)

	gc := &gzipCompressor{baseCompressor: base(config, Gzip)}
	gc.writers = pool.New(func() *gzip.Writer {
		w, _ := gzip.NewWriterLevel(nil, level)
		return w
	}, nil)
	gc.readers = pool.New(func() *gzip.Reader {
		return new(gzip.Reader)
	}, nil)

	return gc, nil
}

func (gc *gzipCompressor) Compress(data []byte) ([]byte, error) {
	builder := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(builder, stringpool.Medium)

	w := gc.writers.Get()
	defer gc.writers.Put(w)

	w.Reset(builder)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	result := make([]byte, builder.Len())
	copy(result, builder.Bytes())
	return result, nil
}

func (gc *gzipCompressor) Decompress(data []byte) ([]byte, error) {
	r := gc.readers.Get()
	defer gc.readers.Put(r)

	if err := r.Reset(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return collect(r)
}

func (gc *gzipCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	w := gc.writers.Get()
	defer gc.writers.Put(w)

	w.Reset(dst)
	if err := gc.copyStream(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (gc *gzipCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	r := gc.readers.Get()
	defer gc.readers.Put(r)

	if err := r.Reset(src); err != nil {
		return err
	}
	return gc.copyStream(dst, r)
}

// snappyCompressor uses block encoding in memory and the framed stream
// format for streams.
type snappyCompressor struct {
	baseCompressor
}

func (sc *snappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (sc *snappyCompressor) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

func (sc *snappyCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	w := snappy.NewBufferedWriter(dst)
	if err := sc.copyStream(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (sc *snappyCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	return sc.copyStream(dst, snappy.NewReader(src))
}

type lz4Compressor struct {
	baseCompressor
	compressionLevel lz4.CompressionLevel
}

func newLZ4Compressor(config *Config) (*lz4Compressor, error) {
	return &lz4Compressor{
		baseCompressor:   base(config, LZ4),
		compressionLevel: mapLZ4Level(config.Level),
	}, nil
}

func (lc *lz4Compressor) Compress(data []byte) ([]byte, error) {
	builder := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(builder, stringpool.Medium)

	w := lz4.NewWriter(builder)
	if err := w.Apply(lz4.CompressionLevelOption(lc.compressionLevel)); err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	result := make([]byte, builder.Len())
	copy(result, builder.Bytes())
	return result, nil
}

func (lc *lz4Compressor) Decompress(data []byte) ([]byte, error) {
	return collect(lz4.NewReader(bytes.NewReader(data)))
}

func (lc *lz4Compressor) CompressStream(dst io.Writer, src io.Reader) error {
	w := lz4.NewWriter(dst)
	if err := w.Apply(lz4.CompressionLevelOption(lc.compressionLevel)); err != nil {
		return err
	}

	if err := lc.copyStream(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (lc *lz4Compressor) DecompressStream(dst io.Writer, src io.Reader) error {
	return lc.copyStream(dst, lz4.NewReader(src))
}

// zstdCompressor pools encoders and decoders; zstd window state is the most
// expensive of all the algorithms to initialize.
type zstdCompressor struct {
	baseCompressor
	encoders *pool.Pool[*zstd.Encoder]
	decoders *pool.Pool[*zstd.Decoder]
}

func newZstdCompressor(config *Config) (*zstdCompressor, error) {
	level := mapZstdLevel(config.Level)

	zc := &zstdCompressor{baseCompressor: base(config, Zstd)}
	zc.encoders = pool.New(func() *zstd.Encoder {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
		return enc
	}, nil)
	zc.decoders = pool.New(func() *zstd.Decoder {
		dec, _ := zstd.NewReader(nil)
		return dec
	}, nil)

	return zc, nil
}

func (zc *zstdCompressor) Compress(data []byte) ([]byte, error) {
	enc := zc.encoders.Get()
	defer zc.encoders.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (zc *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec := zc.decoders.Get()
	defer zc.decoders.Put(dec)

	return dec.DecodeAll(data, nil)
}

func (zc *zstdCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	enc := zc.encoders.Get()
	defer zc.encoders.Put(enc)

	enc.Reset(dst)
	if err := zc.copyStream(enc, src); err != nil {
		return err
	}
	return enc.Close()
}

func (zc *zstdCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	dec := zc.decoders.Get()
	defer zc.decoders.Put(dec)

	if err := dec.Reset(src); err != nil {
		return err
	}
	return zc.copyStream(dst, dec)
}

// s2Compressor is snappy-compatible with better ratios on large inputs.
type s2Compressor struct {
	baseCompressor
}

func (sc *s2Compressor) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (sc *s2Compressor) Decompress(data []byte) ([]byte, error) {
	return s2.Decode(nil, data)
}

func (sc *s2Compressor) CompressStream(dst io.Writer, src io.Reader) error {
	w := s2.NewWriter(dst)
	if err := sc.copyStream(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (sc *s2Compressor) DecompressStream(dst io.Writer, src io.Reader) error {
	return sc.copyStream(dst, s2.NewReader(src))
}

type deflateCompressor struct {
	baseCompressor
	level int
}

func newDeflateCompressor(config *Config) (*deflateCompressor, error) {
	return &deflateCompressor{
		baseCompressor: base(config, Deflate),
		level:          mapDeflateLevel(config.Level),
	}, nil
}

func (dc *deflateCompressor) Compress(data []byte) ([]byte, error) {
	builder := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(builder, stringpool.Medium)

	w, err := flate.NewWriter(builder, dc.level)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	result := make([]byte, builder.Len())
	copy(result, builder.Bytes())
	return result, nil
}

func (dc *deflateCompressor) Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	return collect(r)
}

func (dc *deflateCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	w, err := flate.NewWriter(dst, dc.level)
	if err != nil {
		return err
	}

	if err := dc.copyStream(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (dc *deflateCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	r := flate.NewReader(src)
	defer r.Close()

	return dc.copyStream(dst, r)
}

// CompressorPool reuses compressor instances across calls. Worthwhile for
// gzip and zstd, whose encoder state is expensive; harmless for the rest.
//
// CompressorPool is safe for concurrent use.
type CompressorPool struct {
	pool   *pool.Pool[Compressor]
	config *Config
}

// NewCompressorPool creates a pool that manufactures compressors from
// config as needed. A nil config gets DefaultConfig.
func NewCompressorPool(config *Config) *CompressorPool {
	if config == nil {
		config = DefaultConfig()
	}

	cp := &CompressorPool{config: config}
	cp.pool = pool.New(func() Compressor {
		comp, _ := NewCompressor(config)
		return comp
	}, nil)

	return cp
}

// Get takes a compressor from the pool.
func (cp *CompressorPool) Get() Compressor {
	return cp.pool.Get()
}

// Put returns a compressor to the pool.
func (cp *CompressorPool) Put(c Compressor) {
	cp.pool.Put(c)
}

// Compress compresses data using a pooled compressor.
func (cp *CompressorPool) Compress(data []byte) ([]byte, error) {
	c := cp.Get()
	defer cp.Put(c)
	return c.Compress(data)
}

// Decompress decompresses data using a pooled compressor.
func (cp *CompressorPool) Decompress(data []byte) ([]byte, error) {
	c := cp.Get()
	defer cp.Put(c)
	return c.Decompress(data)
}

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func mapDeflateLevel(level Level) int {
	switch level {
	case Fastest:
		return flate.BestSpeed
	case Best:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}
