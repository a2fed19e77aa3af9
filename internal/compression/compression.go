// Package compression maps file extensions to stream codecs for portfolio
// inputs and cleaned outputs.
package compression

import (
	"compress/bzip2"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Codec identifies a compression format
type Codec string

const (
	None  Codec = "none"
	Gzip  Codec = "gzip"
	Zstd  Codec = "zstd"
	XZ    Codec = "xz"
	LZ4   Codec = "lz4"
	Bzip2 Codec = "bzip2"
)

var extensions = map[string]Codec{
	".gz":  Gzip,
	".zst": Zstd,
	".xz":  XZ,
	".lz4": LZ4,
	".bz2": Bzip2,
}

// String returns the string representation of Codec
func (c Codec) String() string {
	return string(c)
}

// CanWrite reports whether output can be encoded with the codec
func (c Codec) CanWrite() bool {
	return c != Bzip2
}

// Detect returns the codec implied by the path's last extension and the
// path with that extension stripped.
func Detect(path string) (Codec, string) {
	ext := strings.ToLower(filepath.Ext(path))
	if codec, ok := extensions[ext]; ok {
		return codec, path[:len(path)-len(ext)]
	}
	return None, path
}

// NewReader wraps r with a decoder for codec. The returned closer releases
// decoder resources; it does not close r.
func NewReader(r io.Reader, codec Codec) (io.Reader, func() error, error) {
	noop := func() error { return nil }

	switch codec {
	case None:
		return r, noop, nil
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, gz.Close, nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return dec, func() error { dec.Close(); return nil }, nil
	case XZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xr, noop, nil
	case LZ4:
		return lz4.NewReader(r), noop, nil
	case Bzip2:
		return bzip2.NewReader(r), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported codec: %s", codec)
	}
}

// NewWriter wraps w with an encoder for codec. Closing the returned writer
// flushes the encoder; it does not close w.
func NewWriter(w io.Writer, codec Codec) (io.WriteCloser, error) {
	switch codec {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return enc, nil
	case XZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xw, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case Bzip2:
		return nil, fmt.Errorf("bzip2 output is not supported")
	default:
		return nil, fmt.Errorf("unsupported codec: %s", codec)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
