// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress produces precompressed sidecar files for emitted
// artifacts (bundle.js.zst, bundle.js.lz4) so a static file server can
// serve them without compressing on every request.
//
// Sidecars use the self-describing frame formats of each algorithm, not
// raw blocks, so standard tools (zstd -d, lz4 -d) can read them. A
// sidecar that would not be smaller than its artifact is skipped:
// [Compress] returns an error satisfying [IsIncompressible].
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm names a sidecar compression algorithm. The string values
// are the configuration spellings.
type Algorithm string

const (
	None Algorithm = "none"
	Zstd Algorithm = "zstd"
	LZ4  Algorithm = "lz4"
)

// Parse parses a configuration spelling. The empty string is None.
func Parse(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case "", None:
		return None, nil
	case Zstd:
		return Zstd, nil
	case LZ4:
		return LZ4, nil
	default:
		return "", fmt.Errorf("unknown compression %q (want none, zstd or lz4)", name)
	}
}

// Extension returns the sidecar suffix, including the dot, or "" for
// None.
func (a Algorithm) Extension() string {
	switch a {
	case Zstd:
		return ".zst"
	case LZ4:
		return ".lz4"
	default:
		return ""
	}
}

// ForExtension maps a file suffix back to its algorithm.
func ForExtension(extension string) (Algorithm, bool) {
	switch extension {
	case ".zst":
		return Zstd, true
	case ".lz4":
		return LZ4, true
	default:
		return None, false
	}
}

// The zstd encoder and decoder are safe for concurrent use and
// expensive to build, so one of each serves every call.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

var errIncompressible = errors.New("data is incompressible")

// IsIncompressible reports whether err means compression would not
// have reduced the size.
func IsIncompressible(err error) bool {
	return errors.Is(err, errIncompressible)
}

// Compress returns data compressed with algorithm. None returns data
// unchanged.
func Compress(data []byte, algorithm Algorithm) ([]byte, error) {
	var compressed []byte
	switch algorithm {
	case None, "":
		return data, nil
	case Zstd:
		compressed = zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	case LZ4:
		var buffer bytes.Buffer
		writer := lz4.NewWriter(&buffer)
		if err := writer.Apply(lz4.CompressionLevelOption(lz4.Level5), lz4.ChecksumOption(true)); err != nil {
			return nil, fmt.Errorf("lz4 options: %w", err)
		}
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		compressed = buffer.Bytes()
	default:
		return nil, fmt.Errorf("unsupported compression %q", algorithm)
	}

	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

// Decompress reverses Compress.
func Decompress(compressed []byte, algorithm Algorithm) ([]byte, error) {
	switch algorithm {
	case None, "":
		return compressed, nil
	case Zstd:
		result, err := zstdDecoder.DecodeAll(compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return result, nil
	case LZ4:
		result, err := io.ReadAll(lz4.NewReader(bytes.NewReader(compressed)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported compression %q", algorithm)
	}
}
