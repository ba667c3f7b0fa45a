// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqcodec

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"

	dsnetbzip2 "github.com/dsnet/compress/bzip2"
)

// compressBzip2 encodes data with a real bzip2 encoder. compress/bzip2
// in the standard library is decode-only, so the encode direction is
// provided by dsnet/compress/bzip2, the standard pure-Go bzip2 encoder
// used across the Go ecosystem (see DESIGN.md).
func compressBzip2(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := dsnetbzip2.NewWriter(&buf, &dsnetbzip2.WriterConfig{Level: 9})
	if err != nil {
		return nil, fmt.Errorf("create bzip2 writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("bzip2 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("bzip2 close: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressBzip2(data []byte, uncompressedSize int) ([]byte, error) {
	r := bzip2.NewReader(bytes.NewReader(data))

	result := make([]byte, uncompressedSize)
	n, err := io.ReadFull(r, result)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("bzip2 decompress: %w", err)
	}
	return result[:n], nil
}
