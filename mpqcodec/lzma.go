// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqcodec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/lzma"
)

// compressLZMA and decompressLZMA back mask 0x12, StarCraft II's LZMA
// sector codec. LZMA is exclusive: it never combines with another mask
// bit, so unlike the other codecs it doesn't go through applyCompress /
// applyDecompress. github.com/ulikunitz/lzma is the pure-Go LZMA
// implementation generally reached for where the corpus needs LZMA but
// no pack example happens to carry it (see DESIGN.md).
func compressLZMA(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("create lzma writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lzma write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lzma close: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressLZMA(data []byte, uncompressedSize int) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create lzma reader: %w", err)
	}

	result := make([]byte, uncompressedSize)
	n, err := io.ReadFull(r, result)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("lzma decompress: %w", err)
	}
	return result[:n], nil
}
