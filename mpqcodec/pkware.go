// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqcodec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/JoshVarga/blast"
)

// decompressPKWare explodes legacy PKWARE DCL-compressed sector data.
// github.com/JoshVarga/blast is a direct Go port of Mark Adler's blast
// decoder for this exact bitstream, and is already a dependency of the
// pack's D2Shared (a fellow MPQ-domain repo) for this purpose.
func decompressPKWare(data []byte, uncompressedSize int) ([]byte, error) {
	var out bytes.Buffer
	if err := blast.Decode(bytes.NewReader(data), &out); err != nil {
		return nil, fmt.Errorf("pkware explode: %w", err)
	}
	result := out.Bytes()
	if len(result) > uncompressedSize {
		result = result[:uncompressedSize]
	}
	return result, nil
}

// implodeSingleUnit explodes a whole-file IMPLODE block (no sector mask
// byte, no per-sector framing). Kept distinct from decompressPKWare so
// callers that already know a block is IMPLODE-flagged (rather than
// COMPRESS-flagged with the PKWARE bit) don't need to synthesize a mask.
func implodeSingleUnit(r io.Reader, w io.Writer) error {
	if err := blast.Decode(r, w); err != nil {
		return fmt.Errorf("pkware implode: %w", err)
	}
	return nil
}
