// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package mpqcodec implements the per-sector compression pipeline: a
// leading mask byte selects one or more stackable codecs, composed in a
// fixed order, exactly as MPQ sectors are laid out on disk.
package mpqcodec

import "fmt"

// Mask bits for the leading compression-type byte of a compressed sector.
const (
	MaskHuffman    = 0x01
	MaskZlib       = 0x02
	MaskPKWare     = 0x08
	MaskBzip2      = 0x10
	MaskLZMA       = 0x12 // exclusive: no other bit may be set alongside it
	MaskSparse     = 0x20
	MaskADPCMMono  = 0x40
	MaskADPCMStereo = 0x80
)

// composeOrder lists the mask bits in the fixed order compression stages
// are applied, innermost (applied to raw data first) to outermost
// (applied last, its output is what's written to disk).
var composeOrder = []byte{MaskADPCMMono, MaskADPCMStereo, MaskHuffman, MaskZlib, MaskPKWare, MaskBzip2, MaskSparse}

// Compress applies the codecs named by mask to data, in the fixed
// compose order, and prepends the mask byte. mask must not mix MaskLZMA
// with any other bit. The caller is responsible for falling back to an
// uncompressed (stored) sector when the result does not shrink the data.
func Compress(mask byte, data []byte) ([]byte, error) {
	if mask == MaskLZMA {
		body, err := compressLZMA(data)
		if err != nil {
			return nil, err
		}
		return append([]byte{MaskLZMA}, body...), nil
	}

	body := data
	var err error
	for _, bit := range composeOrder {
		if mask&bit == 0 {
			continue
		}
		body, err = applyCompress(bit, body)
		if err != nil {
			return nil, fmt.Errorf("mpqcodec: compress stage 0x%02X: %w", bit, err)
		}
	}
	return append([]byte{mask}, body...), nil
}

// Decompress reads the leading mask byte from data and applies each
// selected codec's decoder in reverse of the compose order, yielding
// exactly uncompressedSize bytes.
func Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	if len(data) == 0 {
		if uncompressedSize == 0 {
			return []byte{}, nil
		}
		return nil, fmt.Errorf("mpqcodec: empty compressed sector")
	}

	mask := data[0]
	body := data[1:]

	if mask == MaskLZMA {
		return decompressLZMA(body, uncompressedSize)
	}

	var err error
	for i := len(composeOrder) - 1; i >= 0; i-- {
		bit := composeOrder[i]
		if mask&bit == 0 {
			continue
		}
		body, err = applyDecompress(bit, body, uncompressedSize)
		if err != nil {
			return nil, fmt.Errorf("mpqcodec: decompress stage 0x%02X: %w", bit, err)
		}
	}
	return body, nil
}

func applyCompress(bit byte, data []byte) ([]byte, error) {
	switch bit {
	case MaskADPCMMono:
		return compressADPCM(data, 1)
	case MaskADPCMStereo:
		return compressADPCM(data, 2)
	case MaskHuffman:
		return compressHuffman(data)
	case MaskZlib:
		return compressZlib(data)
	case MaskPKWare:
		return nil, fmt.Errorf("PKWARE implode encoding is not supported (decode-only)")
	case MaskBzip2:
		return compressBzip2(data)
	case MaskSparse:
		return compressSparse(data)
	default:
		return nil, fmt.Errorf("unknown compression mask bit 0x%02X", bit)
	}
}

func applyDecompress(bit byte, data []byte, uncompressedSize int) ([]byte, error) {
	switch bit {
	case MaskADPCMMono:
		return decompressADPCM(data, 1, uncompressedSize)
	case MaskADPCMStereo:
		return decompressADPCM(data, 2, uncompressedSize)
	case MaskHuffman:
		return decompressHuffman(data)
	case MaskZlib:
		return decompressZlib(data, uncompressedSize)
	case MaskPKWare:
		return decompressPKWare(data, uncompressedSize)
	case MaskBzip2:
		return decompressBzip2(data, uncompressedSize)
	case MaskSparse:
		return decompressSparse(data, uncompressedSize)
	default:
		return nil, fmt.Errorf("unknown compression mask bit 0x%02X", bit)
	}
}
