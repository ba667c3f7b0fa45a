// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/suprsokr/mpqarc/mpqcodec"
	"github.com/suprsokr/mpqarc/mpqcrypt"
	"github.com/suprsokr/mpqarc/mpqformat"
)

// Read returns the full decompressed, decrypted contents of name,
// resolved under the locale fallback order starting at requestedLocale.
func (a *Archive) Read(name string, requestedLocale uint16) ([]byte, error) {
	_, blockIdx, ok := a.findBlockIndex(name, requestedLocale)
	if !ok {
		return nil, fmt.Errorf("mpq: %q: %w", name, ErrNotFound)
	}
	return a.readBlock(name, &a.blockTable[blockIdx])
}

func baseName(mpqPath string) string {
	if i := strings.LastIndexByte(mpqPath, '\\'); i >= 0 {
		return mpqPath[i+1:]
	}
	return mpqPath
}

func (a *Archive) readBlock(name string, block *mpqformat.BlockEntry) ([]byte, error) {
	if block.Flags&mpqformat.FlagDeleteMarker != 0 {
		return nil, fmt.Errorf("mpq: %q: %w", name, ErrNotFound)
	}
	if block.Flags&mpqformat.FlagExists == 0 {
		return nil, fmt.Errorf("mpq: %q: %w", name, ErrNotFound)
	}

	absOffset := int64(a.header.ArchiveOffset) + int64(block.FilePos64())
	raw := make([]byte, block.CompressedSize)
	if _, err := a.file.ReadAt(raw, absOffset); err != nil {
		return nil, fmt.Errorf("mpq: read %q: %w", name, err)
	}

	encrypted := block.Flags&mpqformat.FlagEncrypted != 0
	fixKey := block.Flags&mpqformat.FlagFixKey != 0
	var key uint32
	if encrypted {
		key = mpqcrypt.FileKey(baseName(name), fixKey, block.FilePos, block.FileSize)
	}

	if block.Flags&mpqformat.FlagSingleUnit != 0 {
		return a.readSingleUnit(raw, block, key, encrypted)
	}
	return a.readMultiSector(raw, block, key, encrypted)
}

func (a *Archive) readSingleUnit(raw []byte, block *mpqformat.BlockEntry, key uint32, encrypted bool) ([]byte, error) {
	if encrypted {
		mpqcrypt.DecryptBytes(raw, key)
	}
	// A compression attempt that didn't shrink the data is stored raw
	// even though FlagCompress is set; CompressedSize == FileSize is
	// the tell, since there's no per-sector offset table to check here.
	if block.Flags&mpqformat.FlagCompress != 0 && block.CompressedSize != block.FileSize {
		return mpqcodec.Decompress(raw, int(block.FileSize))
	}
	if block.Flags&mpqformat.FlagImplode != 0 {
		return mpqcodec.Decompress(append([]byte{mpqcodec.MaskPKWare}, raw...), int(block.FileSize))
	}
	return raw, nil
}

func (a *Archive) readMultiSector(raw []byte, block *mpqformat.BlockEntry, key uint32, encrypted bool) ([]byte, error) {
	sectorSize := int(a.sectorSize)
	sectorCount := (int(block.FileSize) + sectorSize - 1) / sectorSize
	if sectorCount == 0 {
		return []byte{}, nil
	}

	compressed := block.Flags&(mpqformat.FlagCompress|mpqformat.FlagImplode) != 0
	if !compressed {
		result := make([]byte, 0, block.FileSize)
		if encrypted {
			offset := 0
			for i := 0; i < sectorCount; i++ {
				n := sectorSize
				if remaining := int(block.FileSize) - offset; remaining < n {
					n = remaining
				}
				sector := append([]byte(nil), raw[offset:offset+n]...)
				mpqcrypt.DecryptBytes(sector, key+uint32(i))
				result = append(result, sector...)
				offset += n
			}
			return result, nil
		}
		return raw[:block.FileSize], nil
	}

	hasCRC := block.Flags&mpqformat.FlagSectorCRC != 0
	offsetCount := sectorCount + 1
	if hasCRC {
		offsetCount++
	}
	offsetTable := make([]uint32, offsetCount)
	offsetBytes := append([]byte(nil), raw[:offsetCount*4]...)
	if encrypted {
		offsetWords := bytesToUint32sLE(offsetBytes)
		mpqcrypt.DecryptBlock(offsetWords, key-1)
		offsetTable = offsetWords
	} else {
		offsetTable = bytesToUint32sLE(offsetBytes)
	}

	result := make([]byte, 0, block.FileSize)
	for i := 0; i < sectorCount; i++ {
		start := offsetTable[i]
		end := offsetTable[i+1]
		if end < start || int(end) > len(raw) {
			return nil, fmt.Errorf("mpq: %w: sector %d offset table out of range", ErrArchiveCorrupt, i)
		}
		sectorData := append([]byte(nil), raw[start:end]...)
		if encrypted {
			mpqcrypt.DecryptBytes(sectorData, key+uint32(i))
		}

		uncompressedLen := sectorSize
		if remaining := int(block.FileSize) - i*sectorSize; remaining < uncompressedLen {
			uncompressedLen = remaining
		}

		if int(end-start) == uncompressedLen {
			result = append(result, sectorData...)
			continue
		}

		plain, err := mpqcodec.Decompress(sectorData, uncompressedLen)
		if err != nil {
			return nil, fmt.Errorf("mpq: decompress sector %d: %w", i, err)
		}
		result = append(result, plain...)
	}
	return result, nil
}

func bytesToUint32sLE(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4 : i*4+4])
	}
	return out
}
