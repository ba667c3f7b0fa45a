// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package mpqformat implements the on-disk MPQ header, hash table, block
// table, and hi-block table encodings for format versions 1, 2, and the
// version-4 header shape (HET/BET tables themselves are not produced).
package mpqformat

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic values. headerMagic marks the real archive header; userDataMagic
// marks an optional preamble block that precedes it.
const (
	headerMagic   = 0x1A51504D // "MPQ\x1A"
	userDataMagic = 0x1B51504D // "MPQ\x1B"
)

// Format versions, matching the header's FormatVersion field.
const (
	Version1 = 0
	Version2 = 1
	Version3 = 2
	Version4 = 3
)

// Header sizes for each version that defines a fixed shape.
const (
	HeaderSizeV1 = 0x20
	HeaderSizeV2 = 0x2C
	HeaderSizeV4Min = 0xD0
)

const (
	// DefaultSectorSizeShift yields 4096-byte sectors (512 << 3).
	DefaultSectorSizeShift = 3
)

// Header is the union of the v1 base header and every extension
// introduced by v2 and v4. Fields not present for a given FormatVersion
// are zero.
type Header struct {
	ArchiveOffset uint64 // absolute file offset where this header begins

	Magic            uint32
	HeaderSize       uint32
	ArchiveSize      uint32
	FormatVersion    uint16
	SectorSizeShift  uint16
	HashTableOffset  uint32
	BlockTableOffset uint32
	HashTableEntries uint32
	BlockTableEntries uint32

	// v2+
	HiBlockTableOffset  uint64
	HashTableOffsetHi   uint16
	BlockTableOffsetHi  uint16

	// v4+
	ArchiveSize64        uint64
	BETTableOffset       uint64
	HETTableOffset       uint64
	HashTableSize64      uint64
	BlockTableSize64     uint64
	HiBlockTableSize64   uint64
	HETTableSize64       uint64
	BETTableSize64       uint64
	RawChunkSize         uint32
	BlockTableMD5        [16]byte
	HashTableMD5         [16]byte
	HiBlockTableMD5      [16]byte
	BETTableMD5          [16]byte
	HETTableMD5          [16]byte
	HeaderMD5            [16]byte
}

// SectorSize returns the size in bytes of one sector for this header.
func (h *Header) SectorSize() uint32 {
	return 512 << h.SectorSizeShift
}

// HashTableOffset64 returns the absolute (relative-to-archive-start)
// 64-bit hash table offset.
func (h *Header) HashTableOffset64() uint64 {
	if h.FormatVersion >= Version2 {
		return uint64(h.HashTableOffset) | (uint64(h.HashTableOffsetHi) << 32)
	}
	return uint64(h.HashTableOffset)
}

// BlockTableOffset64 returns the absolute 64-bit block table offset.
func (h *Header) BlockTableOffset64() uint64 {
	if h.FormatVersion >= Version2 {
		return uint64(h.BlockTableOffset) | (uint64(h.BlockTableOffsetHi) << 32)
	}
	return uint64(h.BlockTableOffset)
}

// SetHashTableOffset64 stores offset split across the low/high fields.
func (h *Header) SetHashTableOffset64(offset uint64) {
	h.HashTableOffset = uint32(offset)
	h.HashTableOffsetHi = uint16(offset >> 32)
}

// SetBlockTableOffset64 stores offset split across the low/high fields.
func (h *Header) SetBlockTableOffset64(offset uint64) {
	h.BlockTableOffset = uint32(offset)
	h.BlockTableOffsetHi = uint16(offset >> 32)
}

// FindHeader scans r for the MPQ header, starting at offset 0 and
// advancing in 512-byte increments until it finds "MPQ\x1A", optionally
// skipping over a "MPQ\x1B" user-data preamble first. It returns the
// parsed header with ArchiveOffset set to the header's absolute position.
func FindHeader(r io.ReadSeeker) (*Header, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	var magic [4]byte
	for offset := int64(0); offset+4 <= size; offset += 512 {
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, magic[:]); err != nil {
			break
		}
		m := binary.LittleEndian.Uint32(magic[:])

		switch m {
		case userDataMagic:
			var udSize, headerOffset uint32
			if err := binary.Read(r, binary.LittleEndian, &udSize); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &headerOffset); err != nil {
				return nil, err
			}
			realOffset := offset + int64(headerOffset)
			if _, err := r.Seek(realOffset, io.SeekStart); err != nil {
				return nil, err
			}
			var realMagic [4]byte
			if _, err := io.ReadFull(r, realMagic[:]); err != nil {
				return nil, err
			}
			if binary.LittleEndian.Uint32(realMagic[:]) != headerMagic {
				continue
			}
			return readHeaderAt(r, realOffset)

		case headerMagic:
			return readHeaderAt(r, offset)
		}
	}

	return nil, fmt.Errorf("mpqformat: no MPQ header found")
}

// readHeaderAt reads a header whose magic has already been consumed by
// the caller at archiveOffset; the read cursor sits right after the
// magic field.
func readHeaderAt(r io.ReadSeeker, archiveOffset int64) (*Header, error) {
	h := &Header{ArchiveOffset: uint64(archiveOffset), Magic: headerMagic}

	fields := []any{
		&h.HeaderSize, &h.ArchiveSize, &h.FormatVersion, &h.SectorSizeShift,
		&h.HashTableOffset, &h.BlockTableOffset, &h.HashTableEntries, &h.BlockTableEntries,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("mpqformat: read header: %w", err)
		}
	}

	if h.FormatVersion >= Version2 && h.HeaderSize >= HeaderSizeV2 {
		v2fields := []any{&h.HiBlockTableOffset, &h.HashTableOffsetHi, &h.BlockTableOffsetHi}
		for _, f := range v2fields {
			if err := binary.Read(r, binary.LittleEndian, f); err != nil {
				return nil, fmt.Errorf("mpqformat: read v2 header: %w", err)
			}
		}
	}

	if h.FormatVersion >= Version4 && h.HeaderSize >= HeaderSizeV4Min {
		v4fields := []any{
			&h.ArchiveSize64, &h.BETTableOffset, &h.HETTableOffset,
			&h.HashTableSize64, &h.BlockTableSize64, &h.HiBlockTableSize64,
			&h.HETTableSize64, &h.BETTableSize64, &h.RawChunkSize,
		}
		for _, f := range v4fields {
			if err := binary.Read(r, binary.LittleEndian, f); err != nil {
				return nil, fmt.Errorf("mpqformat: read v4 header: %w", err)
			}
		}
		md5s := []*[16]byte{
			&h.BlockTableMD5, &h.HashTableMD5, &h.HiBlockTableMD5,
			&h.BETTableMD5, &h.HETTableMD5, &h.HeaderMD5,
		}
		for _, d := range md5s {
			if _, err := io.ReadFull(r, d[:]); err != nil {
				return nil, fmt.Errorf("mpqformat: read v4 md5: %w", err)
			}
		}
	}

	return h, nil
}

// WriteHeader writes h to w starting at the current position, in the
// shape matching h.FormatVersion and h.HeaderSize.
func WriteHeader(w io.Writer, h *Header) error {
	fields := []any{
		uint32(headerMagic), h.HeaderSize, h.ArchiveSize, h.FormatVersion, h.SectorSizeShift,
		h.HashTableOffset, h.BlockTableOffset, h.HashTableEntries, h.BlockTableEntries,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}

	if h.FormatVersion >= Version2 {
		v2fields := []any{h.HiBlockTableOffset, h.HashTableOffsetHi, h.BlockTableOffsetHi}
		for _, f := range v2fields {
			if err := binary.Write(w, binary.LittleEndian, f); err != nil {
				return err
			}
		}
	}

	if h.FormatVersion >= Version4 {
		v4fields := []any{
			h.ArchiveSize64, h.BETTableOffset, h.HETTableOffset,
			h.HashTableSize64, h.BlockTableSize64, h.HiBlockTableSize64,
			h.HETTableSize64, h.BETTableSize64, h.RawChunkSize,
		}
		for _, f := range v4fields {
			if err := binary.Write(w, binary.LittleEndian, f); err != nil {
				return err
			}
		}
		md5s := [][]byte{
			h.BlockTableMD5[:], h.HashTableMD5[:], h.HiBlockTableMD5[:],
			h.BETTableMD5[:], h.HETTableMD5[:], h.HeaderMD5[:],
		}
		for _, d := range md5s {
			if _, err := w.Write(d); err != nil {
				return err
			}
		}
	}

	return nil
}
