// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqformat

import (
	"io"

	"github.com/suprsokr/mpqarc/mpqcrypt"
)

// Hash table entry sentinels for BlockIndex.
const (
	HashEmptyNeverUsed = 0xFFFFFFFF
	HashEmptyDeleted   = 0xFFFFFFFE
)

// Block table entry flags.
const (
	FlagImplode      = 0x00000100
	FlagCompress     = 0x00000200
	FlagEncrypted    = 0x00010000
	FlagFixKey       = 0x00020000
	FlagPatchFile    = 0x00100000
	FlagSingleUnit   = 0x01000000
	FlagDeleteMarker = 0x02000000
	FlagSectorCRC    = 0x04000000
	FlagExists       = 0x80000000
)

// HashEntry is one 16-byte slot of the hash table.
type HashEntry struct {
	HashA      uint32
	HashB      uint32
	Locale     uint16
	Platform   uint16
	BlockIndex uint32
}

// BlockEntry is one 16-byte slot of the block table, plus the optional
// 16-bit high half of the file offset carried by the hi-block table.
type BlockEntry struct {
	FilePos        uint32
	CompressedSize uint32
	FileSize       uint32
	Flags          uint32
	FilePosHi      uint16
}

// FilePos64 returns the full 64-bit file offset.
func (b *BlockEntry) FilePos64() uint64 {
	return uint64(b.FilePos) | uint64(b.FilePosHi)<<32
}

// SetFilePos64 stores offset split across the low/high fields.
func (b *BlockEntry) SetFilePos64(offset uint64) {
	b.FilePos = uint32(offset)
	b.FilePosHi = uint16(offset >> 32)
}

// Exists reports whether the block represents a present file.
func (b *BlockEntry) Exists() bool {
	return b.Flags&FlagExists != 0
}

// hashTableKey / blockTableKey are the fixed encryption keys for the two
// tables, pinned by spec: hash("(hash table)", HashFileKey) = 0xC3AF3770,
// hash("(block table)", HashFileKey) = 0xEC83B3A3.
func hashTableKey() uint32 {
	return mpqcrypt.HashString("(hash table)", mpqcrypt.HashFileKey)
}

func blockTableKey() uint32 {
	return mpqcrypt.HashString("(block table)", mpqcrypt.HashFileKey)
}

// ReadHashTable reads and decrypts count hash table entries from r.
func ReadHashTable(r io.Reader, count uint32) ([]HashEntry, error) {
	raw := make([]uint32, count*4)
	if err := readUint32s(r, raw); err != nil {
		return nil, err
	}
	mpqcrypt.DecryptBlock(raw, hashTableKey())

	entries := make([]HashEntry, count)
	for i := range entries {
		entries[i] = HashEntry{
			HashA:      raw[i*4],
			HashB:      raw[i*4+1],
			Locale:     uint16(raw[i*4+2] & 0xFFFF),
			Platform:   uint16(raw[i*4+2] >> 16),
			BlockIndex: raw[i*4+3],
		}
	}
	return entries, nil
}

// WriteHashTable encrypts and writes entries to w.
func WriteHashTable(w io.Writer, entries []HashEntry) error {
	raw := make([]uint32, len(entries)*4)
	for i, e := range entries {
		raw[i*4] = e.HashA
		raw[i*4+1] = e.HashB
		raw[i*4+2] = uint32(e.Locale) | uint32(e.Platform)<<16
		raw[i*4+3] = e.BlockIndex
	}
	mpqcrypt.EncryptBlock(raw, hashTableKey())
	return writeUint32s(w, raw)
}

// ReadBlockTable reads and decrypts count block table entries from r.
// FilePosHi fields are left zero; call ReadHiBlockTable separately.
func ReadBlockTable(r io.Reader, count uint32) ([]BlockEntry, error) {
	raw := make([]uint32, count*4)
	if err := readUint32s(r, raw); err != nil {
		return nil, err
	}
	mpqcrypt.DecryptBlock(raw, blockTableKey())

	entries := make([]BlockEntry, count)
	for i := range entries {
		entries[i] = BlockEntry{
			FilePos:        raw[i*4],
			CompressedSize: raw[i*4+1],
			FileSize:       raw[i*4+2],
			Flags:          raw[i*4+3],
		}
	}
	return entries, nil
}

// WriteBlockTable encrypts and writes entries to w (FilePosHi is not
// included; write the hi-block table separately).
func WriteBlockTable(w io.Writer, entries []BlockEntry) error {
	raw := make([]uint32, len(entries)*4)
	for i, e := range entries {
		raw[i*4] = e.FilePos
		raw[i*4+1] = e.CompressedSize
		raw[i*4+2] = e.FileSize
		raw[i*4+3] = e.Flags
	}
	mpqcrypt.EncryptBlock(raw, blockTableKey())
	return writeUint32s(w, raw)
}

// ReadHiBlockTable reads count unencrypted 16-bit high halves and
// applies them to entries in place.
func ReadHiBlockTable(r io.Reader, entries []BlockEntry) error {
	hi := make([]uint16, len(entries))
	if err := readUint16s(r, hi); err != nil {
		return err
	}
	for i := range entries {
		entries[i].FilePosHi = hi[i]
	}
	return nil
}

// WriteHiBlockTable writes the high halves of entries, unencrypted.
func WriteHiBlockTable(w io.Writer, entries []BlockEntry) error {
	hi := make([]uint16, len(entries))
	for i, e := range entries {
		hi[i] = e.FilePosHi
	}
	return writeUint16s(w, hi)
}
