// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/suprsokr/mpqarc/mpqcodec"
	"github.com/suprsokr/mpqarc/mpqcrypt"
	"github.com/suprsokr/mpqarc/mpqformat"
)

// writeRecord is one file laid out into the new archive image, whether
// it originated from a surviving on-disk block or a freshly staged Add.
type writeRecord struct {
	hashSlot int
	name     string
	data     []byte // plaintext, decompressed
	mask     byte   // mpqcodec mask, or 0 for stored
	locale   uint16
	genCRC   bool
	patch    bool
	deleted  bool
	extra    uint32 // AddOptions.ExtraFlags of a staged file
}

// writeArchive lays out every surviving and pending file into a fresh
// archive image and writes it to w starting at offset 0.
func (a *Archive) writeArchive(w io.WriteSeeker) error {
	records, err := a.collectRecords()
	if err != nil {
		return err
	}

	headerSize := a.header.HeaderSize
	dataStart := int64(headerSize)

	newBlockTable := make([]mpqformat.BlockEntry, 0, len(records))
	newHashTable := append([]mpqformat.HashEntry(nil), a.hashTable...)

	offset := dataStart
	for _, rec := range records {
		blockIdx := uint32(len(newBlockTable))

		if rec.deleted {
			newBlockTable = append(newBlockTable, mpqformat.BlockEntry{
				Flags: mpqformat.FlagExists | mpqformat.FlagDeleteMarker,
			})
			newHashTable[rec.hashSlot].BlockIndex = blockIdx
			newHashTable[rec.hashSlot].Locale = rec.locale
			continue
		}

		sectorBlob, compressedSize, err := a.encodeFile(rec, uint32(offset))
		if err != nil {
			return fmt.Errorf("mpq: encode %q: %w", rec.name, err)
		}

		flags := blockFlagsFor(pendingFile{compression: rec.mask, generateCRC: rec.genCRC, isPatchFile: rec.patch, extraFlags: rec.extra})
		if len(rec.data) <= int(a.sectorSize) {
			flags |= mpqformat.FlagSingleUnit
		}
		entry := mpqformat.BlockEntry{
			FileSize:       uint32(len(rec.data)),
			CompressedSize: uint32(compressedSize),
			Flags:          flags,
		}
		entry.SetFilePos64(uint64(offset))
		newBlockTable = append(newBlockTable, entry)
		newHashTable[rec.hashSlot].BlockIndex = blockIdx
		newHashTable[rec.hashSlot].Locale = rec.locale

		if _, err := w.Seek(offset, io.SeekStart); err != nil {
			return err
		}
		if _, err := w.Write(sectorBlob); err != nil {
			return err
		}
		offset += int64(len(sectorBlob))
	}

	hashTableOffset := offset
	if err := a.writeHashTable(w, newHashTable, hashTableOffset); err != nil {
		return err
	}
	offset += int64(len(newHashTable)) * 16

	blockTableOffset := offset
	if err := a.writeBlockTable(w, newBlockTable, blockTableOffset); err != nil {
		return err
	}
	offset += int64(len(newBlockTable)) * 16

	a.header.HashTableEntries = uint32(len(newHashTable))
	a.header.BlockTableEntries = uint32(len(newBlockTable))
	a.header.ArchiveSize = uint32(offset)
	a.header.SetHashTableOffset64(uint64(hashTableOffset))
	a.header.SetBlockTableOffset64(uint64(blockTableOffset))

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := mpqformat.WriteHeader(w, a.header); err != nil {
		return fmt.Errorf("mpq: write header: %w", err)
	}

	a.hashTable = newHashTable
	a.blockTable = newBlockTable
	a.pendingRecords = nil
	a.removed = make(map[int]bool)
	return nil
}

func (a *Archive) writeHashTable(w io.WriteSeeker, entries []mpqformat.HashEntry, at int64) error {
	if _, err := w.Seek(at, io.SeekStart); err != nil {
		return err
	}
	return mpqformat.WriteHashTable(w, entries)
}

func (a *Archive) writeBlockTable(w io.WriteSeeker, entries []mpqformat.BlockEntry, at int64) error {
	if _, err := w.Seek(at, io.SeekStart); err != nil {
		return err
	}
	return mpqformat.WriteBlockTable(w, entries)
}

// collectRecords merges surviving on-disk blocks (those not removed)
// with every staged Add/Remove into one ordered list to lay out.
func (a *Archive) collectRecords() ([]writeRecord, error) {
	names := a.recoverableNames()

	var records []writeRecord
	for idx := range a.blockTable {
		if a.removed[idx] {
			continue
		}
		block := &a.blockTable[idx]
		if block.Flags&mpqformat.FlagExists == 0 {
			continue
		}
		if block.Flags&mpqformat.FlagDeleteMarker != 0 {
			continue
		}

		name, slot, locale, ok := a.locateSurvivor(idx, names)
		if !ok {
			continue // name unrecoverable: drop rather than risk silent corruption
		}

		plain, mask, genCRC, patch, err := a.decodeForRehost(name, block)
		if err != nil {
			return nil, fmt.Errorf("mpq: rehost %q: %w", name, err)
		}

		records = append(records, writeRecord{
			hashSlot: slot,
			name:     name,
			data:     plain,
			mask:     mask,
			locale:   locale,
			genCRC:   genCRC,
			patch:    patch,
		})
	}

	for _, rec := range a.pendingRecords {
		if rec.file.isDeleteMarker {
			records = append(records, writeRecord{hashSlot: rec.hashSlot, name: rec.file.mpqPath, locale: rec.file.locale, deleted: true})
			continue
		}
		records = append(records, writeRecord{
			hashSlot: rec.hashSlot,
			name:     rec.file.mpqPath,
			data:     rec.file.data,
			mask:     rec.file.compression,
			locale:   rec.file.locale,
			genCRC:   rec.file.generateCRC,
			patch:    rec.file.isPatchFile,
			extra:    rec.file.extraFlags,
		})
	}
	return records, nil
}

// recoverableNames returns every name whose hash we can compute: the
// union of List()'s result and the internal member names MPQ always
// uses literally.
func (a *Archive) recoverableNames() []string {
	names := a.List()
	return append(names, listfileName, "(attributes)", "(signature)")
}

func (a *Archive) locateSurvivor(blockIdx int, names []string) (name string, slot int, locale uint16, ok bool) {
	for i, e := range a.hashTable {
		if int(e.BlockIndex) != blockIdx {
			continue
		}
		for _, n := range names {
			na := mpqcrypt.HashString(normalizeName(n), mpqcrypt.HashNameA)
			nb := mpqcrypt.HashString(normalizeName(n), mpqcrypt.HashNameB)
			if na == e.HashA && nb == e.HashB {
				return normalizeName(n), i, e.Locale, true
			}
		}
	}
	return "", 0, 0, false
}

// decodeForRehost fully decrypts and decompresses a surviving block so
// it can be laid out fresh at a new offset (and, if FIX_KEY is set,
// under a new key).
func (a *Archive) decodeForRehost(name string, block *mpqformat.BlockEntry) (plain []byte, mask byte, genCRC bool, patch bool, err error) {
	plain, err = a.readBlock(name, block)
	if err != nil {
		return nil, 0, false, false, err
	}
	if block.Flags&mpqformat.FlagCompress != 0 || block.Flags&mpqformat.FlagImplode != 0 {
		mask = a.peekOriginalMask(name, block)
	}
	genCRC = block.Flags&mpqformat.FlagSectorCRC != 0
	patch = block.Flags&mpqformat.FlagPatchFile != 0
	return plain, mask, genCRC, patch, nil
}

// peekOriginalMask re-reads just enough of a compressed block to report
// which mpqcodec mask it used, so a rehosted copy keeps the same codec.
func (a *Archive) peekOriginalMask(name string, block *mpqformat.BlockEntry) byte {
	absOffset := int64(a.header.ArchiveOffset) + int64(block.FilePos64())
	head := make([]byte, 4)
	if _, err := a.file.ReadAt(head, absOffset); err != nil {
		return mpqcodec.MaskZlib
	}
	encrypted := block.Flags&mpqformat.FlagEncrypted != 0
	fixKey := block.Flags&mpqformat.FlagFixKey != 0
	if block.Flags&mpqformat.FlagSingleUnit != 0 {
		if block.CompressedSize == block.FileSize {
			// Stored raw after a compression attempt that didn't shrink:
			// there is no mask byte to read.
			return mpqcodec.MaskZlib
		}
		if encrypted {
			key := mpqcrypt.FileKey(baseName(name), fixKey, block.FilePos, block.FileSize)
			mpqcrypt.DecryptBytes(head, key)
		}
		return head[0]
	}
	// Multi-sector: the leading bytes are the (optionally encrypted)
	// sector offset table, not a mask byte; fall back to the dominant
	// codec for this archive version. Mixed per-sector masks within one
	// file are rare in practice and not reconstructed here.
	return mpqcodec.MaskZlib
}

// encodeFile compresses, frames, and encrypts rec.data into the bytes
// written at filePos, and reports the resulting compressed size.
func (a *Archive) encodeFile(rec writeRecord, filePos uint32) ([]byte, int, error) {
	singleUnit := len(rec.data) <= int(a.sectorSize)
	fixKey := true
	key := mpqcrypt.FileKey(baseName(rec.name), fixKey, filePos, uint32(len(rec.data)))

	if singleUnit {
		body := rec.data
		if rec.mask != 0 {
			compressed, err := mpqcodec.Compress(rec.mask, body)
			if err != nil {
				return nil, 0, err
			}
			if len(compressed) < len(body) {
				body = compressed
			}
		}
		out := append([]byte(nil), body...)
		mpqcrypt.EncryptBytes(out, key)
		return out, len(out), nil
	}

	sectorSize := int(a.sectorSize)
	sectorCount := (len(rec.data) + sectorSize - 1) / sectorSize
	if rec.mask == 0 {
		// Uncompressed files carry no sector offset table; each sector is
		// encrypted in place under key+i.
		out := append([]byte(nil), rec.data...)
		for i := 0; i < sectorCount; i++ {
			end := (i + 1) * sectorSize
			if end > len(out) {
				end = len(out)
			}
			mpqcrypt.EncryptBytes(out[i*sectorSize:end], key+uint32(i))
		}
		return out, len(out), nil
	}
	offsets := make([]uint32, sectorCount+1)
	var body []byte

	headerLen := uint32((sectorCount + 1) * 4)
	offsets[0] = headerLen

	var sectors [][]byte
	for i := 0; i < sectorCount; i++ {
		start := i * sectorSize
		end := start + sectorSize
		if end > len(rec.data) {
			end = len(rec.data)
		}
		chunk := rec.data[start:end]

		encoded := chunk
		if rec.mask != 0 {
			compressed, err := mpqcodec.Compress(rec.mask, chunk)
			if err == nil && len(compressed) < len(chunk) {
				encoded = compressed
			}
		}
		sectorCopy := append([]byte(nil), encoded...)
		mpqcrypt.EncryptBytes(sectorCopy, key+uint32(i))
		sectors = append(sectors, sectorCopy)
		offsets[i+1] = offsets[i] + uint32(len(sectorCopy))
	}

	offsetBytes := make([]byte, len(offsets)*4)
	for i, o := range offsets {
		binary.LittleEndian.PutUint32(offsetBytes[i*4:], o)
	}
	offsetWords := bytesToUint32sLE(offsetBytes)
	mpqcrypt.EncryptBlock(offsetWords, key-1)
	for i, wrd := range offsetWords {
		binary.LittleEndian.PutUint32(offsetBytes[i*4:], wrd)
	}

	body = append(body, offsetBytes...)
	for _, s := range sectors {
		body = append(body, s...)
	}
	return body, len(body), nil
}
