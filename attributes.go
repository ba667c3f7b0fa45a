// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"encoding/binary"

	"github.com/suprsokr/mpqarc/mpqcodec"
	"github.com/suprsokr/mpqarc/mpqlocale"
)

const attributesName = "(attributes)"

// attributesVersion is the only version this package produces.
const attributesVersion = 100

// Flags selecting which per-file arrays follow the (version, flags)
// header of an "(attributes)" member.
const (
	attributesFlagCRC32    = 0x1
	attributesFlagFileTime = 0x2
	attributesFlagMD5      = 0x4
)

// synthesizeAttributes rebuilds the "(attributes)" member covering every
// block table slot that will exist once the archive is flushed. Each
// array is sized to that final entry count; the member's own slot is
// left zero-filled, same as the rest of the corpus does for its own
// metadata entries.
func (a *Archive) synthesizeAttributes() error {
	names := a.List()
	if len(names) == 0 {
		return nil
	}

	entryCount := len(names) + 1 // +1 for the attributes member's own slot
	crcs := make([]byte, entryCount*4)
	times := make([]byte, entryCount*8)
	md5s := make([]byte, entryCount*16)

	for i, name := range names {
		data, err := a.readPendingOrStored(name)
		if err != nil {
			continue
		}
		binary.LittleEndian.PutUint32(crcs[i*4:], mpqcodec.FileChecksum(data))
	}

	buf := make([]byte, 0, 8+len(crcs)+len(times)+len(md5s))
	buf = appendUint32(buf, attributesVersion)
	buf = appendUint32(buf, attributesFlagCRC32|attributesFlagFileTime|attributesFlagMD5)
	buf = append(buf, crcs...)
	buf = append(buf, times...)
	buf = append(buf, md5s...)

	slot, _, err := a.firstFreeOrMatchingSlot(attributesName, mpqlocale.Neutral)
	if err != nil {
		return nil // no hash slot available: skip rather than fail the whole flush
	}
	if old := a.hashTable[slot].BlockIndex; old != 0xFFFFFFFF && old != 0xFFFFFFFE && int(old) < len(a.blockTable) {
		a.removed[int(old)] = true
	}

	a.pendingRecords = append(a.pendingRecords, pendingRecord{
		hashSlot: slot,
		file: pendingFile{
			mpqPath: attributesName,
			data:    buf,
			locale:  mpqlocale.Neutral,
		},
	})
	return nil
}

// readPendingOrStored resolves name's plaintext bytes from whichever of
// the pending queue or the already-committed archive currently holds
// it; attributes are computed before the flush writes anything out.
func (a *Archive) readPendingOrStored(name string) ([]byte, error) {
	normalized := normalizeName(name)
	for _, rec := range a.pendingRecords {
		if rec.file.mpqPath == normalized && !rec.file.isDeleteMarker {
			return rec.file.data, nil
		}
	}
	return a.Read(name, mpqlocale.Neutral)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}
