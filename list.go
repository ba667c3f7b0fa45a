// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suprsokr/mpqarc/mpqcrypt"
	"github.com/suprsokr/mpqarc/mpqformat"
	"github.com/suprsokr/mpqarc/mpqlocale"
)

const listfileName = "(listfile)"

// List returns every known file name in the archive, in sorted order.
// Names are recovered from the archive's internal "(listfile)" member
// when present, plus any names staged by Add that have not yet been
// flushed by Close. MPQ's hash table stores only name hashes, so a file
// whose name appears in neither place cannot be recovered by listing;
// it can still be read directly if the exact name is already known.
func (a *Archive) List() []string {
	seen := make(map[string]bool)
	var names []string

	if raw, err := a.Read(listfileName, mpqlocale.Neutral); err == nil {
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimRight(line, "\r")
			line = strings.TrimSpace(line)
			if line == "" || seen[line] {
				continue
			}
			seen[line] = true
			names = append(names, line)
		}
	}

	for _, rec := range a.pendingRecords {
		if rec.file.isDeleteMarker || seen[rec.file.mpqPath] {
			continue
		}
		seen[rec.file.mpqPath] = true
		names = append(names, rec.file.mpqPath)
	}

	sort.Strings(names)
	return names
}

// ListEntry is one hash table slot's worth of detailed listing
// information, the shape the "list -d" CLI rendering wants. Name is
// either a name recovered from the internal listfile (or an extra
// listfile the caller supplies to Entries), or a synthesized
// "FileNNNNNNNN.xxx" placeholder when no name resolves to the slot's
// hash pair.
type ListEntry struct {
	Name           string
	HashIndex      int
	NameHash1      uint32
	NameHash2      uint32
	NameHash3      uint32
	Locale         uint16
	FileSize       uint32
	CompressedSize uint32
	Flags          uint32
	EncryptionKey  uint32
	IsMetadata     bool
}

// metadataNames is the set of internal member names list hides by
// default, shown only when the caller asks for everything.
var metadataNames = map[string]bool{
	listfileName:      true,
	attributesName:    true,
	signatureName:     true,
}

// Entries walks every occupied hash table slot and reports detailed,
// per-slot information for each one still present on disk. extraNames
// supplements name recovery beyond what the archive's own internal
// listfile carries (an externally supplied "--listfile"); slots whose
// hash pair matches none of them still appear, synthesized as
// "FileNNNNNNNN.xxx".
func (a *Archive) Entries(extraNames []string) []ListEntry {
	known := a.List()
	nameForHash := make(map[[2]uint32]string, len(known)+len(extraNames))
	for n := range metadataNames {
		nameForHash[hashPair(n)] = n
	}
	for _, n := range known {
		nameForHash[hashPair(n)] = n
	}
	for _, n := range extraNames {
		nameForHash[hashPair(n)] = n
	}

	var entries []ListEntry
	for slot, e := range a.hashTable {
		if e.BlockIndex == mpqformat.HashEmptyNeverUsed || e.BlockIndex == mpqformat.HashEmptyDeleted {
			continue
		}
		if a.removed[int(e.BlockIndex)] {
			continue
		}
		if int(e.BlockIndex) >= len(a.blockTable) {
			continue
		}
		block := a.blockTable[e.BlockIndex]
		if block.Flags&mpqformat.FlagExists == 0 || block.Flags&mpqformat.FlagDeleteMarker != 0 {
			continue
		}

		name, resolved := nameForHash[[2]uint32{e.HashA, e.HashB}]
		if !resolved {
			name = fmt.Sprintf("File%08d.xxx", e.BlockIndex)
		}

		var key uint32
		if block.Flags&mpqformat.FlagEncrypted != 0 {
			fixKey := block.Flags&mpqformat.FlagFixKey != 0
			key = mpqcrypt.FileKey(baseName(name), fixKey, block.FilePos, block.FileSize)
		}

		entries = append(entries, ListEntry{
			Name:           name,
			HashIndex:      slot,
			NameHash1:      e.HashA,
			NameHash2:      e.HashB,
			NameHash3:      mpqcrypt.HashString(normalizeName(name), mpqcrypt.HashTableOffset),
			Locale:         e.Locale,
			FileSize:       block.FileSize,
			CompressedSize: block.CompressedSize,
			Flags:          block.Flags,
			EncryptionKey:  key,
			IsMetadata:     metadataNames[name],
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].HashIndex < entries[j].HashIndex })
	return entries
}

func hashPair(name string) [2]uint32 {
	normalized := normalizeName(name)
	return [2]uint32{
		mpqcrypt.HashString(normalized, mpqcrypt.HashNameA),
		mpqcrypt.HashString(normalized, mpqcrypt.HashNameB),
	}
}

// synthesizeListfile rebuilds the "(listfile)" member content from
// every name List() can currently see, staging it as a normal pending
// write so it's laid out and encrypted the same way as any other file.
func (a *Archive) synthesizeListfile() {
	names := a.List()
	if len(names) == 0 {
		return
	}

	body := strings.Join(names, "\r\n") + "\r\n"

	slot, _, err := a.firstFreeOrMatchingSlot(listfileName, mpqlocale.Neutral)
	if err != nil {
		return
	}
	if old := a.hashTable[slot].BlockIndex; old != 0xFFFFFFFF && old != 0xFFFFFFFE && int(old) < len(a.blockTable) {
		a.removed[int(old)] = true
	}

	a.pendingRecords = append(a.pendingRecords, pendingRecord{
		hashSlot: slot,
		file: pendingFile{
			mpqPath:     listfileName,
			data:        []byte(body),
			locale:      mpqlocale.Neutral,
			compression: 0x02, // zlib
		},
	})
}
