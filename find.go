// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"github.com/suprsokr/mpqarc/mpqcrypt"
	"github.com/suprsokr/mpqarc/mpqformat"
	"github.com/suprsokr/mpqarc/mpqlocale"
)

// findBlockIndex resolves name under the locale fallback order (exact
// locale, then neutral) and returns the hash table slot and the block
// table index it points to. It walks the open-addressing probe chain
// starting at HashString(name, HashTableOffset) % len(hashTable),
// stopping at the first EMPTY_NEVER_USED slot.
func (a *Archive) findBlockIndex(name string, locale uint16) (hashSlot int, blockIndex uint32, ok bool) {
	name = normalizeName(name)
	hashA := mpqcrypt.HashString(name, mpqcrypt.HashNameA)
	hashB := mpqcrypt.HashString(name, mpqcrypt.HashNameB)
	tableSize := uint32(len(a.hashTable))
	if tableSize == 0 {
		return 0, 0, false
	}
	start := mpqcrypt.HashString(name, mpqcrypt.HashTableOffset) % tableSize

	for _, loc := range mpqlocale.FallbackOrder(locale) {
		idx := start
		for i := uint32(0); i < tableSize; i++ {
			e := a.hashTable[idx]
			if e.BlockIndex == mpqformat.HashEmptyNeverUsed {
				break
			}
			if e.BlockIndex != mpqformat.HashEmptyDeleted && e.HashA == hashA && e.HashB == hashB && e.Locale == loc {
				return int(idx), e.BlockIndex, true
			}
			idx = (idx + 1) % tableSize
		}
	}
	return 0, 0, false
}

// Contains reports whether name exists in the archive under any locale
// in the fallback order from requestedLocale.
func (a *Archive) Contains(name string, requestedLocale uint16) bool {
	_, _, ok := a.findBlockIndex(name, requestedLocale)
	return ok
}

// firstFreeOrMatchingSlot returns the slot Add should write a new
// name/locale pair into: the existing slot if one already matches, or
// the first EMPTY_NEVER_USED/EMPTY_DELETED slot on the probe chain
// otherwise. Slots already claimed by staged, not yet flushed records
// count as occupied. reused reports whether an existing entry is being
// overwritten.
func (a *Archive) firstFreeOrMatchingSlot(name string, locale uint16) (slot int, reused bool, err error) {
	name = normalizeName(name)
	hashA := mpqcrypt.HashString(name, mpqcrypt.HashNameA)
	hashB := mpqcrypt.HashString(name, mpqcrypt.HashNameB)
	tableSize := uint32(len(a.hashTable))
	start := mpqcrypt.HashString(name, mpqcrypt.HashTableOffset) % tableSize

	claimed := make(map[int]pendingFile, len(a.pendingRecords))
	for _, rec := range a.pendingRecords {
		claimed[rec.hashSlot] = rec.file
	}

	firstFree := int(-1)
	idx := start
	for i := uint32(0); i < tableSize; i++ {
		if f, ok := claimed[int(idx)]; ok {
			if hashPair(f.mpqPath) == [2]uint32{hashA, hashB} && f.locale == locale {
				return int(idx), true, nil
			}
			idx = (idx + 1) % tableSize
			continue
		}
		e := a.hashTable[idx]
		if e.BlockIndex == mpqformat.HashEmptyNeverUsed {
			if firstFree < 0 {
				firstFree = int(idx)
			}
			break
		}
		if e.BlockIndex == mpqformat.HashEmptyDeleted {
			if firstFree < 0 {
				firstFree = int(idx)
			}
		} else if e.HashA == hashA && e.HashB == hashB && e.Locale == locale {
			return int(idx), true, nil
		}
		idx = (idx + 1) % tableSize
	}

	if firstFree < 0 {
		return 0, false, ErrNoHashSpace
	}
	return firstFree, false, nil
}
