// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"fmt"

	"github.com/suprsokr/mpqarc/mpqformat"
)

// AddOptions controls how Add stages a new file.
type AddOptions struct {
	Locale      uint16 // defaults to mpqlocale.Neutral
	Compression byte   // a mpqcodec Mask*, or 0 for the profile default (uncompressed without one)
	GenerateCRC bool   // set the SECTOR_CRC flag and store per-sector Adler-32
	PatchFile   bool   // set FILE_PATCH_FILE
	Overwrite   bool   // replace an existing entry at the same name+locale

	// ExtraFlags is OR'd into the computed block flags verbatim, for
	// callers (the "create"/"add" CLI's --flags/--file-flagsN) that
	// need to force bits this package wouldn't otherwise set.
	ExtraFlags uint32
}

// pendingRecord pairs a staged file with the hash table slot it will
// occupy once the archive is flushed.
type pendingRecord struct {
	hashSlot int
	file     pendingFile
}

// Add stages data to be written into the archive under name when Close
// runs. The archive must have been created with Create/CreateWithProfile
// or opened with OpenForModify.
func (a *Archive) Add(name string, data []byte, opts AddOptions) error {
	if a.readOnly {
		return ErrReadOnly
	}
	if a.state == stateClosed {
		return ErrClosed
	}

	name = normalizeName(name)
	slot, reused, err := a.firstFreeOrMatchingSlot(name, opts.Locale)
	if err != nil {
		return err
	}
	if reused && !opts.Overwrite {
		return fmt.Errorf("mpq: %q: %w", name, ErrNameExists)
	}
	if reused {
		oldIdx := int(a.hashTable[slot].BlockIndex)
		if oldIdx >= 0 && oldIdx < len(a.blockTable) {
			a.removed[oldIdx] = true
		}
	}

	compression := opts.Compression
	if compression == 0 {
		compression = a.profileDefaultCompress
	}

	a.pendingRecords = append(a.pendingRecords, pendingRecord{
		hashSlot: slot,
		file: pendingFile{
			mpqPath:     name,
			data:        data,
			locale:      opts.Locale,
			compression: compression,
			generateCRC: opts.GenerateCRC,
			isPatchFile: opts.PatchFile,
			overwrite:   opts.Overwrite,
			extraFlags:  opts.ExtraFlags,
		},
	})
	a.markDirty()
	return nil
}

// AddDeleteMarker stages a deletion-marker block for name: useful when
// building patch archives, where a name must be recorded as removed
// rather than simply absent. See FlagDeleteMarker.
func (a *Archive) AddDeleteMarker(name string, locale uint16) error {
	if a.readOnly {
		return ErrReadOnly
	}
	name = normalizeName(name)
	slot, reused, err := a.firstFreeOrMatchingSlot(name, locale)
	if err != nil {
		return err
	}
	if reused {
		oldIdx := int(a.hashTable[slot].BlockIndex)
		if oldIdx >= 0 && oldIdx < len(a.blockTable) {
			a.removed[oldIdx] = true
		}
	}
	a.pendingRecords = append(a.pendingRecords, pendingRecord{
		hashSlot: slot,
		file: pendingFile{
			mpqPath:        name,
			locale:         locale,
			isDeleteMarker: true,
		},
	})
	a.markDirty()
	return nil
}

// blockFlagsFor computes the block table Flags value a pending file (or
// delete marker) will be written with.
func blockFlagsFor(f pendingFile) uint32 {
	flags := uint32(mpqformat.FlagExists)
	if f.isDeleteMarker {
		return flags | mpqformat.FlagDeleteMarker
	}
	flags |= mpqformat.FlagEncrypted | mpqformat.FlagFixKey
	if f.compression != 0 {
		flags |= mpqformat.FlagCompress
	}
	if f.generateCRC {
		flags |= mpqformat.FlagSectorCRC
	}
	if f.isPatchFile {
		flags |= mpqformat.FlagPatchFile
	}
	return flags | f.extraFlags
}
