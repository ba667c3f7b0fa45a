// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import "github.com/suprsokr/mpqarc/mpqformat"

// Info summarizes an archive's header-level and table-level state, the
// shape the "info" CLI command and any programmatic caller both want.
type Info struct {
	Path             string
	FormatVersion    int
	HeaderOffset     uint64
	HeaderSize       uint32
	SectorSize       uint32
	ArchiveSize      uint64
	HashTableEntries uint32
	BlockTableEntries uint32
	FileCount        int
	HasListfile      bool
	HasAttributes    bool
	HasSignature     bool

	// SignatureType is "None", "Weak", or "Strong" (a strong signature
	// implies the archive is also reported as HasSignature).
	SignatureType string
}

// Info gathers a summary of the archive's current state.
func (a *Archive) Info() Info {
	info := Info{
		Path:              a.path,
		FormatVersion:     int(a.header.FormatVersion),
		HeaderOffset:      a.header.ArchiveOffset,
		HeaderSize:        a.header.HeaderSize,
		SectorSize:        a.sectorSize,
		HashTableEntries:  uint32(len(a.hashTable)),
		BlockTableEntries: uint32(len(a.blockTable)),
	}
	if a.header.FormatVersion >= mpqformat.Version4 && a.header.ArchiveSize64 != 0 {
		info.ArchiveSize = a.header.ArchiveSize64
	} else {
		info.ArchiveSize = uint64(a.header.ArchiveSize)
	}

	for _, b := range a.blockTable {
		if b.Flags&mpqformat.FlagExists != 0 && b.Flags&mpqformat.FlagDeleteMarker == 0 {
			info.FileCount++
		}
	}

	info.HasListfile = a.Contains(listfileName, 0)
	info.HasAttributes = a.Contains(attributesName, 0)

	verify, err := a.Verify()
	switch {
	case err == nil && verify.HasStrongSignature:
		info.SignatureType = "Strong"
		info.HasSignature = true
	case err == nil && verify.HasWeakSignature:
		info.SignatureType = "Weak"
		info.HasSignature = true
	default:
		info.SignatureType = "None"
	}
	return info
}
