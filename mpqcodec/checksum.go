// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqcodec

import (
	"hash/adler32"
	"hash/crc32"
)

// SectorChecksum computes the Adler-32 checksum MPQ stores per sector
// when a block's SECTOR_CRC flag is set. Both stdlib hash packages are
// used directly; no codec beyond what's in the standard library is
// needed for either of these (see DESIGN.md).
func SectorChecksum(data []byte) uint32 {
	return adler32.Checksum(data)
}

// FileChecksum computes the CRC32 stored in the (attributes) file for a
// block-table entry, taken over the file's full decompressed contents.
func FileChecksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
