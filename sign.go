// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"github.com/suprsokr/mpqarc/mpqlocale"
)

// WeakSignatureWindow returns the absolute file offset and size of the
// "(signature)" member's on-disk bytes, for callers that need to patch
// a freshly written weak signature in place after Close without
// rewriting the whole archive. ok is false when the archive carries no
// "(signature)" member.
func (a *Archive) WeakSignatureWindow() (offset int64, size int, ok bool) {
	_, blockIdx, found := a.findBlockIndex(signatureName, mpqlocale.Neutral)
	if !found {
		return 0, 0, false
	}
	block := a.blockTable[blockIdx]
	return int64(a.header.ArchiveOffset) + int64(block.FilePos64()), int(block.CompressedSize), true
}
