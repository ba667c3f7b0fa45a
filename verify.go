// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"bytes"
	"fmt"
	"os"

	"github.com/suprsokr/mpqarc/mpqlocale"
	"github.com/suprsokr/mpqarc/mpqsig"
)

// VerifyResult reports which signature schemes were present on an
// archive and whether each one validated.
type VerifyResult struct {
	HasWeakSignature   bool
	WeakSignatureValid bool
	HasStrongSignature bool
	StrongSignatureValid bool

	// WeakSignatureBlob holds the raw "(signature)" member bytes when
	// HasWeakSignature is true, for callers that want to print them.
	WeakSignatureBlob []byte
}

// Signed reports whether the archive carries any signature at all. An
// unsigned archive is not something Verify can validate: it fails
// verification rather than passing it vacuously.
func (r VerifyResult) Signed() bool {
	return r.HasWeakSignature || r.HasStrongSignature
}

// Passed reports whether Verify's checks succeeded: the archive must
// be signed, and every signature it carries must validate.
func (r VerifyResult) Passed() bool {
	if !r.Signed() {
		return false
	}
	if r.HasWeakSignature && !r.WeakSignatureValid {
		return false
	}
	if r.HasStrongSignature && !r.StrongSignatureValid {
		return false
	}
	return true
}

const signatureName = "(signature)"

// Verify checks any weak and/or strong signature present on the
// archive. An archive carrying neither signature type is reported as
// unsigned via VerifyResult.Signed rather than treated as trivially
// valid: callers that care about provenance (the verify CLI command)
// must be able to tell "nothing to check" apart from "checked and
// passed".
func (a *Archive) Verify() (VerifyResult, error) {
	var result VerifyResult

	if blob, err := a.Read(signatureName, mpqlocale.Neutral); err == nil && len(blob) == mpqsig.WeakSignatureSize {
		result.HasWeakSignature = true
		result.WeakSignatureBlob = blob
		valid, err := a.verifyWeak(blob)
		if err != nil {
			return result, err
		}
		result.WeakSignatureValid = valid
	}

	raw, err := os.ReadFile(a.path)
	if err != nil {
		return result, fmt.Errorf("mpq: read archive for verification: %w", err)
	}
	trailerStart := len(raw) - 4 - mpqsig.StrongSignatureSize
	if trailerStart > 0 && bytes.Equal(raw[trailerStart:trailerStart+4], mpqsig.TrailerMagic()) {
		result.HasStrongSignature = true
		body := raw[:trailerStart]
		block := raw[trailerStart+4:]
		valid, err := mpqsig.VerifyStrong(body, block)
		result.StrongSignatureValid = err == nil && valid
	}

	return result, nil
}

// verifyWeak zeroes the "(signature)" member's window in a fresh copy
// of the on-disk archive bytes and checks the digest against sig.
func (a *Archive) verifyWeak(sig []byte) (bool, error) {
	_, blockIdx, ok := a.findBlockIndex(signatureName, mpqlocale.Neutral)
	if !ok {
		return false, nil
	}
	block := a.blockTable[blockIdx]

	raw, err := os.ReadFile(a.path)
	if err != nil {
		return false, fmt.Errorf("mpq: read archive for verification: %w", err)
	}

	start := int64(a.header.ArchiveOffset) + int64(block.FilePos64())
	end := start + int64(block.CompressedSize)
	if end > int64(len(raw)) {
		return false, fmt.Errorf("mpq: %w: signature block out of range", ErrArchiveCorrupt)
	}
	zeroed := append([]byte(nil), raw...)
	for i := start; i < end; i++ {
		zeroed[i] = 0
	}

	return mpqsig.VerifyWeak(zeroed, sig)
}
