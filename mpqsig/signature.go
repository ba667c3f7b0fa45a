// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package mpqsig implements the two MPQ archive signature schemes: the
// legacy weak signature (512-bit RSA over an MD5 digest) and the strong
// signature (2048-bit RSA over a SHA-1 digest, trailed by the four-byte
// marker "NGIS"). Both use raw, unpadded RSA, so the transform goes
// through mpqcrypt.RawRSA rather than crypto/rsa.
package mpqsig

import (
	"bytes"
	"errors"
	"math/big"

	"github.com/suprsokr/mpqarc/mpqcrypt"
)

// ErrNoMatchingKey is returned by VerifyStrong when the signature
// doesn't validate against any of the known public keys.
var ErrNoMatchingKey = errors.New("mpqsig: signature does not match any known key")

// WeakSignatureSize is the fixed size of a weak signature's plaintext
// blob, stored as the content of the "(signature)" archive member: an
// 8-byte zeroed header followed by a 64-byte RSA block.
const WeakSignatureSize = 8 + 64

// StrongSignatureSize is the size of the RSA block appended after the
// "NGIS" marker for a strong signature.
const StrongSignatureSize = 256

// strongTrailerMagic is "NGIS", Blizzard's strong-signature marker,
// written and read as a plain 4-byte string (not byte-swapped).
var strongTrailerMagic = []byte("NGIS")

// WeakDigest computes the MD5 digest used by the weak signature scheme.
// archive must have the bytes at [sigOffset, sigOffset+WeakSignatureSize)
// zeroed before hashing; callers read the archive once, zero that
// window in a scratch copy, and pass the result here.
func WeakDigest(zeroedArchive []byte) [16]byte {
	return mpqcrypt.MD5Sum(zeroedArchive)
}

// VerifyWeak checks a "(signature)" member's RSA block against the
// archive digest using Blizzard's published weak public key.
func VerifyWeak(zeroedArchive []byte, signatureBlob []byte) (bool, error) {
	if len(signatureBlob) != WeakSignatureSize {
		return false, errors.New("mpqsig: weak signature has wrong size")
	}
	block := signatureBlob[8:]
	digest := WeakDigest(zeroedArchive)

	decrypted := mpqcrypt.RawRSA(block, weakExponent, weakModulus)
	return bytes.Equal(decrypted[:16], digest[:]), nil
}

// GenerateWeak produces a weak-signature "(signature)" member's content
// for a self-signed archive, given a private exponent and modulus pair.
// Blizzard's own weak key is never used to sign, only to verify; callers
// that want to self-sign an archive must supply their own keypair.
func GenerateWeak(zeroedArchive []byte, privateExponent, modulus *big.Int) []byte {
	digest := WeakDigest(zeroedArchive)
	padded := make([]byte, 64)
	copy(padded, digest[:])

	signed := mpqcrypt.RawRSA(padded, privateExponent, modulus)

	out := make([]byte, WeakSignatureSize)
	copy(out[8:], signed)
	return out
}

// VerifyStrong checks a strong signature's RSA block (the 256 bytes
// following the "NGIS" trailer) against the archive bytes that precede
// the trailer, trying each of Blizzard's known public keys in turn.
func VerifyStrong(archiveWithoutTrailer []byte, signatureBlock []byte) (bool, error) {
	if len(signatureBlock) != StrongSignatureSize {
		return false, errors.New("mpqsig: strong signature has wrong size")
	}
	digest := mpqcrypt.SHA1Sum(archiveWithoutTrailer)

	for _, key := range strongModuli {
		decrypted := mpqcrypt.RawRSA(signatureBlock, key[0], key[1])
		if bytes.Equal(decrypted[:20], digest[:]) {
			return true, nil
		}
	}
	return false, ErrNoMatchingKey
}

// GenerateStrong signs archiveWithoutTrailer with a caller-supplied
// private exponent and modulus, returning the 256-byte RSA block to
// append after the "NGIS" trailer.
func GenerateStrong(archiveWithoutTrailer []byte, privateExponent, modulus *big.Int) []byte {
	digest := mpqcrypt.SHA1Sum(archiveWithoutTrailer)
	padded := make([]byte, 256)
	copy(padded, digest[:])
	return mpqcrypt.RawRSA(padded, privateExponent, modulus)
}

// TrailerMagic returns the four-byte "NGIS" marker written immediately
// before a strong signature's RSA block.
func TrailerMagic() []byte {
	return append([]byte(nil), strongTrailerMagic...)
}
