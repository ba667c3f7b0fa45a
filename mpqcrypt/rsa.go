// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqcrypt

import (
	"crypto/md5"
	"crypto/sha1"
	"math/big"
)

// MD5Sum returns the MD5 digest of data.
func MD5Sum(data []byte) [16]byte {
	return md5.Sum(data)
}

// SHA1Sum returns the SHA-1 digest of data.
func SHA1Sum(data []byte) [20]byte {
	return sha1.Sum(data)
}

// RawRSA performs the classic MPQ signature's unpadded RSA transform:
// read the little-endian big-endian-reversed integer from buf, raise it
// to exponent mod modulus, and write the result back as a little-endian
// byte string of the same width as modulus.
//
// Blizzard's weak and strong signatures both use this unpadded form
// (no PKCS#1 envelope), which crypto/rsa does not expose, so the
// exponentiation is done directly against math/big.
func RawRSA(buf []byte, exponent, modulus *big.Int) []byte {
	reversed := make([]byte, len(buf))
	for i, b := range buf {
		reversed[len(buf)-1-i] = b
	}

	x := new(big.Int).SetBytes(reversed)
	y := new(big.Int).Exp(x, exponent, modulus)

	width := (modulus.BitLen() + 7) / 8
	out := make([]byte, width)
	y.FillBytes(out)

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
