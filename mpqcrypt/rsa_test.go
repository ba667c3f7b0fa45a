// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqcrypt

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRawRSARoundTrip exercises RawRSA with a small self-generated
// keypair (not a real MPQ signature key) purely to confirm the
// reverse/exponentiate/reverse transform round-trips correctly.
func TestRawRSARoundTrip(t *testing.T) {
	// p=61, q=53 (textbook RSA, not for production use).
	n := big.NewInt(61 * 53)
	e := big.NewInt(17)
	d := big.NewInt(2753) // modular inverse of e mod phi(n)=3120

	// n=3233 needs 2 bytes to hold any residue mod n.
	padded := []byte{42, 0}

	signed := RawRSA(padded, d, n)
	recovered := RawRSA(signed, e, n)

	require.Equal(t, padded, recovered)
}
