// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqcrypt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashStringTableKeys(t *testing.T) {
	require.Equal(t, uint32(0xC3AF3770), HashString("(hash table)", HashFileKey))
	require.Equal(t, uint32(0xEC83B3A3), HashString("(block table)", HashFileKey))
}

func TestHashStringNormalizesSlashesAndCase(t *testing.T) {
	a := HashString("Data\\File.txt", HashNameA)
	b := HashString("data/file.TXT", HashNameA)
	require.Equal(t, a, b)
}

func TestEncryptDecryptBlockRoundTrip(t *testing.T) {
	original := []uint32{1, 2, 3, 4, 0xDEADBEEF}
	data := append([]uint32(nil), original...)

	key := HashString("test.txt", HashFileKey)
	EncryptBlock(data, key)
	require.NotEqual(t, original, data)

	DecryptBlock(data, key)
	require.Equal(t, original, data)
}

func TestEncryptDecryptBytesRoundTrip(t *testing.T) {
	original := []byte("sixteen byte str")
	data := append([]byte(nil), original...)

	key := HashString("unit.dat", HashFileKey)
	EncryptBytes(data, key)
	require.NotEqual(t, original, data)

	DecryptBytes(data, key)
	require.Equal(t, original, data)
}

func TestFileKeyFixKeyAdjustsOnOffset(t *testing.T) {
	plain := FileKey("Data\\file.txt", false, 0x1000, 100)
	fixedA := FileKey("Data\\file.txt", true, 0x1000, 100)
	fixedB := FileKey("Data\\file.txt", true, 0x2000, 100)

	require.NotEqual(t, plain, fixedA)
	require.NotEqual(t, fixedA, fixedB)
}
