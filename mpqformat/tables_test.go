// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqformat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashTableWriteReadRoundTrip(t *testing.T) {
	entries := []HashEntry{
		{HashA: 0x1111, HashB: 0x2222, Locale: 0x0409, Platform: 0, BlockIndex: 0},
		{HashA: 0x3333, HashB: 0x4444, Locale: 0, Platform: 0, BlockIndex: HashEmptyDeleted},
		{HashA: 0, HashB: 0, Locale: 0, Platform: 0, BlockIndex: HashEmptyNeverUsed},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHashTable(&buf, entries))

	got, err := ReadHashTable(bytes.NewReader(buf.Bytes()), uint32(len(entries)))
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestBlockTableWriteReadRoundTrip(t *testing.T) {
	entries := []BlockEntry{
		{FilePos: 0x20, CompressedSize: 100, FileSize: 200, Flags: FlagExists | FlagCompress | FlagEncrypted},
		{FilePos: 0x400, CompressedSize: 50, FileSize: 50, Flags: FlagExists},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBlockTable(&buf, entries))

	got, err := ReadBlockTable(bytes.NewReader(buf.Bytes()), uint32(len(entries)))
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestHiBlockTableWriteReadRoundTrip(t *testing.T) {
	entries := []BlockEntry{
		{FilePos: 1, FilePosHi: 0x0001},
		{FilePos: 2, FilePosHi: 0x0002},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHiBlockTable(&buf, entries))

	decoded := []BlockEntry{{FilePos: 1}, {FilePos: 2}}
	require.NoError(t, ReadHiBlockTable(bytes.NewReader(buf.Bytes()), decoded))
	require.Equal(t, uint16(0x0001), decoded[0].FilePosHi)
	require.Equal(t, uint16(0x0002), decoded[1].FilePosHi)
}

func TestBlockEntryFilePos64(t *testing.T) {
	b := &BlockEntry{}
	b.SetFilePos64(0x1_0000_0500)
	require.Equal(t, uint64(0x1_0000_0500), b.FilePos64())
	require.Equal(t, uint32(0x0000_0500), b.FilePos)
	require.Equal(t, uint16(1), b.FilePosHi)
}

func TestBlockEntryExists(t *testing.T) {
	b := &BlockEntry{Flags: FlagExists}
	require.True(t, b.Exists())
	b2 := &BlockEntry{}
	require.False(t, b2.Exists())
}

func TestTableEncryptionKeys(t *testing.T) {
	require.Equal(t, uint32(0xC3AF3770), hashTableKey())
	require.Equal(t, uint32(0xEC83B3A3), blockTableKey())
}
