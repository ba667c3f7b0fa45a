// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqformat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderWriteFindRoundTripV1(t *testing.T) {
	h := &Header{
		HeaderSize:        HeaderSizeV1,
		ArchiveSize:       1024,
		FormatVersion:     Version1,
		SectorSizeShift:   DefaultSectorSizeShift,
		HashTableOffset:   512,
		BlockTableOffset:  768,
		HashTableEntries:  16,
		BlockTableEntries: 4,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, h))

	found, err := FindHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, h.HashTableOffset, found.HashTableOffset)
	require.Equal(t, h.BlockTableOffset, found.BlockTableOffset)
	require.Equal(t, h.HashTableEntries, found.HashTableEntries)
	require.Equal(t, uint64(0), found.ArchiveOffset)
}

func TestHeaderWriteFindRoundTripV2HiOffsets(t *testing.T) {
	h := &Header{
		HeaderSize:         HeaderSizeV2,
		FormatVersion:      Version2,
		SectorSizeShift:    DefaultSectorSizeShift,
		HashTableEntries:   16,
		BlockTableEntries:  4,
		HiBlockTableOffset: 0,
	}
	h.SetHashTableOffset64(0x1_0000_0200)
	h.SetBlockTableOffset64(0x1_0000_0400)

	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, h))

	found, err := FindHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, uint64(0x1_0000_0200), found.HashTableOffset64())
	require.Equal(t, uint64(0x1_0000_0400), found.BlockTableOffset64())
}

func TestFindHeaderSkipsUserData(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x4D, 0x50, 0x51, 0x1B}) // "MPQ\x1B"
	buf.Write(make([]byte, 4))                // user data size
	buf.Write([]byte{0x20, 0, 0, 0})           // header offset = 0x20

	buf.Write(make([]byte, 0x20-buf.Len()))

	h := &Header{
		HeaderSize:        HeaderSizeV1,
		FormatVersion:     Version1,
		SectorSizeShift:   DefaultSectorSizeShift,
		HashTableEntries:  16,
		BlockTableEntries: 4,
	}
	require.NoError(t, WriteHeader(&buf, h))

	found, err := FindHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, uint64(0x20), found.ArchiveOffset)
}
