// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqcodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZlibRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 50)

	compressed, err := Compress(MaskZlib, data)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(data))

	decompressed, err := Decompress(compressed, len(data))
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestBzip2RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("bzip2 payload line\n"), 200)

	compressed, err := Compress(MaskBzip2, data)
	require.NoError(t, err)

	decompressed, err := Decompress(compressed, len(data))
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestLZMARoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("lzma exclusive stream "), 80)

	compressed, err := Compress(MaskLZMA, data)
	require.NoError(t, err)

	decompressed, err := Decompress(compressed, len(data))
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestSparseRoundTrip(t *testing.T) {
	data := append(bytes.Repeat([]byte{0}, 300), []byte("abcXYZ")...)
	data = append(data, bytes.Repeat([]byte{7}, 10)...)

	compressed, err := Compress(MaskSparse, data)
	require.NoError(t, err)

	decompressed, err := Decompress(compressed, len(data))
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestHuffmanRoundTrip(t *testing.T) {
	data := []byte("aaaaabbbbbcccccdddddeeeeefffff one two three four")

	compressed, err := Compress(MaskHuffman, data)
	require.NoError(t, err)

	decompressed, err := Decompress(compressed, len(data))
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestADPCMMonoRoundTrip(t *testing.T) {
	var pcm []byte
	for i := 0; i < 200; i++ {
		v := int16((i % 50) * 300)
		pcm = append(pcm, byte(v), byte(v>>8))
	}

	compressed, err := Compress(MaskADPCMMono, pcm)
	require.NoError(t, err)

	decompressed, err := Decompress(compressed, len(pcm))
	require.NoError(t, err)
	require.Len(t, decompressed, len(pcm))
}

func TestDecompressEmptySector(t *testing.T) {
	out, err := Decompress(nil, 0)
	require.NoError(t, err)
	require.Empty(t, out)
}
