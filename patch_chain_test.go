// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suprsokr/mpqarc/mpqformat"
)

func buildArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()
	archive, err := Create(path, mpqformat.Version1, 8)
	require.NoError(t, err)
	for name, content := range files {
		require.NoError(t, archive.Add(name, []byte(content), AddOptions{}))
	}
	require.NoError(t, archive.Close())
}

func TestPatchChainHighestPriorityWins(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.mpq")
	patchPath := filepath.Join(dir, "patch.mpq")

	buildArchive(t, basePath, map[string]string{
		"shared.txt": "base version",
		"base-only.txt": "only in base",
	})
	buildArchive(t, patchPath, map[string]string{
		"shared.txt": "patched version",
	})

	chain, err := OpenPatchChain([]string{basePath, patchPath})
	require.NoError(t, err)
	defer chain.Close()

	data, err := chain.Read("shared.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("patched version"), data)

	data, err = chain.Read("base-only.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("only in base"), data)

	require.True(t, chain.HasFile("shared.txt"))
	require.False(t, chain.HasFile("nonexistent.txt"))
	require.Equal(t, 2, chain.ArchiveCount())
}

func TestPatchChainDeleteMarkerHidesBaseFile(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.mpq")
	patchPath := filepath.Join(dir, "patch.mpq")

	buildArchive(t, basePath, map[string]string{"removed.txt": "was here"})

	patchArchive, err := Create(patchPath, mpqformat.Version1, 8)
	require.NoError(t, err)
	require.NoError(t, patchArchive.AddDeleteMarker("removed.txt", 0))
	require.NoError(t, patchArchive.Close())

	chain, err := OpenPatchChain([]string{basePath, patchPath})
	require.NoError(t, err)
	defer chain.Close()

	require.False(t, chain.HasFile("removed.txt"))
	_, err = chain.Read("removed.txt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPatchChainListFilesUnion(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.mpq")
	patchPath := filepath.Join(dir, "patch.mpq")

	buildArchive(t, basePath, map[string]string{"a.txt": "a", "b.txt": "b"})
	buildArchive(t, patchPath, map[string]string{"b.txt": "b2", "c.txt": "c"})

	chain, err := OpenPatchChain([]string{basePath, patchPath})
	require.NoError(t, err)
	defer chain.Close()

	names := chain.ListFiles()
	require.Contains(t, names, "a.txt")
	require.Contains(t, names, "b.txt")
	require.Contains(t, names, "c.txt")
}
