// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateAddReadExtractInfo(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "test.mpq")

	require.NoError(t, Create(archivePath, CreateOptions{Capacity: 8}))

	srcPath := filepath.Join(dir, "source.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("hello from the command layer"), 0o644))

	_, err := Add(archivePath, srcPath, "source.txt", AddOptions{Compression: "zlib"})
	require.NoError(t, err)

	readResult, err := Read(archivePath, "source.txt", "")
	require.NoError(t, err)
	require.Equal(t, []byte("hello from the command layer"), readResult.Data)

	destPath := filepath.Join(dir, "extracted.txt")
	_, err = Extract(archivePath, "source.txt", "", destPath)
	require.NoError(t, err)
	extracted, err := os.ReadFile(destPath)
	require.NoError(t, err)
	require.Equal(t, []byte("hello from the command layer"), extracted)

	listResult, err := List(archivePath, nil)
	require.NoError(t, err)
	require.Contains(t, listResult.Names, "source.txt")

	infoResult, err := Info(archivePath)
	require.NoError(t, err)
	require.GreaterOrEqual(t, infoResult.FileCount, 1)
}

func TestRemoveViaCommand(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "remove.mpq")
	require.NoError(t, Create(archivePath, CreateOptions{Capacity: 8}))

	srcPath := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("a"), 0o644))
	_, err := Add(archivePath, srcPath, "a.txt", AddOptions{})
	require.NoError(t, err)

	_, err = Remove(archivePath, "a.txt", "")
	require.NoError(t, err)

	_, err = Read(archivePath, "a.txt", "")
	require.Error(t, err)
}

func TestVerifyUnsignedArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "plain.mpq")
	require.NoError(t, Create(archivePath, CreateOptions{Capacity: 4}))

	result, err := Verify(archivePath)
	require.NoError(t, err)
	require.False(t, result.HasWeakSignature)
	require.False(t, result.HasStrongSignature)
}

func TestAddWithoutOverwriteSkipsExistingName(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "dup.mpq")
	require.NoError(t, Create(archivePath, CreateOptions{Capacity: 4}))

	srcPath := filepath.Join(dir, "c.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("first"), 0o644))
	_, err := Add(archivePath, srcPath, "c.txt", AddOptions{})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(srcPath, []byte("second"), 0o644))
	res, err := Add(archivePath, srcPath, "c.txt", AddOptions{})
	require.NoError(t, err)
	require.True(t, res.Skipped)

	readResult, err := Read(archivePath, "c.txt", "")
	require.NoError(t, err)
	require.Equal(t, []byte("first"), readResult.Data)
}

func TestReadUnknownLocaleFallsBackWithWarning(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "locale.mpq")
	require.NoError(t, Create(archivePath, CreateOptions{Capacity: 4}))

	srcPath := filepath.Join(dir, "d.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("neutral body"), 0o644))
	_, err := Add(archivePath, srcPath, "d.txt", AddOptions{})
	require.NoError(t, err)

	res, err := Read(archivePath, "d.txt", "xxYY")
	require.NoError(t, err)
	require.Equal(t, []byte("neutral body"), res.Data)
	require.NotEmpty(t, res.LocaleWarning)
}

func TestAddUnknownLocaleIsRejected(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "badlocale.mpq")
	require.NoError(t, Create(archivePath, CreateOptions{Capacity: 4}))

	srcPath := filepath.Join(dir, "e.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("e"), 0o644))

	_, err := Add(archivePath, srcPath, "e.txt", AddOptions{LocaleTag: "illegal_locale"})
	require.Error(t, err)

	listResult, err := List(archivePath, nil)
	require.NoError(t, err)
	require.NotContains(t, listResult.Names, "e.txt")
}

func TestAddUnknownCompressionFails(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "badcomp.mpq")
	require.NoError(t, Create(archivePath, CreateOptions{Capacity: 4}))

	srcPath := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("b"), 0o644))

	_, err := Add(archivePath, srcPath, "b.txt", AddOptions{Compression: "not-a-codec"})
	require.Error(t, err)
}
