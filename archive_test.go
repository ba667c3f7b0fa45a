// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suprsokr/mpqarc/mpqcodec"
	"github.com/suprsokr/mpqarc/mpqformat"
	"github.com/suprsokr/mpqarc/mpqlocale"
)

func TestCreateAddCloseOpenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "round.mpq")

	archive, err := Create(path, mpqformat.Version1, 8)
	require.NoError(t, err)

	storedContent := []byte("stored, no compression")
	require.NoError(t, archive.Add("readme.txt", storedContent, AddOptions{}))

	zlibContent := bytes.Repeat([]byte("compressible payload line\n"), 100)
	require.NoError(t, archive.Add("Data\\big.txt", zlibContent, AddOptions{
		Compression: mpqcodec.MaskZlib,
		GenerateCRC: true,
	}))

	require.NoError(t, archive.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Read("readme.txt", mpqlocale.Neutral)
	require.NoError(t, err)
	require.Equal(t, storedContent, got)

	got, err = reopened.Read("Data/big.txt", mpqlocale.Neutral)
	require.NoError(t, err)
	require.Equal(t, zlibContent, got)

	names := reopened.List()
	require.Contains(t, names, "readme.txt")
	require.Contains(t, names, "Data\\big.txt")

	info := reopened.Info()
	require.Equal(t, int(mpqformat.Version1), info.FormatVersion)
	require.True(t, info.HasListfile)
	require.True(t, info.HasAttributes)
	require.GreaterOrEqual(t, info.FileCount, 2)
}

func TestReadMissingFileReturnsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mpq")
	archive, err := Create(path, mpqformat.Version1, 8)
	require.NoError(t, err)
	require.NoError(t, archive.Add("present.txt", []byte("x"), AddOptions{}))
	require.NoError(t, archive.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	_, err = reopened.Read("absent.txt", mpqlocale.Neutral)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveThenReopenForModify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remove.mpq")
	archive, err := Create(path, mpqformat.Version1, 8)
	require.NoError(t, err)
	require.NoError(t, archive.Add("keep.txt", []byte("keep"), AddOptions{}))
	require.NoError(t, archive.Add("drop.txt", []byte("drop"), AddOptions{}))
	require.NoError(t, archive.Close())

	modify, err := OpenForModify(path)
	require.NoError(t, err)
	require.NoError(t, modify.Remove("drop.txt", mpqlocale.Neutral))
	require.NoError(t, modify.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.Read("keep.txt", mpqlocale.Neutral)
	require.NoError(t, err)
	require.Equal(t, []byte("keep"), data)

	_, err = reopened.Read("drop.txt", mpqlocale.Neutral)
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, reopened.Contains("drop.txt", mpqlocale.Neutral))
}

func TestOpenForModifyAddAndOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modify.mpq")
	archive, err := Create(path, mpqformat.Version1, 8)
	require.NoError(t, err)
	require.NoError(t, archive.Add("original.txt", []byte("v1"), AddOptions{}))
	require.NoError(t, archive.Close())

	modify, err := OpenForModify(path)
	require.NoError(t, err)
	require.NoError(t, modify.Add("extra.txt", []byte("new file"), AddOptions{}))
	err = modify.Add("original.txt", []byte("v2"), AddOptions{})
	require.ErrorIs(t, err, ErrNameExists)
	require.NoError(t, modify.Add("original.txt", []byte("v2"), AddOptions{Overwrite: true}))
	require.NoError(t, modify.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.Read("original.txt", mpqlocale.Neutral)
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), data)

	data, err = reopened.Read("extra.txt", mpqlocale.Neutral)
	require.NoError(t, err)
	require.Equal(t, []byte("new file"), data)
}

func TestLocaleFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locale.mpq")
	archive, err := Create(path, mpqformat.Version1, 8)
	require.NoError(t, err)

	enUS, err := mpqlocale.Parse("enUS")
	require.NoError(t, err)
	deDE, err := mpqlocale.Parse("deDE")
	require.NoError(t, err)

	require.NoError(t, archive.Add("quest.txt", []byte("hello-neutral"), AddOptions{}))
	require.NoError(t, archive.Add("quest.txt", []byte("hello-en"), AddOptions{Locale: enUS}))
	require.NoError(t, archive.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Read("quest.txt", enUS)
	require.NoError(t, err)
	require.Equal(t, []byte("hello-en"), got)

	got, err = reopened.Read("quest.txt", deDE)
	require.NoError(t, err)
	require.Equal(t, []byte("hello-neutral"), got)
}

func TestAddToReadOnlyArchiveFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readonly.mpq")
	archive, err := Create(path, mpqformat.Version1, 8)
	require.NoError(t, err)
	require.NoError(t, archive.Add("file.txt", []byte("data"), AddOptions{}))
	require.NoError(t, archive.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	err = reopened.Add("other.txt", []byte("nope"), AddOptions{})
	require.ErrorIs(t, err, ErrReadOnly)
}

func TestCreateWithProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.mpq")
	archive, err := CreateWithProfile(path, "diablo2", 8)
	require.NoError(t, err)
	require.NoError(t, archive.Add("unit.txt", []byte("data"), AddOptions{}))
	require.NoError(t, archive.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	info := reopened.Info()
	require.Equal(t, Profiles["diablo2"].formatVersion, info.FormatVersion)
}
