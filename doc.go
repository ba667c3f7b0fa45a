// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package mpq provides pure Go support for reading, creating, and
modifying MPQ (Mo'PaQ) archives.

MPQ is an archive format created by Blizzard Entertainment and used by
engines from Diablo through StarCraft II. This package covers header
versions 1, 2, and the version-4 header shape (the HET/BET tables
version 4 introduced are neither read nor produced by this package),
locale-aware file lookup, the full per-sector compression pipeline, and
both the legacy weak and modern strong signature schemes.

# Basic Usage

Creating an archive:

	archive, err := mpq.Create("patch.mpq", mpqformat.Version1, 100)
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	err = archive.Add("Data\\file.txt", contents, mpq.AddOptions{Compression: mpqcodec.MaskZlib})
	if err != nil {
		log.Fatal(err)
	}

Reading an archive:

	archive, err := mpq.Open("game.mpq")
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	data, err := archive.Read("Data\\file.txt", mpqlocale.Neutral)
	if err != nil {
		log.Fatal(err)
	}

# Locales

Read and Contains resolve a name under a locale fallback order: the
requested locale first, then the neutral locale. Use mpqlocale.Parse to
turn a human locale tag like "enUS" into the 16-bit ID these methods
expect.

# Path Conventions

MPQ archives use backslash as the path separator. Every name passed to
Add, Remove, Read, or Contains is normalized from forward slashes
automatically, so either convention works.

# Game Profiles

CreateWithProfile builds an archive preconfigured for one of the named
entries in Profiles, fixing the header version and the default
compression to whatever that game's engine actually writes. The
profile's flag mask is not applied: added files get the same block
flags under every profile.
*/
package mpq
