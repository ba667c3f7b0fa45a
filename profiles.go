// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import "github.com/suprsokr/mpqarc/mpqformat"

// gameProfile pins the archive defaults a particular game's MPQ files
// are built with: the header format, the compression mask new sectors
// get by default, and which block flags the game is known to rely on.
type gameProfile struct {
	formatVersion   int
	defaultCompress byte
	flagMask        uint32
}

// Profiles is the closed set of named game targets CreateWithProfile
// accepts. Every profile maps to a concrete (format version, default
// compression, flag mask) triple; there is no generic "guess it" mode.
var Profiles = map[string]gameProfile{
	"generic": {
		formatVersion:   mpqformat.Version1,
		defaultCompress: 0x02, // zlib
		flagMask:        0xFFFFFFFF,
	},
	"diablo1": {
		formatVersion:   mpqformat.Version1,
		defaultCompress: 0x08, // PKWARE implode
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagExists,
	},
	"lordsofmagic": {
		formatVersion:   mpqformat.Version1,
		defaultCompress: 0x08,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagExists,
	},
	"starcraft1": {
		formatVersion:   mpqformat.Version1,
		defaultCompress: 0x08,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagExists,
	},
	"warcraft2": {
		formatVersion:   mpqformat.Version1,
		defaultCompress: 0x08,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagExists,
	},
	"diablo2": {
		formatVersion:   mpqformat.Version1,
		defaultCompress: 0x02,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagSingleUnit | FlagExists,
	},
	"warcraft3": {
		formatVersion:   mpqformat.Version1,
		defaultCompress: 0x02,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagSingleUnit | FlagExists,
	},
	"warcraft3-map": {
		formatVersion:   mpqformat.Version1,
		defaultCompress: 0x02,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagSingleUnit | FlagExists,
	},
	"wow1": {
		formatVersion:   mpqformat.Version1,
		defaultCompress: 0x02,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagSectorCRC | FlagExists,
	},
	"wow2": {
		formatVersion:   mpqformat.Version2,
		defaultCompress: 0x02,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagSectorCRC | FlagExists,
	},
	"wow3": {
		formatVersion:   mpqformat.Version2,
		defaultCompress: 0x02,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagSectorCRC | FlagExists,
	},
	"wow4": {
		formatVersion:   mpqformat.Version4,
		defaultCompress: 0x02,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagSectorCRC | FlagExists,
	},
	"wow5": {
		formatVersion:   mpqformat.Version4,
		defaultCompress: 0x02,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagSectorCRC | FlagExists,
	},
	"starcraft2": {
		formatVersion:   mpqformat.Version4,
		defaultCompress: 0x12, // LZMA
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagSectorCRC | FlagExists,
	},
	"diablo3": {
		formatVersion:   mpqformat.Version4,
		defaultCompress: 0x12,
		flagMask:        FlagCompress | FlagEncrypted | FlagFixKey | FlagSectorCRC | FlagExists,
	},
}

// re-exported flag constants so callers never need to import mpqformat
// directly just to pass a flag mask around.
const (
	FlagImplode      = mpqformat.FlagImplode
	FlagCompress     = mpqformat.FlagCompress
	FlagEncrypted    = mpqformat.FlagEncrypted
	FlagFixKey       = mpqformat.FlagFixKey
	FlagPatchFile    = mpqformat.FlagPatchFile
	FlagSingleUnit   = mpqformat.FlagSingleUnit
	FlagDeleteMarker = mpqformat.FlagDeleteMarker
	FlagSectorCRC    = mpqformat.FlagSectorCRC
	FlagExists       = mpqformat.FlagExists
)
