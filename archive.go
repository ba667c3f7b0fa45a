// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package mpq implements the MPQ (Mo'PaQ) archive format: opening,
// reading, creating, and modifying archives used by Blizzard's game
// engines, including encryption, per-sector compression, locale-aware
// file lookup, and weak/strong signatures.
package mpq

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/suprsokr/mpqarc/mpqformat"
)

// archiveState tracks where an Archive sits in its lifecycle, mirroring
// the flow an archive actually goes through on disk: a freshly opened
// archive is clean until something stages a change, at which point it
// becomes dirty until Close flushes and atomically replaces the file.
type archiveState int

const (
	stateOpen archiveState = iota
	stateDirty
	stateClosed
)

// pendingFile is a file staged for writing by Add, not yet laid out
// into the block/hash tables until Close runs.
type pendingFile struct {
	mpqPath        string
	data           []byte
	locale         uint16
	compression    byte
	generateCRC    bool
	isPatchFile    bool
	isDeleteMarker bool
	overwrite      bool
	extraFlags     uint32
}

// Archive is an open handle onto an MPQ archive. The zero value is not
// usable; construct one with Open, OpenForModify, Create, or
// CreateWithProfile.
type Archive struct {
	file       *os.File
	path       string
	readOnly   bool
	state      archiveState
	header     *mpqformat.Header
	hashTable  []mpqformat.HashEntry
	blockTable []mpqformat.BlockEntry
	pendingRecords []pendingRecord
	removed    map[int]bool // block table indices marked deleted
	sectorSize uint32

	// profileDefaultCompress is the compression mask Add falls back to
	// when AddOptions.Compression is left at zero, set by
	// CreateWithProfile; archives created with Create default to 0
	// (store uncompressed) same as an explicit opt-out.
	profileDefaultCompress byte
}

// Open opens an existing archive for reading only. Add and Remove
// return ErrReadOnly on an archive opened this way.
func Open(path string) (*Archive, error) {
	return openArchive(path, true)
}

// OpenForModify opens an existing archive for reading and staged
// writes. Changes are not committed to disk until Close runs; Close
// rewrites the whole archive to a temp file and swaps it in atomically.
func OpenForModify(path string) (*Archive, error) {
	return openArchive(path, false)
}

func openArchive(path string, readOnly bool) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mpq: open %s: %w", path, err)
	}

	header, err := mpqformat.FindHeader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mpq: %w: %v", ErrArchiveCorrupt, err)
	}

	hashTable, blockTable, err := readTables(f, header)
	if err != nil {
		f.Close()
		return nil, err
	}

	a := &Archive{
		file:       f,
		path:       path,
		readOnly:   readOnly,
		state:      stateOpen,
		header:     header,
		hashTable:  hashTable,
		blockTable: blockTable,
		removed:    make(map[int]bool),
		sectorSize: header.SectorSize(),
	}
	return a, nil
}

func readTables(f *os.File, header *mpqformat.Header) ([]mpqformat.HashEntry, []mpqformat.BlockEntry, error) {
	base := int64(header.ArchiveOffset)

	if _, err := f.Seek(base+int64(header.HashTableOffset64()), 0); err != nil {
		return nil, nil, fmt.Errorf("mpq: seek hash table: %w", err)
	}
	hashTable, err := mpqformat.ReadHashTable(f, header.HashTableEntries)
	if err != nil {
		return nil, nil, fmt.Errorf("mpq: %w: read hash table: %v", ErrArchiveCorrupt, err)
	}

	if _, err := f.Seek(base+int64(header.BlockTableOffset64()), 0); err != nil {
		return nil, nil, fmt.Errorf("mpq: seek block table: %w", err)
	}
	blockTable, err := mpqformat.ReadBlockTable(f, header.BlockTableEntries)
	if err != nil {
		return nil, nil, fmt.Errorf("mpq: %w: read block table: %v", ErrArchiveCorrupt, err)
	}

	if header.FormatVersion >= mpqformat.Version2 && header.HiBlockTableOffset != 0 {
		if _, err := f.Seek(base+int64(header.HiBlockTableOffset), 0); err != nil {
			return nil, nil, fmt.Errorf("mpq: seek hi-block table: %w", err)
		}
		if err := mpqformat.ReadHiBlockTable(f, blockTable); err != nil {
			return nil, nil, fmt.Errorf("mpq: %w: read hi-block table: %v", ErrArchiveCorrupt, err)
		}
	}

	return hashTable, blockTable, nil
}

// Create creates a new archive at path with the given format version,
// sized to hold at least capacity files. The archive exists only in
// memory until Close writes it out.
func Create(path string, version int, capacity int) (*Archive, error) {
	hashTableSize := nextPowerOfTwo(capacity * 2)
	if hashTableSize < 16 {
		hashTableSize = 16
	}

	header := &mpqformat.Header{
		SectorSizeShift: mpqformat.DefaultSectorSizeShift,
		FormatVersion:   uint16(version),
		HashTableEntries: uint32(hashTableSize),
	}
	switch version {
	case mpqformat.Version1:
		header.HeaderSize = mpqformat.HeaderSizeV1
	case mpqformat.Version2:
		header.HeaderSize = mpqformat.HeaderSizeV2
	default:
		header.HeaderSize = mpqformat.HeaderSizeV4Min
	}

	hashTable := make([]mpqformat.HashEntry, hashTableSize)
	for i := range hashTable {
		hashTable[i].BlockIndex = mpqformat.HashEmptyNeverUsed
	}

	return &Archive{
		path:       path,
		readOnly:   false,
		state:      stateDirty,
		header:     header,
		hashTable:  hashTable,
		blockTable: make([]mpqformat.BlockEntry, 0, capacity),
		removed:    make(map[int]bool),
		sectorSize: header.SectorSize(),
	}, nil
}

// CreateWithProfile creates a new archive preconfigured for a named
// game profile (see Profiles). Files added without an explicit
// compression choice use the profile's default compression.
func CreateWithProfile(path, profile string, capacity int) (*Archive, error) {
	p, ok := Profiles[profile]
	if !ok {
		return nil, fmt.Errorf("mpq: unknown game profile %q", profile)
	}
	a, err := Create(path, p.formatVersion, capacity)
	if err != nil {
		return nil, err
	}
	a.profileDefaultCompress = p.defaultCompress
	return a, nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Close finalizes the archive. For an archive opened with Open and
// never modified, this simply releases the file handle. For an archive
// created or opened for modification, the full archive (header, hash
// table, block table, file data, and internal listfile/attributes
// members) is written to a temp file and swapped into place atomically
// so a crash mid-write never leaves a half-written archive at path.
func (a *Archive) Close() error {
	if a.state == stateClosed {
		return nil
	}

	if a.readOnly && a.state != stateDirty {
		if a.file != nil {
			a.file.Close()
		}
		a.state = stateClosed
		return nil
	}

	if err := a.flush(); err != nil {
		return err
	}

	if a.file != nil {
		a.file.Close()
	}
	a.state = stateClosed
	return nil
}

// flush synthesizes the internal metadata members, lays out every
// pending file and surviving existing file into a fresh archive image,
// and atomically replaces the archive at a.path.
func (a *Archive) flush() error {
	a.synthesizeListfile()
	if err := a.synthesizeAttributes(); err != nil {
		return err
	}

	tmpDir := filepath.Dir(a.path)
	tmpFile, err := os.CreateTemp(tmpDir, "mpqarc-*.tmp")
	if err != nil {
		return fmt.Errorf("mpq: create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := a.writeArchive(tmpFile); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("mpq: close temp file: %w", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("mpq: reread temp file: %w", err)
	}
	if err := atomic.WriteFile(a.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("mpq: atomic replace: %w", err)
	}
	return nil
}

// Path returns the filesystem path the archive was opened or will be
// created at.
func (a *Archive) Path() string {
	return a.path
}

// markDirty promotes a freshly opened, unmodified archive to the dirty
// state the first time a write operation stages anything.
func (a *Archive) markDirty() {
	if a.state == stateOpen {
		a.state = stateDirty
	}
}

func normalizeName(name string) string {
	return strings.ReplaceAll(name, "/", "\\")
}
