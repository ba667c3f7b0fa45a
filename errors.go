// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import "errors"

// Sentinel errors returned by Archive operations. Callers should use
// errors.Is against these rather than matching on message text.
var (
	// ErrNotFound is returned when a requested file is absent from the
	// archive's hash table under every locale in the fallback order.
	ErrNotFound = errors.New("mpq: file not found")

	// ErrNameExists is returned by Add when a file already exists under
	// the same name and locale and AddOptions.Overwrite is false.
	ErrNameExists = errors.New("mpq: file already exists")

	// ErrNoHashSpace is returned by Add when the hash table has no free
	// slot left for a new name under open addressing.
	ErrNoHashSpace = errors.New("mpq: hash table has no free slot")

	// ErrArchiveCorrupt is returned when a structural invariant of the
	// archive (header, hash table, block table) fails validation.
	ErrArchiveCorrupt = errors.New("mpq: archive structure is corrupt")

	// ErrBadKey names a decryption failure. No operation in this package
	// returns it: Read does not check decrypted sectors against a
	// checksum.
	ErrBadKey = errors.New("mpq: decryption key did not recover valid data")

	// ErrLocaleUnknown names an unparseable locale tag. No operation in
	// this package returns it; mpqlocale.Parse reports such tags with
	// mpqlocale.ErrUnknown.
	ErrLocaleUnknown = errors.New("mpq: unknown locale")

	// ErrClosed is returned by Add and Remove when called on an Archive
	// after Close has already run.
	ErrClosed = errors.New("mpq: archive is closed")

	// ErrReadOnly is returned by Add/Remove when the archive was opened
	// with Open rather than OpenForModify or Create.
	ErrReadOnly = errors.New("mpq: archive is read-only")
)
