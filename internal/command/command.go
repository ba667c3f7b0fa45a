// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package command implements the operations behind the mpqarc CLI
// subcommands as plain functions over *mpq.Archive, returning result
// structs rather than touching stdout directly. cmd/mpqarc is
// responsible for formatting and exit codes.
package command

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/suprsokr/mpqarc"
	"github.com/suprsokr/mpqarc/mpqcodec"
	"github.com/suprsokr/mpqarc/mpqformat"
	"github.com/suprsokr/mpqarc/mpqlocale"
	"github.com/suprsokr/mpqarc/mpqsig"
)

// InfoResult is the payload for the "info" command.
type InfoResult struct {
	mpq.Info
}

// Info opens path read-only and summarizes it.
func Info(path string) (InfoResult, error) {
	a, err := mpq.Open(path)
	if err != nil {
		return InfoResult{}, err
	}
	defer a.Close()
	return InfoResult{Info: a.Info()}, nil
}

// ListResult is the payload for the "list" command.
type ListResult struct {
	Names   []string
	Entries []mpq.ListEntry
}

// List opens path read-only and returns every recoverable name, plus
// the detailed per-entry view the "-d" rendering needs. extraNames
// supplements name recovery from an external "--listfile".
func List(path string, extraNames []string) (ListResult, error) {
	a, err := mpq.Open(path)
	if err != nil {
		return ListResult{}, err
	}
	defer a.Close()
	return ListResult{Names: a.List(), Entries: a.Entries(extraNames)}, nil
}

// ReadResult is the payload for the "read" command.
type ReadResult struct {
	Data []byte

	// LocaleWarning is set when localeTag didn't resolve to a known
	// locale and the neutral locale was substituted instead.
	LocaleWarning string
}

// Read opens path read-only and returns the contents of name under the
// given locale tag ("" for neutral). An unrecognized localeTag falls
// back to the neutral locale rather than failing the read outright:
// read is not the operation that should refuse to run over a typo'd
// locale, it's the one that should still hand back something useful.
func Read(path, name, localeTag string) (ReadResult, error) {
	locale, warning := parseLocaleLenient(localeTag)
	a, err := mpq.Open(path)
	if err != nil {
		return ReadResult{}, err
	}
	defer a.Close()

	data, err := a.Read(name, locale)
	if err != nil {
		return ReadResult{}, err
	}
	return ReadResult{Data: data, LocaleWarning: warning}, nil
}

// ExtractResult is the payload for the "extract" command.
type ExtractResult struct {
	LocaleWarning string
}

// Extract reads name from the archive at path and writes it to destPath
// on disk, creating destPath's parent directory if needed. Locale
// handling is the same lenient fallback Read uses.
func Extract(path, name, localeTag, destPath string) (ExtractResult, error) {
	res, err := Read(path, name, localeTag)
	if err != nil {
		return ExtractResult{}, err
	}
	if err := os.MkdirAll(parentDir(destPath), 0o755); err != nil {
		return ExtractResult{}, fmt.Errorf("command: create %s: %w", parentDir(destPath), err)
	}
	if err := os.WriteFile(destPath, res.Data, 0o644); err != nil {
		return ExtractResult{}, fmt.Errorf("command: write %s: %w", destPath, err)
	}
	return ExtractResult{LocaleWarning: res.LocaleWarning}, nil
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[:i]
		}
	}
	return "."
}

// CreateOptions configures the "create" command.
type CreateOptions struct {
	Profile  string // game profile name, or "" to use Version directly
	Version  int    // mpqformat.Version{1,2,4}; ignored when Profile is set
	Capacity int
}

// Create makes a new, empty archive at path and immediately closes it
// (so an empty hash/block table pair is committed to disk).
func Create(path string, opts CreateOptions) error {
	var a *mpq.Archive
	var err error
	if opts.Profile != "" {
		a, err = mpq.CreateWithProfile(path, opts.Profile, opts.Capacity)
	} else {
		version := opts.Version
		if version != mpqformat.Version2 && version != mpqformat.Version4 {
			version = mpqformat.Version1
		}
		a, err = mpq.Create(path, version, opts.Capacity)
	}
	if err != nil {
		return err
	}
	return a.Close()
}

// SignWeak attaches a fresh self-signed weak signature to the archive
// at path: it stages a zeroed placeholder "(signature)" member, closes
// the archive so the placeholder's exact on-disk window is known, then
// patches that window in place with the RSA block computed over the
// final archive bytes with that window zeroed, avoiding a second full
// rewrite. The archive must already exist and be closed before this runs.
func SignWeak(path string) error {
	a, err := mpq.OpenForModify(path)
	if err != nil {
		return err
	}
	if err := a.Add("(signature)", make([]byte, mpqsig.WeakSignatureSize), mpq.AddOptions{Overwrite: true}); err != nil {
		a.Close()
		return err
	}
	if err := a.Close(); err != nil {
		return err
	}

	a, err = mpq.Open(path)
	if err != nil {
		return err
	}
	defer a.Close()
	offset, size, ok := a.WeakSignatureWindow()
	if !ok || size != mpqsig.WeakSignatureSize {
		return fmt.Errorf("command: %s: signature placeholder missing", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("command: read %s for signing: %w", path, err)
	}
	for i := offset; i < offset+int64(size); i++ {
		raw[i] = 0
	}
	key, err := rsa.GenerateKey(rand.Reader, 512)
	if err != nil {
		return fmt.Errorf("command: generate signing key: %w", err)
	}
	sig := mpqsig.GenerateWeak(raw, key.D, key.N)

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("command: open %s for signing: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteAt(sig, offset); err != nil {
		return fmt.Errorf("command: patch signature: %w", err)
	}
	return nil
}

// AddOptions configures the "add" command.
type AddOptions struct {
	LocaleTag   string
	Compression string // "none", "zlib", "bzip2", "lzma", "sparse", "huffman"
	GenerateCRC bool
	Overwrite   bool
	ExtraFlags  uint32
}

// AddResult is the payload for the "add" command.
type AddResult struct {
	Locale uint16

	// Skipped is true when mpqName already existed at this locale and
	// Overwrite was not set; the archive was left untouched.
	Skipped bool
}

// Add opens path for modification, stages srcPath's contents under
// mpqName, and closes the archive to commit the change. Unlike Read,
// Add is a write: an unrecognized LocaleTag is rejected outright rather
// than silently falling back to the neutral locale, so a typo'd
// --locale never gets baked into the archive.
func Add(path, srcPath, mpqName string, opts AddOptions) (AddResult, error) {
	locale, err := parseLocaleStrict(opts.LocaleTag)
	if err != nil {
		return AddResult{}, err
	}
	mask, err := parseCompression(opts.Compression)
	if err != nil {
		return AddResult{}, err
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return AddResult{}, fmt.Errorf("command: read %s: %w", srcPath, err)
	}

	a, err := mpq.OpenForModify(path)
	if err != nil {
		return AddResult{}, err
	}
	defer a.Close()

	err = a.Add(mpqName, data, mpq.AddOptions{
		Locale:      locale,
		Compression: mask,
		GenerateCRC: opts.GenerateCRC,
		Overwrite:   opts.Overwrite,
		ExtraFlags:  opts.ExtraFlags,
	})
	if errors.Is(err, mpq.ErrNameExists) {
		return AddResult{Locale: locale, Skipped: true}, nil
	}
	if err != nil {
		return AddResult{}, err
	}
	return AddResult{Locale: locale}, nil
}

// RemoveResult is the payload for the "remove" command.
type RemoveResult struct {
	LocaleWarning string
}

// Remove opens path for modification, removes mpqName under localeTag,
// and closes the archive to commit the change.
func Remove(path, mpqName, localeTag string) (RemoveResult, error) {
	locale, warning := parseLocaleLenient(localeTag)

	a, err := mpq.OpenForModify(path)
	if err != nil {
		return RemoveResult{}, err
	}
	defer a.Close()

	if err := a.Remove(mpqName, locale); err != nil {
		return RemoveResult{}, err
	}
	return RemoveResult{LocaleWarning: warning}, nil
}

// Verify opens path read-only and checks any signature it carries.
func Verify(path string) (mpq.VerifyResult, error) {
	a, err := mpq.Open(path)
	if err != nil {
		return mpq.VerifyResult{}, err
	}
	defer a.Close()
	return a.Verify()
}

// parseLocaleLenient resolves tag to a locale ID for read-like
// operations (read, extract, remove). An unrecognized, non-empty tag is
// not treated as a fatal error: it falls back to the neutral locale and
// reports the fallback via the returned warning string, the way the
// reference CLI behaves rather than aborting the operation.
func parseLocaleLenient(tag string) (uint16, string) {
	if tag == "" {
		return mpqlocale.Neutral, ""
	}
	id, err := mpqlocale.Parse(tag)
	if err != nil {
		return mpqlocale.Neutral, fmt.Sprintf("The locale '%s' is unknown. Will use default locale instead.", tag)
	}
	return id, ""
}

// parseLocaleStrict resolves tag to a locale ID for write-like
// operations (add, create). An unrecognized, non-empty tag is a fatal
// error: an add under a mistyped locale should not silently land under
// neutral instead.
func parseLocaleStrict(tag string) (uint16, error) {
	if tag == "" {
		return mpqlocale.Neutral, nil
	}
	id, err := mpqlocale.Parse(tag)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", mpqlocale.ErrUnknown, tag)
	}
	return id, nil
}

// ParseLocaleStrict is the exported form parseLocaleStrict, used by
// cmd/mpqarc for "create" (which applies one locale across every file
// it collects, same as "add").
func ParseLocaleStrict(tag string) (uint16, error) {
	return parseLocaleStrict(tag)
}

func parseCompression(name string) (byte, error) {
	switch name {
	case "", "none":
		return 0, nil
	case "zlib":
		return mpqcodec.MaskZlib, nil
	case "bzip2":
		return mpqcodec.MaskBzip2, nil
	case "lzma":
		return mpqcodec.MaskLZMA, nil
	case "sparse":
		return mpqcodec.MaskSparse, nil
	case "huffman":
		return mpqcodec.MaskHuffman, nil
	default:
		return 0, fmt.Errorf("command: unknown compression %q", name)
	}
}

// ParseCompression is the exported form of parseCompression, used by
// cmd/mpqarc's "create" to validate --compression.
func ParseCompression(name string) (byte, error) {
	return parseCompression(name)
}
