// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/suprsokr/mpqarc/mpqformat"
	"github.com/suprsokr/mpqarc/mpqlocale"
)

// PatchChain is a prioritized list of open archives, mirroring how a
// game engine layers a base MPQ with one or more patch MPQs: the last
// archive in the chain wins for any name present in more than one.
type PatchChain struct {
	archives []*Archive
	paths    []string
}

// OpenPatchChain opens every archive in paths, lowest priority first,
// highest priority (the last entry) last.
func OpenPatchChain(paths []string) (*PatchChain, error) {
	archives := make([]*Archive, 0, len(paths))
	for _, p := range paths {
		archive, err := Open(p)
		if err != nil {
			for _, opened := range archives {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("mpq: open archive %s: %w", p, err)
		}
		archives = append(archives, archive)
	}
	return &PatchChain{archives: archives, paths: append([]string(nil), paths...)}, nil
}

// Close closes every archive in the chain, returning the first error
// encountered (if any) after attempting to close them all.
func (p *PatchChain) Close() error {
	var firstErr error
	for _, a := range p.archives {
		if err := a.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// resolve walks the chain from highest to lowest priority and returns
// the first archive holding name, and its block entry.
func (p *PatchChain) resolve(name string, locale uint16) (*Archive, *mpqformat.BlockEntry, bool) {
	name = normalizeName(name)
	for i := len(p.archives) - 1; i >= 0; i-- {
		a := p.archives[i]
		_, blockIdx, ok := a.findBlockIndex(name, locale)
		if !ok {
			continue
		}
		return a, &a.blockTable[blockIdx], true
	}
	return nil, nil, false
}

// HasFile reports whether name is present and not deletion-marked in
// the highest-priority archive that mentions it.
func (p *PatchChain) HasFile(name string) bool {
	_, block, ok := p.resolve(name, mpqlocale.Neutral)
	if !ok {
		return false
	}
	return block.Flags&mpqformat.FlagDeleteMarker == 0
}

// Read returns the decompressed contents of name from the
// highest-priority archive that defines it, respecting deletion
// markers in later (higher-priority) archives.
func (p *PatchChain) Read(name string) ([]byte, error) {
	a, block, ok := p.resolve(name, mpqlocale.Neutral)
	if !ok {
		return nil, fmt.Errorf("mpq: %q: %w", name, ErrNotFound)
	}
	if block.Flags&mpqformat.FlagDeleteMarker != 0 {
		return nil, fmt.Errorf("mpq: %q: %w", name, ErrNotFound)
	}
	return a.Read(name, mpqlocale.Neutral)
}

// HasPatchFile reports whether name is marked FILE_PATCH_FILE in the
// highest-priority archive that defines it.
func (p *PatchChain) HasPatchFile(name string) bool {
	_, block, ok := p.resolve(name, mpqlocale.Neutral)
	return ok && block.Flags&mpqformat.FlagPatchFile != 0
}

// ListFiles returns the union of every archive's List() output, deduped
// case-insensitively with path separators normalized.
func (p *PatchChain) ListFiles() []string {
	seen := make(map[string]struct{})
	var result []string
	for _, a := range p.archives {
		for _, name := range a.List() {
			key := strings.ToLower(filepath.Clean(normalizeName(name)))
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, name)
		}
	}
	return result
}

// ArchiveCount returns the number of archives in the chain.
func (p *PatchChain) ArchiveCount() int {
	return len(p.archives)
}
