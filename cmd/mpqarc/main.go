// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Command mpqarc is a CLI for inspecting, extracting, and building MPQ
// archives: create, add, remove, list, read, extract, info, and verify.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	mpq "github.com/suprsokr/mpqarc"
	"github.com/suprsokr/mpqarc/internal/command"
	"github.com/suprsokr/mpqarc/mpqformat"
	"github.com/suprsokr/mpqarc/mpqlocale"
)

// Exit codes, stable across releases: scripts and CI pipelines depend
// on these values, not just on zero-vs-nonzero.
const (
	exitOK         = 0
	exitFailure    = 1
	exitUsageError = 105
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	os.Exit(Run(os.Stdout, os.Stderr, os.Args[1:]))
}

// Run executes one mpqarc invocation, writing its output to stdout/stderr
// and returning the process exit code. Accepting the writers directly
// (rather than reaching for os.Stdout/os.Stderr throughout) is what lets
// tests drive the CLI in-process and assert on captured output.
func Run(stdout, stderr io.Writer, args []string) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsageError
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create":
		return runCreate(stdout, stderr, rest)
	case "add":
		return runAdd(stdout, stderr, rest)
	case "remove":
		return runRemove(stdout, stderr, rest)
	case "list":
		return runList(stdout, stderr, rest)
	case "read":
		return runRead(stdout, stderr, rest)
	case "extract":
		return runExtract(stdout, stderr, rest)
	case "info":
		return runInfo(stdout, stderr, rest)
	case "verify":
		return runVerify(stdout, stderr, rest)
	case "-h", "--help", "help":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "[!] unknown command %q\n", cmd)
		printUsage(stderr)
		return exitUsageError
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: mpqarc <create|add|remove|list|read|extract|info|verify> [flags]")
}

func reportError(stderr io.Writer, err error) int {
	if errors.Is(err, mpq.ErrLocaleUnknown) || errors.Is(err, mpqlocale.ErrUnknown) || errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "[!] Failed: %v\n", err)
		return exitUsageError
	}
	if errors.Is(err, mpq.ErrNotFound) || errors.Is(err, mpq.ErrNameExists) || errors.Is(err, mpq.ErrNoHashSpace) {
		fmt.Fprintf(stderr, "[-] %v\n", err)
		return exitFailure
	}
	fmt.Fprintf(stderr, "[!] %v\n", err)
	return exitFailure
}

// collectedFile is one file staged during "create": its path on disk
// and the name it will carry inside the archive.
type collectedFile struct {
	srcPath string
	mpqName string
}

// collectFiles gathers every regular file under src (a single file or
// a directory walked recursively) and assigns it an in-archive name,
// backslash-separated the way MPQ paths are stored.
func collectFiles(src string, info os.FileInfo, nameInArchive, dirInArchive string) ([]collectedFile, error) {
	if !info.IsDir() {
		name := filepath.Base(src)
		if nameInArchive != "" {
			name = nameInArchive
		}
		return []collectedFile{{srcPath: src, mpqName: name}}, nil
	}

	var files []collectedFile
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		name := strings.ReplaceAll(filepath.ToSlash(rel), "/", "\\")
		if dirInArchive != "" {
			name = strings.TrimRight(dirInArchive, "\\") + "\\" + name
		}
		files = append(files, collectedFile{srcPath: p, mpqName: name})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func defaultArchivePath(src string) string {
	trimmed := strings.TrimSuffix(src, string(os.PathSeparator))
	return strings.TrimSuffix(trimmed, filepath.Ext(trimmed)) + ".mpq"
}

func runCreate(stdout, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.StringP("output", "o", "", "output archive path (default: <src> with a .mpq extension)")
	version := fs.IntP("version", "v", 1, "archive format version: 1, 2, or 4")
	weakSign := fs.BoolP("weak-sign", "s", false, "attach a self-signed weak signature")
	profile := fs.StringP("game", "g", "", "game profile (see mpq.Profiles)")
	localeTag := fs.String("locale", "", "locale tag applied to every collected file")
	nameInArchive := fs.String("name-in-archive", "", "in-archive name, when src is a single file")
	dirInArchive := fs.String("dir-in-archive", "", "in-archive directory prefix, when src is a directory")
	fileFlags1 := fs.Uint32("file-flags1", 0, "extra block flags OR'd into every added file")
	fileFlags2 := fs.Uint32("file-flags2", 0, "extra block flags OR'd into every added file")
	fileFlags3 := fs.Uint32("file-flags3", 0, "extra block flags OR'd into every added file")
	_ = fs.Uint32("attr-flags", 0, "attributes member flags (reserved)")
	rawFlags := fs.Uint32("flags", 0, "raw block flags override, combined with --file-flagsN")
	compression := fs.String("compression", "zlib", "compression for every sector: none|zlib|bzip2|lzma|sparse|huffman")
	_ = fs.String("compression-next", "", "compression for sectors after the first (reserved)")
	if err := fs.Parse(args); err != nil {
		return exitUsageError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "[!] usage: mpqarc create <src> [-o mpq] [-v 1|2|4] [-s] [-g profile] [flags]")
		return exitUsageError
	}
	src := fs.Arg(0)

	srcInfo, err := os.Stat(src)
	if err != nil {
		fmt.Fprintf(stderr, "[!] Failed: Source doesn't exist: %s\n", src)
		return exitUsageError
	}

	out := *output
	if out == "" {
		out = defaultArchivePath(src)
	}
	if _, err := os.Stat(out); err == nil {
		fmt.Fprintf(stderr, "[!] Failed: Output archive already exists: %s\n", out)
		return exitFailure
	}

	if *profile != "" {
		if _, ok := mpq.Profiles[*profile]; !ok {
			fmt.Fprintf(stderr, "[!] Failed: Unknown game profile: %s\n", *profile)
			return exitUsageError
		}
	}

	locale, err := command.ParseLocaleStrict(*localeTag)
	if err != nil {
		fmt.Fprintf(stderr, "[!] Failed: %v\n", err)
		return exitUsageError
	}

	if _, err := command.ParseCompression(*compression); err != nil {
		fmt.Fprintf(stderr, "[!] Failed: %v\n", err)
		return exitUsageError
	}

	files, err := collectFiles(src, srcInfo, *nameInArchive, *dirInArchive)
	if err != nil {
		fmt.Fprintf(stderr, "[!] Failed: %v\n", err)
		return exitFailure
	}

	capacity := len(files)
	if capacity < 1 {
		capacity = 1
	}
	if err := command.Create(out, command.CreateOptions{Profile: *profile, Version: toMpqformatVersion(*version), Capacity: capacity}); err != nil {
		return reportError(stderr, err)
	}
	if *profile != "" {
		fmt.Fprintf(stdout, "[*] Game profile: %s\n", *profile)
	}

	extraFlags := *fileFlags1 | *fileFlags2 | *fileFlags3 | *rawFlags
	for _, f := range files {
		_, err := command.Add(out, f.srcPath, f.mpqName, command.AddOptions{
			LocaleTag:   mpqlocale.Name(locale),
			Compression: *compression,
			Overwrite:   true,
			ExtraFlags:  extraFlags,
		})
		if err != nil {
			fmt.Fprintf(stderr, "[!] Failed: %v\n", err)
			return exitFailure
		}
	}

	if *weakSign {
		if err := command.SignWeak(out); err != nil {
			fmt.Fprintf(stderr, "[!] Failed: %v\n", err)
			return exitFailure
		}
	}

	fmt.Fprintf(stdout, "[+] Created: %s\n", out)
	return exitOK
}

func toMpqformatVersion(v int) int {
	switch v {
	case 2:
		return mpqformat.Version2
	case 4:
		return mpqformat.Version4
	default:
		return mpqformat.Version1
	}
}

func runAdd(stdout, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	locale := fs.String("locale", "", "locale tag, e.g. enUS")
	compression := fs.String("compression", "zlib", "none|zlib|bzip2|lzma|sparse|huffman")
	crc := fs.Bool("crc", false, "generate per-sector CRC")
	overwrite := fs.Bool("overwrite", false, "replace an existing entry")
	nameInArchive := fs.String("name-in-archive", "", "in-archive name (default: source file's basename)")
	_ = fs.String("dir-in-archive", "", "in-archive directory prefix, prepended to --name-in-archive")
	profile := fs.StringP("game", "g", "", "game profile to report (see mpq.Profiles)")
	if err := fs.Parse(args); err != nil {
		return exitUsageError
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, "[!] usage: mpqarc add <file> <mpq> [--name-in-archive name] [flags]")
		return exitUsageError
	}
	srcPath, archivePath := fs.Arg(0), fs.Arg(1)

	if *profile != "" {
		if _, ok := mpq.Profiles[*profile]; !ok {
			fmt.Fprintf(stderr, "[!] Failed: Unknown game profile: %s\n", *profile)
			return exitUsageError
		}
	}

	mpqName := *nameInArchive
	if mpqName == "" {
		mpqName = filepath.Base(srcPath)
	}
	if dirFlag := fs.Lookup("dir-in-archive"); dirFlag != nil && dirFlag.Value.String() != "" {
		mpqName = strings.TrimRight(dirFlag.Value.String(), "\\") + "\\" + mpqName
	}

	opts := command.AddOptions{
		LocaleTag:   *locale,
		Compression: *compression,
		GenerateCRC: *crc,
		Overwrite:   *overwrite,
	}
	res, err := command.Add(archivePath, srcPath, mpqName, opts)
	if err != nil {
		return reportError(stderr, err)
	}
	if res.Skipped {
		fmt.Fprintf(stdout, "[!] File already exists in MPQ archive: %s - Skipping...\n", mpqName)
		return exitOK
	}
	fmt.Fprintf(stdout, "[+] Adding file for locale %d: %s\n", res.Locale, mpqName)
	if *profile != "" {
		fmt.Fprintf(stdout, "Using game profile: %s\n", *profile)
	}
	return exitOK
}

func runRemove(stdout, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(stderr)
	locale := fs.String("locale", "", "locale tag, e.g. enUS")
	if err := fs.Parse(args); err != nil {
		return exitUsageError
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, "[!] usage: mpqarc remove <name> <mpq> [--locale tag]")
		return exitUsageError
	}
	name, archivePath := fs.Arg(0), fs.Arg(1)

	res, err := command.Remove(archivePath, name, *locale)
	if err != nil {
		return reportError(stderr, err)
	}
	if res.LocaleWarning != "" {
		fmt.Fprintf(stdout, "[!] Warning: %s\n", res.LocaleWarning)
	}
	fmt.Fprintf(stdout, "[+] Removing file: %s\n", name)
	return exitOK
}

func runRead(stdout, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("read", flag.ContinueOnError)
	fs.SetOutput(stderr)
	locale := fs.String("locale", "", "locale tag, e.g. enUS")
	if err := fs.Parse(args); err != nil {
		return exitUsageError
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, "[!] usage: mpqarc read <name> <mpq> [--locale tag]")
		return exitUsageError
	}
	name, archivePath := fs.Arg(0), fs.Arg(1)

	res, err := command.Read(archivePath, name, *locale)
	if err != nil {
		if errors.Is(err, mpq.ErrNotFound) {
			fmt.Fprintf(stderr, "[!] Failed: File doesn't exist: %s\n", name)
			return exitFailure
		}
		return reportError(stderr, err)
	}
	if res.LocaleWarning != "" {
		fmt.Fprintf(stdout, "[!] Warning: %s\n", res.LocaleWarning)
	}
	stdout.Write(res.Data)
	return exitOK
}

func runExtract(stdout, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.StringP("output", "o", "", "destination directory (default: the archive path without its extension)")
	fileFilter := fs.StringP("file", "f", "", "extract only this one entry")
	listfilePath := fs.StringP("listfile", "l", "", "external listfile supplementing name recovery")
	locale := fs.String("locale", "", "locale tag, e.g. enUS")
	if err := fs.Parse(args); err != nil {
		return exitUsageError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "[!] usage: mpqarc extract <mpq> [-o dir] [-f name] [-l listfile]")
		return exitUsageError
	}
	archivePath := fs.Arg(0)

	outDir := *out
	if outDir == "" {
		outDir = defaultArchivePath(archivePath)
		outDir = strings.TrimSuffix(outDir, ".mpq")
	}

	extraNames, err := readExternalListfile(*listfilePath)
	if err != nil {
		fmt.Fprintf(stderr, "[!] Failed: %v\n", err)
		return exitUsageError
	}

	listRes, err := command.List(archivePath, extraNames)
	if err != nil {
		return reportError(stderr, err)
	}

	names := listRes.Names
	if *fileFilter != "" {
		names = []string{*fileFilter}
	}
	if len(names) == 0 {
		for _, e := range listRes.Entries {
			if !e.IsMetadata {
				names = append(names, e.Name)
			}
		}
	}

	anyFailure := false
	for _, name := range names {
		dest := filepath.Join(outDir, name)
		res, err := command.Extract(archivePath, name, *locale, dest)
		if err != nil {
			if errors.Is(err, mpq.ErrNotFound) {
				fmt.Fprintf(stderr, "[!] Failed: File doesn't exist: %s\n", name)
				anyFailure = true
				continue
			}
			return reportError(stderr, err)
		}
		if res.LocaleWarning != "" {
			fmt.Fprintf(stdout, "[!] Warning: %s\n", res.LocaleWarning)
		}
		fmt.Fprintf(stdout, "[+] Extracted: %s\n", name)
	}
	if anyFailure {
		return exitFailure
	}
	return exitOK
}

func readExternalListfile(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read listfile %s: %w", path, err)
	}
	var names []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// propertyValue returns every "list -p" column value keyed by property
// name, for a single entry.
func propertyValue(e mpq.ListEntry) map[string]string {
	return map[string]string{
		"hash-index":         fmt.Sprintf("%d", e.HashIndex),
		"name-hash1":         fmt.Sprintf("%08x", e.NameHash1),
		"name-hash2":         fmt.Sprintf("%08x", e.NameHash2),
		"name-hash3":         fmt.Sprintf("%08x", e.NameHash3),
		"compressed-size":    fmt.Sprintf("%d", e.CompressedSize),
		"file-size":          fmt.Sprintf("%d", e.FileSize),
		"flags":              flagsString(e.Flags),
		"encryption-key-raw": fmt.Sprintf("%08x", e.EncryptionKey),
		"locale":             mpqlocale.Name(e.Locale),
	}
}

// flagsString renders a block's flags in the fixed column order
// "ceximnfr2d": c=COMPRESS, e=ENCRYPTED, x=EXISTS, i=IMPLODE,
// m=SINGLE_UNIT, n=PATCH_FILE, f=reserved (never set by this tool),
// r=SECTOR_CRC, 2=FIX_KEY, d=DELETE_MARKER. Each letter appears only
// when its bit is set.
func flagsString(flags uint32) string {
	type bit struct {
		ch   byte
		mask uint32
	}
	bits := []bit{
		{'c', mpq.FlagCompress},
		{'e', mpq.FlagEncrypted},
		{'x', mpqformat.FlagExists},
		{'i', mpq.FlagImplode},
		{'m', mpq.FlagSingleUnit},
		{'n', mpq.FlagPatchFile},
		{'r', mpq.FlagSectorCRC},
		{'2', mpq.FlagFixKey},
		{'d', mpq.FlagDeleteMarker},
	}
	var b strings.Builder
	for _, bt := range bits {
		if flags&bt.mask != 0 {
			b.WriteByte(bt.ch)
		}
	}
	return b.String()
}

func runList(stdout, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	all := fs.BoolP("all", "a", false, "include internal metadata members")
	detailed := fs.BoolP("detailed", "d", false, "render per-entry hash/flag/size/locale columns")
	properties := fs.StringArrayP("property", "p", nil, "render only this column (repeatable)")
	listfilePath := fs.StringP("listfile", "l", "", "external listfile supplementing name recovery")
	if err := fs.Parse(args); err != nil {
		return exitUsageError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "[!] usage: mpqarc list <mpq> [-a] [-d] [-p property] [-l listfile]")
		return exitUsageError
	}
	archivePath := fs.Arg(0)

	extraNames, err := readExternalListfile(*listfilePath)
	if err != nil {
		fmt.Fprintf(stderr, "[!] Failed: %v\n", err)
		return exitUsageError
	}

	res, err := command.List(archivePath, extraNames)
	if err != nil {
		return reportError(stderr, err)
	}

	entries := res.Entries
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	if !*all {
		filtered := entries[:0]
		for _, e := range entries {
			if !e.IsMetadata {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if !*detailed && len(*properties) == 0 {
		for _, e := range entries {
			fmt.Fprintln(stdout, e.Name)
		}
		return exitOK
	}

	for _, e := range entries {
		values := propertyValue(e)
		if len(*properties) > 0 {
			cols := make([]string, 0, len(*properties))
			for _, p := range *properties {
				v, ok := values[p]
				if !ok {
					fmt.Fprintf(stderr, "[!] Failed: Unknown property: %s\n", p)
					return exitUsageError
				}
				cols = append(cols, v)
			}
			fmt.Fprintf(stdout, "%s  %s\n", strings.Join(cols, " "), e.Name)
			continue
		}

		size := fmt.Sprintf("%8d", e.FileSize)
		locale := mpqlocale.Name(e.Locale)
		fmt.Fprintf(stdout, "%s %s  %s\n", size, locale, e.Name)
	}
	return exitOK
}

// infoProperties maps the "info -p" property names to their rendering.
func infoProperties(info command.InfoResult) map[string]string {
	return map[string]string{
		"format-version": fmt.Sprintf("%d", info.FormatVersion),
		"header-offset":  fmt.Sprintf("%d", info.HeaderOffset),
		"header-size":    fmt.Sprintf("%d", info.HeaderSize),
		"archive-size":   fmt.Sprintf("%d", info.ArchiveSize),
		"file-count":     fmt.Sprintf("%d", info.FileCount),
		"signature-type": info.SignatureType,
	}
}

func runInfo(stdout, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	property := fs.StringP("property", "p", "", "print only this property's bare value")
	if err := fs.Parse(args); err != nil {
		return exitUsageError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "[!] usage: mpqarc info <mpq> [-p property]")
		return exitUsageError
	}

	res, err := command.Info(fs.Arg(0))
	if err != nil {
		return reportError(stderr, err)
	}
	values := infoProperties(res)

	if *property != "" {
		v, ok := values[*property]
		if !ok {
			fmt.Fprintf(stderr, "[!] Failed: Unknown property: %s\n", *property)
			return exitUsageError
		}
		fmt.Fprintln(stdout, v)
		return exitOK
	}

	fmt.Fprintf(stdout, "Format version: %s\n", values["format-version"])
	fmt.Fprintf(stdout, "Header offset: %s\n", values["header-offset"])
	fmt.Fprintf(stdout, "Header size: %s\n", values["header-size"])
	fmt.Fprintf(stdout, "Archive size: %s\n", values["archive-size"])
	fmt.Fprintf(stdout, "File count: %s\n", values["file-count"])
	fmt.Fprintf(stdout, "Signature type: %s\n", values["signature-type"])
	return exitOK
}

func runVerify(stdout, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	printSig := fs.BoolP("print", "p", false, "dump the raw weak signature bytes")
	if err := fs.Parse(args); err != nil {
		return exitUsageError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "[!] usage: mpqarc verify <mpq> [-p]")
		return exitUsageError
	}

	res, err := command.Verify(fs.Arg(0))
	if err != nil {
		return reportError(stderr, err)
	}

	if *printSig && res.HasWeakSignature {
		fmt.Fprintln(stdout, "[+] Signature content:")
		fmt.Fprintf(stdout, "[+] Weak signature file size: %d\n", len(res.WeakSignatureBlob))
		fmt.Fprintln(stdout, escapeHex(res.WeakSignatureBlob))
	}

	if !res.Passed() {
		fmt.Fprintln(stdout, "[!] Verify failed")
		return exitFailure
	}
	fmt.Fprintln(stdout, "[+] Verify success")
	return exitOK
}

// escapeHex renders every byte of data, printable or not, as "\xHH":
// lowercase hex, no separators.
func escapeHex(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		fmt.Fprintf(&b, "\\x%02x", c)
	}
	return b.String()
}
