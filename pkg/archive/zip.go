// Package archive unpacks downloaded exam archives.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/dtnitsch/bac-archiver/models"
)

// MaxEntrySize caps a single extracted document.
const MaxEntrySize = 256 << 20

// Unpack returns the documents in a zip archive whose extension is in
// extensions. Directories and empty files are skipped. Entries are sorted by
// name so processing order does not depend on archive layout.
//
// An entry that cannot be read is left out of entries and reported in
// skipped, so one damaged document does not cost the rest of the archive.
// err is set only when the archive itself cannot be opened.
func Unpack(data []byte, extensions []string) (entries []models.ArchiveEntry, skipped []*models.UnpackFailure, err error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open zip: %w", err)
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() || f.UncompressedSize64 == 0 {
			continue
		}
		if !hasExtension(f.Name, extensions) {
			continue
		}
		if f.UncompressedSize64 > MaxEntrySize {
			skipped = append(skipped, &models.UnpackFailure{
				Entry: f.Name,
				Err:   fmt.Errorf("entry exceeds %d bytes", MaxEntrySize),
			})
			continue
		}

		content, readErr := readEntry(f)
		if readErr != nil {
			skipped = append(skipped, &models.UnpackFailure{Entry: f.Name, Err: readErr})
			continue
		}
		if len(content) == 0 {
			continue
		}
		entries = append(entries, models.ArchiveEntry{Name: f.Name, Data: content})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	sort.SliceStable(skipped, func(i, j int) bool { return skipped[i].Entry < skipped[j].Entry })
	return entries, skipped, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, MaxEntrySize))
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
