package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/crescent-emu/crescent/pkg/log"
)

type entryKey struct {
	titleID uint64
	kind    ArchiveKind
}

// Registry indexes the content archives installed under a single host
// directory. Archives are named "{titleID:016x}.{kind}.{ext}" where ext is
// one of ".7z", ".zip" or ".tar.zst"; anything else in the directory is
// ignored. The index is built once at construction.
type Registry struct {
	dir     string
	logger  log.Logger
	entries map[entryKey]*fileArchive
}

// NewRegistry scans dir and returns a registry over its archives. A missing
// directory yields an empty registry, not an error.
func NewRegistry(dir string, logger log.Logger) (*Registry, error) {
	r := &Registry{
		dir:     dir,
		logger:  logger,
		entries: make(map[entryKey]*fileArchive),
	}

	listing, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning content directory %q: %w", dir, err)
	}

	for _, entry := range listing {
		if entry.IsDir() {
			continue
		}

		key, format, ok := parseArchiveName(entry.Name())
		if !ok {
			continue
		}

		if _, exists := r.entries[key]; exists {
			logger.Warnf("duplicate archive for title_id=%016X kind=%s, keeping %s", key.titleID, key.kind, entry.Name())
		}
		r.entries[key] = &fileArchive{
			path:   filepath.Join(dir, entry.Name()),
			format: format,
		}
		logger.Debugf("registered archive title_id=%016X kind=%s file=%s", key.titleID, key.kind, entry.Name())
	}

	return r, nil
}

// GetEntry returns the archive installed for the given title and kind.
func (r *Registry) GetEntry(titleID uint64, kind ArchiveKind) (Archive, bool) {
	a, ok := r.entries[entryKey{titleID: titleID, kind: kind}]
	if !ok {
		return nil, false
	}
	return a, true
}

// Len returns the number of indexed archives.
func (r *Registry) Len() int {
	return len(r.entries)
}

func parseArchiveName(name string) (entryKey, archiveFormat, bool) {
	var format archiveFormat
	var stem string
	switch {
	case strings.HasSuffix(name, ".7z"):
		format = formatSevenZip
		stem = strings.TrimSuffix(name, ".7z")
	case strings.HasSuffix(name, ".zip"):
		format = formatZip
		stem = strings.TrimSuffix(name, ".zip")
	case strings.HasSuffix(name, ".tar.zst"):
		format = formatTarZst
		stem = strings.TrimSuffix(name, ".tar.zst")
	default:
		return entryKey{}, 0, false
	}

	// stem is "{titleID:016x}.{kind}"
	parts := strings.SplitN(stem, ".", 2)
	if len(parts) != 2 || len(parts[0]) != 16 {
		return entryKey{}, 0, false
	}

	titleID, err := strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return entryKey{}, 0, false
	}

	kind, ok := kindFromName(parts[1])
	if !ok {
		return entryKey{}, 0, false
	}

	return entryKey{titleID: titleID, kind: kind}, format, true
}

func kindFromName(name string) (ArchiveKind, bool) {
	for _, k := range []ArchiveKind{Meta, Program, Data, Control, HtmlDocument, LegalInformation} {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}
