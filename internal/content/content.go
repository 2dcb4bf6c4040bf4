// Package content provides access to installed content archives: the
// registered-content registry, the system content registry with its
// synthesized fallback, and the mod patch overlay.
//
// An archive is an immutable container holding a virtual file tree. Archives
// are looked up by the owning title ID and a record kind, and extracted into
// an in-memory vfs tree on demand.
package content

import "github.com/crescent-emu/crescent/internal/vfs"

// ArchiveKind identifies the record type of a content archive within a
// title. The values are protocol constants defined by the guest OS content
// metadata format.
type ArchiveKind uint8

const (
	Meta             ArchiveKind = 0
	Program          ArchiveKind = 1
	Data             ArchiveKind = 2
	Control          ArchiveKind = 3
	HtmlDocument     ArchiveKind = 4
	LegalInformation ArchiveKind = 5
)

// String returns the name used in archive file names and log output.
func (k ArchiveKind) String() string {
	switch k {
	case Meta:
		return "meta"
	case Program:
		return "program"
	case Data:
		return "data"
	case Control:
		return "control"
	case HtmlDocument:
		return "html-document"
	case LegalInformation:
		return "legal-information"
	default:
		return "unknown"
	}
}

// Archive is a handle to an immutable content archive.
type Archive interface {
	// Extract builds the archive's full file tree in memory.
	Extract() (*vfs.Directory, error)
	// Fingerprint returns a stable 64-bit hash of the archive contents.
	Fingerprint() (uint64, error)
}

// Provider looks up installed content archives.
type Provider interface {
	GetEntry(titleID uint64, kind ArchiveKind) (Archive, bool)
}

// SystemProvider looks up system-resident content, with a synthesized
// built-in fallback for data archives that ship embedded in the emulator
// rather than as installed content.
type SystemProvider interface {
	Provider
	SynthesizeArchive(titleID uint64) Archive
}

// Patcher overlays installed mods onto a base archive.
type Patcher interface {
	Patch(a Archive, titleID uint64, kind ArchiveKind) Archive
}
