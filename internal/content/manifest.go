package content

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// ManifestName is the file name of the extraction manifest written into a
// cache root after a successful materialization.
const ManifestName = ".manifest.cbor"

// Manifest records what was extracted into a cache root. It is
// informational: cache freshness is decided by the presence of the main
// document, never by the manifest.
type Manifest struct {
	TitleID     uint64    `cbor:"title_id"`
	Kind        string    `cbor:"kind"`
	FileCount   int       `cbor:"file_count"`
	Fingerprint uint64    `cbor:"fingerprint"`
	ExtractedAt time.Time `cbor:"extracted_at"`
}

// WriteManifest serializes the manifest into cacheRoot.
func WriteManifest(cacheRoot string, m Manifest) error {
	data, err := cbor.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cacheRoot, ManifestName), data, 0o644)
}

// ReadManifest loads the manifest from cacheRoot.
func ReadManifest(cacheRoot string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(cacheRoot, ManifestName))
	if err != nil {
		return Manifest{}, err
	}

	var m Manifest
	if err := cbor.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}
