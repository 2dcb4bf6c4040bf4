package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/crescent-emu/crescent/internal/vfs"
	"github.com/crescent-emu/crescent/pkg/log"
)

// PatchManager overlays files from a mods directory onto the extracted tree
// of a base archive. Mods for a title live under
// "{modsDir}/{titleID:016X}/{kind}/", mirroring the archive's internal
// layout; files replace or add to the base tree at the same relative path.
type PatchManager struct {
	modsDir string
	logger  log.Logger
}

// NewPatchManager returns a patch manager rooted at modsDir. An empty
// modsDir disables patching.
func NewPatchManager(modsDir string, logger log.Logger) *PatchManager {
	return &PatchManager{modsDir: modsDir, logger: logger}
}

// Patch wraps the base archive so extraction applies any installed mods for
// the given title and kind. When no mods directory exists the base archive
// is returned unchanged.
func (pm *PatchManager) Patch(a Archive, titleID uint64, kind ArchiveKind) Archive {
	if pm == nil || pm.modsDir == "" {
		return a
	}

	overlay := filepath.Join(pm.modsDir, fmt.Sprintf("%016X", titleID), kind.String())
	if _, err := os.Stat(overlay); err != nil {
		return a
	}

	pm.logger.Infof("applying mod overlay from %s", overlay)
	return &patchedArchive{base: a, overlayDir: overlay}
}

type patchedArchive struct {
	base       Archive
	overlayDir string
}

func (p *patchedArchive) Extract() (*vfs.Directory, error) {
	root, err := p.base.Extract()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(p.overlayDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(p.overlayDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		root.Insert(filepath.ToSlash(rel), data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return root, nil
}

func (p *patchedArchive) Fingerprint() (uint64, error) {
	return p.base.Fingerprint()
}
