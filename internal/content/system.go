package content

import (
	"fmt"

	"github.com/crescent-emu/crescent/internal/vfs"
	"github.com/crescent-emu/crescent/pkg/log"
)

// SystemRegistry indexes system-resident content archives and synthesizes
// built-in archives for system data that ships embedded in the emulator
// rather than as installed content.
type SystemRegistry struct {
	*Registry
	logger log.Logger
}

// NewSystemRegistry scans the system content directory.
func NewSystemRegistry(dir string, logger log.Logger) (*SystemRegistry, error) {
	r, err := NewRegistry(dir, logger)
	if err != nil {
		return nil, err
	}
	return &SystemRegistry{Registry: r, logger: logger}, nil
}

// SynthesizeArchive builds a placeholder in-memory archive for a system data
// title that is not present on host storage. It never fails: callers rely on
// it as the fallback of last resort for Data lookups.
func (s *SystemRegistry) SynthesizeArchive(titleID uint64) Archive {
	s.logger.Infof("synthesizing built-in archive for title_id=%016X", titleID)
	return SynthesizePlaceholder(titleID)
}

// SynthesizePlaceholder builds the in-memory placeholder archive for a
// system data title.
func SynthesizePlaceholder(titleID uint64) Archive {
	root := vfs.NewDirectory("")
	root.Insert("index.html", []byte(fmt.Sprintf(
		"<!DOCTYPE html><html><head><title>System Data</title></head>"+
			"<body><p>Built-in placeholder for system data %016X.</p></body></html>",
		titleID)))

	return &memArchive{root: root}
}
