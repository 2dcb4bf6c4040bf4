package content

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
	"github.com/klauspost/compress/zstd"

	"github.com/crescent-emu/crescent/internal/vfs"
)

// archiveFormat is the container format of a file-backed archive, asserted
// from the file extension at scan time.
type archiveFormat uint8

const (
	formatSevenZip archiveFormat = iota
	formatZip
	formatTarZst
)

// fileArchive is an Archive backed by a container file on host storage.
type fileArchive struct {
	path   string
	format archiveFormat

	fingerprint uint64
	hashed      bool
}

func (a *fileArchive) Extract() (*vfs.Directory, error) {
	switch a.format {
	case formatSevenZip:
		return a.extractSevenZip()
	case formatZip:
		return a.extractZip()
	case formatTarZst:
		return a.extractTarZst()
	default:
		return nil, fmt.Errorf("unknown archive format %d", a.format)
	}
}

// Fingerprint hashes the container file's raw bytes. The hash is computed
// once and cached for the archive's lifetime.
func (a *fileArchive) Fingerprint() (uint64, error) {
	if a.hashed {
		return a.fingerprint, nil
	}

	f, err := os.Open(a.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}

	a.fingerprint = h.Sum64()
	a.hashed = true
	return a.fingerprint, nil
}

func (a *fileArchive) extractSevenZip() (*vfs.Directory, error) {
	r, err := sevenzip.OpenReader(a.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	root := vfs.NewDirectory("")
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}

		root.Insert(strings.ReplaceAll(f.Name, "\\", "/"), data)
	}
	return root, nil
}

func (a *fileArchive) extractZip() (*vfs.Directory, error) {
	r, err := zip.OpenReader(a.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	root := vfs.NewDirectory("")
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}

		root.Insert(f.Name, data)
	}
	return root, nil
}

func (a *fileArchive) extractTarZst() (*vfs.Directory, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	root := vfs.NewDirectory("")
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		root.Insert(hdr.Name, data)
	}
	return root, nil
}

// memArchive is an Archive holding its tree directly in memory, used for
// synthesized built-in system archives.
type memArchive struct {
	root *vfs.Directory
}

func (a *memArchive) Extract() (*vfs.Directory, error) {
	return a.root, nil
}

func (a *memArchive) Fingerprint() (uint64, error) {
	h := xxhash.New()
	a.root.Walk(func(path string, f *vfs.File) {
		_, _ = h.Write([]byte(path))
		_, _ = h.Write(f.Data)
	})
	return h.Sum64(), nil
}
