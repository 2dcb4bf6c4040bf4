package content

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/crescent-emu/crescent/pkg/log"
)

func writeZipArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(data)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeTarZstArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(zw)
	for name, data := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(data)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(data)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseArchiveName(t *testing.T) {
	tests := []struct {
		name     string
		wantID   uint64
		wantKind ArchiveKind
		ok       bool
	}{
		{"0100000000001001.html-document.zip", 0x0100000000001001, HtmlDocument, true},
		{"0100000000001001.legal-information.7z", 0x0100000000001001, LegalInformation, true},
		{"0100000000001002.data.tar.zst", 0x0100000000001002, Data, true},
		{"0100000000001001.html-document.rar", 0, 0, false},
		{"readme.txt", 0, 0, false},
		{"100.data.zip", 0, 0, false},
		{"010000000000100g.data.zip", 0, 0, false},
		{"0100000000001001.bogus-kind.zip", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, _, ok := parseArchiveName(tt.name)
			if ok != tt.ok {
				t.Fatalf("parseArchiveName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
			if !ok {
				return
			}
			if key.titleID != tt.wantID || key.kind != tt.wantKind {
				t.Errorf("parseArchiveName(%q) = (%016X, %s), want (%016X, %s)",
					tt.name, key.titleID, key.kind, tt.wantID, tt.wantKind)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	writeZipArchive(t, filepath.Join(dir, "0100000000001001.html-document.zip"), map[string]string{
		"html-document/index.html": "<html>manual</html>",
	})
	writeTarZstArchive(t, filepath.Join(dir, "0100000000001002.data.tar.zst"), map[string]string{
		"index.html": "<html>data</html>",
	})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewRegistry(dir, log.NewNullLogger())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	a, ok := r.GetEntry(0x0100000000001001, HtmlDocument)
	if !ok {
		t.Fatal("GetEntry(html-document) not found")
	}
	tree, err := a.Extract()
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if f := tree.Lookup("html-document/index.html"); f == nil || string(f.Data) != "<html>manual</html>" {
		t.Errorf("extracted tree missing html-document/index.html")
	}

	a, ok = r.GetEntry(0x0100000000001002, Data)
	if !ok {
		t.Fatal("GetEntry(data) not found")
	}
	tree, err = a.Extract()
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if f := tree.Lookup("index.html"); f == nil || string(f.Data) != "<html>data</html>" {
		t.Errorf("extracted tar.zst tree missing index.html")
	}

	if _, ok := r.GetEntry(0xDEAD, HtmlDocument); ok {
		t.Error("GetEntry for unknown title should miss")
	}
}

func TestRegistry_MissingDirectory(t *testing.T) {
	r, err := NewRegistry(filepath.Join(t.TempDir(), "nope"), log.NewNullLogger())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestArchive_Fingerprint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0100000000001001.data.zip")
	writeZipArchive(t, path, map[string]string{"index.html": "x"})

	r, err := NewRegistry(dir, log.NewNullLogger())
	if err != nil {
		t.Fatal(err)
	}
	a, _ := r.GetEntry(0x0100000000001001, Data)

	fp1, err := a.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	fp2, err := a.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() second call error = %v", err)
	}
	if fp1 != fp2 || fp1 == 0 {
		t.Errorf("Fingerprint() = %#x then %#x, want equal and non-zero", fp1, fp2)
	}
}

func TestSystemRegistry_SynthesizeArchive(t *testing.T) {
	s, err := NewSystemRegistry(filepath.Join(t.TempDir(), "system"), log.NewNullLogger())
	if err != nil {
		t.Fatal(err)
	}

	a := s.SynthesizeArchive(0x0100000000000820)
	tree, err := a.Extract()
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if tree.Lookup("index.html") == nil {
		t.Error("synthesized archive has no index.html")
	}

	fp1, err := a.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	fp2, err := s.SynthesizeArchive(0x0100000000000820).Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if fp1 != fp2 {
		t.Errorf("synthesized fingerprints differ: %#x vs %#x", fp1, fp2)
	}
}

func TestPatchManager(t *testing.T) {
	contentDir := t.TempDir()
	writeZipArchive(t, filepath.Join(contentDir, "0100000000001001.html-document.zip"), map[string]string{
		"html-document/index.html": "base",
		"html-document/keep.html":  "keep",
	})

	modsDir := t.TempDir()
	overlay := filepath.Join(modsDir, "0100000000001001", "html-document", "html-document")
	if err := os.MkdirAll(overlay, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(overlay, "index.html"), []byte("modded"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewRegistry(contentDir, log.NewNullLogger())
	if err != nil {
		t.Fatal(err)
	}
	base, _ := r.GetEntry(0x0100000000001001, HtmlDocument)

	pm := NewPatchManager(modsDir, log.NewNullLogger())
	patched := pm.Patch(base, 0x0100000000001001, HtmlDocument)
	tree, err := patched.Extract()
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if f := tree.Lookup("html-document/index.html"); f == nil || string(f.Data) != "modded" {
		t.Errorf("overlay did not replace index.html, got %v", f)
	}
	if f := tree.Lookup("html-document/keep.html"); f == nil || string(f.Data) != "keep" {
		t.Errorf("overlay dropped untouched file keep.html")
	}

	// a title with no mods passes through unchanged
	if got := pm.Patch(base, 0xBEEF, HtmlDocument); got != base {
		t.Error("Patch without overlay dir should return the base archive")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	root := t.TempDir()
	want := Manifest{
		TitleID:     0x0100000000001001,
		Kind:        HtmlDocument.String(),
		FileCount:   3,
		Fingerprint: 0xCAFEBABE,
		ExtractedAt: time.Now().UTC().Truncate(time.Second),
	}

	if err := WriteManifest(root, want); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	got, err := ReadManifest(root)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}

	if got.TitleID != want.TitleID || got.Kind != want.Kind ||
		got.FileCount != want.FileCount || got.Fingerprint != want.Fingerprint {
		t.Errorf("ReadManifest() = %+v, want %+v", got, want)
	}
	if !got.ExtractedAt.Equal(want.ExtractedAt) {
		t.Errorf("ExtractedAt = %v, want %v", got.ExtractedAt, want.ExtractedAt)
	}
}
