package utils

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// LoadFile loads the given file and performs decompression if necessary.
// Compression is asserted from the file extension; unrecognised extensions
// return the raw bytes as-is.
func LoadFile(filename string) ([]byte, error) {
	// open the file
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var decoder io.Reader
	switch filepath.Ext(filename) {
	case ".gz":
		decoder, err = gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		decoder = zr
	default:
		// return the data as is
		return io.ReadAll(f)
	}

	// read the decompressed data into a byte slice
	return io.ReadAll(decoder)
}
