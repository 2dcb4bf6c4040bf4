package webbrowser

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMissingField signals that a required tagged field was absent from the
// argument buffer. For offline sessions this is a fatal initialization
// failure, distinct from the decoder's tolerated truncation.
var ErrMissingField = errors.New("webbrowser: required argument field missing")

// ArgMap maps argument tags to their raw payloads. It is built once during
// initialization and immutable thereafter.
type ArgMap map[ArgTag][]byte

// cursor is a bounds-checked reader over the argument buffer. All
// truncation tolerance lives here: a read past the end reports failure
// without advancing.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) read(n int) ([]byte, bool) {
	if n < 0 || c.off+n > len(c.buf) {
		return nil, false
	}
	data := c.buf[c.off : c.off+n]
	c.off += n
	return data, true
}

// ReadArgs decodes the argument buffer into its header and tag map.
//
// The buffer must be at least WebArgHeaderSize bytes; shorter buffers are a
// caller error and panic. A buffer that is exactly the header is valid and
// yields an empty map. A stream truncated mid-entry is not an error: the
// producer may under-report available data, so decoding stops and returns
// the entries that were structurally complete. A repeated tag overwrites
// the earlier payload.
func ReadArgs(buf []byte) (WebArgHeader, ArgMap) {
	if len(buf) < WebArgHeaderSize {
		panic(fmt.Sprintf("webbrowser: argument buffer of %d bytes is smaller than the %d byte header", len(buf), WebArgHeaderSize))
	}

	header := WebArgHeader{
		TotalEntries: binary.LittleEndian.Uint16(buf[0:]),
		ShimKind:     ShimKind(buf[4]),
	}

	args := make(ArgMap)
	if len(buf) == WebArgHeaderSize {
		return header, args
	}

	cur := cursor{buf: buf, off: WebArgHeaderSize}
	for i := 0; i < int(header.TotalEntries); i++ {
		sub, ok := cur.read(tlvHeaderSize)
		if !ok {
			return header, args
		}

		tag := ArgTag(binary.LittleEndian.Uint32(sub[0:]))
		size := binary.LittleEndian.Uint32(sub[4:])

		data, ok := cur.read(int(size))
		if !ok {
			return header, args
		}

		args[tag] = append([]byte(nil), data...)
	}

	return header, args
}

// RawArg is a tagged payload for BuildArgs.
type RawArg struct {
	Tag  ArgTag
	Data []byte
}

// BuildArgs assembles an argument buffer the way a guest producer would:
// the fixed header followed by the packed entries. Used by tooling and
// tests acting as the guest side.
func BuildArgs(kind ShimKind, entries ...RawArg) []byte {
	buf := make([]byte, WebArgHeaderSize)
	binary.LittleEndian.PutUint16(buf[0:], uint16(len(entries)))
	buf[4] = uint8(kind)

	for _, e := range entries {
		sub := make([]byte, tlvHeaderSize)
		binary.LittleEndian.PutUint32(sub[0:], uint32(e.Tag))
		binary.LittleEndian.PutUint32(sub[4:], uint32(len(e.Data)))
		buf = append(buf, sub...)
		buf = append(buf, e.Data...)
	}
	return buf
}

// get returns the raw payload stored for tag.
func (m ArgMap) get(tag ArgTag) ([]byte, bool) {
	data, ok := m[tag]
	return data, ok
}

// requiredUint32 reads tag as an exact-width 32-bit value, failing with
// ErrMissingField when absent.
func (m ArgMap) requiredUint32(tag ArgTag) (uint32, error) {
	data, ok := m.get(tag)
	if !ok {
		return 0, fmt.Errorf("%w: tag %#x", ErrMissingField, uint32(tag))
	}
	return parseRawUint32(data)
}

// requiredUint64 reads tag as an exact-width 64-bit value, failing with
// ErrMissingField when absent.
func (m ArgMap) requiredUint64(tag ArgTag) (uint64, error) {
	data, ok := m.get(tag)
	if !ok {
		return 0, fmt.Errorf("%w: tag %#x", ErrMissingField, uint32(tag))
	}
	return parseRawUint64(data)
}

// requiredString reads tag as zero-terminated text, failing with
// ErrMissingField when absent.
func (m ArgMap) requiredString(tag ArgTag) (string, error) {
	data, ok := m.get(tag)
	if !ok {
		return "", fmt.Errorf("%w: tag %#x", ErrMissingField, uint32(tag))
	}
	return parseStringValue(data), nil
}

// parseRawUint32 reinterprets an exact 4-byte payload as a little-endian
// value. A size mismatch is a malformed field, not a truncation.
func parseRawUint32(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("webbrowser: raw value size %d, want 4", len(data))
	}
	return binary.LittleEndian.Uint32(data), nil
}

// parseRawUint64 reinterprets an exact 8-byte payload as a little-endian
// value.
func parseRawUint64(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("webbrowser: raw value size %d, want 8", len(data))
	}
	return binary.LittleEndian.Uint64(data), nil
}

// parseStringValue copies bytes up to the first zero byte or the end of the
// payload, whichever comes first.
func parseStringValue(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}
