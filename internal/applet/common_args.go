package applet

import (
	"encoding/binary"
	"fmt"
)

// CommonArgumentsSize is the byte width of the common arguments block.
const CommonArgumentsSize = 0x20

// CommonArguments is the fixed metadata block every applet pops from its
// broker before its applet-specific arguments.
type CommonArguments struct {
	ArgumentsVersion uint32
	Size             uint32
	LibraryVersion   uint32
	ThemeColor       uint32
	PlayStartupSound bool
	SystemTick       uint64
}

// DecodeCommonArguments parses the fixed-layout common arguments block.
func DecodeCommonArguments(buf []byte) (CommonArguments, error) {
	if len(buf) < CommonArgumentsSize {
		return CommonArguments{}, fmt.Errorf("common arguments buffer too small: %d < %d", len(buf), CommonArgumentsSize)
	}

	return CommonArguments{
		ArgumentsVersion: binary.LittleEndian.Uint32(buf[0x00:]),
		Size:             binary.LittleEndian.Uint32(buf[0x04:]),
		LibraryVersion:   binary.LittleEndian.Uint32(buf[0x08:]),
		ThemeColor:       binary.LittleEndian.Uint32(buf[0x0C:]),
		PlayStartupSound: buf[0x10] != 0,
		SystemTick:       binary.LittleEndian.Uint64(buf[0x18:]),
	}, nil
}

// Encode serializes the block into its fixed layout.
func (c CommonArguments) Encode() []byte {
	buf := make([]byte, CommonArgumentsSize)
	binary.LittleEndian.PutUint32(buf[0x00:], c.ArgumentsVersion)
	binary.LittleEndian.PutUint32(buf[0x04:], c.Size)
	binary.LittleEndian.PutUint32(buf[0x08:], c.LibraryVersion)
	binary.LittleEndian.PutUint32(buf[0x0C:], c.ThemeColor)
	if c.PlayStartupSound {
		buf[0x10] = 1
	}
	binary.LittleEndian.PutUint64(buf[0x18:], c.SystemTick)
	return buf
}
