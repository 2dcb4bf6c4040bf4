package webbrowser

import "encoding/binary"

// encodeReturnValue serializes the completion result into its fixed
// layout: exit reason, URL bytes in a capacity-bounded buffer, URL size.
func encodeReturnValue(rv ReturnValue) []byte {
	buf := make([]byte, ReturnValueSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(rv.ExitReason))
	copy(buf[4:4+lastURLCapacity], rv.LastURL)
	binary.LittleEndian.PutUint32(buf[4+lastURLCapacity:], uint32(len(rv.LastURL)))
	return buf
}

// DecodeReturnValue parses an encoded completion result. It is the inverse
// of the applet's result encoding and is used by tooling and tests.
func DecodeReturnValue(buf []byte) (ReturnValue, bool) {
	if len(buf) < ReturnValueSize {
		return ReturnValue{}, false
	}

	size := binary.LittleEndian.Uint32(buf[4+lastURLCapacity:])
	if size > lastURLCapacity {
		return ReturnValue{}, false
	}

	return ReturnValue{
		ExitReason: ExitReason(binary.LittleEndian.Uint32(buf[0:])),
		LastURL:    string(buf[4 : 4+size]),
	}, true
}
