package utvideo

import "encoding/binary"

// ExtradataSize is the size of the stream header in bytes.
const ExtradataSize = 16

// implementationID is the single byte identifying the encoder lineage
// in the version field of the stream header.
const implementationID = 0xF0

// frameInfoSize is the size of the per-frame trailer in bytes.
const frameInfoSize = 4

// StreamInfo is the decoded form of the 16-byte stream header.
type StreamInfo struct {
	FormatTag     uint32 // original-format tag, informational only
	FrameInfoSize int    // bytes of per-frame trailer
	Slices        int    // horizontal strips per plane
	Interlaced    bool
	Compression   int // compNone or compHuff
}

// writeExtradata emits the 16-byte stream header:
// version, original format, frame info size, flags.
func writeExtradata(dst []byte, formatTag, flags uint32) {
	// Version field. The final byte of the tag is the implementation
	// ID, which lands first on the wire.
	binary.BigEndian.PutUint32(dst[0:], mkTag(1, 0, 0, implementationID))

	// Original format, not used for anything during decoding.
	binary.LittleEndian.PutUint32(dst[4:], formatTag)

	binary.LittleEndian.PutUint32(dst[8:], frameInfoSize)
	binary.LittleEndian.PutUint32(dst[12:], flags)
}

// ParseExtradata decodes a 16-byte stream header.
func ParseExtradata(extradata []byte) (*StreamInfo, error) {
	if len(extradata) < ExtradataSize {
		return nil, ErrInvalidExtradata
	}

	flags := binary.LittleEndian.Uint32(extradata[12:])

	info := &StreamInfo{
		FormatTag:     binary.LittleEndian.Uint32(extradata[4:]),
		FrameInfoSize: int(binary.LittleEndian.Uint32(extradata[8:])),
		Slices:        int(flags>>24) + 1,
		Interlaced:    flags&(1<<11) != 0,
		Compression:   int(flags & 1),
	}

	if info.FrameInfoSize != frameInfoSize {
		return nil, ErrInvalidExtradata
	}

	return info, nil
}
