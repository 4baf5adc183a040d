package utvideo

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-utvideo-codec/utvideo/bitstream"
)

// Decoder turns Ut Video frame packets back into raw pictures. It is
// the inverse of Encoder and accepts any stream produced by it.
type Decoder struct {
	width  int
	height int
	format PixelFormat

	planes int
	slices int
}

// NewDecoder creates a decoder for a stream of width x height pictures
// in the given pixel format, described by its 16-byte extradata.
func NewDecoder(width, height int, format PixelFormat, extradata []byte) (*Decoder, error) {
	if !format.valid() {
		return nil, ErrInvalidPixelFormat
	}
	if err := format.validateDimensions(width, height); err != nil {
		return nil, err
	}

	info, err := ParseExtradata(extradata)
	if err != nil {
		return nil, err
	}
	if info.Compression != compHuff {
		return nil, fmt.Errorf("%w: unsupported compression %d", ErrInvalidExtradata, info.Compression)
	}
	if info.Interlaced {
		return nil, fmt.Errorf("%w: interlaced streams are not supported", ErrInvalidExtradata)
	}
	if info.Slices < 1 || info.Slices > height {
		return nil, fmt.Errorf("%w: slice count %d", ErrInvalidExtradata, info.Slices)
	}

	return &Decoder{
		width:  width,
		height: height,
		format: format,
		planes: format.PlaneCount(),
		slices: info.Slices,
	}, nil
}

// Decode decompresses one frame packet.
func (d *Decoder) Decode(pkt []byte) (*Picture, error) {
	if len(pkt) < frameInfoSize {
		return nil, ErrInvalidData
	}

	// The frame information trailer carries the prediction method.
	frameInfo := binary.LittleEndian.Uint32(pkt[len(pkt)-frameInfoSize:])
	framePred := int(frameInfo >> 8 & 0xFF)

	switch framePred {
	case predNone, predLeft, predMedian:
	default:
		return nil, fmt.Errorf("%w: prediction method %d", ErrInvalidData, framePred)
	}

	body := pkt[:len(pkt)-frameInfoSize]

	planes := make([][]byte, d.planes)
	var err error
	for i := 0; i < d.planes; i++ {
		pw, ph := d.planeDimensions(i)
		planes[i], body, err = d.decodePlane(body, pw, ph, framePred)
		if err != nil {
			return nil, fmt.Errorf("utvideo: plane %d: %w", i, err)
		}
	}

	if d.format.Interleaved() {
		return d.interleave(planes), nil
	}

	strides := make([]int, d.planes)
	for i := range strides {
		strides[i], _ = d.planeDimensions(i)
	}
	return &Picture{Planes: planes, Strides: strides}, nil
}

// planeDimensions returns the sample dimensions of coded plane i; for
// interleaved formats every channel plane has the full picture size.
func (d *Decoder) planeDimensions(i int) (int, int) {
	if d.format.Interleaved() {
		return d.width, d.height
	}
	return d.format.planeDimensions(i, d.width, d.height)
}

// decodePlane parses one plane from the packet body and returns the
// restored samples and the remaining body.
func (d *Decoder) decodePlane(body []byte, width, height, framePred int) ([]byte, []byte, error) {
	if len(body) < 256+4*d.slices {
		return nil, nil, ErrInvalidData
	}

	lengths := body[:256]
	body = body[256:]

	// A zero length marks the degenerate single-symbol plane: the
	// offsets are present but no payload follows.
	for sym, l := range lengths {
		if l != 0 {
			continue
		}
		body = body[4*d.slices:]
		plane := make([]byte, width*height)
		for i := range plane {
			plane[i] = byte(sym)
		}
		return d.restore(plane, width, height, framePred), body, nil
	}

	var he [256]huffEntry
	for i := 0; i < 256; i++ {
		he[i].sym = uint8(i)
		he[i].len = lengths[i]
	}
	calculateCodes(&he)

	// Decode table keyed by (length, code).
	codes := make(map[uint64]byte, 256)
	for i := range he {
		codes[uint64(he[i].len)<<32|uint64(he[i].code)] = he[i].sym
	}

	offsets := make([]int, d.slices)
	for i := range offsets {
		offsets[i] = int(binary.LittleEndian.Uint32(body[4*i:]))
	}
	body = body[4*d.slices:]

	payload := offsets[d.slices-1]
	if payload < 0 || payload > len(body) || payload&3 != 0 {
		return nil, nil, ErrInvalidData
	}

	plane := make([]byte, width*height)
	send, prevOff := 0, 0
	for i := 0; i < d.slices; i++ {
		sstart := send
		send = height * (i + 1) / d.slices

		off := offsets[i]
		if off < prevOff || off > payload || off&3 != 0 {
			return nil, nil, ErrInvalidData
		}

		br := bitstream.NewBitReader(body[prevOff:off])
		for s := sstart * width; s < send*width; s++ {
			sym, err := readSymbol(br, codes)
			if err != nil {
				return nil, nil, err
			}
			plane[s] = sym
		}
		prevOff = off
	}

	return d.restore(plane, width, height, framePred), body[payload:], nil
}

// readSymbol reads one Huffman-coded symbol bit by bit.
func readSymbol(br *bitstream.BitReader, codes map[uint64]byte) (byte, error) {
	code := uint64(0)
	for l := uint64(1); l <= 32; l++ {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | uint64(bit)
		if sym, ok := codes[l<<32|code]; ok {
			return sym, nil
		}
	}
	return 0, ErrInvalidData
}

// restore undoes the prediction on a packed residual plane, strip by
// strip with the same slicing the encoder used.
func (d *Decoder) restore(plane []byte, width, height, framePred int) []byte {
	if framePred == predNone {
		return plane
	}

	out := make([]byte, width*height)
	send := 0
	for i := 0; i < d.slices; i++ {
		sstart := send
		send = height * (i + 1) / d.slices
		if send == sstart {
			continue
		}
		switch framePred {
		case predLeft:
			restoreLeft(plane[sstart*width:], out[sstart*width:], width, send-sstart)
		case predMedian:
			restoreMedian(plane[sstart*width:], out[sstart*width:], width, send-sstart)
		}
	}
	return out
}

// interleave reassembles the G, B, R, A channel planes into an
// interleaved picture and undoes the channel mangle.
func (d *Decoder) interleave(planes [][]byte) *Picture {
	step := d.planes
	out := make([]byte, d.width*d.height*step)

	for p := 0; p < step; p++ {
		off := rgbOrder[p]
		src := planes[p]
		for s := 0; s < d.width*d.height; s++ {
			out[s*step+off] = src[s]
		}
	}

	// Undo the channel mangle: R and B were stored as offsets from G.
	for s := 0; s < d.width*d.height; s++ {
		g := out[s*step+1]
		out[s*step] = out[s*step] + g - 0x80
		out[s*step+2] = out[s*step+2] + g - 0x80
	}

	return &Picture{
		Planes:  [][]byte{out},
		Strides: []int{d.width * step},
	}
}
