package utvideo

import (
	"fmt"

	"github.com/cocosip/go-utvideo-codec/utvideo/bitstream"
)

// scratchPadding guards the tail of the scratch buffers against the
// bit writer's final word flush.
const scratchPadding = 32

// unusedCodeSlack bounds how far a coded plane can exceed one byte per
// sample: every unused symbol still takes part in the code tree, which
// can cost up to 7 extra bits for each of at most 255 such symbols.
const unusedCodeSlack = 224

// Encoder turns raw pictures into Ut Video frame packets. Scratch
// buffers are reused across frames; an Encoder must not be shared
// between goroutines.
type Encoder struct {
	width  int
	height int
	format PixelFormat

	planes    int
	framePred int
	slices    int
	flags     uint32

	extradata [ExtradataSize]byte

	sliceBuffer []byte // residual plane of the plane being coded
	sliceBits   []byte // bit-packed codes of the slice being coded
	rgbScratch  []byte // packed copy of interleaved input for the channel mangle
}

// NewEncoder creates an encoder for a stream of width x height
// pictures in the given pixel format. params may be nil for defaults.
func NewEncoder(width, height int, format PixelFormat, params *Parameters) (*Encoder, error) {
	if params == nil {
		params = NewParameters()
	}

	if !format.valid() {
		return nil, ErrInvalidPixelFormat
	}
	if err := format.validateDimensions(width, height); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	slices := params.Slices
	if slices == 0 {
		slices = 1
	}
	if slices > height {
		return nil, ErrInvalidSliceCount
	}

	e := &Encoder{
		width:     width,
		height:    height,
		format:    format,
		planes:    format.PlaneCount(),
		framePred: predOrder[params.Prediction],
		slices:    slices,
	}

	e.flags = uint32(e.slices-1) << 24
	e.flags |= 0 << 11 // bit field to signal interlaced encoding mode
	e.flags |= compHuff

	writeExtradata(e.extradata[:], formatTags[format], e.flags)

	e.sliceBuffer = make([]byte, width*height+scratchPadding)

	return e, nil
}

// Extradata returns the 16-byte stream header decoders rely on.
func (e *Encoder) Extradata() []byte {
	out := make([]byte, ExtradataSize)
	copy(out, e.extradata[:])
	return out
}

// Encode compresses one picture into a frame packet. Every packet is
// an independent keyframe.
func (e *Encoder) Encode(pic *Picture) ([]byte, error) {
	if err := e.validatePicture(pic); err != nil {
		return nil, err
	}

	// Per plane: length table, offset table, payload of at most one byte
	// per sample plus unusedCodeSlack, and up to 4 padding bytes per slice.
	planeBound := 256 + 4*e.slices + e.width*e.height + unusedCodeSlack + 4*e.slices
	pkt := make([]byte, planeBound*e.planes+frameInfoSize)
	pb := bitstream.NewWriter(pkt)

	e.sliceBits = fastGrow(e.sliceBits, e.width*e.height+unusedCodeSlack+scratchPadding)

	var err error
	if e.format.Interleaved() {
		err = e.encodeInterleaved(pic, pb)
	} else {
		err = e.encodePlanar(pic, pb)
	}
	if err != nil {
		return nil, err
	}

	// Frame information trailer carrying the prediction method.
	pb.PutLE32(uint32(e.framePred) << 8)

	if err := pb.Err(); err != nil {
		return nil, fmt.Errorf("utvideo: encode: %w", err)
	}

	return pkt[:pb.Tell()], nil
}

// encodeInterleaved codes an RGB(A) picture: the channels are mangled
// into Ut Video's residual layout on a packed copy of the input, then
// coded one channel plane at a time in G, B, R, A order.
func (e *Encoder) encodeInterleaved(pic *Picture, pb *bitstream.Writer) error {
	step := e.planes
	rowBytes := e.width * step

	e.rgbScratch = fastGrow(e.rgbScratch, rowBytes*e.height+scratchPadding)
	for j := 0; j < e.height; j++ {
		copy(e.rgbScratch[j*rowBytes:(j+1)*rowBytes], pic.Planes[0][j*pic.Strides[0]:])
	}

	mangleRGBPlanes(e.rgbScratch, step, rowBytes, e.width, e.height)

	for i := 0; i < e.planes; i++ {
		if err := e.encodePlane(e.rgbScratch[rgbOrder[i]:], step, rowBytes, e.width, e.height, pb); err != nil {
			return fmt.Errorf("utvideo: plane %d: %w", i, err)
		}
	}
	return nil
}

// encodePlanar codes a YUV picture plane by plane.
func (e *Encoder) encodePlanar(pic *Picture, pb *bitstream.Writer) error {
	for i := 0; i < e.planes; i++ {
		pw, ph := e.format.planeDimensions(i, e.width, e.height)
		if err := e.encodePlane(pic.Planes[i], 1, pic.Strides[i], pw, ph, pb); err != nil {
			return fmt.Errorf("utvideo: plane %d: %w", i, err)
		}
	}
	return nil
}

// encodePlane predicts one plane, builds its code table and writes the
// plane header and slice payloads into the packet.
func (e *Encoder) encodePlane(src []byte, step, stride, width, height int, pb *bitstream.Writer) error {
	var counts [256]uint32

	dst := e.sliceBuffer

	// Do prediction / make planes
	send := 0
	for i := 0; i < e.slices; i++ {
		sstart := send
		send = height * (i + 1) / e.slices
		if send == sstart {
			// Subsampled planes can be shorter than the slice count.
			continue
		}
		switch e.framePred {
		case predNone:
			writePlane(src[sstart*stride:], dst[sstart*width:], step, stride, width, send-sstart)
		case predLeft:
			leftPredict(src[sstart*stride:], dst[sstart*width:], step, stride, width, send-sstart)
		case predMedian:
			medianPredict(src[sstart*stride:], dst[sstart*width:], step, stride, width, send-sstart)
		default:
			return ErrUnsupportedPrediction
		}
	}

	countUsage(dst, width, height, &counts)

	// Special case if only one symbol was used: the plane header
	// alone identifies it and no payload is coded.
	for symbol := 0; symbol < 256; symbol++ {
		if counts[symbol] == 0 {
			continue
		}
		if counts[symbol] == uint32(width*height) {
			for i := 0; i < 256; i++ {
				if i == symbol {
					pb.PutByte(0)
				} else {
					pb.PutByte(0xFF)
				}
			}
			for i := 0; i < e.slices; i++ {
				pb.PutLE32(0)
			}
			return pb.Err()
		}
		break
	}

	var lengths [256]uint8
	calculateCodeLengths(&lengths, &counts)

	// Plane header: the 256 code lengths in symbol order. The slice
	// end offsets follow and are back-filled while coding.
	var he [256]huffEntry
	for i := 0; i < 256; i++ {
		pb.PutByte(lengths[i])

		he[i].len = lengths[i]
		he[i].sym = uint8(i)
	}

	calculateCodes(&he)

	offset, sliceLen := 0, 0
	send = 0
	for i := 0; i < e.slices; i++ {
		sstart := send
		send = height * (i + 1) / e.slices

		// Bit-pack the strip, then convert its bit count to bytes.
		bits, err := writeHuffCodes(dst[sstart*width:], e.sliceBits, width, send-sstart, &he)
		if err != nil {
			return err
		}
		offset += bits >> 3
		sliceLen = offset - sliceLen

		// The payload is stored as little-endian 32-bit words.
		bitstream.SwapWords32(e.sliceBits, sliceLen>>2)

		// Write the cumulative end offset, then the slice payload
		// past the remaining offset slots, then seek back.
		pb.PutLE32(uint32(offset))
		pb.Skip(4*(e.slices-i-1) + offset - sliceLen)
		pb.PutBytes(e.sliceBits[:sliceLen])
		pb.Skip(-4*(e.slices-i-1) - offset)

		sliceLen = offset
	}

	// Leave the cursor at the end of the written slices.
	pb.Skip(offset)

	return pb.Err()
}

// writeHuffCodes bit-packs one strip of residuals with the given code
// table, padded to a 32-bit boundary. It returns the number of bits
// written including the padding.
func writeHuffCodes(src, dst []byte, width, height int, he *[256]huffEntry) (int, error) {
	bw := bitstream.NewBitWriter(dst)

	for i := 0; i < width*height; i++ {
		entry := &he[src[i]]
		bw.Put(entry.code, int(entry.len))
	}

	bw.PadTo32()
	count := bw.BitCount()
	bw.Flush()

	if err := bw.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// validatePicture checks that the picture geometry matches the stream.
func (e *Encoder) validatePicture(pic *Picture) error {
	if pic == nil {
		return ErrInvalidPicture
	}

	if e.format.Interleaved() {
		step := e.planes
		if len(pic.Planes) < 1 || len(pic.Strides) < 1 {
			return ErrInvalidPicture
		}
		if pic.Strides[0] < e.width*step {
			return ErrInvalidPicture
		}
		if len(pic.Planes[0]) < (e.height-1)*pic.Strides[0]+e.width*step {
			return ErrInvalidPicture
		}
		return nil
	}

	if len(pic.Planes) < e.planes || len(pic.Strides) < e.planes {
		return ErrInvalidPicture
	}
	for i := 0; i < e.planes; i++ {
		pw, ph := e.format.planeDimensions(i, e.width, e.height)
		if pic.Strides[i] < pw {
			return ErrInvalidPicture
		}
		if len(pic.Planes[i]) < (ph-1)*pic.Strides[i]+pw {
			return ErrInvalidPicture
		}
	}
	return nil
}

// fastGrow resizes buf to need bytes, at least doubling the backing
// array when growth is required. Capacity never shrinks mid-stream.
func fastGrow(buf []byte, need int) []byte {
	if cap(buf) >= need {
		return buf[:need]
	}
	grown := 2 * cap(buf)
	if grown < need {
		grown = need
	}
	return make([]byte, need, grown)
}
