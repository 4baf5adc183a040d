package utvideo

import (
	"fmt"

	"github.com/cocosip/go-utvideo-codec/codec"
)

var _ codec.Codec = (*Codec)(nil)

// Codec adapts one Ut Video pixel-format variant to the generic codec
// interface. Each of the four FourCC variants registers itself with
// the global registry.
type Codec struct {
	format PixelFormat
}

// NewCodec creates the codec for the given pixel format.
func NewCodec(format PixelFormat) *Codec {
	return &Codec{format: format}
}

// Name returns the codec name, e.g. "utvideo-rgb24".
func (c *Codec) Name() string {
	return "utvideo-" + c.format.String()
}

// FourCC returns the bitstream identifier of this variant.
func (c *Codec) FourCC() string {
	return c.format.FourCC()
}

// Encode compresses one picture into a frame packet.
func (c *Codec) Encode(params codec.EncodeParams) (*codec.EncodeResult, error) {
	var utParams *Parameters
	if params.Options != nil {
		p, ok := params.Options.(*Parameters)
		if !ok {
			return nil, codec.ErrInvalidParameter
		}
		utParams = p
	}

	enc, err := NewEncoder(params.Width, params.Height, c.format, utParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), err)
	}

	pkt, err := enc.Encode(&Picture{Planes: params.Planes, Strides: params.Strides})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), err)
	}

	return &codec.EncodeResult{
		Packet:    pkt,
		Extradata: enc.Extradata(),
		Keyframe:  true,
	}, nil
}

// Decode decompresses one frame packet.
func (c *Codec) Decode(params codec.DecodeParams) (*codec.DecodeResult, error) {
	dec, err := NewDecoder(params.Width, params.Height, c.format, params.Extradata)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), err)
	}

	pic, err := dec.Decode(params.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), err)
	}

	return &codec.DecodeResult{
		Planes:  pic.Planes,
		Strides: pic.Strides,
		Width:   params.Width,
		Height:  params.Height,
	}, nil
}

func init() {
	codec.Register(NewCodec(PixFmtRGB24))
	codec.Register(NewCodec(PixFmtRGBA))
	codec.Register(NewCodec(PixFmtYUV420P))
	codec.Register(NewCodec(PixFmtYUV422P))
}
