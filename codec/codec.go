package codec

// Codec is the universal interface for all video codecs
type Codec interface {
	// Encode encodes one raw picture into a compressed packet
	Encode(params EncodeParams) (*EncodeResult, error)

	// Decode decodes one compressed packet back into raw planes
	Decode(params DecodeParams) (*DecodeResult, error)

	// FourCC returns the four-character code identifying the bitstream
	FourCC() string

	// Name returns a human-readable name
	Name() string
}

// EncodeParams contains parameters for encoding one picture
type EncodeParams struct {
	Planes  [][]byte // Raw pixel planes; interleaved formats use Planes[0]
	Strides []int    // Bytes per row for each plane
	Width   int      // Picture width
	Height  int      // Picture height
	Options Options  // Codec-specific options
}

// Options is an interface for codec-specific encoding options
type Options interface {
	// Validate checks if the options are valid
	Validate() error
}

// EncodeResult contains the result of encoding one picture
type EncodeResult struct {
	Packet    []byte // Compressed packet
	Extradata []byte // Container-level header, identical for every packet of a stream
	Keyframe  bool   // Whether the packet can be decoded on its own
}

// DecodeParams contains parameters for decoding one packet
type DecodeParams struct {
	Data      []byte // Compressed packet
	Extradata []byte // Container-level header emitted by the encoder
	Width     int    // Picture width
	Height    int    // Picture height
}

// DecodeResult contains the result of decoding
type DecodeResult struct {
	Planes  [][]byte // Decoded pixel planes; interleaved formats use Planes[0]
	Strides []int    // Bytes per row for each plane
	Width   int      // Picture width
	Height  int      // Picture height
}
