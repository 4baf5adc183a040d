package utvideo

import "errors"

var (
	// ErrInvalidPixelFormat is returned for a pixel format outside the four supported layouts
	ErrInvalidPixelFormat = errors.New("utvideo: unsupported pixel format")

	// ErrInvalidDimensions is returned when subsampling constraints are violated
	ErrInvalidDimensions = errors.New("utvideo: invalid image dimensions")

	// ErrUnsupportedPrediction is returned for prediction options out of range or naming modes the encoder does not implement
	ErrUnsupportedPrediction = errors.New("utvideo: unsupported prediction method")

	// ErrInvalidSliceCount is returned when the slice count is negative, above 256 or above the picture height
	ErrInvalidSliceCount = errors.New("utvideo: invalid slice count")

	// ErrInvalidPicture is returned when picture planes or strides do not match the format
	ErrInvalidPicture = errors.New("utvideo: invalid picture")

	// ErrInvalidData is returned when a packet cannot be parsed
	ErrInvalidData = errors.New("utvideo: invalid bitstream data")

	// ErrInvalidExtradata is returned when the stream header cannot be parsed
	ErrInvalidExtradata = errors.New("utvideo: invalid extradata")
)
