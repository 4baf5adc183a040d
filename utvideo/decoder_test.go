package utvideo

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func roundTrip(t *testing.T, format PixelFormat, width, height int, params *Parameters, pic *Picture) {
	t.Helper()

	enc, err := NewEncoder(width, height, format, params)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	pkt, err := enc.Encode(pic)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec, err := NewDecoder(width, height, format, enc.Extradata())
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	got, err := dec.Decode(pkt)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	rawSize := 0
	for _, p := range pic.Planes {
		rawSize += len(p)
	}
	t.Logf("%s %dx%d: %d -> %d bytes (%.2fx)",
		format, width, height, rawSize, len(pkt), float64(rawSize)/float64(len(pkt)))

	if format.Interleaved() {
		step := format.PlaneCount()
		for y := 0; y < height; y++ {
			want := pic.Planes[0][y*pic.Strides[0] : y*pic.Strides[0]+width*step]
			have := got.Planes[0][y*got.Strides[0] : y*got.Strides[0]+width*step]
			if !bytes.Equal(have, want) {
				t.Fatalf("row %d differs:\n got %x\nwant %x", y, have, want)
			}
		}
		return
	}

	for i := range pic.Planes {
		if !bytes.Equal(got.Planes[i], pic.Planes[i]) {
			t.Fatalf("plane %d differs", i)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	formats := []PixelFormat{PixFmtRGB24, PixFmtRGBA, PixFmtYUV420P, PixFmtYUV422P}
	predictions := []int{PredictionNone, PredictionLeft, PredictionMedian}

	for _, format := range formats {
		for _, prediction := range predictions {
			width, height := 34, 18
			t.Run(format.String()+"/"+predictionName(prediction), func(t *testing.T) {
				pic := randomPicture(rng, format, width, height)
				params := &Parameters{Prediction: prediction, Slices: 1}
				roundTrip(t, format, width, height, params, pic)
			})
		}
	}
}

func predictionName(p int) string {
	switch p {
	case PredictionNone:
		return "none"
	case PredictionLeft:
		return "left"
	case PredictionMedian:
		return "median"
	default:
		return "unknown"
	}
}

func TestRoundTripOddSizesRGB(t *testing.T) {
	rng := rand.New(rand.NewSource(17))

	for _, dims := range []struct{ w, h int }{{1, 1}, {5, 1}, {1, 7}, {33, 3}} {
		pic := randomPicture(rng, PixFmtRGB24, dims.w, dims.h)
		params := &Parameters{Prediction: PredictionMedian, Slices: 1}
		roundTrip(t, PixFmtRGB24, dims.w, dims.h, params, pic)
	}
}

func TestRoundTripMultiSlice(t *testing.T) {
	rng := rand.New(rand.NewSource(23))

	for _, slices := range []int{2, 3, 4, 7} {
		for _, prediction := range []int{PredictionNone, PredictionLeft, PredictionMedian} {
			pic := randomPicture(rng, PixFmtYUV422P, 32, 28)
			params := &Parameters{Prediction: prediction, Slices: slices}
			roundTrip(t, PixFmtYUV422P, 32, 28, params, pic)
		}
	}
}

func TestRoundTripDegenerate(t *testing.T) {
	pic := uniformRGB24(16, 16, 0x40, 0x40, 0x40)
	params := &Parameters{Prediction: PredictionNone, Slices: 1}
	roundTrip(t, PixFmtRGB24, 16, 16, params, pic)
}

func TestRoundTripPaddedStride(t *testing.T) {
	// Input rows padded beyond the picture width must decode the same.
	rng := rand.New(rand.NewSource(31))
	width, height, stride := 10, 6, 24

	pic := &Picture{Planes: make([][]byte, 3), Strides: make([]int, 3)}
	for i := 0; i < 3; i++ {
		_, ph := PixFmtYUV422P.planeDimensions(i, width, height)
		pic.Strides[i] = stride
		pic.Planes[i] = make([]byte, stride*ph)
		for j := range pic.Planes[i] {
			pic.Planes[i][j] = byte(rng.Intn(256))
		}
	}

	enc, err := NewEncoder(width, height, PixFmtYUV422P, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	pkt, err := enc.Encode(pic)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec, err := NewDecoder(width, height, PixFmtYUV422P, enc.Extradata())
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	got, err := dec.Decode(pkt)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	for i := 0; i < 3; i++ {
		pw, ph := PixFmtYUV422P.planeDimensions(i, width, height)
		for y := 0; y < ph; y++ {
			want := pic.Planes[i][y*stride : y*stride+pw]
			have := got.Planes[i][y*pw : y*pw+pw]
			if !bytes.Equal(have, want) {
				t.Fatalf("plane %d row %d differs", i, y)
			}
		}
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	enc, _ := NewEncoder(8, 8, PixFmtYUV422P, nil)
	pic := randomPicture(rand.New(rand.NewSource(2)), PixFmtYUV422P, 8, 8)
	pkt, err := enc.Encode(pic)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec, _ := NewDecoder(8, 8, PixFmtYUV422P, enc.Extradata())
	if _, err := dec.Decode(pkt[:8]); err == nil {
		t.Error("truncated packet accepted")
	}
	if _, err := dec.Decode(nil); err == nil {
		t.Error("empty packet accepted")
	}
}

func TestDecodeRejectsBadPrediction(t *testing.T) {
	enc, _ := NewEncoder(8, 8, PixFmtYUV422P, nil)
	pic := randomPicture(rand.New(rand.NewSource(3)), PixFmtYUV422P, 8, 8)
	pkt, err := enc.Encode(pic)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Corrupt the trailer to claim gradient prediction.
	pkt[len(pkt)-3] = predGradient

	dec, _ := NewDecoder(8, 8, PixFmtYUV422P, enc.Extradata())
	if _, err := dec.Decode(pkt); !errors.Is(err, ErrInvalidData) {
		t.Errorf("got %v, want ErrInvalidData", err)
	}
}
