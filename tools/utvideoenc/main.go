// Command utvideoenc compresses still frames (PNG or BMP) into a raw
// Ut Video stream: the 16-byte stream header followed by one
// length-prefixed packet per input frame.
package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	_ "image/png"

	"github.com/google/renameio"
	_ "golang.org/x/image/bmp"

	"github.com/cocosip/go-utvideo-codec/utvideo"
)

var (
	output     = flag.String("o", "out.utv", "output file")
	formatName = flag.String("format", "yuv420p", "pixel format: rgb24, rgba, yuv420p, yuv422p")
	prediction = flag.String("pred", "left", "prediction: none, left, median")
	slices     = flag.Int("slices", 1, "horizontal slices per plane")
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatal("usage: utvideoenc [flags] frame.png [frame.png ...]")
	}

	format, err := parseFormat(*formatName)
	if err != nil {
		log.Fatal(err)
	}
	pred, err := parsePrediction(*prediction)
	if err != nil {
		log.Fatal(err)
	}

	var (
		enc    *utvideo.Encoder
		stream bytes.Buffer
		width  int
		height int
	)

	for _, name := range flag.Args() {
		img, err := loadImage(name)
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}

		if enc == nil {
			width = img.Bounds().Dx()
			height = img.Bounds().Dy()
			params := &utvideo.Parameters{Prediction: pred, Slices: *slices}
			enc, err = utvideo.NewEncoder(width, height, format, params)
			if err != nil {
				log.Fatal(err)
			}
			stream.Write(enc.Extradata())
		} else if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
			log.Fatalf("%s: frame size %dx%d does not match stream %dx%d",
				name, img.Bounds().Dx(), img.Bounds().Dy(), width, height)
		}

		pic, err := toPicture(img, format)
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}

		pkt, err := enc.Encode(pic)
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}

		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], uint32(len(pkt)))
		stream.Write(size[:])
		stream.Write(pkt)

		log.Printf("%s: %d bytes", name, len(pkt))
	}

	if err := renameio.WriteFile(*output, stream.Bytes(), 0644); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%d frames, %d bytes)", *output, flag.NArg(), stream.Len())
}

func parseFormat(name string) (utvideo.PixelFormat, error) {
	switch name {
	case "rgb24":
		return utvideo.PixFmtRGB24, nil
	case "rgba":
		return utvideo.PixFmtRGBA, nil
	case "yuv420p":
		return utvideo.PixFmtYUV420P, nil
	case "yuv422p":
		return utvideo.PixFmtYUV422P, nil
	default:
		return 0, fmt.Errorf("unknown pixel format %q", name)
	}
}

func parsePrediction(name string) (int, error) {
	switch name {
	case "none":
		return utvideo.PredictionNone, nil
	case "left":
		return utvideo.PredictionLeft, nil
	case "median":
		return utvideo.PredictionMedian, nil
	default:
		return 0, fmt.Errorf("unknown prediction %q", name)
	}
}

func loadImage(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// toPicture converts a decoded image into the raw plane layout the
// encoder expects.
func toPicture(img image.Image, format utvideo.PixelFormat) (*utvideo.Picture, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch format {
	case utvideo.PixFmtRGB24, utvideo.PixFmtRGBA:
		step := 3
		if format == utvideo.PixFmtRGBA {
			step = 4
		}
		data := make([]byte, w*h*step)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bb, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				p := (y*w + x) * step
				data[p] = byte(r >> 8)
				data[p+1] = byte(g >> 8)
				data[p+2] = byte(bb >> 8)
				if step == 4 {
					data[p+3] = byte(a >> 8)
				}
			}
		}
		return &utvideo.Picture{Planes: [][]byte{data}, Strides: []int{w * step}}, nil

	case utvideo.PixFmtYUV420P, utvideo.PixFmtYUV422P:
		sub := image.YCbCrSubsampleRatio422
		if format == utvideo.PixFmtYUV420P {
			sub = image.YCbCrSubsampleRatio420
		}
		ycbcr := image.NewYCbCr(image.Rect(0, 0, w, h), sub)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.YCbCrModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.YCbCr)
				ycbcr.Y[ycbcr.YOffset(x, y)] = c.Y
				ci := ycbcr.COffset(x, y)
				ycbcr.Cb[ci] = c.Cb
				ycbcr.Cr[ci] = c.Cr
			}
		}
		return &utvideo.Picture{
			Planes:  [][]byte{ycbcr.Y, ycbcr.Cb, ycbcr.Cr},
			Strides: []int{ycbcr.YStride, ycbcr.CStride, ycbcr.CStride},
		}, nil

	default:
		return nil, fmt.Errorf("unknown pixel format %v", format)
	}
}
