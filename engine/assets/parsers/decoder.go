package parsers

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodedImage holds tightly packed 8-bit pixels in the layout implied by
// Channels (1 R, 2 RG, 3 RGB, 4 RGBA).
type DecodedImage struct {
	Width    int
	Height   int
	Channels int
	Pixels   []byte
}

// ImageDecoder turns an image file into raw pixels.
type ImageDecoder interface {
	Decode(path string) (*DecodedImage, error)
}

// StdImageDecoder decodes through the image package registry (png, jpeg,
// gif, bmp, tiff, webp) and keeps the source's natural channel count.
type StdImageDecoder struct{}

func (StdImageDecoder) Decode(path string) (*DecodedImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := bufio.NewReader(file)
	head, _ := r.Peek(262)
	if len(head) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	if !filetype.IsImage(head) {
		kind, _ := filetype.Match(head)
		return nil, fmt.Errorf("not an image (detected %q)", kind.MIME.Value)
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return pixelsFromImage(img), nil
}

func pixelsFromImage(img image.Image) *DecodedImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &DecodedImage{Width: w, Height: h}

	switch src := img.(type) {
	case *image.Gray:
		out.Channels = 1
		out.Pixels = make([]byte, w*h)
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w]
			copy(out.Pixels[y*w:], row)
		}
		return out
	case *image.Gray16:
		out.Channels = 1
		out.Pixels = make([]byte, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pixels[y*w+x] = src.Pix[y*src.Stride+x*2]
			}
		}
		return out
	case *image.NRGBA:
		out.Channels = 4
		out.Pixels = make([]byte, w*h*4)
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w*4]
			copy(out.Pixels[y*w*4:], row)
		}
		return out
	}

	out.Channels = 4
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		out.Channels = 3
	}
	out.Pixels = make([]byte, w*h*out.Channels)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.Pixels[i] = c.R
			out.Pixels[i+1] = c.G
			out.Pixels[i+2] = c.B
			if out.Channels == 4 {
				out.Pixels[i+3] = c.A
			}
			i += out.Channels
		}
	}
	return out
}
