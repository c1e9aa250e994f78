package parsers

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/assetparser/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDecoder struct {
	img *DecodedImage
	err error
}

func (d fakeDecoder) Decode(path string) (*DecodedImage, error) {
	return d.img, d.err
}

func TestImageParserWritesHeaderAndPixels(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a.img")
	ip := &ImageParser{Decoder: fakeDecoder{img: &DecodedImage{
		Width: 2, Height: 1, Channels: 3,
		Pixels: []byte{10, 20, 30, 40, 50, 60},
	}}}

	require.NoError(t, ip.Parse("a.png", "png", out, core.Config{Endianness: core.LittleEndian}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 1, 0, 3, 10, 20, 30, 40, 50, 60}, data)
}

func TestImageParserBigEndianAndFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a.img")
	ip := &ImageParser{Decoder: fakeDecoder{img: &DecodedImage{
		Width: 1, Height: 1, Channels: 1, Pixels: []byte{200},
	}}}

	cfg := core.Config{Endianness: core.BigEndian, ImageFormat: "RGBA"}
	require.NoError(t, ip.Parse("a.png", "png", out, cfg))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 0, 1, 4, 200, 0, 0, 255}, data)
}

func TestImageParserFlipY(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a.img")
	ip := &ImageParser{Decoder: fakeDecoder{img: &DecodedImage{
		Width: 1, Height: 2, Channels: 1, Pixels: []byte{1, 2},
	}}}

	require.NoError(t, ip.Parse("a.png", "png", out, core.Config{FlipY: true}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 1}, data[5:])
}

func TestImageParserDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a.img")
	ip := &ImageParser{Decoder: fakeDecoder{err: errors.New("corrupt header")}}

	err := ip.Parse("a.png", "png", out, core.Config{})
	require.ErrorIs(t, err, core.ErrExternalTool)
	assert.Contains(t, err.Error(), "corrupt header")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImageParserTooLarge(t *testing.T) {
	ip := &ImageParser{Decoder: fakeDecoder{img: &DecodedImage{Width: 70000, Height: 1, Channels: 1}}}
	err := ip.Parse("a.png", "png", filepath.Join(t.TempDir(), "a.img"), core.Config{})
	assert.ErrorIs(t, err, core.ErrImageTooLarge)
}

func TestImageParserBadConfiguredFormat(t *testing.T) {
	ip := &ImageParser{Decoder: fakeDecoder{img: &DecodedImage{Width: 1, Height: 1, Channels: 1, Pixels: []byte{1}}}}
	err := ip.Parse("a.png", "png", filepath.Join(t.TempDir(), "a.img"), core.Config{ImageFormat: "XYZ"})
	assert.ErrorIs(t, err, core.ErrInvalidFormat)
}

func TestImageParserMissingOutputDirectory(t *testing.T) {
	ip := &ImageParser{Decoder: fakeDecoder{img: &DecodedImage{Width: 1, Height: 1, Channels: 1, Pixels: []byte{1}}}}
	err := ip.Parse("a.png", "png", filepath.Join(t.TempDir(), "missing", "a.img"), core.Config{})
	assert.ErrorIs(t, err, core.ErrIO)
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestStdImageDecoderChannels(t *testing.T) {
	dir := t.TempDir()

	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(0, 0, color.Gray{Y: 7})
	gray.SetGray(1, 0, color.Gray{Y: 9})
	writePNG(t, filepath.Join(dir, "gray.png"), gray)

	nrgba := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	nrgba.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	writePNG(t, filepath.Join(dir, "alpha.png"), nrgba)

	opaque := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	opaque.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	writePNG(t, filepath.Join(dir, "opaque.png"), opaque)

	var dec StdImageDecoder

	img, err := dec.Decode(filepath.Join(dir, "gray.png"))
	require.NoError(t, err)
	assert.Equal(t, &DecodedImage{Width: 2, Height: 1, Channels: 1, Pixels: []byte{7, 9}}, img)

	img, err = dec.Decode(filepath.Join(dir, "alpha.png"))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Channels)
	assert.Equal(t, []byte{1, 2, 3, 4}, img.Pixels)

	img, err = dec.Decode(filepath.Join(dir, "opaque.png"))
	require.NoError(t, err)
	assert.Equal(t, 3, img.Channels)
	assert.Equal(t, []byte{1, 2, 3}, img.Pixels)
}

func TestStdImageDecoderRejectsNonImage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "fake.png")
	require.NoError(t, os.WriteFile(p, []byte("definitely not a png file"), 0o644))

	_, err := StdImageDecoder{}.Decode(p)
	assert.Error(t, err)
}
