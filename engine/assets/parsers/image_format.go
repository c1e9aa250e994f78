package parsers

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/assetparser/engine/core"
)

// ChannelIndex is the abstract identity of a color channel.
type ChannelIndex int

const (
	ChannelR ChannelIndex = iota
	ChannelG
	ChannelB
	ChannelA
	NumChannels
)

// ImageFormat is a channel layout: an ordering and a count of channels.
type ImageFormat uint8

const (
	FormatR ImageFormat = iota
	FormatRG
	FormatGR
	FormatRGB
	FormatBGR
	FormatRGBA
	FormatBGRA
	FormatARGB
	FormatABGR
	NumFormats
)

var formatNames = [NumFormats]string{"R", "RG", "GR", "RGB", "BGR", "RGBA", "BGRA", "ARGB", "ABGR"}

var formatChannelCounts = [NumFormats]int{1, 2, 2, 3, 3, 4, 4, 4, 4}

// defaultChannelValues fills channels missing from the input when the output
// layout is wider (e.g. R -> RGBA).
var defaultChannelValues = [NumChannels]byte{0, 0, 0, 255}

// formatChannelIndices gives, per format, the byte offset inside a pixel of
// each channel identity. Only the first ChannelCount() identities of a
// format are meaningful; e.g. in ARGB channel R sits at offset 1.
var formatChannelIndices = [NumFormats][NumChannels]int{
	//R  G  B  A
	{0, 0, 0, 0}, // R
	{0, 1, 0, 0}, // RG
	{1, 0, 0, 0}, // GR
	{0, 1, 2, 0}, // RGB
	{2, 1, 0, 0}, // BGR
	{0, 1, 2, 3}, // RGBA
	{2, 1, 0, 3}, // BGRA
	{1, 2, 3, 0}, // ARGB
	{3, 2, 1, 0}, // ABGR
}

func (f ImageFormat) Valid() bool {
	return f < NumFormats
}

func (f ImageFormat) String() string {
	if !f.Valid() {
		return fmt.Sprintf("ImageFormat(%d)", uint8(f))
	}
	return formatNames[f]
}

func (f ImageFormat) ChannelCount() int {
	if !f.Valid() {
		return 0
	}
	return formatChannelCounts[f]
}

// ChannelOffset returns the byte offset of channel c inside one pixel, or -1
// when f does not carry c.
func (f ImageFormat) ChannelOffset(c ChannelIndex) int {
	if !f.Valid() || c < 0 || int(c) >= f.ChannelCount() {
		return -1
	}
	return formatChannelIndices[f][c]
}

// ParseImageFormat maps a layout name such as "bgra" to its ImageFormat.
func ParseImageFormat(s string) (ImageFormat, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range formatNames {
		if n == name {
			return ImageFormat(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", core.ErrInvalidFormat, s)
}

// FormatFromChannelCount returns the canonical layout of a decoded image
// with n channels.
func FormatFromChannelCount(n int) (ImageFormat, error) {
	switch n {
	case 1:
		return FormatR, nil
	case 2:
		return FormatRG, nil
	case 3:
		return FormatRGB, nil
	case 4:
		return FormatRGBA, nil
	}
	return 0, fmt.Errorf("%w: unsupported channel count %d", core.ErrInvalidFormat, n)
}

// ConvertPixels rewrites a packed, row-major pixel buffer from one layout to
// another. Channels present in both layouts are moved through each format's
// own offset table, channels only present in the output get their default
// value. Equal layouts are copied verbatim.
func ConvertPixels(in []byte, width, height int, from, to ImageFormat) ([]byte, error) {
	if !from.Valid() || !to.Valid() {
		return nil, fmt.Errorf("%w: cannot convert %s to %s", core.ErrInvalidFormat, from, to)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", core.ErrInvalidFormat, width, height)
	}

	inCount := from.ChannelCount()
	outCount := to.ChannelCount()
	numPixels := width * height
	if len(in) != numPixels*inCount {
		return nil, fmt.Errorf("%w: buffer holds %d bytes, %dx%d %s needs %d",
			core.ErrInvalidFormat, len(in), width, height, from, numPixels*inCount)
	}

	if from == to {
		out := make([]byte, len(in))
		copy(out, in)
		return out, nil
	}

	shared := min(inCount, outCount)

	out := make([]byte, numPixels*outCount)
	for p := 0; p < numPixels; p++ {
		src := in[p*inCount : (p+1)*inCount]
		dst := out[p*outCount : (p+1)*outCount]
		for c := ChannelIndex(0); int(c) < outCount; c++ {
			if int(c) < shared {
				dst[to.ChannelOffset(c)] = src[from.ChannelOffset(c)]
			} else {
				dst[to.ChannelOffset(c)] = defaultChannelValues[c]
			}
		}
	}
	return out, nil
}

// flipRows reverses the row order of a packed buffer in place.
func flipRows(pix []byte, width, height, channels int) {
	stride := width * channels
	tmp := make([]byte, stride)
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
