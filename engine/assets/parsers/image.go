package parsers

import (
	"fmt"
	"math"

	"github.com/spaghettifunk/assetparser/engine/core"
)

/* ##### FORMAT ##### */
/*
uint16    - Width
uint16    - Height
uint8     - Num channels
uint8[]   - [Width * Height * Num channels] Image bytes (R|RG|RGB|RGBA or the configured layout)
*/
/* ##### ###### ##### */

var imageInputExtensions = []string{"png", "jpg", "jpeg", "bmp", "gif", "tif", "tiff", "webp"}

const imageOutputExtension = "img"

type ImageParser struct {
	Decoder ImageDecoder
}

func NewImageParser() *ImageParser {
	return &ImageParser{Decoder: StdImageDecoder{}}
}

func (ip *ImageParser) InputExtensions() []string {
	return imageInputExtensions
}

func (ip *ImageParser) OutputExtension() string {
	return imageOutputExtension
}

func (ip *ImageParser) Parse(inputFile, inputExtension, outputFile string, cfg core.Config) error {
	img, err := ip.Decoder.Decode(inputFile)
	if err != nil {
		return core.NewExternalToolError("image decoder", inputFile, err)
	}
	if img.Width > math.MaxUint16 || img.Height > math.MaxUint16 {
		return fmt.Errorf("%w: %q is %dx%d", core.ErrImageTooLarge, inputFile, img.Width, img.Height)
	}

	inputFormat, err := FormatFromChannelCount(img.Channels)
	if err != nil {
		return fmt.Errorf("%q: %w", inputFile, err)
	}
	outputFormat := inputFormat
	if cfg.ImageFormat != "" {
		if outputFormat, err = ParseImageFormat(cfg.ImageFormat); err != nil {
			return err
		}
	}

	pixels, err := ConvertPixels(img.Pixels, img.Width, img.Height, inputFormat, outputFormat)
	if err != nil {
		return fmt.Errorf("%q: %w", inputFile, err)
	}
	if cfg.FlipY {
		flipRows(pixels, img.Width, img.Height, outputFormat.ChannelCount())
	}

	return writeOutput(outputFile, func(bw *core.BinaryWriter) error {
		bw.WriteUint16(uint16(img.Width), cfg.Endianness)
		bw.WriteUint16(uint16(img.Height), cfg.Endianness)
		bw.WriteUint8(uint8(outputFormat.ChannelCount()))
		return bw.WriteBytes(pixels)
	})
}
