package parsers

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/assetparser/engine/core"
)

/* ##### FORMAT ##### */
/*
uint16  - Size
uint16  - Line height
uint16  - Baseline
uint16  - Atlas width
uint16  - Atlas height
uint8   - Face name length, followed by the face name
uint8   - Page count, followed by {uint8 id, uint16 length, file name} per page
uint32  - Glyph count, followed by {uint32 codepoint, uint16 x, y, width, height,
          int16 x offset, y offset, x advance, uint8 page} per glyph
uint32  - Kerning count, followed by {uint32 first, uint32 second, int16 amount}
*/
/* ##### ###### ##### */

type fontGlyph struct {
	codepoint              uint32
	x, y, width, height    uint16
	xOffset, yOffset, xAdv int16
	page                   uint8
}

type fontKerning struct {
	first, second uint32
	amount        int16
}

type fontPage struct {
	id   uint8
	file string
}

// FontParser converts AngelCode BMFont descriptors. The page images next to
// the descriptor are converted on their own by the image parser.
type FontParser struct{}

func NewFontParser() *FontParser {
	return &FontParser{}
}

func (fp *FontParser) InputExtensions() []string {
	return []string{"fnt"}
}

func (fp *FontParser) OutputExtension() string {
	return "fnb"
}

func (fp *FontParser) Parse(inputFile, inputExtension, outputFile string, cfg core.Config) error {
	desc, err := bmfont.LoadDescriptor(inputFile)
	if err != nil {
		return core.NewExternalToolError("bmfont", inputFile, err)
	}

	face := desc.Info.Face
	if len(face) > 255 {
		face = face[:255]
	}

	pages := make([]fontPage, 0, len(desc.Pages))
	for _, p := range desc.Pages {
		if len(p.File) > 65535 {
			return fmt.Errorf("%w: page file name too long in %q", core.ErrInvalidFormat, inputFile)
		}
		pages = append(pages, fontPage{id: uint8(p.ID), file: p.File})
	}
	if len(pages) > 255 {
		return fmt.Errorf("%w: %q has %d pages", core.ErrInvalidFormat, inputFile, len(pages))
	}
	slices.SortFunc(pages, func(a, b fontPage) int { return cmp.Compare(a.id, b.id) })

	glyphs := make([]fontGlyph, 0, len(desc.Chars))
	for _, g := range desc.Chars {
		glyphs = append(glyphs, fontGlyph{
			codepoint: uint32(g.ID),
			x:         uint16(g.X),
			y:         uint16(g.Y),
			width:     uint16(g.Width),
			height:    uint16(g.Height),
			xOffset:   int16(g.XOffset),
			yOffset:   int16(g.YOffset),
			xAdv:      int16(g.XAdvance),
			page:      uint8(g.Page),
		})
	}
	slices.SortFunc(glyphs, func(a, b fontGlyph) int { return cmp.Compare(a.codepoint, b.codepoint) })

	kernings := make([]fontKerning, 0, len(desc.Kerning))
	for p, k := range desc.Kerning {
		kernings = append(kernings, fontKerning{
			first:  uint32(p.First),
			second: uint32(p.Second),
			amount: int16(k.Amount),
		})
	}
	slices.SortFunc(kernings, func(a, b fontKerning) int {
		if c := cmp.Compare(a.first, b.first); c != 0 {
			return c
		}
		return cmp.Compare(a.second, b.second)
	})

	order := cfg.Endianness
	return writeOutput(outputFile, func(bw *core.BinaryWriter) error {
		bw.WriteUint16(uint16(int16(desc.Info.Size)), order)
		bw.WriteUint16(uint16(desc.Common.LineHeight), order)
		bw.WriteUint16(uint16(desc.Common.Base), order)
		bw.WriteUint16(uint16(desc.Common.ScaleW), order)
		bw.WriteUint16(uint16(desc.Common.ScaleH), order)

		bw.WriteUint8(uint8(len(face)))
		bw.WriteBytes([]byte(face))

		bw.WriteUint8(uint8(len(pages)))
		for _, p := range pages {
			bw.WriteUint8(p.id)
			bw.WriteUint16(uint16(len(p.file)), order)
			bw.WriteBytes([]byte(p.file))
		}

		bw.WriteUint32(uint32(len(glyphs)), order)
		for _, g := range glyphs {
			bw.WriteUint32(g.codepoint, order)
			bw.WriteUint16(g.x, order)
			bw.WriteUint16(g.y, order)
			bw.WriteUint16(g.width, order)
			bw.WriteUint16(g.height, order)
			bw.WriteUint16(uint16(g.xOffset), order)
			bw.WriteUint16(uint16(g.yOffset), order)
			bw.WriteUint16(uint16(g.xAdv), order)
			bw.WriteUint8(g.page)
		}

		bw.WriteUint32(uint32(len(kernings)), order)
		for _, k := range kernings {
			bw.WriteUint32(k.first, order)
			bw.WriteUint32(k.second, order)
			bw.WriteUint16(uint16(k.amount), order)
		}
		return bw.Err()
	})
}
