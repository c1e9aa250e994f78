package parsers

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/assetparser/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFontParserExtensions(t *testing.T) {
	fp := NewFontParser()
	assert.Equal(t, []string{"fnt"}, fp.InputExtensions())
	assert.Equal(t, "fnb", fp.OutputExtension())
}

func TestFontParserMissingDescriptor(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "missing.fnb")
	err := NewFontParser().Parse(filepath.Join(dir, "missing.fnt"), "fnt", out, core.Config{})
	require.ErrorIs(t, err, core.ErrExternalTool)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

// testDescriptor lists its chars and kernings out of order and references a
// TGA page that does not exist next to it.
const testDescriptor = `info face="Test" size=-16 bold=0 italic=0 padding=0,0,0,0 spacing=1,1
common lineHeight=18 base=14 scaleW=64 scaleH=32 pages=1 packed=0
page id=0 file="font_0.tga"
chars count=2
char id=66 x=10 y=0 width=5 height=7 xoffset=-1 yoffset=2 xadvance=6 page=0 chnl=15
char id=65 x=0 y=0 width=6 height=7 xoffset=0 yoffset=2 xadvance=7 page=0 chnl=15
kernings count=2
kerning first=66 second=65 amount=-1
kerning first=65 second=66 amount=1
`

func expectedFontBinary(order binary.AppendByteOrder) []byte {
	u16 := func(b []byte, v ...uint16) []byte {
		for _, x := range v {
			b = order.AppendUint16(b, x)
		}
		return b
	}
	u32 := func(b []byte, v ...uint32) []byte {
		for _, x := range v {
			b = order.AppendUint32(b, x)
		}
		return b
	}

	// size, line height, baseline, atlas width, atlas height
	b := u16(nil, 0xFFF0, 18, 14, 64, 32)
	b = append(b, 4)
	b = append(b, "Test"...)
	b = append(b, 1, 0)
	b = u16(b, 10)
	b = append(b, "font_0.tga"...)

	b = u32(b, 2)
	b = u32(b, 'A')
	b = u16(b, 0, 0, 6, 7, 0, 2, 7)
	b = append(b, 0)
	b = u32(b, 'B')
	b = u16(b, 10, 0, 5, 7, 0xFFFF, 2, 6)
	b = append(b, 0)

	b = u32(b, 2)
	b = u32(b, 'A', 'B')
	b = u16(b, 1)
	b = u32(b, 'B', 'A')
	b = u16(b, 0xFFFF)
	return b
}

func TestFontParserWritesBinaryLayout(t *testing.T) {
	tests := []struct {
		name   string
		endian core.Endianness
		order  binary.AppendByteOrder
	}{
		{name: "little endian", endian: core.LittleEndian, order: binary.LittleEndian},
		{name: "big endian", endian: core.BigEndian, order: binary.BigEndian},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "font.fnt")
			out := filepath.Join(dir, "font.fnb")
			require.NoError(t, os.WriteFile(in, []byte(testDescriptor), 0o644))

			err := NewFontParser().Parse(in, "fnt", out, core.Config{Endianness: tt.endian})
			require.NoError(t, err)

			got, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, expectedFontBinary(tt.order), got)
		})
	}
}
