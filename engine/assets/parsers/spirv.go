package parsers

import (
	"fmt"

	"github.com/spaghettifunk/assetparser/engine/core"
)

// bytesToBytecode packs little-endian SPIR-V bytes into 32-bit words.
func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("spir-v module size %d is not a multiple of 4", len(b))
	}
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = uint32(b[byteIndex]) |
			uint32(b[byteIndex+1])<<8 |
			uint32(b[byteIndex+2])<<16 |
			uint32(b[byteIndex+3])<<24
	}
	return byteCode, nil
}

// writeBytecode writes every word in the run's byte order.
func writeBytecode(outputFile string, words []uint32, order core.Endianness) error {
	return writeOutput(outputFile, func(bw *core.BinaryWriter) error {
		for _, w := range words {
			if err := bw.WriteUint32(w, order); err != nil {
				return err
			}
		}
		return nil
	})
}
