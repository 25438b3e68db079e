package render

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Codec transforms markup on its way into and out of the cache.
type Codec interface {
	Encode(src []byte) []byte
	Decode(src []byte) ([]byte, error)
}

type rawCodec struct{}

func (rawCodec) Encode(src []byte) []byte          { return src }
func (rawCodec) Decode(src []byte) ([]byte, error) { return src, nil }

// Raw stores markup as is.
var Raw Codec = rawCodec{}

// ZstdCodec stores markup zstd-compressed, so cache weight is measured in
// compressed bytes.
type ZstdCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstdCodec creates a codec at the given zstd level (1-22).
func NewZstdCodec(level int) (*ZstdCodec, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &ZstdCodec{encoder: encoder, decoder: decoder}, nil
}

// Encode compresses src.
func (c *ZstdCodec) Encode(src []byte) []byte {
	return c.encoder.EncodeAll(src, make([]byte, 0, len(src)))
}

// Decode decompresses src.
func (c *ZstdCodec) Decode(src []byte) ([]byte, error) {
	out, err := c.decoder.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	return out, nil
}

// Close releases the encoder and decoder.
func (c *ZstdCodec) Close() error {
	c.decoder.Close()
	return c.encoder.Close()
}
