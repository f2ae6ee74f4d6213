package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png" // Register PNG decoder
	"log/slog"

	"github.com/gen2brain/webp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Compression defaults.
const (
	DefaultMaxDimension = 720
	DefaultMaxBytes     = 250 * 1024

	// MaxSourcePixels caps the declared canvas of an upload. Decoding
	// allocates the full canvas, so larger headers are refused up front.
	MaxSourcePixels = 50_000_000

	startQuality = 85
	minQuality   = 40
	qualityStep  = 10
)

// ErrUnsupportedImage is returned when the upload cannot be decoded as an image.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Compressed is the result of compressing one upload.
type Compressed struct {
	BlurHash string
	Data     []byte
	Width    int
	Height   int
	Quality  int
}

// Compressor downsizes uploads to fit a dimension and byte budget.
type Compressor struct {
	logger       *slog.Logger
	maxDimension int
	maxBytes     int
}

// NewCompressor creates a Compressor. Non-positive limits take the defaults.
func NewCompressor(maxDimension, maxBytes int, logger *slog.Logger) *Compressor {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compressor{logger: logger, maxDimension: maxDimension, maxBytes: maxBytes}
}

// Compress decodes JPEG, PNG, GIF or WebP data, scales it so the longer side is
// at most the max dimension, and re-encodes it as lossy WebP. Quality steps down
// until the output fits the byte budget; if even the lowest quality is too large
// the smallest attempt is returned.
func (c *Compressor) Compress(data []byte) (*Compressed, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("%w: %s canvas %dx%d exceeds %d pixels",
			ErrUnsupportedImage, format, cfg.Width, cfg.Height, MaxSourcePixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}

	img := c.scale(src)
	b := img.Bounds()

	var out []byte
	quality := startQuality
	for ; ; quality -= qualityStep {
		var buf bytes.Buffer
		if err := webp.Encode(&buf, img, webp.Options{Quality: quality, Method: 4}); err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
		out = buf.Bytes()
		if len(out) <= c.maxBytes || quality-qualityStep < minQuality {
			break
		}
	}

	hash, err := ComputeBlurHash(img)
	if err != nil {
		c.logger.Warn("blurhash failed", slog.String("error", err.Error()))
	}

	c.logger.Debug("compressed image",
		slog.String("format", format),
		slog.Int("in_bytes", len(data)),
		slog.Int("out_bytes", len(out)),
		slog.Int("quality", quality),
	)

	return &Compressed{
		BlurHash: hash,
		Data:     out,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Quality:  quality,
	}, nil
}

// scale returns an RGBA copy of src that fits the max dimension.
// Alpha is kept; WebP carries it through.
func (c *Compressor) scale(src image.Image) *image.RGBA {
	sb := src.Bounds()
	w, h := fit(sb.Dx(), sb.Dy(), c.maxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst
}
