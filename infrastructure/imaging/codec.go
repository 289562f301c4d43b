// Package imaging shrinks uploaded pictures into inline JPEG data URIs small
// enough to live inside the stored document.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"strings"
	"sync"

	"forever-us/application/ports"
	pkgerrors "forever-us/pkg/errors"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DataURIPrefix starts every value returned by Downscale
const DataURIPrefix = "data:image/jpeg;base64,"

// DefaultMaxPixels bounds both the decoded source and the scaled output.
// At four bytes per pixel it keeps one decode near 100 MiB.
const DefaultMaxPixels = 25_000_000

// UpscalePolicy decides what happens to images narrower than the target width
type UpscalePolicy string

const (
	// ScaleDownOnly leaves narrow images at their own width
	ScaleDownOnly UpscalePolicy = "scale_down_only"
	// ScaleToFit always scales to the target width, enlarging narrow images
	ScaleToFit UpscalePolicy = "scale_to_fit"
)

// ParseUpscalePolicy maps a config value to a policy
func ParseUpscalePolicy(s string) (UpscalePolicy, error) {
	switch UpscalePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScaleDownOnly:
		return ScaleDownOnly, nil
	case ScaleToFit:
		return ScaleToFit, nil
	default:
		return "", fmt.Errorf("unknown upscale policy %q", s)
	}
}

// Codec decodes JPEG, PNG, GIF, WebP and BMP input and re-encodes it as JPEG
type Codec struct {
	mu        sync.RWMutex
	policy    UpscalePolicy
	maxPixels int
	logger    *zap.Logger
}

var _ ports.ImageCodec = (*Codec)(nil)

// NewCodec creates a codec with the given upscale policy
func NewCodec(policy UpscalePolicy, logger *zap.Logger) *Codec {
	if policy == "" {
		policy = ScaleDownOnly
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{policy: policy, maxPixels: DefaultMaxPixels, logger: logger}
}

// Policy returns the codec's upscale policy
func (c *Codec) Policy() UpscalePolicy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policy
}

// SetPolicy swaps the upscale policy used by later calls
func (c *Codec) SetPolicy(policy UpscalePolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy = policy
}

// MaxPixels returns the pixel budget for source and output images
func (c *Codec) MaxPixels() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxPixels
}

// SetMaxPixels changes the pixel budget; non-positive values restore the default
func (c *Codec) SetMaxPixels(n int) {
	if n <= 0 {
		n = DefaultMaxPixels
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxPixels = n
}

// Downscale scales data to maxWidth keeping the aspect ratio and returns it
// as a base64 JPEG data URI encoded at quality (0,1].
func (c *Codec) Downscale(ctx context.Context, data []byte, maxWidth int, quality float64) (string, error) {
	if maxWidth <= 0 {
		return "", pkgerrors.NewValidationError("max width must be positive").
			WithCode(pkgerrors.CodeInvalidImageParams)
	}
	if math.IsNaN(quality) || quality <= 0 || quality > 1 {
		return "", pkgerrors.NewValidationError("quality must be in the range (0, 1]").
			WithCode(pkgerrors.CodeInvalidImageParams)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	policy, budget := c.limits()

	// Header only; the pixel data is not touched until the size is known
	header, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", pkgerrors.NewImageDecodeError(err)
	}
	if header.Width <= 0 || header.Height <= 0 {
		return "", pkgerrors.NewImageDecodeError(fmt.Errorf("image has no pixels"))
	}
	if exceedsBudget(header.Width, header.Height, budget) {
		return "", pkgerrors.NewImageTooLargeError(header.Width, header.Height, budget)
	}
	width, height, ok := targetSize(policy, header.Width, header.Height, maxWidth, budget)
	if !ok {
		return "", pkgerrors.NewImageTooLargeError(maxWidth, height, budget)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", pkgerrors.NewImageDecodeError(err)
	}
	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return "", pkgerrors.NewImageDecodeError(fmt.Errorf("image has no pixels"))
	}
	if bounds.Dx() != header.Width || bounds.Dy() != header.Height {
		return "", pkgerrors.NewImageDecodeError(fmt.Errorf("decoded size %dx%d differs from header %dx%d",
			bounds.Dx(), bounds.Dy(), header.Width, header.Height))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// JPEG has no alpha; transparent areas become white
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return "", pkgerrors.NewInternalError("failed to encode jpeg").WithCause(err)
	}

	c.logger.Debug("Image downscaled",
		zap.String("format", format),
		zap.Int("srcWidth", bounds.Dx()),
		zap.Int("srcHeight", bounds.Dy()),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("bytes", buf.Len()),
	)

	return DataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (c *Codec) limits() (UpscalePolicy, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policy, c.maxPixels
}

// targetSize returns the output dimensions; ok is false when they would
// exceed budget, in which case height is the rejected height clamped to
// the int range.
func targetSize(policy UpscalePolicy, srcWidth, srcHeight, maxWidth, budget int) (width, height int, ok bool) {
	if policy == ScaleDownOnly && srcWidth <= maxWidth {
		return srcWidth, srcHeight, !exceedsBudget(srcWidth, srcHeight, budget)
	}
	h := math.Round(float64(srcHeight) * float64(maxWidth) / float64(srcWidth))
	if h < 1 {
		h = 1
	}
	if h > float64(budget) {
		return maxWidth, int(math.Min(h, math.MaxInt32)), false
	}
	height = int(h)
	return maxWidth, height, !exceedsBudget(maxWidth, height, budget)
}

// exceedsBudget reports whether width*height > budget without overflowing
func exceedsBudget(width, height, budget int) bool {
	return width > budget/height
}

func jpegQuality(q float64) int {
	v := int(math.Round(q * 100))
	if v < 1 {
		v = 1
	}
	if v > 100 {
		v = 100
	}
	return v
}

// DecodeDataURI returns the image bytes of a data URI produced by Downscale
func DecodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, DataURIPrefix) {
		return nil, fmt.Errorf("not a jpeg data uri")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, DataURIPrefix))
}
