package imaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	pkgerrors "forever-us/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedSize(t *testing.T, uri string) (int, int) {
	t.Helper()
	raw, err := DecodeDataURI(uri)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestDownscale_WideImage(t *testing.T) {
	codec := NewCodec(ScaleDownOnly, nil)
	data := encodePNG(t, gradient(2000, 1500))

	uri, err := codec.Downscale(context.Background(), data, 1200, 0.8)
	require.NoError(t, err)

	assert.True(t, len(uri) > len(DataURIPrefix))
	w, h := decodedSize(t, uri)
	assert.Equal(t, 1200, w)
	assert.Equal(t, 900, h)
}

func TestDownscale_UpscalePolicy(t *testing.T) {
	data := encodePNG(t, gradient(400, 300))

	tests := []struct {
		policy UpscalePolicy
		wantW  int
		wantH  int
	}{
		{policy: ScaleDownOnly, wantW: 400, wantH: 300},
		{policy: ScaleToFit, wantW: 1200, wantH: 900},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			uri, err := NewCodec(tt.policy, nil).Downscale(context.Background(), data, 1200, 0.8)
			require.NoError(t, err)
			w, h := decodedSize(t, uri)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestDownscale_InputFormats(t *testing.T) {
	src := gradient(64, 32)
	encoders := map[string]func(*bytes.Buffer) error{
		"jpeg": func(b *bytes.Buffer) error { return jpeg.Encode(b, src, nil) },
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"gif":  func(b *bytes.Buffer) error { return gif.Encode(b, src, nil) },
		"bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, src) },
	}

	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encode(&buf))

			uri, err := NewCodec(ScaleToFit, nil).Downscale(context.Background(), buf.Bytes(), 32, 0.5)
			require.NoError(t, err)
			w, h := decodedSize(t, uri)
			assert.Equal(t, 32, w)
			assert.Equal(t, 16, h)
		})
	}
}

func TestDownscale_TransparentBecomesWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	uri, err := NewCodec(ScaleDownOnly, nil).Downscale(context.Background(), encodePNG(t, img), 8, 1)
	require.NoError(t, err)

	raw, err := DecodeDataURI(uri)
	require.NoError(t, err)
	out, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	r, g, b, _ := out.At(4, 4).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestDownscale_Errors(t *testing.T) {
	codec := NewCodec(ScaleDownOnly, nil)
	valid := encodePNG(t, gradient(10, 10))

	tests := []struct {
		name     string
		data     []byte
		maxWidth int
		quality  float64
		check    func(error) bool
	}{
		{name: "zero width", data: valid, maxWidth: 0, quality: 0.8, check: pkgerrors.IsValidation},
		{name: "zero quality", data: valid, maxWidth: 100, quality: 0, check: pkgerrors.IsValidation},
		{name: "quality above one", data: valid, maxWidth: 100, quality: 1.5, check: pkgerrors.IsValidation},
		{name: "not an image", data: []byte("plain text"), maxWidth: 100, quality: 0.8, check: pkgerrors.IsImageDecode},
		{name: "empty", data: nil, maxWidth: 100, quality: 0.8, check: pkgerrors.IsImageDecode},
		{name: "truncated png", data: valid[:len(valid)/2], maxWidth: 100, quality: 0.8, check: pkgerrors.IsImageDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Downscale(context.Background(), tt.data, tt.maxWidth, tt.quality)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
		})
	}
}

// pngHeader returns a PNG whose IHDR declares width x height but which
// carries the pixel data of a 1x1 image
func pngHeader(t *testing.T, width, height uint32) []byte {
	t.Helper()
	data := encodePNG(t, gradient(1, 1))
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc at 29
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDownscale_PixelBudget(t *testing.T) {
	tests := []struct {
		name      string
		policy    UpscalePolicy
		maxPixels int
		data      func(t *testing.T) []byte
		wantErr   bool
	}{
		{
			name:      "declared dimensions over budget are rejected before decoding",
			policy:    ScaleDownOnly,
			maxPixels: DefaultMaxPixels,
			data:      func(t *testing.T) []byte { return pngHeader(t, 12000, 12000) },
			wantErr:   true,
		},
		{
			name:      "dimensions near the int32 limit",
			policy:    ScaleDownOnly,
			maxPixels: DefaultMaxPixels,
			data:      func(t *testing.T) []byte { return pngHeader(t, 1<<30, 1<<30) },
			wantErr:   true,
		},
		{
			name:      "tall sliver enlarged past the budget",
			policy:    ScaleToFit,
			maxPixels: DefaultMaxPixels,
			data:      func(t *testing.T) []byte { return pngHeader(t, 1, 60000) },
			wantErr:   true,
		},
		{
			name:      "small budget",
			policy:    ScaleDownOnly,
			maxPixels: 10_000,
			data:      func(t *testing.T) []byte { return encodePNG(t, gradient(200, 200)) },
			wantErr:   true,
		},
		{
			name:      "exactly at budget",
			policy:    ScaleDownOnly,
			maxPixels: 10_000,
			data:      func(t *testing.T) []byte { return encodePNG(t, gradient(100, 100)) },
		},
		{
			name:      "large source scaled into budget",
			policy:    ScaleDownOnly,
			maxPixels: 2_000_000,
			data:      func(t *testing.T) []byte { return encodePNG(t, gradient(1600, 1200)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := NewCodec(tt.policy, nil)
			codec.SetMaxPixels(tt.maxPixels)

			uri, err := codec.Downscale(context.Background(), tt.data(t), 1200, 0.8)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.True(t, len(uri) > len(DataURIPrefix))
				return
			}
			require.Error(t, err)
			appErr := pkgerrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeImageTooLarge, appErr.Code)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}

func TestSetMaxPixels(t *testing.T) {
	codec := NewCodec(ScaleDownOnly, nil)
	assert.Equal(t, DefaultMaxPixels, codec.MaxPixels())

	codec.SetMaxPixels(500)
	assert.Equal(t, 500, codec.MaxPixels())

	codec.SetMaxPixels(0)
	assert.Equal(t, DefaultMaxPixels, codec.MaxPixels())
}

func TestExceedsBudget(t *testing.T) {
	assert.False(t, exceedsBudget(100, 100, 10_000))
	assert.True(t, exceedsBudget(101, 100, 10_000))
	assert.True(t, exceedsBudget(1<<31, 1<<31, DefaultMaxPixels))
	assert.False(t, exceedsBudget(1, DefaultMaxPixels, DefaultMaxPixels))
}

func TestDownscale_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCodec(ScaleDownOnly, nil).Downscale(ctx, encodePNG(t, gradient(10, 10)), 100, 0.8)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseUpscalePolicy(t *testing.T) {
	p, err := ParseUpscalePolicy("")
	require.NoError(t, err)
	assert.Equal(t, ScaleDownOnly, p)

	p, err = ParseUpscalePolicy(" SCALE_TO_FIT ")
	require.NoError(t, err)
	assert.Equal(t, ScaleToFit, p)

	_, err = ParseUpscalePolicy("stretch")
	assert.Error(t, err)
}

func TestJpegQuality(t *testing.T) {
	assert.Equal(t, 80, jpegQuality(0.8))
	assert.Equal(t, 100, jpegQuality(1))
	assert.Equal(t, 1, jpegQuality(0.001))
}
