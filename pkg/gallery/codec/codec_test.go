package codec_test

import (
	"encoding/base64"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/genaiterest/pkg/gallery/codec"
)

func randomImage(t *testing.T, w, h int, seed int64) *image.NRGBA {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: uint8(rng.Intn(256)),
			})
		}
	}
	return img
}

func assertSamePixels(t *testing.T, want image.Image, got image.Image) {
	t.Helper()

	require.Equal(t, want.Bounds(), got.Bounds())
	b := want.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			wantColor := color.NRGBAModel.Convert(want.At(x, y))
			gotColor := color.NRGBAModel.Convert(got.At(x, y))
			require.Equal(t, wantColor, gotColor, "pixel (%d,%d)", x, y)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {7, 3}, {32, 32}}
	for i, size := range sizes {
		img := randomImage(t, size.w, size.h, int64(i))

		encoded, err := codec.Encode(img)
		require.NoError(t, err)

		decoded, err := codec.Decode(encoded)
		require.NoError(t, err)
		assertSamePixels(t, img, decoded)
	}
}

func TestDecode_Variants(t *testing.T) {
	img := randomImage(t, 4, 4, 99)
	encoded, err := codec.Encode(img)
	require.NoError(t, err)

	t.Run("data uri", func(t *testing.T) {
		decoded, err := codec.Decode("data:image/png;base64," + encoded)
		require.NoError(t, err)
		assertSamePixels(t, img, decoded)
	})

	t.Run("unpadded", func(t *testing.T) {
		decoded, err := codec.Decode(strings.TrimRight(encoded, "="))
		require.NoError(t, err)
		assertSamePixels(t, img, decoded)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := codec.Decode("  ")
		assert.ErrorIs(t, err, codec.ErrEmptyImage)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := codec.Decode("@@@")
		assert.Error(t, err)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := codec.Decode(base64.StdEncoding.EncodeToString([]byte("hello world")))
		assert.Error(t, err)
	})
}

func TestEncode_Nil(t *testing.T) {
	_, err := codec.Encode(nil)
	assert.ErrorIs(t, err, codec.ErrEmptyImage)
}
