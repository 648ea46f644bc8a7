package tunnel

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShadeDeterministic(t *testing.T) {
	fragCoord := mgl32.Vec2{123.5, 456.5}
	resolution := mgl32.Vec2{1920, 1080}

	a := Shade(fragCoord, resolution, 4.25, false)
	b := Shade(fragCoord, resolution, 4.25, false)
	require.Equal(t, a, b)

	a = Shade(fragCoord, resolution, 4.25, true)
	b = Shade(fragCoord, resolution, 4.25, true)
	require.Equal(t, a, b)
}

func TestShadeClamped(t *testing.T) {
	cases := []struct {
		name       string
		fragCoord  mgl32.Vec2
		resolution mgl32.Vec2
		time       float32
	}{
		{"origin", mgl32.Vec2{0, 0}, mgl32.Vec2{800, 600}, 0},
		{"center", mgl32.Vec2{400, 300}, mgl32.Vec2{800, 600}, 0},
		{"far corner", mgl32.Vec2{799.5, 599.5}, mgl32.Vec2{800, 600}, 12.5},
		{"one pixel surface", mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{1, 1}, 100},
		{"large time", mgl32.Vec2{640, 360}, mgl32.Vec2{1280, 720}, 1e6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, tiling := range []bool{false, true} {
				rgb := Shade(tc.fragCoord, tc.resolution, tc.time, tiling)
				for ch := 0; ch < 3; ch++ {
					assert.GreaterOrEqual(t, rgb[ch], float32(0))
					assert.LessOrEqual(t, rgb[ch], float32(1))
				}
			}
		})
	}
}

// Pinned outputs of the float32 evaluation. These guard the algorithm
// against accidental reordering or precision changes.
func TestShadeGolden(t *testing.T) {
	cases := []struct {
		name       string
		fragCoord  mgl32.Vec2
		resolution mgl32.Vec2
		time       float32
		want       [3]float32
	}{
		{
			name:       "center 800x600 t=0",
			fragCoord:  mgl32.Vec2{400, 300},
			resolution: mgl32.Vec2{800, 600},
			time:       0,
			want:       [3]float32{0.07090086, 0.42090085, 0.57090086},
		},
		{
			name:       "origin 800x600 t=0",
			fragCoord:  mgl32.Vec2{0, 0},
			resolution: mgl32.Vec2{800, 600},
			time:       0,
			want:       [3]float32{0.08407678, 0.43407679, 0.58407676},
		},
		{
			name:       "offcenter 640x480 t=1",
			fragCoord:  mgl32.Vec2{100, 200},
			resolution: mgl32.Vec2{640, 480},
			time:       1,
			want:       [3]float32{0.18279721, 0.53279722, 0.68279719},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rgb := Shade(tc.fragCoord, tc.resolution, tc.time, false)
			for ch := 0; ch < 3; ch++ {
				assert.InDelta(t, tc.want[ch], rgb[ch], 1e-4)
			}
		})
	}
}

// With tiling enabled the uv coordinate is doubled before the periodic
// wrap, so the tiled pattern at a fragment must equal the default pattern
// at twice that fragment coordinate.
func TestShadeTilingDoublesTiles(t *testing.T) {
	resolution := mgl32.Vec2{800, 600}
	tiled := Shade(mgl32.Vec2{100, 150}, resolution, 0, true)
	plain := Shade(mgl32.Vec2{200, 300}, resolution, 0, false)
	require.Equal(t, plain, tiled)
}

func TestImage(t *testing.T) {
	const w, h = 16, 8
	img := Image(w, h, 1.5, false)
	require.Equal(t, w, img.Bounds().Dx())
	require.Equal(t, h, img.Bounds().Dy())

	resolution := mgl32.Vec2{w, h}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := img.PixOffset(x, y)
			assert.EqualValues(t, 0xff, img.Pix[o+3], "alpha at %d,%d", x, y)

			// Rows are flipped: image row y samples fragment row h-1-y.
			rgb := Shade(mgl32.Vec2{float32(x) + 0.5, float32(h-1-y) + 0.5}, resolution, 1.5, false)
			assert.Equal(t, uint8(rgb[0]*255+0.5), img.Pix[o+0])
			assert.Equal(t, uint8(rgb[1]*255+0.5), img.Pix[o+1])
			assert.Equal(t, uint8(rgb[2]*255+0.5), img.Pix[o+2])
		}
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, WritePNG(path, 32, 24, 0, false))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, decoded.Bounds().Dx())
	assert.Equal(t, 24, decoded.Bounds().Dy())
}
