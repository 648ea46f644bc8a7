// Package tunnel is a CPU float32 implementation of the tunnel fragment
// shader. It mirrors the GLSL in the shader package operation for operation
// so a frame can be evaluated, pinned, and exported without a GPU.
package tunnel

import (
	"image"
	"image/png"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	tau     = 2 * math32.Pi
	maxIter = 5
	inten   = 0.005
)

// Shade returns the clamped RGB color for one fragment. It is deterministic:
// identical (fragCoord, resolution, time) inputs yield identical output.
// fragCoord is in pixels with the origin at the bottom left, matching
// gl_FragCoord.
func Shade(fragCoord, resolution mgl32.Vec2, time float32, showTiling bool) mgl32.Vec3 {
	t := time*0.5 + 23.0
	uv := mgl32.Vec2{fragCoord[0] / resolution[0], fragCoord[1] / resolution[1]}
	if showTiling {
		uv = uv.Mul(2)
	}
	// uv is non-negative, so Mod matches GLSL mod here.
	p := mgl32.Vec2{
		math32.Mod(uv[0]*tau, tau) - 250,
		math32.Mod(uv[1]*tau, tau) - 250,
	}
	i := p
	c := float32(1.0)
	for n := 0; n < maxIter; n++ {
		phase := t * (1.0 - (3.5 / float32(n+1)))
		i = mgl32.Vec2{
			p[0] + (math32.Cos(phase-i[0]) + math32.Sin(phase+i[1])),
			p[1] + (math32.Sin(phase-i[1]) + math32.Cos(phase+i[0])),
		}
		c += 1.0 / math32.Hypot(
			p[0]/(math32.Sin(i[0]+phase)/inten),
			p[1]/(math32.Sin(i[1]+phase)/inten),
		)
	}
	c /= maxIter
	c = 1.17 - math32.Pow(c, 1.4)
	v := math32.Pow(math32.Abs(c), 8)
	return mgl32.Vec3{
		mgl32.Clamp(v, 0, 1),
		mgl32.Clamp(v+0.35, 0, 1),
		mgl32.Clamp(v+0.5, 0, 1),
	}
}

// Image renders a full frame of the effect on the CPU. Fragments are sampled
// at pixel centers, and rows are flipped so the image matches what the GPU
// path presents on screen.
func Image(width, height int, time float32, showTiling bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	resolution := mgl32.Vec2{float32(width), float32(height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fragCoord := mgl32.Vec2{float32(x) + 0.5, float32(height-1-y) + 0.5}
			rgb := Shade(fragCoord, resolution, time, showTiling)
			o := img.PixOffset(x, y)
			img.Pix[o+0] = uint8(rgb[0]*255 + 0.5)
			img.Pix[o+1] = uint8(rgb[1]*255 + 0.5)
			img.Pix[o+2] = uint8(rgb[2]*255 + 0.5)
			img.Pix[o+3] = 0xff
		}
	}
	return img
}

// WritePNG renders one frame with Image and writes it to path.
func WritePNG(path string, width, height int, time float32, showTiling bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, Image(width, height, time, showTiling)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
