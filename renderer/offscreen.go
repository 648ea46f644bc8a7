package renderer

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// OffscreenRenderer owns the record-mode framebuffer and the ring of
// PIXEL_PACK buffers used for asynchronous pixel readback.
type OffscreenRenderer struct {
	fbo       uint32
	textureID uint32
	pbos      []uint32
	pboIndex  int
	width     int
	height    int
}

func NewOffscreenRenderer(width, height, numPBOs int) (*OffscreenRenderer, error) {
	if numPBOs < 2 {
		return nil, fmt.Errorf("number of PBOs must be at least 2")
	}

	or := &OffscreenRenderer{
		width:  width,
		height: height,
		pbos:   make([]uint32, numPBOs),
	}

	gl.GenFramebuffers(1, &or.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, or.fbo)
	gl.GenTextures(1, &or.textureID)
	gl.BindTexture(gl.TEXTURE_2D, or.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, or.textureID, 0)
	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return nil, fmt.Errorf("offscreen fbo is not complete")
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	bufferSize := width * height * 4
	gl.GenBuffers(int32(numPBOs), &or.pbos[0])
	for _, pbo := range or.pbos {
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pbo)
		gl.BufferData(gl.PIXEL_PACK_BUFFER, bufferSize, nil, gl.STREAM_READ)
	}
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)

	return or, nil
}

func (or *OffscreenRenderer) Destroy() {
	gl.DeleteFramebuffers(1, &or.fbo)
	gl.DeleteTextures(1, &or.textureID)
	gl.DeleteBuffers(int32(len(or.pbos)), &or.pbos[0])
}

// readPixelsAsync starts a readback of the bound READ framebuffer into the
// current PBO and returns the contents of the next one in the ring, which
// holds the frame issued len(pbos)-1 calls earlier. The first len(pbos)-1
// results are not meaningful; callers schedule around the lag (see
// renderSchedule).
func (or *OffscreenRenderer) readPixelsAsync() ([]byte, error) {
	bufferSize := or.width * or.height * 4

	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, or.pbos[or.pboIndex])
	gl.ReadPixels(0, 0, int32(or.width), int32(or.height), gl.RGBA, gl.UNSIGNED_BYTE, nil)

	nextIndex := (or.pboIndex + 1) % len(or.pbos)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, or.pbos[nextIndex])
	ptr := gl.MapBufferRange(gl.PIXEL_PACK_BUFFER, 0, bufferSize, gl.MAP_READ_BIT)
	if ptr == nil {
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
		return nil, fmt.Errorf("failed to map PBO")
	}

	pixels := make([]byte, bufferSize)
	copy(pixels, (*[1 << 30]byte)(ptr)[:bufferSize:bufferSize])
	gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)

	or.pboIndex = nextIndex
	return pixels, nil
}
