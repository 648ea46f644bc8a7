package renderer

import (
	"fmt"
	"io"
	"log"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"tunneltoy/options"
)

// Frame represents a single rendered frame's data, ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// encoderArgs maps the options onto the FFmpeg keyword arguments for the
// raw RGBA pipe input and the encoded output.
func encoderArgs(opts *options.Options) (inputArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", *opts.Width, *opts.Height),
		"framerate": *opts.FPS,
	}

	outputArgs = ffmpeg.KwArgs{
		// glReadPixels returns rows bottom-up
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}
	if *opts.Codec == "hevc" {
		outputArgs["c:v"] = "libx265"
		if strings.HasSuffix(*opts.OutputFile, ".mp4") {
			outputArgs["tag:v"] = "hvc1"
		}
	} else {
		outputArgs["c:v"] = "libx264"
	}
	return
}

// runEncoder is the consumer. It owns the FFmpeg pipe and drains frameChan
// into it until the channel closes or the encoder exits. doneChan must be
// buffered: the result is delivered before the remaining frames are drained,
// so a producer blocked on a send always gets unstuck.
func runEncoder(opts *options.Options, frameChan <-chan *Frame, doneChan chan<- error) {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := encoderArgs(opts)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(*opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	if *opts.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(*opts.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// FFmpeg is gone; fail any write still blocked on the pipe.
		pipeReader.CloseWithError(err)
		errc <- err
	}()

	for frame := range frameChan {
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			log.Printf("Error writing frame %d to FFmpeg pipe: %v", frame.PTS, err)
			break
		}
	}

	pipeWriter.Close()
	doneChan <- <-errc

	// Unblock the producer if it is still sending.
	for range frameChan {
	}
}

// renderSchedule returns the producer iteration count and the number of
// leading readbacks to discard for a PBO ring of the given size. Each
// readback returns a frame ringSize-1 issues old, so the ring needs that
// many priming iterations up front and as many trailing drain iterations
// to flush the final frames.
func renderSchedule(totalFrames, ringSize int) (iterations, skip int) {
	skip = ringSize - 1
	return totalFrames + skip, skip
}

// RunOffscreen is the producer. It renders duration*fps frames at a fixed
// timestep into the offscreen framebuffer and feeds them to the encoder,
// bailing out as soon as the encoder reports.
func (r *Renderer) RunOffscreen(opts *options.Options) error {
	log.Println("Starting in record mode...")
	frameChan := make(chan *Frame, len(r.offscreen.pbos))
	encoderDoneChan := make(chan error, 1)

	go runEncoder(opts, frameChan, encoderDoneChan)

	totalFrames := int(*opts.Duration * float64(*opts.FPS))
	timeStep := 1.0 / float64(*opts.FPS)
	iterations, skip := renderSchedule(totalFrames, len(r.offscreen.pbos))

	var pts int64
	for i := 0; i < iterations; i++ {
		// Trailing iterations render nothing; they only drain the ring.
		if i < totalFrames {
			r.renderOffscreenFrame(float64(i) * timeStep)
		}
		pixels, err := r.readOffscreenPixels()
		if err != nil {
			log.Printf("Error reading pixels on frame %d: %v", i, err)
			break
		}
		if i < skip {
			// The ring has not produced a real frame yet.
			continue
		}
		select {
		case frameChan <- &Frame{Pixels: pixels, PTS: pts}:
			pts++
		case err := <-encoderDoneChan:
			close(frameChan)
			return err
		}
	}

	close(frameChan)
	return <-encoderDoneChan
}

func (r *Renderer) renderOffscreenFrame(time float64) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.offscreen.fbo)
	r.RenderFrame(time, r.offscreen.width, r.offscreen.height)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (r *Renderer) readOffscreenPixels() ([]byte, error) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.offscreen.fbo)
	pixels, err := r.offscreen.readPixelsAsync()
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return pixels, err
}
