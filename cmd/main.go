package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"tunneltoy/glfwcontext"
	"tunneltoy/options"
	"tunneltoy/renderer"
	"tunneltoy/tunnel"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := &options.Options{
		Mode:       flag.String("mode", "view", "Run mode: 'view' or 'record'"),
		Duration:   flag.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        flag.Int("fps", 60, "Frames per second for recording"),
		Width:      flag.Int("width", 1280, "Width of the window or output"),
		Height:     flag.Int("height", 720, "Height of the window or output"),
		OutputFile: flag.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath: flag.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      flag.String("codec", "h264", "Video codec: 'h264' or 'hevc'"),
		NumPBOs:    flag.Int("numpbos", 2, "Number of PBOs for async pixel readback"),
		ShowTiling: flag.Bool("tiling", false, "Show twice as many pattern tiles"),
		StillFile:  flag.String("still", "", "Render a single frame on the CPU to this PNG and exit"),
		StillTime:  flag.Float64("stilltime", 0.0, "Shader time in seconds for -still"),
		Help:       flag.Bool("help", false, "Show help message"),
	}
	flag.Parse()

	if *opts.Help {
		fmt.Println("Tunnel shader viewer/recorder")
		flag.PrintDefaults()
		return
	}

	if err := opts.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	// The still path is pure CPU; no window or GL context needed.
	if *opts.StillFile != "" {
		err := tunnel.WritePNG(*opts.StillFile, *opts.Width, *opts.Height, float32(*opts.StillTime), *opts.ShowTiling)
		if err != nil {
			log.Fatalf("Failed to write still image: %v", err)
		}
		log.Printf("Wrote %s", *opts.StillFile)
		return
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize GLFW: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	record := *opts.Mode == "record"
	ctx, err := glfwcontext.New(opts, !record)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer ctx.Shutdown()

	r, err := renderer.NewRenderer(opts, ctx)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Shutdown()

	if record {
		log.Println("Starting offscreen render loop...")
		if err := r.RunOffscreen(opts); err != nil {
			log.Fatalf("Offscreen rendering failed: %v", err)
		}
		log.Printf("Successfully rendered to %s", *opts.OutputFile)
	} else {
		ctx.RegisterKeyCallback(glfw.KeySpace, r.TogglePause)
		log.Println("Starting interactive render loop...")
		r.Run()
	}
}
