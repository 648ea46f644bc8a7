package options

import "fmt"

// Options holds the full command-line configuration. Fields are pointers so
// they can be bound directly to flag.String/Int/etc. in cmd/main.
type Options struct {
	Mode       *string  // "view" or "record"
	Duration   *float64 // record length in seconds
	FPS        *int     // record frame rate
	Width      *int     // window or output width in pixels
	Height     *int     // window or output height in pixels
	OutputFile *string  // record output file name
	FFMPEGPath *string  // optional explicit ffmpeg binary
	Codec      *string  // "h264" or "hevc"
	NumPBOs    *int     // pixel buffer objects in the readback ring
	ShowTiling *bool    // build the shader with twice as many tiles
	StillFile  *string  // render one CPU frame to this PNG and exit
	StillTime  *float64 // shader time for the still frame
	Help       *bool
}

// Validate checks the option combination before any GL or FFmpeg work starts.
func (o *Options) Validate() error {
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", *o.Width, *o.Height)
	}
	switch *o.Mode {
	case "view":
	case "record":
		if *o.Duration <= 0 {
			return fmt.Errorf("record duration must be positive, got %v", *o.Duration)
		}
		if *o.FPS <= 0 {
			return fmt.Errorf("record fps must be positive, got %d", *o.FPS)
		}
		if *o.OutputFile == "" {
			return fmt.Errorf("record mode requires an output file")
		}
		if *o.NumPBOs < 2 {
			return fmt.Errorf("number of PBOs must be at least 2, got %d", *o.NumPBOs)
		}
		switch *o.Codec {
		case "h264", "hevc":
		default:
			return fmt.Errorf("unsupported codec %q", *o.Codec)
		}
	default:
		return fmt.Errorf("unknown mode %q", *o.Mode)
	}
	return nil
}
