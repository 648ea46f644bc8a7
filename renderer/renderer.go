package renderer

import (
	"fmt"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"tunneltoy/graphics"
	"tunneltoy/options"
	"tunneltoy/shader"
)

// gl.Init must run exactly once per process.
var glInitOnce sync.Once

// Fullscreen quad in normalized device coordinates, drawn as a triangle
// strip: vertices 0,1,2 and 1,2,3 form the two covering triangles.
var quadVertices = []float32{
	-1.0, -1.0,
	1.0, -1.0,
	-1.0, 1.0,
	1.0, 1.0,
}

// Renderer owns the single shader program, the fullscreen quad, and the
// resolved uniform locations for the lifetime of the process. It is
// constructed once at startup and never rebuilt.
type Renderer struct {
	context       graphics.Context
	program       uint32
	quadVAO       uint32
	quadVBO       uint32
	resolutionLoc int32
	timeLoc       int32
	offscreen     *OffscreenRenderer
	width         int
	height        int
	recordMode    bool

	paused   bool
	pausedAt float64
	skipped  float64
}

// NewRenderer initializes OpenGL on the given context, builds the shader
// program and quad, and in record mode the offscreen target. A shader
// compile or link failure is returned as an error; there is no fallback
// program, so callers treat it as fatal.
func NewRenderer(opts *options.Options, ctx graphics.Context) (*Renderer, error) {
	r := &Renderer{
		context:    ctx,
		width:      *opts.Width,
		height:     *opts.Height,
		recordMode: *opts.Mode == "record",
	}

	// Make the context current BEFORE initializing OpenGL.
	r.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	if err := r.initPipeline(*opts.ShowTiling); err != nil {
		return nil, err
	}

	if r.recordMode {
		var err error
		r.offscreen, err = NewOffscreenRenderer(r.width, r.height, *opts.NumPBOs)
		if err != nil {
			return nil, fmt.Errorf("failed to create offscreen renderer: %w", err)
		}
	}

	return r, nil
}

// initPipeline compiles and links the one shader program, uploads the quad
// vertex buffer, and resolves the resolution/time uniform locations.
func (r *Renderer) initPipeline(showTiling bool) error {
	var err error
	r.program, err = newProgram(shader.VertexShader(), shader.FragmentShader(showTiling))
	if err != nil {
		return fmt.Errorf("failed to create shader program: %w", err)
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.UseProgram(r.program)
	r.resolutionLoc = gl.GetUniformLocation(r.program, gl.Str("resolution\x00"))
	r.timeLoc = gl.GetUniformLocation(r.program, gl.Str("time\x00"))
	gl.UseProgram(0)
	return nil
}

// RenderFrame draws one frame into the currently bound framebuffer:
// viewport, clear to opaque black, uniform update, one triangle-strip draw.
func (r *Renderer) RenderFrame(time float64, width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(r.program)
	if r.resolutionLoc != -1 {
		gl.Uniform2f(r.resolutionLoc, float32(width), float32(height))
	}
	if r.timeLoc != -1 {
		gl.Uniform1f(r.timeLoc, float32(time))
	}
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

// Run is the interactive render loop. Each iteration reads the current
// framebuffer size, renders exactly one frame at the current clock reading,
// and swaps, until the window is closed.
func (r *Renderer) Run() {
	startTime := r.context.Time()
	for !r.context.ShouldClose() {
		now := r.context.Time()
		if r.paused {
			now = r.pausedAt
		}
		elapsed := now - startTime - r.skipped

		fbWidth, fbHeight := r.context.GetFramebufferSize()
		r.RenderFrame(elapsed, fbWidth, fbHeight)
		r.context.EndFrame()
	}
}

// TogglePause freezes the shader clock; resuming continues from the frozen
// time without a jump.
func (r *Renderer) TogglePause() {
	if r.paused {
		r.skipped += r.context.Time() - r.pausedAt
	} else {
		r.pausedAt = r.context.Time()
	}
	r.paused = !r.paused
}

func (r *Renderer) Shutdown() {
	gl.DeleteProgram(r.program)
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.quadVAO)
	if r.offscreen != nil {
		r.offscreen.Destroy()
	}
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		gl.DeleteShader(vertexShader)
		gl.DeleteShader(fragmentShader)
		return 0, fmt.Errorf("failed to link program: %v", logText)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
