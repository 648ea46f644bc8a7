package graphics

// Context defines the interface for an OpenGL context provider.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	EndFrame()
	GetFramebufferSize() (int, int)
	// Time returns seconds on a monotonic clock with an arbitrary epoch.
	Time() float64
}
