package shader

// The vertex stage passes the quad corners through untouched; all of the
// visual work happens per fragment.
const vertexShaderSource = `#version 410 core
layout (location = 0) in vec2 position;
void main() {
    gl_Position = vec4(position, 0.0, 1.0);
}
`

// Tunnel effect fragment stage. The color is a pure function of
// (gl_FragCoord, resolution, time): the coordinate is tiled into a periodic
// space, distorted through five sin/cos feedback iterations, and the
// accumulated intensity is reshaped into a cyan-tinted caustic pattern.
const tunnelFragmentBody = `
uniform vec2 resolution;
uniform float time;

out vec4 fragColor;

#define TAU 6.28318530718
#define MAX_ITER 5

void main() {
    float t = time * 0.5 + 23.0;
    vec2 uv = gl_FragCoord.xy / resolution;
#ifdef SHOW_TILING
    uv *= 2.0;
#endif
    vec2 p = mod(uv * TAU, TAU) - 250.0;
    vec2 i = vec2(p);
    float c = 1.0;
    float inten = .005;
    for (int n = 0; n < MAX_ITER; n++) {
        float phase = t * (1.0 - (3.5 / float(n + 1)));
        i = p + vec2(cos(phase - i.x) + sin(phase + i.y), sin(phase - i.y) + cos(phase + i.x));
        c += 1.0 / length(vec2(p.x / (sin(i.x + phase) / inten), p.y / (sin(i.y + phase) / inten)));
    }
    c /= float(MAX_ITER);
    c = 1.17 - pow(c, 1.4);
    vec3 colour = vec3(pow(abs(c), 8.0));
    colour = clamp(colour + vec3(0.0, 0.35, 0.5), 0.0, 1.0);
    fragColor = vec4(colour, 1.0);
}
`

func VertexShader() string {
	return vertexShaderSource
}

// FragmentShader assembles the tunnel fragment source. When showTiling is
// set the source is built with SHOW_TILING defined, which doubles the uv
// scale so twice as many pattern tiles are visible.
func FragmentShader(showTiling bool) string {
	header := "#version 410 core\n"
	if showTiling {
		header += "#define SHOW_TILING\n"
	}
	return header + tunnelFragmentBody
}
