package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexShaderDeclaresPosition(t *testing.T) {
	src := VertexShader()
	assert.True(t, strings.HasPrefix(src, "#version 410 core\n"))
	assert.Contains(t, src, "in vec2 position;")
	assert.Contains(t, src, "gl_Position")
}

func TestFragmentShaderUniforms(t *testing.T) {
	src := FragmentShader(false)
	assert.Contains(t, src, "uniform vec2 resolution;")
	assert.Contains(t, src, "uniform float time;")
	assert.Contains(t, src, "out vec4 fragColor;")
}

func TestFragmentShaderVersionDirectiveFirst(t *testing.T) {
	for _, tiling := range []bool{false, true} {
		src := FragmentShader(tiling)
		lines := strings.SplitN(src, "\n", 2)
		require.Equal(t, "#version 410 core", lines[0])
	}
}

func TestFragmentShaderTilingDefine(t *testing.T) {
	assert.NotContains(t, FragmentShader(false), "#define SHOW_TILING\n")
	src := FragmentShader(true)
	assert.Contains(t, src, "#define SHOW_TILING\n")
	// The define must precede its #ifdef use.
	assert.Less(t, strings.Index(src, "#define SHOW_TILING"), strings.Index(src, "#ifdef SHOW_TILING"))
}
