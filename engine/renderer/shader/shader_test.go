package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuadShaderReflection(t *testing.T) {
	s, err := NewQuadShader()
	require.NoError(t, err)

	assert.Equal(t, "quad", s.Key())
	assert.Equal(t, "vs_main", s.VertexEntryPoint())
	assert.Equal(t, "fs_main", s.FragmentEntryPoint())
	assert.NotContains(t, s.Source(), annotationPrefix)
	assert.Contains(t, s.Source(), "@group(0) @binding(0) var<uniform> camera: CameraUniform;")
	require.NotNil(t, s.Module())
	assert.Equal(t, s.Source(), s.Module().WGSLDescriptor.Code)

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	l := layouts[0]
	assert.Equal(t, uint64(24), l.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, l.StepMode)
	require.Len(t, l.Attributes, 2)
	assert.Equal(t, wgpu.VertexAttribute{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0}, l.Attributes[0])
	assert.Equal(t, wgpu.VertexAttribute{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1}, l.Attributes[1])

	desc, ok := s.BindGroupLayoutDescriptor(0)
	require.True(t, ok)
	require.Len(t, desc.Entries, 1)
	e := desc.Entries[0]
	assert.Equal(t, uint32(0), e.Binding)
	assert.Equal(t, wgpu.ShaderStageVertex, e.Visibility)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, e.Buffer.Type)
	assert.Equal(t, uint64(64), e.Buffer.MinBindingSize)
	assert.Equal(t, "camera", s.BindGroupVarName(0, 0))

	decls := s.Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, 0, *decls[0].Group)
	assert.Equal(t, 0, *decls[0].Binding)
}

func TestNewShaderPlainSource(t *testing.T) {
	src := `
struct Params {
    scale: f32,
    offset: vec3<f32>,
    tint: vec4<f32>,
};
@group(1) @binding(2) var<uniform> params: Params;

struct In {
    @location(0) pos: vec2<f32>,
    @location(3) weight: f32,
};

/* block /* nested */ comment */
@vertex
fn main_vs(in: In) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.pos * params.scale, 0.0, 1.0);
}

@fragment
fn main_fs() -> @location(0) vec4<f32> {
    return params.tint;
}
`
	s, err := NewShader("plain", src)
	require.NoError(t, err)
	assert.Equal(t, "main_vs", s.VertexEntryPoint())
	assert.Equal(t, "main_fs", s.FragmentEntryPoint())

	desc, ok := s.BindGroupLayoutDescriptor(1)
	require.True(t, ok)
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, uint32(2), desc.Entries[0].Binding)
	// scale at 0, offset aligned to 16, tint at 32, size 48
	assert.Equal(t, uint64(48), desc.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, desc.Entries[0].Visibility)

	_, ok = s.BindGroupLayoutDescriptor(0)
	assert.False(t, ok)

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(12), layouts[0].ArrayStride)
	assert.Equal(t, uint32(3), layouts[0].Attributes[1].ShaderLocation)
	assert.Equal(t, uint64(8), layouts[0].Attributes[1].Offset)
}

func TestNewShaderMissingEntryPoints(t *testing.T) {
	s, err := NewShader("empty_stages", "struct A { x: f32, };")
	require.NoError(t, err)
	assert.Empty(t, s.VertexEntryPoint())
	assert.Empty(t, s.FragmentEntryPoint())
}

func TestNewShaderErrors(t *testing.T) {
	cases := map[string]string{
		"empty":              "   \n",
		"unknown include":    "//@oxy:include nothing\n",
		"unknown annotation": "//@oxy:frobnicate\n",
		"short group":        "//@oxy:group 0 0 uniform camera\n",
		"bad group number":   "//@oxy:include camera\n//@oxy:group x 0 uniform camera camera\n",
		"unsized uniform":    "@group(0) @binding(0) var<uniform> u: Missing;\n",
		"texture binding":    "@group(0) @binding(0) var t: texture_2d<f32>;\n",
		"storage binding":    "@group(0) @binding(0) var<storage, read> s: f32;\n",
		"storage annotation": "//@oxy:include vertex\n//@oxy:group 0 0 storage_read data vertex\n",
		"bad vertex type":    "struct In { @location(0) m: mat4x4<f32>, };\n",
		"duplicate binding":  "@group(0) @binding(0) var<uniform> a: f32;\n@group(0) @binding(0) var<uniform> b: f32;\n",
		"runtime array":      "@group(0) @binding(0) var<uniform> a: array<f32>;\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewShader(name, src)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrShaderParse)
		})
	}
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include camera\n//@oxy:include camera\n")
	require.NoError(t, err)
	assert.Equal(t, 1, countOccurrences(out, "struct CameraUniform"))
	assert.Empty(t, pp.Declarations())

	out, err = pp.Process("//@oxy:include vertex\n//@oxy:group 2 1 uniform data vertex\n")
	require.NoError(t, err)
	assert.Contains(t, out, "@group(2) @binding(1) var<uniform> data: VertexInput;")
	require.Len(t, pp.Declarations(), 1)
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}

func TestLoadShader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(QuadSource), 0o600))

	s, err := LoadShader("from_file", path)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", s.VertexEntryPoint())

	_, err = LoadShader("missing", filepath.Join(t.TempDir(), "nope.wgsl"))
	assert.Error(t, err)
}

func TestResolveTypeLayoutArrays(t *testing.T) {
	l, ok := resolveTypeLayout("array<vec3<f32>, 4>", nil)
	require.True(t, ok)
	assert.Equal(t, uint64(64), l.size)
	assert.Equal(t, uint64(16), l.align)
}
