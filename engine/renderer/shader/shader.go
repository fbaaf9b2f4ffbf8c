package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrShaderParse is returned when WGSL source cannot be pre-processed or reflected.
var ErrShaderParse = errors.New("shader parse error")

// QuadSource is the annotated WGSL source of the default quad shader.
// It transforms colored vertices by the camera uniform at group 0 binding 0.
//
//go:embed assets/quad.wgsl
var QuadSource string

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation.
type shader struct {
	key                        string
	source                     string
	vertexEntryPoint           string
	fragmentEntryPoint         string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []wgpu.VertexBufferLayout
	module                     *wgpu.ShaderModuleDescriptor
	declarations               []Annotation
}

// Shader defines the interface for a loaded and reflected WGSL render shader. A single source
// holds both the vertex and fragment stages; reflection exposes their entry points, the vertex
// input layout and the bind group layouts a pipeline needs.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// VertexEntryPoint returns the name of the @vertex function, or "" if the source has none.
	//
	// Returns:
	//   - string: the vertex entry point name
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function, or "" if the source has none.
	//
	// Returns:
	//   - string: the fragment entry point name
	FragmentEntryPoint() string

	// BindGroupLayoutDescriptor retrieves the reflected bind group layout descriptor for a group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is unused
	//   - bool: true if the shader declares the group
	BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool)

	// BindGroupLayoutDescriptors retrieves all reflected bind group layout descriptors.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or "" if not found
	BindGroupVarName(group, binding int) string

	// VertexLayouts retrieves the vertex buffer layouts reflected from vertex input structs, in source order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts, one per vertex input struct
	VertexLayouts() []wgpu.VertexBufferLayout

	// Module returns the shader module descriptor built from the pre-processed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the binding declarations generated by the pre-processor.
	//
	// Returns:
	//   - []Annotation: the group annotations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes and reflects WGSL source.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label
//   - source: the WGSL source, optionally containing @oxy: annotations
//
// Returns:
//   - Shader: the reflected shader
//   - error: an error wrapping ErrShaderParse if the source is empty, malformed or declares types that cannot be laid out
func NewShader(key, source string) (Shader, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: %s has no source", ErrShaderParse, key)
	}
	s := &shader{key: key}
	if err := s.parseSource(source); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

// LoadShader reads WGSL source from a file and reflects it with NewShader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - path: the file path to read WGSL source from
//
// Returns:
//   - Shader: the reflected shader
//   - error: the read error, or an error wrapping ErrShaderParse
func LoadShader(key, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to read source file %q: %w", key, path, err)
	}
	return NewShader(key, string(data))
}

// NewQuadShader reflects the embedded default quad shader.
//
// Returns:
//   - Shader: the quad shader
//   - error: an error wrapping ErrShaderParse
func NewQuadShader() (Shader, error) {
	return NewShader("quad", QuadSource)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool) {
	desc, ok := s.bindGroupLayoutDescriptors[group]
	return desc, ok
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

// parseSource pre-processes the source, builds the shader module descriptor and reflects
// entry points, vertex layouts and bind group layouts.
func (s *shader) parseSource(raw string) error {
	pp := NewPreProcessor()
	source, err := pp.Process(raw)
	if err != nil {
		return err
	}
	s.source = source
	s.declarations = pp.Declarations()
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}

	s.vertexEntryPoint = parseEntryPoint(s.source, wgpu.ShaderStageVertex)
	s.fragmentEntryPoint = parseEntryPoint(s.source, wgpu.ShaderStageFragment)

	if s.vertexLayouts, err = parseVertexLayouts(s.source); err != nil {
		return err
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames, err = parseBindGroupLayouts(s.source)
	return err
}
