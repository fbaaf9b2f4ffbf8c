package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBinding sets the @binding index of the uniform.
//
// Parameters:
//   - binding: the binding index within group 0
//
// Returns:
//   - BindGroupProviderOption: a function that sets the binding index
func WithBinding(binding int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.binding = binding
	}
}

// WithVisibility sets the shader stages that read the uniform.
//
// Parameters:
//   - visibility: the stage mask
//
// Returns:
//   - BindGroupProviderOption: a function that sets the visibility
func WithVisibility(visibility wgpu.ShaderStage) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.visibility = visibility
	}
}

// WithSize sets the uniform buffer size in bytes.
//
// Parameters:
//   - size: the buffer size
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer size
func WithSize(size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.size = size
	}
}
