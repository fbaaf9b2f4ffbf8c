package camera

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-quad/common"
	"github.com/chewxy/math32"
)

// ErrInvalidCamera is returned by Validate when the camera parameters cannot produce a usable transform.
var ErrInvalidCamera = errors.New("invalid camera")

// poleMargin keeps the orbiting eye this many radians away from the up and down poles.
const poleMargin float32 = 0.01

type cameraImpl struct {
	eye    common.Vec3
	target common.Vec3
	up     common.Vec3

	fovY   float32 // degrees
	aspect float32
	near   float32
	far    float32

	viewMatrix       [16]float32
	projectionMatrix [16]float32
	transform        [16]float32
}

// Camera defines the interface for the perspective camera that drives the quad's camera uniform.
// The camera owns eye, target and up, plus the projection parameters, and caches the combined
// clip-space transform after every mutation.
type Camera interface {
	// Eye returns the world-space camera position.
	//
	// Returns:
	//   - common.Vec3: the eye position
	Eye() common.Vec3

	// Target returns the world-space point the camera looks at.
	//
	// Returns:
	//   - common.Vec3: the look-at point
	Target() common.Vec3

	// Up returns the camera's up direction.
	//
	// Returns:
	//   - common.Vec3: the up vector as configured (not normalized)
	Up() common.Vec3

	// FovY returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees
	FovY() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ComputeTransform returns depth_correction * perspective * look_at for the current parameters.
	// The result maps world space to WebGPU clip space with depth in [0, 1]. It has no side effects.
	//
	// Returns:
	//   - [16]float32: the clip-space transform (column-major)
	ComputeTransform() [16]float32

	// Frustum returns the six clip planes of the current transform.
	//
	// Returns:
	//   - common.Frustum: the view frustum in world space
	Frustum() common.Frustum

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// ApplyRotation orbits the eye around the target, preserving the eye to target distance.
	// Yaw rotates about the up axis. Pitch rotates about the camera right axis, positive toward up,
	// and is clamped so the eye never crosses the poles. Zero deltas leave the camera untouched.
	//
	// Parameters:
	//   - deltaYaw: rotation about the up axis in radians
	//   - deltaPitch: rotation about the right axis in radians
	ApplyRotation(deltaYaw, deltaPitch float32)

	// Validate checks the camera parameters.
	//
	// Returns:
	//   - error: ErrInvalidCamera wrapped with the offending parameter, or nil
	Validate() error
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera looking from (0, 1, 1.5) at the origin with a 45 degree vertical field of view
// and a 16:9 aspect until the first surface configuration replaces it.
// Options are applied in order; call Validate to check the resulting parameters.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		eye:    common.Vec3{0, 1, 1.5},
		target: common.Vec3{0, 0, 0},
		up:     common.Vec3{0, 1, 0},
		fovY:   45.0,
		aspect: 16.0 / 9.0,
		near:   0.1,
		far:    100.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Eye() common.Vec3 {
	return c.eye
}

func (c *cameraImpl) Target() common.Vec3 {
	return c.target
}

func (c *cameraImpl) Up() common.Vec3 {
	return c.up
}

func (c *cameraImpl) FovY() float32 {
	return c.fovY
}

func (c *cameraImpl) Aspect() float32 {
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) ComputeTransform() [16]float32 {
	return c.transform
}

func (c *cameraImpl) Frustum() common.Frustum {
	return common.ExtractFrustumFromMatrix(c.transform[:])
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) ApplyRotation(deltaYaw, deltaPitch float32) {
	if deltaYaw == 0 && deltaPitch == 0 {
		return
	}

	up := c.up.Normalize()
	offset := c.eye.Sub(c.target)
	radius := offset.Length()
	if radius == 0 || up == (common.Vec3{}) {
		return
	}

	if deltaYaw != 0 {
		offset = offset.RotateAround(up, deltaYaw)
	}

	if deltaPitch != 0 {
		right := offset.Cross(up)
		// eye on the up axis: no defined right axis, leave pitch alone
		if right.Length() > 1e-6 {
			phi := math32.Acos(clamp(offset.Dot(up)/radius, -1, 1))
			newPhi := clamp(phi-deltaPitch, poleMargin, math32.Pi-poleMargin)
			offset = offset.RotateAround(right.Normalize(), phi-newPhi)
		}
	}

	// rescale to cancel float drift in the rotation
	if l := offset.Length(); l > 0 {
		offset = offset.Scale(radius / l)
	}
	c.eye = c.target.Add(offset)
	c.updateMatrices()
}

func (c *cameraImpl) Validate() error {
	switch {
	case !(c.near > 0) || math32.IsInf(c.near, 0):
		return fmt.Errorf("%w: znear must be positive and finite, got %v", ErrInvalidCamera, c.near)
	case !(c.far > c.near) || math32.IsInf(c.far, 0):
		return fmt.Errorf("%w: zfar %v must be finite and greater than znear %v", ErrInvalidCamera, c.far, c.near)
	case !(c.aspect > 0) || math32.IsInf(c.aspect, 0):
		return fmt.Errorf("%w: aspect must be positive and finite, got %v", ErrInvalidCamera, c.aspect)
	case !(c.fovY > 0 && c.fovY < 180):
		return fmt.Errorf("%w: fovy must lie in (0, 180) degrees, got %v", ErrInvalidCamera, c.fovY)
	case !c.eye.IsFinite() || !c.target.IsFinite() || !c.up.IsFinite():
		return fmt.Errorf("%w: eye, target and up must be finite", ErrInvalidCamera)
	case c.eye == c.target:
		return fmt.Errorf("%w: eye and target coincide at %v", ErrInvalidCamera, c.eye)
	}

	dir := c.target.Sub(c.eye).Normalize()
	if c.up.Normalize().Cross(dir).Length() < 1e-6 {
		return fmt.Errorf("%w: up %v is parallel to the view direction", ErrInvalidCamera, c.up)
	}
	return nil
}

// --- internal helpers ---

// updateMatrices recalculates the view, projection and combined transform.
// Must be called whenever eye, target, up or a projection parameter changes.
func (c *cameraImpl) updateMatrices() {
	common.LookAt(c.viewMatrix[:], c.eye, c.target, c.up)
	common.PerspectiveGL(c.projectionMatrix[:], c.fovY, c.aspect, c.near, c.far)

	var proj [16]float32
	common.Mul4(proj[:], common.DepthCorrection[:], c.projectionMatrix[:])
	common.Mul4(c.transform[:], proj[:], c.viewMatrix[:])
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
