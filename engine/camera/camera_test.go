package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-quad/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ndcDepth(m [16]float32, p common.Vec3) float32 {
	c := common.TransformPoint(m[:], p[0], p[1], p[2])
	return c[2] / c[3]
}

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, common.Vec3{0, 1, 1.5}, c.Eye())
	assert.Equal(t, common.Vec3{0, 0, 0}, c.Target())
	assert.Equal(t, common.Vec3{0, 1, 0}, c.Up())
	assert.Equal(t, float32(45), c.FovY())
	assert.Equal(t, float32(16.0/9.0), c.Aspect())
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(100), c.Far())
	require.NoError(t, c.Validate())
}

func TestComputeTransformDepthRange(t *testing.T) {
	c := NewCamera(WithEye(1, 2, 3), WithAspect(16.0/9.0))
	require.NoError(t, c.Validate())

	m := c.ComputeTransform()
	dir := c.Target().Sub(c.Eye()).Normalize()

	nearPoint := c.Eye().Add(dir.Scale(c.Near()))
	farPoint := c.Eye().Add(dir.Scale(c.Far()))
	assert.InDelta(t, 0.0, ndcDepth(m, nearPoint), 1e-4)
	assert.InDelta(t, 1.0, ndcDepth(m, farPoint), 1e-4)

	prev := float32(-1)
	for _, d := range []float32{0.2, 0.5, 1, 5, 20, 50, 99} {
		z := ndcDepth(m, c.Eye().Add(dir.Scale(d)))
		assert.GreaterOrEqual(t, z, float32(0))
		assert.LessOrEqual(t, z, float32(1))
		assert.Greater(t, z, prev, "depth increases with distance")
		prev = z
	}
}

func TestComputeTransformIsPure(t *testing.T) {
	c := NewCamera()
	a := c.ComputeTransform()
	b := c.ComputeTransform()
	assert.Equal(t, a, b)
	assert.Equal(t, common.Vec3{0, 1, 1.5}, c.Eye())
}

func TestSetAspectReflectedInTransform(t *testing.T) {
	c := NewCamera()
	before := c.ComputeTransform()

	aspect := float32(800) / float32(450)
	c.SetAspect(aspect)
	assert.Equal(t, aspect, c.Aspect())

	after := c.ComputeTransform()
	assert.NotEqual(t, before, after)
	// x scale is f/aspect, y scale is untouched
	assert.InDelta(t, before[0]/aspect, after[0], 1e-6)
	assert.Equal(t, before[5], after[5])
}

func TestValidate(t *testing.T) {
	nan := float32(math.NaN())
	cases := map[string][]CameraBuilderOption{
		"zero near":          {WithNear(0)},
		"negative near":      {WithNear(-1)},
		"far below near":     {WithNear(5), WithFar(1)},
		"far equals near":    {WithNear(1), WithFar(1)},
		"zero aspect":        {WithAspect(0)},
		"nan aspect":         {WithAspect(nan)},
		"zero fov":           {WithFovY(0)},
		"straight fov":       {WithFovY(180)},
		"eye equals target":  {WithEye(1, 1, 1), WithTarget(1, 1, 1)},
		"up parallel to dir": {WithEye(0, 0, 2), WithUp(0, 0, 1)},
		"non-finite eye":     {WithEye(nan, 0, 2)},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			err := NewCamera(opts...).Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCamera)
		})
	}
}

func TestApplyRotationZeroIsIdentity(t *testing.T) {
	c := NewCamera(WithEye(0.3, 0.7, 2.1))
	eye, target := c.Eye(), c.Target()
	m := c.ComputeTransform()

	c.ApplyRotation(0, 0)
	assert.Equal(t, eye, c.Eye())
	assert.Equal(t, target, c.Target())
	assert.Equal(t, m, c.ComputeTransform())
}

func TestApplyRotationYaw(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 2))
	c.ApplyRotation(math.Pi/2, 0)

	eye := c.Eye()
	assert.InDelta(t, 2, eye[0], 1e-5)
	assert.InDelta(t, 0, eye[1], 1e-5)
	assert.InDelta(t, 0, eye[2], 1e-5)
	assert.Equal(t, common.Vec3{}, c.Target())
}

func TestApplyRotationPreservesDistance(t *testing.T) {
	c := NewCamera(WithEye(1, 0.5, 3))
	dist := c.Eye().Sub(c.Target()).Length()

	for i := 0; i < 200; i++ {
		c.ApplyRotation(0.037, 0.021*float32(i%7-3))
		assert.InDelta(t, dist, c.Eye().Sub(c.Target()).Length(), 1e-4)
	}
	require.NoError(t, c.Validate())
}

func TestApplyRotationPitchClampsAtPoles(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 2))
	c.ApplyRotation(0, 10)

	eye := c.Eye()
	assert.InDelta(t, 2*math.Cos(0.01), eye[1], 1e-4)
	assert.Greater(t, eye[2], float32(0), "eye stays on its side of the pole")
	require.NoError(t, c.Validate())

	// already at the clamp, pushing further changes nothing measurable
	c.ApplyRotation(0, 1)
	assert.InDelta(t, eye[1], c.Eye()[1], 1e-5)

	c.ApplyRotation(0, -20)
	assert.InDelta(t, -2*math.Cos(0.01), c.Eye()[1], 1e-4)
	require.NoError(t, c.Validate())
}

func TestApplyRotationPitchRaisesEye(t *testing.T) {
	c := NewCamera()
	c.ApplyRotation(0, 0.1)
	assert.Greater(t, c.Eye()[1], float32(0))
	assert.InDelta(t, 0, c.Eye()[0], 1e-6)
}

func TestFrustumContainsDefaultQuad(t *testing.T) {
	c := NewCamera()
	f := c.Frustum()
	for _, p := range []common.Vec3{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0.5, 0.5, 0}, {-0.5, 0.5, 0}} {
		assert.True(t, f.ContainsPoint(p), "corner %v", p)
	}
	assert.False(t, f.ContainsPoint(common.Vec3{0, 0, 5}))
}

func TestDragController(t *testing.T) {
	dc := NewDragController()
	assert.False(t, dc.Dragging())
	assert.Equal(t, DefaultMouseSensitivity, dc.MouseSensitivity())
	assert.InDelta(t, math.Pi/8/128, dc.MouseSensitivity(), 1e-9)

	_, _, ok := dc.Motion(10, 10)
	assert.False(t, ok, "motion without a press is ignored")

	dc.Press()
	require.True(t, dc.Dragging())
	yaw, pitch, ok := dc.Motion(128, 256)
	require.True(t, ok)
	assert.InDelta(t, -math.Pi/8, yaw, 1e-6, "dragging right swings the eye left")
	assert.InDelta(t, math.Pi/4, pitch, 1e-6, "dragging down raises the eye")

	dc.Release()
	assert.False(t, dc.Dragging())
}

func TestDragControllerOptions(t *testing.T) {
	dc := NewDragController(WithMouseSensitivity(0.01), WithInvertY(true))
	dc.Press()
	yaw, pitch, ok := dc.Motion(-4, 2)
	require.True(t, ok)
	assert.InDelta(t, 0.04, yaw, 1e-7)
	assert.InDelta(t, -0.02, pitch, 1e-7)
}

func TestPressReleaseWithoutMotionKeepsCamera(t *testing.T) {
	c := NewCamera()
	dc := NewDragController()
	eye, target := c.Eye(), c.Target()

	dc.Press()
	dc.Release()
	if yaw, pitch, ok := dc.Motion(0, 0); ok {
		c.ApplyRotation(yaw, pitch)
	}
	assert.Equal(t, eye, c.Eye())
	assert.Equal(t, target, c.Target())
}

func TestGPUCameraUniform(t *testing.T) {
	c := NewCamera()
	u := NewGPUCameraUniform(c)
	assert.Equal(t, 64, u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 64)
	m := c.ComputeTransform()
	assert.Equal(t, common.Float32sToBytes(m[:]), buf)
	assert.Contains(t, GPUCameraUniformSource, "mat4x4<f32>")
}
