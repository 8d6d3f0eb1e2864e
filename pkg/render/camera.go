package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Near, FOV, Speed and RotationSpeed are the fixed tunables of §4.1 (Scale,
// derived from Near and FOV, is the package variable below). They are
// compile-time constants, not runtime configuration: the spec calls them
// out by name as "fixed constants."
const (
	Near          = 0.1
	FOV           = math.Pi / 5
	Speed         = 0.1
	RotationSpeed = 0.3
	// Background is the clear color, packed 0x00RRGGBB.
	Background = 0x1E1E1E
)

// Scale is near*tan(fov/2), per §4.1.
var Scale = Near * math.Tan(FOV/2)

// Input is one frame's worth of camera input: four non-negative axis
// amounts and an absolute mouse position (§6).
type Input struct {
	Up, Down, Left, Right float64
	MouseX, MouseY        float64
}

// Camera holds the first-person camera state of §3/§4.1: a world-space
// position and an orthonormal basis (AX, AY, AZ), with AZ pointing behind
// the camera (the camera looks down -AZ).
type Camera struct {
	Position math3d.Vec3
	AX, AY, AZ math3d.Vec3

	mouseX, mouseY float64
	dirty          bool
}

// NewCamera returns a camera at the origin looking down -Z, with AZ
// pointing behind it (+Z), matching a right-handed world.
func NewCamera() *Camera {
	return &Camera{
		Position: math3d.Zero3(),
		AX:       math3d.V3(1, 0, 0),
		AY:       math3d.V3(0, 1, 0),
		AZ:       math3d.V3(0, 0, 1),
		dirty:    true,
	}
}

// SetPosition places the camera at pos, leaving its basis untouched.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.dirty = true
}

// Update applies one frame's input to the camera per §4.1: translation
// along the current basis, then (if the mouse moved) a shortest-arc
// rotation of the basis toward the new look direction.
func (c *Camera) Update(in Input) {
	if in.Up > 0 || in.Down > 0 || in.Left > 0 || in.Right > 0 {
		delta := c.AX.Scale(in.Right - in.Left).Add(c.AZ.Scale(in.Down - in.Up))
		c.Position = c.Position.Add(delta.Scale(Speed))
		c.dirty = true
	}

	if in.MouseX != c.mouseX || in.MouseY != c.mouseY {
		zPrime := c.AX.Scale(c.mouseX - in.MouseX).
			Add(c.AY.Scale(c.mouseY - in.MouseY)).
			Add(c.AZ.Scale(100 / RotationSpeed)).
			Normalize()

		q := math3d.QuatFromTo(c.AZ, zPrime)
		c.AX = q.RotateVec3(c.AX).Normalize()
		c.AY = q.RotateVec3(c.AY).Normalize()
		c.AZ = zPrime

		c.mouseX, c.mouseY = in.MouseX, in.MouseY
		c.dirty = true
	}
}

// ToCameraSpace transforms a world-space point into camera space: the rows
// of the cached 3x4 matrix M of §4.1 are (AX, -AX.P), (AY, -AY.P), (AZ,
// -AZ.P), so M*v == ToCameraSpace(v) for any world point v.
func (c *Camera) ToCameraSpace(v math3d.Vec3) math3d.Vec3 {
	d := v.Sub(c.Position)
	return math3d.V3(c.AX.Dot(d), c.AY.Dot(d), c.AZ.Dot(d))
}

// ToCameraSpaceDir transforms a world-space direction (e.g. a normal) into
// camera space, ignoring translation.
func (c *Camera) ToCameraSpaceDir(v math3d.Vec3) math3d.Vec3 {
	return math3d.V3(c.AX.Dot(v), c.AY.Dot(v), c.AZ.Dot(v))
}

// Orthonormal reports whether AX, AY, AZ currently form an orthonormal
// basis to within tol. Exercised by tests against §8 invariant 1.
func (c *Camera) Orthonormal(tol float64) bool {
	within := func(v, want float64) bool { return math.Abs(v-want) <= tol }
	return within(c.AX.Len(), 1) && within(c.AY.Len(), 1) && within(c.AZ.Len(), 1) &&
		within(c.AX.Dot(c.AY), 0) && within(c.AY.Dot(c.AZ), 0) && within(c.AZ.Dot(c.AX), 0)
}
