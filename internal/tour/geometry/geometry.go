// Package geometry holds the coordinate model shared by the panorama
// renderer, the hotspot store and the gesture detector: a 500-unit cube
// centered on the viewer, with hotspot anchors canonicalized onto the
// sphere of radius InnerRadius inside it.
package geometry

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// CubeSize is the edge length of the inward-facing room cube.
	CubeSize = 500.0

	// InnerRadius is the fixed distance from the origin at which hotspot
	// markers are anchored, slightly inside the cube's inscribed sphere.
	InnerRadius = 250.0 - 2.0
)

// ErrZeroVector is returned when a direction cannot be derived from a point.
var ErrZeroVector = errors.New("geometry: zero-length vector")

// Canonical projects an arbitrary intersection point onto the hotspot
// sphere: normalize, then scale to InnerRadius. Stored hotspot positions are
// re-canonicalized on every use; authored data predating this invariant may
// sit at any scale.
func Canonical(p r3.Vec) (r3.Vec, error) {
	n := r3.Norm(p)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return r3.Vec{}, ErrZeroVector
	}
	return r3.Scale(InnerRadius/n, p), nil
}

// Ray is a half-line from Origin along the unit direction Dir.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// NDC converts a client-space pixel coordinate into normalized device
// coordinates relative to the render surface bounds: x,y in [-1, 1] with
// +y up, matching the raycasting convention of the renderer.
type Rect struct {
	Left, Top, Width, Height float64
}

// NDC maps a client coordinate into the [-1,1] NDC square.
func NDC(clientX, clientY float64, r Rect) (x, y float64) {
	x = (clientX-r.Left)/r.Width*2 - 1
	y = -((clientY-r.Top)/r.Height*2 - 1)
	return x, y
}

// Camera is the minimal perspective camera state the detector needs to
// project a screen point into the scene: position, orthonormal basis and
// vertical field of view.
type Camera struct {
	Position r3.Vec
	Forward  r3.Vec // unit, view direction
	Up       r3.Vec // unit
	FovY     float64
	Aspect   float64
}

// RayThrough builds the world-space ray through the given NDC point.
func (c Camera) RayThrough(ndcX, ndcY float64) Ray {
	right := r3.Unit(r3.Cross(c.Forward, c.Up))
	up := r3.Unit(r3.Cross(right, c.Forward))

	halfH := math.Tan(c.FovY / 2)
	halfW := halfH * c.Aspect

	dir := r3.Add(c.Forward,
		r3.Add(r3.Scale(ndcX*halfW, right), r3.Scale(ndcY*halfH, up)))
	return Ray{Origin: c.Position, Dir: r3.Unit(dir)}
}

// RayCubeIntersect intersects a ray against the inside of the room cube and
// returns the nearest hit point. The viewer sits inside the cube, so a ray
// from the origin always exits through exactly one face; ok is false only
// when the ray starts outside the cube pointing away, or is degenerate.
func RayCubeIntersect(r Ray) (r3.Vec, bool) {
	const half = CubeSize / 2

	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	origin := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float64{r.Dir.X, r.Dir.Y, r.Dir.Z}

	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < -half || origin[i] > half {
				return r3.Vec{}, false
			}
			continue
		}
		t1 := (-half - origin[i]) / dir[i]
		t2 := (half - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return r3.Vec{}, false
		}
	}

	// Nearest hit in front of the origin. Inside the cube tMin is negative,
	// so the exit face at tMax is the wall the viewer is looking at.
	t := tMin
	if t < 0 {
		t = tMax
	}
	if t < 0 {
		return r3.Vec{}, false
	}
	return r3.Add(r.Origin, r3.Scale(t, r.Dir)), true
}
