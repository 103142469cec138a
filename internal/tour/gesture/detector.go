// Package gesture classifies pointer input over the panorama surface as a
// drag, single tap or double tap, and resolves qualifying taps into 3D hit
// points on the room cube. The classifier is a plain state machine over
// timestamps and pixel distances, so it is testable without a real input
// surface.
package gesture

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/salehouse/tour3d/internal/tour/geometry"
)

const (
	// DefaultDoubleDelay is the window within which two taps make a double tap.
	DefaultDoubleDelay = 300 * time.Millisecond

	// DefaultMoveTolerance is the pixel displacement beyond which a gesture
	// counts as a drag and taps are suppressed.
	DefaultMoveTolerance = 5.0

	// TouchAction is the CSS touch-action value the embedding surface must
	// apply when mounting the detector. Without it the browser's native
	// pinch/scroll gestures fight the camera orbit.
	TouchAction = "none"
)

// Action is the classification of a completed gesture.
type Action int

const (
	ActionNone Action = iota
	ActionDrag
	ActionTap
	ActionDoubleTap
)

func (a Action) String() string {
	switch a {
	case ActionDrag:
		return "drag"
	case ActionTap:
		return "tap"
	case ActionDoubleTap:
		return "double-tap"
	default:
		return "none"
	}
}

// Config tunes the classifier thresholds.
type Config struct {
	// DoubleTapOnly fires the hit callback only on double taps; single taps
	// arm the double-tap window instead of firing. This is the marker
	// placement mode. When false every qualifying tap fires.
	DoubleTapOnly bool
	DoubleDelay   time.Duration
	MoveTolerance float64
}

// Detector consumes pointer events and invokes OnPoint with the 3D point
// where a qualifying tap's ray hits the room cube. A ray miss is a no-op.
type Detector struct {
	cfg     Config
	camera  func() geometry.Camera
	rect    func() geometry.Rect
	onPoint func(r3.Vec)

	downX, downY float64
	moved        bool
	lastTap      time.Time
}

// NewDetector wires a detector to its render surface. camera and rect are
// sampled at event time so the surface may resize or orbit freely.
func NewDetector(cfg Config, camera func() geometry.Camera, rect func() geometry.Rect, onPoint func(r3.Vec)) *Detector {
	if cfg.DoubleDelay <= 0 {
		cfg.DoubleDelay = DefaultDoubleDelay
	}
	if cfg.MoveTolerance <= 0 {
		cfg.MoveTolerance = DefaultMoveTolerance
	}
	return &Detector{cfg: cfg, camera: camera, rect: rect, onPoint: onPoint}
}

// PointerDown arms the gesture at a client coordinate.
func (d *Detector) PointerDown(x, y float64, _ time.Time) {
	d.downX, d.downY = x, y
	d.moved = false
}

// PointerMove accumulates displacement. Crossing the tolerance once marks
// the whole gesture as a drag; later moves back under tolerance do not
// un-drag it.
func (d *Detector) PointerMove(x, y float64, _ time.Time) {
	if math.Abs(x-d.downX) > d.cfg.MoveTolerance || math.Abs(y-d.downY) > d.cfg.MoveTolerance {
		d.moved = true
	}
}

// PointerUp completes the gesture and returns its classification. Drags
// suppress tap actions even when timed inside the double-tap window.
func (d *Detector) PointerUp(x, y float64, now time.Time) Action {
	if d.moved {
		d.lastTap = time.Time{}
		return ActionDrag
	}

	if d.cfg.DoubleTapOnly {
		if !d.lastTap.IsZero() && now.Sub(d.lastTap) < d.cfg.DoubleDelay {
			d.lastTap = time.Time{}
			d.fire(x, y)
			return ActionDoubleTap
		}
		d.lastTap = now
		return ActionTap
	}

	d.fire(x, y)
	return ActionTap
}

// DoubleClick handles a native double-click event from surfaces that emit
// one directly.
func (d *Detector) DoubleClick(x, y float64, _ time.Time) Action {
	if !d.cfg.DoubleTapOnly {
		return ActionNone
	}
	d.lastTap = time.Time{}
	d.fire(x, y)
	return ActionDoubleTap
}

// HitPoint projects a client coordinate through the camera onto the room
// cube. ok is false on a ray miss.
func (d *Detector) HitPoint(x, y float64) (r3.Vec, bool) {
	ndcX, ndcY := geometry.NDC(x, y, d.rect())
	ray := d.camera().RayThrough(ndcX, ndcY)
	return geometry.RayCubeIntersect(ray)
}

func (d *Detector) fire(x, y float64) {
	if d.onPoint == nil {
		return
	}
	if p, ok := d.HitPoint(x, y); ok {
		d.onPoint(p)
	}
}
