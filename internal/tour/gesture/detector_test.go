package gesture

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/salehouse/tour3d/internal/tour/geometry"
)

func testCamera() geometry.Camera {
	return geometry.Camera{
		Forward: r3.Vec{Z: 1},
		Up:      r3.Vec{Y: 1},
		FovY:    75 * math.Pi / 180,
		Aspect:  800.0 / 600.0,
	}
}

func testRect() geometry.Rect {
	return geometry.Rect{Width: 800, Height: 600}
}

func newTestDetector(cfg Config, hits *[]r3.Vec) *Detector {
	return NewDetector(cfg, testCamera, testRect,
		func(p r3.Vec) { *hits = append(*hits, p) })
}

func TestTapFiresHitPoint(t *testing.T) {
	var hits []r3.Vec
	d := newTestDetector(Config{}, &hits)

	now := time.Now()
	d.PointerDown(400, 300, now)
	action := d.PointerUp(400, 300, now.Add(50*time.Millisecond))

	assert.Equal(t, ActionTap, action)
	assert.Len(t, hits, 1)
	// Screen center looks straight down +Z onto the far wall.
	assert.InDelta(t, geometry.CubeSize/2, hits[0].Z, 1e-9)
}

func TestDragSuppressesTap(t *testing.T) {
	var hits []r3.Vec
	d := newTestDetector(Config{DoubleTapOnly: true}, &hits)

	// down / move beyond tolerance / up, twice within the double window
	now := time.Now()
	for i := 0; i < 2; i++ {
		d.PointerDown(100, 100, now)
		d.PointerMove(120, 100, now.Add(10*time.Millisecond))
		action := d.PointerUp(120, 100, now.Add(20*time.Millisecond))
		assert.Equal(t, ActionDrag, action)
		now = now.Add(100 * time.Millisecond)
	}
	assert.Empty(t, hits, "drags never place markers")
}

func TestMoveWithinToleranceStillTaps(t *testing.T) {
	var hits []r3.Vec
	d := newTestDetector(Config{}, &hits)

	now := time.Now()
	d.PointerDown(100, 100, now)
	d.PointerMove(103, 102, now)
	action := d.PointerUp(103, 102, now.Add(30*time.Millisecond))

	assert.Equal(t, ActionTap, action)
	assert.Len(t, hits, 1)
}

func TestDoubleTapDetection(t *testing.T) {
	var hits []r3.Vec
	d := newTestDetector(Config{DoubleTapOnly: true}, &hits)

	now := time.Now()
	d.PointerDown(200, 200, now)
	assert.Equal(t, ActionTap, d.PointerUp(200, 200, now))
	assert.Empty(t, hits, "first tap only arms the window")

	second := now.Add(150 * time.Millisecond)
	d.PointerDown(200, 200, second)
	assert.Equal(t, ActionDoubleTap, d.PointerUp(200, 200, second))
	assert.Len(t, hits, 1)
}

func TestSlowSecondTapIsNotDouble(t *testing.T) {
	var hits []r3.Vec
	d := newTestDetector(Config{DoubleTapOnly: true}, &hits)

	now := time.Now()
	d.PointerDown(200, 200, now)
	d.PointerUp(200, 200, now)

	late := now.Add(400 * time.Millisecond)
	d.PointerDown(200, 200, late)
	assert.Equal(t, ActionTap, d.PointerUp(200, 200, late))
	assert.Empty(t, hits)

	// ...but it re-arms the window for a third tap.
	third := late.Add(100 * time.Millisecond)
	d.PointerDown(200, 200, third)
	assert.Equal(t, ActionDoubleTap, d.PointerUp(200, 200, third))
	assert.Len(t, hits, 1)
}

func TestDragResetsDoubleTapWindow(t *testing.T) {
	var hits []r3.Vec
	d := newTestDetector(Config{DoubleTapOnly: true}, &hits)

	now := time.Now()
	d.PointerDown(200, 200, now)
	d.PointerUp(200, 200, now) // arms the window

	d.PointerDown(200, 200, now.Add(50*time.Millisecond))
	d.PointerMove(300, 200, now.Add(60*time.Millisecond))
	assert.Equal(t, ActionDrag, d.PointerUp(300, 200, now.Add(70*time.Millisecond)))

	// The tap after the drag starts a fresh window instead of completing one.
	d.PointerDown(200, 200, now.Add(100*time.Millisecond))
	assert.Equal(t, ActionTap, d.PointerUp(200, 200, now.Add(100*time.Millisecond)))
	assert.Empty(t, hits)
}

func TestNativeDoubleClick(t *testing.T) {
	var hits []r3.Vec
	d := newTestDetector(Config{DoubleTapOnly: true}, &hits)

	assert.Equal(t, ActionDoubleTap, d.DoubleClick(400, 300, time.Now()))
	assert.Len(t, hits, 1)

	single := newTestDetector(Config{}, &hits)
	assert.Equal(t, ActionNone, single.DoubleClick(400, 300, time.Now()))
}

func TestHitPointMissIsNoOp(t *testing.T) {
	var hits []r3.Vec
	// Camera outside the cube pointing away: every ray misses.
	cam := func() geometry.Camera {
		return geometry.Camera{
			Position: r3.Vec{X: geometry.CubeSize * 2},
			Forward:  r3.Vec{X: 1},
			Up:       r3.Vec{Y: 1},
			FovY:     math.Pi / 4,
			Aspect:   1,
		}
	}
	d := NewDetector(Config{}, cam, testRect, func(p r3.Vec) { hits = append(hits, p) })

	now := time.Now()
	d.PointerDown(400, 300, now)
	assert.Equal(t, ActionTap, d.PointerUp(400, 300, now))
	assert.Empty(t, hits, "a ray miss fires no callback")
}
