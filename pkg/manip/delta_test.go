package manip

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/armature/pkg/scene"
)

const eps = 1e-9

func TestRevoluteDeltaQuarterTurn(t *testing.T) {
	axis := v3.Vec{Z: 1}
	pivot := v3.Vec{}
	got := RevoluteDelta(axis, pivot, v3.Vec{X: 1}, v3.Vec{Y: 1})
	if math.Abs(got-math.Pi/2) > eps {
		t.Errorf("delta = %g, want %g", got, math.Pi/2)
	}
}

func TestRevoluteDeltaSign(t *testing.T) {
	axis := v3.Vec{Z: 1}
	pivot := v3.Vec{}
	got := RevoluteDelta(axis, pivot, v3.Vec{Y: 1}, v3.Vec{X: 1})
	if math.Abs(got+math.Pi/2) > eps {
		t.Errorf("reversed delta = %g, want %g", got, -math.Pi/2)
	}
}

func TestRevoluteDeltaOffAxisPoints(t *testing.T) {
	// Points with an axis-parallel component project onto the rotation
	// plane first; the Z offsets must not affect the angle.
	axis := v3.Vec{Z: 1}
	pivot := v3.Vec{X: 2}
	got := RevoluteDelta(axis, pivot, v3.Vec{X: 3, Z: 5}, v3.Vec{X: 2, Y: 1, Z: -2})
	if math.Abs(got-math.Pi/2) > eps {
		t.Errorf("delta = %g, want %g", got, math.Pi/2)
	}
}

func TestRevoluteDeltaDegenerate(t *testing.T) {
	axis := v3.Vec{Z: 1}
	// start sits on the axis; its projection is zero length.
	if got := RevoluteDelta(axis, v3.Vec{}, v3.Vec{Z: 2}, v3.Vec{X: 1}); got != 0 {
		t.Errorf("degenerate delta = %g, want 0", got)
	}
}

func TestAxisEdgeOn(t *testing.T) {
	axis := v3.Vec{Z: 1}
	grab := v3.Vec{X: 1}
	cases := []struct {
		name string
		cam  Camera
		want bool
	}{
		{"down the axis", Camera{Position: v3.Vec{X: 1, Z: 10}}, false},
		{"in the rotation plane", Camera{Position: v3.Vec{Y: -10}}, true},
		{"slightly out of plane", Camera{Position: v3.Vec{Y: -10, Z: 1}}, true},
		{"well out of plane", Camera{Position: v3.Vec{Y: -3, Z: 10}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := axisEdgeOn(tc.cam, axis, grab, 0.3); got != tc.want {
				t.Errorf("axisEdgeOn = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRayAt(t *testing.T) {
	// The direction is normalized, so t is a distance.
	r := scene.Ray{Origin: v3.Vec{X: 1, Z: 10}, Dir: v3.Vec{Z: -2}}
	p := rayAt(r, 4)
	if math.Abs(p.X-1) > eps || math.Abs(p.Y) > eps || math.Abs(p.Z-6) > eps {
		t.Errorf("rayAt = %v, want (1, 0, 6)", p)
	}
}

func TestPrismaticDeltaLinear(t *testing.T) {
	axis := v3.Vec{X: 1}
	if got := PrismaticDelta(axis, v3.Vec{}, v3.Vec{X: 2}); math.Abs(got-2) > eps {
		t.Errorf("delta = %g, want 2", got)
	}
	if got := PrismaticDelta(axis, v3.Vec{}, v3.Vec{Y: 2}); math.Abs(got) > eps {
		t.Errorf("perpendicular delta = %g, want 0", got)
	}
}

func TestRayPlane(t *testing.T) {
	r := scene.Ray{Origin: v3.Vec{X: 1, Y: 2, Z: 10}, Dir: v3.Vec{Z: -2}}
	p, ok := rayPlane(r, v3.Vec{}, v3.Vec{Z: 1})
	if !ok {
		t.Fatal("ray should hit the plane")
	}
	if math.Abs(p.X-1) > eps || math.Abs(p.Y-2) > eps || math.Abs(p.Z) > eps {
		t.Errorf("intersection = %v", p)
	}

	// Parallel ray misses.
	if _, ok := rayPlane(scene.Ray{Origin: v3.Vec{Z: 1}, Dir: v3.Vec{X: 1}}, v3.Vec{}, v3.Vec{Z: 1}); ok {
		t.Error("parallel ray should not intersect")
	}
	// Plane behind the origin misses.
	if _, ok := rayPlane(scene.Ray{Origin: v3.Vec{Z: -1}, Dir: v3.Vec{Z: -1}}, v3.Vec{}, v3.Vec{Z: 1}); ok {
		t.Error("plane behind the ray should not intersect")
	}
}

func TestRayToAxis(t *testing.T) {
	// Ray pointing down at (1.5, 0, *): closest axis point is x=1.5.
	r := scene.Ray{Origin: v3.Vec{X: 1.5, Z: 10}, Dir: v3.Vec{Z: -1}}
	p := rayToAxis(r, v3.Vec{}, v3.Vec{X: 1})
	if math.Abs(p.X-1.5) > eps || math.Abs(p.Y) > eps || math.Abs(p.Z) > eps {
		t.Errorf("closest point = %v, want (1.5, 0, 0)", p)
	}

	// Ray parallel to the axis projects its origin onto the axis.
	r = scene.Ray{Origin: v3.Vec{X: 3, Y: 1}, Dir: v3.Vec{X: 1}}
	p = rayToAxis(r, v3.Vec{}, v3.Vec{X: 1})
	if math.Abs(p.X-3) > eps {
		t.Errorf("parallel closest point = %v, want x=3", p)
	}
}
