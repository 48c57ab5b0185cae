package manip

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/armature/pkg/scene"
)

// Camera carries the view information the revolute drag heuristic needs:
// the eye position and the view-relative tangent directions in world space.
type Camera struct {
	Position v3.Vec
	Right    v3.Vec // world-space direction of screen +X
	Up       v3.Vec // world-space direction of screen +Y
}

// projectOnPlane removes the component of v along the unit normal n.
func projectOnPlane(v, n v3.Vec) v3.Vec {
	return v.Sub(n.MulScalar(v.Dot(n)))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// RevoluteDelta computes the signed rotation (radians) about the world axis
// through pivot that carries start to end, by projecting both points onto
// the rotation plane. Degenerate projections (a point on the axis) yield
// zero.
func RevoluteDelta(axis, pivot, start, end v3.Vec) float64 {
	p1 := projectOnPlane(start.Sub(pivot), axis)
	p2 := projectOnPlane(end.Sub(pivot), axis)
	if p1.Length() == 0 || p2.Length() == 0 {
		return 0
	}
	angle := math.Acos(clamp(p1.Normalize().Dot(p2.Normalize()), -1, 1))
	if p1.Cross(p2).Dot(axis) < 0 {
		return -angle
	}
	return angle
}

// axisEdgeOn reports whether the view direction toward the grab point lies
// too close to the rotation plane (|dot with axis| at or below threshold)
// for plane projection to work. Edge-on, the pointer ray is near-parallel
// to the plane and ray/plane intersection is unstable, so drags in that
// regime measure pointer travel along the camera's right tangent against a
// fixed-distance ray sample instead. The threshold is a tunable heuristic,
// not a physical constant.
func axisEdgeOn(cam Camera, axis, grab v3.Vec, threshold float64) bool {
	view := grab.Sub(cam.Position)
	if l := view.Length(); l > 0 {
		view = view.MulScalar(1 / l)
	}
	return math.Abs(view.Dot(axis)) <= threshold
}

// rayAt returns the point at parameter t along the ray, with the direction
// normalized so t is a distance.
func rayAt(r scene.Ray, t float64) v3.Vec {
	dir := r.Dir
	if l := dir.Length(); l > 0 {
		dir = dir.MulScalar(1 / l)
	}
	return r.Origin.Add(dir.MulScalar(t))
}

// PrismaticDelta computes the translation distance along the world axis
// that carries start to end. Motion perpendicular to the axis contributes
// nothing.
func PrismaticDelta(axisWorld, start, end v3.Vec) float64 {
	return end.Sub(start).Dot(axisWorld)
}

// rayPlane intersects a ray with the plane through point with unit normal.
// Returns false when the ray is parallel to the plane or the intersection
// is behind the origin.
func rayPlane(r scene.Ray, point, normal v3.Vec) (v3.Vec, bool) {
	dir := r.Dir
	if l := dir.Length(); l > 0 {
		dir = dir.MulScalar(1 / l)
	}
	denom := dir.Dot(normal)
	if math.Abs(denom) < 1e-9 {
		return v3.Vec{}, false
	}
	t := point.Sub(r.Origin).Dot(normal) / denom
	if t < 0 {
		return v3.Vec{}, false
	}
	return r.Origin.Add(dir.MulScalar(t)), true
}

// rayToAxis returns the point on the line (point, axis) closest to the ray.
// For rays nearly parallel to the axis the origin's projection onto the
// axis is used.
func rayToAxis(r scene.Ray, point, axis v3.Vec) v3.Vec {
	dir := r.Dir
	if l := dir.Length(); l > 0 {
		dir = dir.MulScalar(1 / l)
	}
	w := r.Origin.Sub(point)
	b := dir.Dot(axis)
	d := dir.Dot(w)
	e := axis.Dot(w)
	denom := 1 - b*b
	if math.Abs(denom) < 1e-9 {
		return point.Add(axis.MulScalar(e))
	}
	s := (e - b*d) / denom
	return point.Add(axis.MulScalar(s))
}
