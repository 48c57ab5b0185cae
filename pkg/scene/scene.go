// Package scene defines the boundary to the renderer/scene collaborator.
// The manipulation core needs exactly one query from the scene: cast a
// world-space ray against the visible, non-collision, non-auxiliary meshes
// and report the nearest hit with the identity of the link that owns it.
// Backends (sdfscene) implement Scene behind this interface.
package scene

import v3 "github.com/deadsy/sdfx/vec/v3"

// Ray is a world-space ray. Dir need not be normalized by the caller;
// implementations normalize it.
type Ray struct {
	Origin v3.Vec
	Dir    v3.Vec
}

// Hit is the nearest mesh intersection of a ray.
type Hit struct {
	Link     string // owning link name; opaque identity beyond lookup
	Point    v3.Vec // world-space intersection point
	Distance float64
}

// Scene is the ray-intersection query a manipulation backend must provide.
type Scene interface {
	// RayCast returns the nearest hit over visible, non-collision,
	// non-auxiliary meshes, or false when the ray hits nothing.
	RayCast(r Ray) (Hit, bool)
}
