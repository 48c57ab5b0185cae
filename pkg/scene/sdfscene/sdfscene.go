// Package sdfscene implements the scene.Scene interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Each link owns zero or more
// signed-distance solids expressed in the link's local frame; ray casting
// transforms the ray into each link's frame and sphere-traces the SDF, and
// mesh extraction runs marching cubes once per solid.
package sdfscene

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/armature/pkg/model"
	"github.com/chazu/armature/pkg/scene"
)

// Compile-time interface check.
var _ scene.Scene = (*Scene)(nil)

const (
	// defaultMeshCells controls marching cubes tessellation resolution.
	defaultMeshCells = 64
	// defaultMaxDistance bounds the sphere-tracing march.
	defaultMaxDistance = 1000.0
	// defaultTolerance is the surface-hit distance for sphere tracing.
	defaultTolerance = 1e-4
	// maxMarchSteps bounds the number of sphere-tracing iterations.
	maxMarchSteps = 512
)

// Options mark a solid's role in the scene. Collision and auxiliary
// geometry is never considered by RayCast, matching what a picker wants
// from a viewer scene.
type Options struct {
	Visible   bool
	Collision bool // collision-only geometry, not pickable
	Auxiliary bool // helper visualization (axes, markers), not pickable
}

type solidEntry struct {
	link  string
	s     sdf.SDF3
	opts  Options
	index int // insertion order, for deterministic mesh output
}

// Scene is an SDF-backed scene over a kinematic model. World poses are
// read from the model, so the usual ordering rule applies: run forward
// kinematics before casting rays.
type Scene struct {
	model   *model.Model
	entries []solidEntry

	// MeshCells is the marching cubes resolution used by Meshes.
	MeshCells int
	// MaxDistance bounds ray marching.
	MaxDistance float64
	// Tolerance is the surface-hit threshold for ray marching.
	Tolerance float64
}

// New creates an empty scene over the given model.
func New(m *model.Model) *Scene {
	return &Scene{
		model:       m,
		MeshCells:   defaultMeshCells,
		MaxDistance: defaultMaxDistance,
		Tolerance:   defaultTolerance,
	}
}

// AddSolid attaches a solid to the named link, in the link's local frame.
func (sc *Scene) AddSolid(link string, s sdf.SDF3, opts Options) error {
	if sc.model.Link(link) == nil {
		return fmt.Errorf("sdfscene: unknown link %q", link)
	}
	sc.entries = append(sc.entries, solidEntry{
		link:  link,
		s:     s,
		opts:  opts,
		index: len(sc.entries),
	})
	return nil
}

// AddBox attaches a visible box solid centered at offset in the link frame.
func (sc *Scene) AddBox(link string, size, offset v3.Vec) error {
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		return fmt.Errorf("sdfscene: box for link %q: %w", link, err)
	}
	s = sdf.Transform3D(s, sdf.Translate3d(offset))
	return sc.AddSolid(link, s, Options{Visible: true})
}

// AddSphere attaches a visible sphere solid centered at offset in the link
// frame.
func (sc *Scene) AddSphere(link string, radius float64, offset v3.Vec) error {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return fmt.Errorf("sdfscene: sphere for link %q: %w", link, err)
	}
	s = sdf.Transform3D(s, sdf.Translate3d(offset))
	return sc.AddSolid(link, s, Options{Visible: true})
}

// AddCylinder attaches a visible Z-aligned cylinder solid centered at
// offset in the link frame.
func (sc *Scene) AddCylinder(link string, height, radius float64, offset v3.Vec) error {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return fmt.Errorf("sdfscene: cylinder for link %q: %w", link, err)
	}
	s = sdf.Transform3D(s, sdf.Translate3d(offset))
	return sc.AddSolid(link, s, Options{Visible: true})
}

// mulDirection applies only the rotation part of a transform to a vector.
func mulDirection(m sdf.M44, v v3.Vec) v3.Vec {
	return m.MulPosition(v).Sub(m.MulPosition(v3.Vec{}))
}

// RayCast returns the nearest hit over visible, non-collision,
// non-auxiliary solids. The ray is transformed into each link's local
// frame; link poses are rigid, so marched distances compare directly
// across links.
func (sc *Scene) RayCast(r scene.Ray) (scene.Hit, bool) {
	dirLen := r.Dir.Length()
	if dirLen == 0 {
		return scene.Hit{}, false
	}
	dir := r.Dir.MulScalar(1 / dirLen)

	best := scene.Hit{Distance: math.Inf(1)}
	found := false
	for _, e := range sc.entries {
		if !e.opts.Visible || e.opts.Collision || e.opts.Auxiliary {
			continue
		}
		l := sc.model.Link(e.link)
		if l == nil {
			continue
		}
		inv := l.World.Inverse()
		localOrigin := inv.MulPosition(r.Origin)
		localDir := mulDirection(inv, dir)

		t, ok := sc.march(e.s, localOrigin, localDir)
		if !ok || t >= best.Distance {
			continue
		}
		best = scene.Hit{
			Link:     e.link,
			Point:    r.Origin.Add(dir.MulScalar(t)),
			Distance: t,
		}
		found = true
	}
	if !found {
		return scene.Hit{}, false
	}
	return best, true
}

// march sphere-traces an SDF from origin along dir and returns the
// parameter of the first surface crossing.
func (sc *Scene) march(s sdf.SDF3, origin, dir v3.Vec) (float64, bool) {
	t := 0.0
	for i := 0; i < maxMarchSteps && t < sc.MaxDistance; i++ {
		p := origin.Add(dir.MulScalar(t))
		d := s.Evaluate(p)
		if d < sc.Tolerance {
			return t, true
		}
		t += d
	}
	return 0, false
}

// Meshes extracts one triangle mesh per visible solid, in link-local
// coordinates, in insertion order. Collision and auxiliary solids are
// skipped.
func (sc *Scene) Meshes() []*scene.Mesh {
	var meshes []*scene.Mesh
	for _, e := range sc.entries {
		if !e.opts.Visible || e.opts.Collision || e.opts.Auxiliary {
			continue
		}
		meshes = append(meshes, toMesh(e.s, e.link, sc.MeshCells))
	}
	return meshes
}

// toMesh converts a solid to a triangle mesh using marching cubes.
func toMesh(s sdf.SDF3, link string, cells int) *scene.Mesh {
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &scene.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		Link:     link,
	}
}
