package sdfscene

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/armature/pkg/kinematics"
	"github.com/chazu/armature/pkg/model"
	"github.com/chazu/armature/pkg/scene"
)

// pair builds base -(lift prismatic, axis X)-> arm and recomputes poses.
func pair(t *testing.T) *model.Model {
	t.Helper()
	m, err := model.Build(model.Description{
		Root:  "base",
		Links: []model.LinkDesc{{Name: "base"}, {Name: "arm"}},
		Joints: []model.JointDesc{
			{Name: "lift", Type: "prismatic", Parent: "base", Child: "arm",
				Axis: &[3]float64{1, 0, 0}},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := kinematics.Recompute(m, ""); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	return m
}

func downRay(x, y float64) scene.Ray {
	return scene.Ray{Origin: v3.Vec{X: x, Y: y, Z: 10}, Dir: v3.Vec{Z: -1}}
}

func TestRayCastHitsBox(t *testing.T) {
	m := pair(t)
	sc := New(m)
	if err := sc.AddBox("base", v3.Vec{X: 1, Y: 1, Z: 1}, v3.Vec{}); err != nil {
		t.Fatalf("AddBox: %v", err)
	}

	hit, ok := sc.RayCast(downRay(0, 0))
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Link != "base" {
		t.Errorf("hit link = %q, want base", hit.Link)
	}
	// Unit box centered at the origin; the top face is at z = 0.5.
	if math.Abs(hit.Point.Z-0.5) > 1e-3 {
		t.Errorf("hit point Z = %g, want 0.5", hit.Point.Z)
	}
	if math.Abs(hit.Distance-9.5) > 1e-3 {
		t.Errorf("hit distance = %g, want 9.5", hit.Distance)
	}
}

func TestRayCastMiss(t *testing.T) {
	m := pair(t)
	sc := New(m)
	if err := sc.AddBox("base", v3.Vec{X: 1, Y: 1, Z: 1}, v3.Vec{}); err != nil {
		t.Fatalf("AddBox: %v", err)
	}
	if _, ok := sc.RayCast(downRay(5, 5)); ok {
		t.Error("ray far from the box should miss")
	}
}

func TestRayCastZeroDirection(t *testing.T) {
	sc := New(pair(t))
	if _, ok := sc.RayCast(scene.Ray{Origin: v3.Vec{Z: 10}}); ok {
		t.Error("zero-direction ray should miss")
	}
}

func TestRayCastFollowsJointMotion(t *testing.T) {
	m := pair(t)
	sc := New(m)
	if err := sc.AddBox("arm", v3.Vec{X: 1, Y: 1, Z: 1}, v3.Vec{}); err != nil {
		t.Fatalf("AddBox: %v", err)
	}

	// At rest the arm box sits at the origin.
	if _, ok := sc.RayCast(downRay(0, 0)); !ok {
		t.Fatal("expected a hit at the rest pose")
	}

	// Slide the arm 3 units along X; the box must move with it.
	m.Joints["lift"].Value = 3
	if err := kinematics.Recompute(m, "lift"); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if _, ok := sc.RayCast(downRay(0, 0)); ok {
		t.Error("box should have moved out from under the ray")
	}
	hit, ok := sc.RayCast(downRay(3, 0))
	if !ok {
		t.Fatal("expected a hit at the displaced pose")
	}
	if hit.Link != "arm" {
		t.Errorf("hit link = %q, want arm", hit.Link)
	}
}

func TestRayCastSkipsCollisionAndAuxiliary(t *testing.T) {
	m := pair(t)
	sc := New(m)

	addBoxWith := func(opts Options) {
		t.Helper()
		s, err := sdf.Box3D(v3.Vec{X: 1, Y: 1, Z: 1}, 0)
		if err != nil {
			t.Fatalf("box: %v", err)
		}
		if err := sc.AddSolid("base", s, opts); err != nil {
			t.Fatalf("AddSolid: %v", err)
		}
	}
	addBoxWith(Options{Visible: true, Collision: true})
	addBoxWith(Options{Visible: true, Auxiliary: true})
	addBoxWith(Options{Visible: false})

	if _, ok := sc.RayCast(downRay(0, 0)); ok {
		t.Error("collision/auxiliary/hidden solids must not be pickable")
	}
}

func TestRayCastNearestWins(t *testing.T) {
	m := pair(t)
	sc := New(m)
	// Base box at the origin, arm sphere directly above it.
	if err := sc.AddBox("base", v3.Vec{X: 1, Y: 1, Z: 1}, v3.Vec{}); err != nil {
		t.Fatalf("AddBox: %v", err)
	}
	if err := sc.AddSphere("arm", 0.5, v3.Vec{Z: 3}); err != nil {
		t.Fatalf("AddSphere: %v", err)
	}

	hit, ok := sc.RayCast(downRay(0, 0))
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Link != "arm" {
		t.Errorf("hit link = %q, want the nearer arm sphere", hit.Link)
	}
	if math.Abs(hit.Point.Z-3.5) > 1e-3 {
		t.Errorf("hit point Z = %g, want 3.5", hit.Point.Z)
	}
}

func TestAddSolidUnknownLink(t *testing.T) {
	sc := New(pair(t))
	if err := sc.AddBox("ghost", v3.Vec{X: 1, Y: 1, Z: 1}, v3.Vec{}); err == nil {
		t.Error("unknown link should error")
	}
}

func TestMeshes(t *testing.T) {
	m := pair(t)
	sc := New(m)
	sc.MeshCells = 16 // keep the test quick
	if err := sc.AddBox("base", v3.Vec{X: 1, Y: 1, Z: 1}, v3.Vec{}); err != nil {
		t.Fatalf("AddBox: %v", err)
	}
	if err := sc.AddSphere("arm", 0.5, v3.Vec{}); err != nil {
		t.Fatalf("AddSphere: %v", err)
	}

	meshes := sc.Meshes()
	if len(meshes) != 2 {
		t.Fatalf("got %d meshes, want 2", len(meshes))
	}
	if meshes[0].Link != "base" || meshes[1].Link != "arm" {
		t.Errorf("mesh links = %q, %q", meshes[0].Link, meshes[1].Link)
	}
	for _, mesh := range meshes {
		if len(mesh.Vertices) == 0 {
			t.Errorf("mesh for %q has no vertices", mesh.Link)
		}
		if len(mesh.Vertices) != len(mesh.Normals) {
			t.Errorf("mesh for %q: %d vertex floats vs %d normal floats",
				mesh.Link, len(mesh.Vertices), len(mesh.Normals))
		}
		if len(mesh.Indices)*3 != len(mesh.Vertices) {
			t.Errorf("mesh for %q: %d indices vs %d vertex floats",
				mesh.Link, len(mesh.Indices), len(mesh.Vertices))
		}
	}
}
