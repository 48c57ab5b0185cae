package manip

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/armature/pkg/config"
	"github.com/chazu/armature/pkg/kinematics"
	"github.com/chazu/armature/pkg/model"
	"github.com/chazu/armature/pkg/scene"
	"github.com/chazu/armature/pkg/solver"
)

// Events is the UI-collaborator callback surface. The core performs no UI
// mutation itself; the receiver is responsible for reflecting values into
// sliders and triggering redraws.
type Events interface {
	OnHover(link string)
	OnUnhover(link string)
	OnDragStart(link string)
	OnDragEnd(link string)
	OnUpdateJoint(joint string, value float64)
}

// NopEvents is an Events implementation that does nothing.
type NopEvents struct{}

func (NopEvents) OnHover(string)             {}
func (NopEvents) OnUnhover(string)           {}
func (NopEvents) OnDragStart(string)         {}
func (NopEvents) OnDragEnd(string)           {}
func (NopEvents) OnUpdateJoint(string, float64) {}

// dragState is the live state of one pointer drag.
type dragState struct {
	sel  Selection
	cam  Camera
	grab v3.Vec  // initial grab point, world space
	last v3.Vec  // previous sample point, world space
	dist float64 // ray distance to the grab point, for edge-on sampling
}

// Session wires the manipulation pipeline over one model: ray pick, delta,
// clamp, forward kinematics, loop-closure solve, UI callbacks. It is
// single-threaded and frame-driven; every method runs to completion inside
// the pointer-event handler that called it.
type Session struct {
	model    *model.Model
	scene    scene.Scene
	solver   *solver.Solver
	events   Events
	settings config.Manipulation

	hover hoverTracker
	drag  *dragState
}

// NewSession creates a session. A nil events sink is replaced with
// NopEvents.
func NewSession(m *model.Model, sc scene.Scene, sv *solver.Solver, ev Events, settings config.Manipulation) *Session {
	if ev == nil {
		ev = NopEvents{}
	}
	return &Session{
		model:    m,
		scene:    sc,
		solver:   sv,
		events:   ev,
		settings: settings,
	}
}

// Hover casts the pointer ray and reports hover transitions. A miss clears
// any current hover; no callbacks fire while nothing changes.
func (s *Session) Hover(r scene.Ray) {
	name := ""
	if hit, ok := s.scene.RayCast(r); ok {
		if sel, ok := Resolve(s.model, hit.Link); ok {
			name = sel.Link
		}
	}
	unhover, hover := s.hover.update(name)
	if unhover != "" {
		s.events.OnUnhover(unhover)
	}
	if hover != "" {
		s.events.OnHover(hover)
	}
}

// Press begins a drag at the pointer ray. Returns false (with no callbacks)
// when the ray hits nothing. A hit on a link with no movable joint up-chain
// still starts a selection drag; it just will not move anything.
func (s *Session) Press(r scene.Ray, cam Camera) bool {
	hit, ok := s.scene.RayCast(r)
	if !ok {
		return false
	}
	sel, ok := Resolve(s.model, hit.Link)
	if !ok {
		return false
	}
	s.drag = &dragState{sel: sel, cam: cam, grab: hit.Point, last: hit.Point, dist: hit.Distance}
	s.events.OnDragStart(sel.Link)
	return true
}

// Drag advances the active drag with a new pointer ray, committing at most
// one joint-value change and re-running forward kinematics (and the solver,
// when the model has constraints) before returning. A drag on a base link
// or a ray that misses the motion surface is a no-op.
func (s *Session) Drag(r scene.Ray) {
	if s.drag == nil || s.drag.sel.Joint == nil {
		return
	}
	j := s.drag.sel.Joint
	axis := kinematics.WorldAxis(s.model, j)
	pivot := kinematics.WorldPivot(s.model, j)

	var end v3.Vec
	var delta float64
	switch j.Type {
	case model.JointRevolute, model.JointContinuous:
		if axisEdgeOn(s.drag.cam, axis, s.drag.grab, s.settings.DegeneracyThreshold) {
			// Edge-on the pointer ray runs near-parallel to the
			// rotation plane, so intersecting it is unstable.
			// Sample the ray at the grab distance and measure
			// pointer travel along the camera tangent instead.
			end = rayAt(r, s.drag.dist)
			delta = s.drag.cam.Right.Dot(end.Sub(s.drag.last))
		} else {
			p, ok := rayPlane(r, pivot, axis)
			if !ok {
				return
			}
			end = p
			delta = RevoluteDelta(axis, pivot, s.drag.last, end)
		}
	case model.JointPrismatic:
		end = rayToAxis(r, pivot, axis)
		delta = PrismaticDelta(axis, s.drag.last, end)
	default:
		return
	}
	s.drag.last = end

	if delta == 0 {
		return
	}
	s.commit(j, j.Value+delta)
}

// Release ends the active drag. Any delta not yet committed is simply
// discarded; every commit was individually valid, so there is nothing to
// roll back.
func (s *Session) Release() {
	if s.drag == nil {
		return
	}
	link := s.drag.sel.Link
	s.drag = nil
	s.events.OnDragEnd(link)
}

// SetJointValue is the slider/scripting path: clamp, commit, recompute,
// solve. The same pipeline as dragging minus the geometric delta.
func (s *Session) SetJointValue(name string, value float64) error {
	j := s.model.Joint(name)
	if j == nil {
		return fmt.Errorf("unknown joint %q", name)
	}
	s.commit(j, value)
	return nil
}

// Solve forces a loop-closure solve outside the commit pipeline and
// reports every joint it moved. Useful after state changes that do not go
// through a joint write, like toggling the limit override.
func (s *Session) Solve() []solver.Result {
	if s.solver == nil || !s.model.HasConstraints() {
		return nil
	}
	return s.solveAndReport("")
}

// commit applies one requested joint value: clamp, write, recompute the
// affected subtree, then restore loop closure if the model carries
// constraints. Forward kinematics is always current when commit returns.
func (s *Session) commit(j *model.Joint, requested float64) {
	before := j.Value
	Commit(s.model, j, requested)
	if j.Value == before {
		return
	}
	if err := kinematics.Recompute(s.model, j.Name); err != nil {
		return
	}
	s.events.OnUpdateJoint(j.Name, j.Value)
	if s.model.HasConstraints() && s.solver != nil {
		s.solveAndReport(j.Name)
	}
}

// solveAndReport runs the loop-closure solver and reports every joint the
// solver moved (except the excluded one, typically the joint being edited,
// which already got its own update), so sliders stay in sync with solver
// corrections.
func (s *Session) solveAndReport(exclude string) []solver.Result {
	type snap struct {
		name  string
		value float64
	}
	names := s.model.JointNames()
	snaps := make([]snap, 0, len(names))
	for _, name := range names {
		snaps = append(snaps, snap{name, s.model.Joints[name].Value})
	}

	results := s.solver.Solve(s.model)

	for _, sn := range snaps {
		if sn.name == exclude {
			continue
		}
		if v := s.model.Joints[sn.name].Value; v != sn.value {
			s.events.OnUpdateJoint(sn.name, v)
		}
	}
	return results
}
