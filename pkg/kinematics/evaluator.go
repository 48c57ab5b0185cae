// Package kinematics propagates joint values through the kinematic tree to
// produce world poses for every link (forward kinematics). It is the only
// writer of model.Link.World; everything else treats world poses as
// read-only derived state.
package kinematics

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/armature/pkg/model"
)

// JointTransform returns the joint's full local transform: the fixed origin
// composed with the variable transform derived from its type and value.
// Fixed joints contribute only their origin.
func JointTransform(j *model.Joint) sdf.M44 {
	m := j.Origin.Matrix()
	switch j.Type {
	case model.JointRevolute, model.JointContinuous:
		m = m.Mul(sdf.Rotate3d(j.AxisOrDefault(), j.Value))
	case model.JointPrismatic:
		m = m.Mul(sdf.Translate3d(j.AxisOrDefault().MulScalar(j.Value)))
	case model.JointFixed:
		// origin only
	}
	return m
}

// Recompute updates the world pose of every link reachable from the named
// joint, or the whole tree when from is empty. It must run after the last
// committed joint change in a batch and before any consumer reads world
// poses; it never mutates joint values.
func Recompute(m *model.Model, from string) error {
	if from == "" {
		root := m.RootLink()
		if root == nil {
			return fmt.Errorf("model has no root link")
		}
		root.World = sdf.Identity3d()
		for _, jname := range m.ChildJoints(root.Name) {
			if err := propagate(m, m.Joints[jname], root.World); err != nil {
				return err
			}
		}
		return nil
	}

	j := m.Joint(from)
	if j == nil {
		return fmt.Errorf("unknown joint %q", from)
	}
	parent := m.Link(j.ParentLink)
	if parent == nil {
		return fmt.Errorf("joint %q: unknown parent link %q", from, j.ParentLink)
	}
	return propagate(m, j, parent.World)
}

// propagate walks root-to-leaf composing each joint's transform onto its
// parent link's world pose.
func propagate(m *model.Model, j *model.Joint, parentWorld sdf.M44) error {
	child := m.Link(j.ChildLink)
	if child == nil {
		return fmt.Errorf("joint %q: unknown child link %q", j.Name, j.ChildLink)
	}
	child.World = parentWorld.Mul(JointTransform(j))
	for _, jname := range m.ChildJoints(child.Name) {
		if err := propagate(m, m.Joints[jname], child.World); err != nil {
			return err
		}
	}
	return nil
}

// mulDirection applies only the rotation part of a transform to a vector.
func mulDirection(m sdf.M44, v v3.Vec) v3.Vec {
	return m.MulPosition(v).Sub(m.MulPosition(v3.Vec{}))
}

// JointFrame returns the joint's world frame: the parent link's world pose
// composed with the joint origin. The variable part of the joint is not
// included, so the frame is the pivot about (or along) which the joint
// moves.
func JointFrame(m *model.Model, j *model.Joint) sdf.M44 {
	parent := m.Link(j.ParentLink)
	if parent == nil {
		return j.Origin.Matrix()
	}
	return parent.World.Mul(j.Origin.Matrix())
}

// WorldPivot returns the joint origin's position in world space.
func WorldPivot(m *model.Model, j *model.Joint) v3.Vec {
	return JointFrame(m, j).MulPosition(v3.Vec{})
}

// WorldAxis returns the joint axis as a unit vector in world space. Only
// the rotation of the joint frame is applied; translation is ignored.
func WorldAxis(m *model.Model, j *model.Joint) v3.Vec {
	return mulDirection(JointFrame(m, j), j.AxisOrDefault()).Normalize()
}

// AnchorWorld transforms a point in the named link's local frame to world
// space using the link's current (derived) pose. The second return reports
// whether the link exists.
func AnchorWorld(m *model.Model, link string, p v3.Vec) (v3.Vec, bool) {
	l := m.Link(link)
	if l == nil {
		return v3.Vec{}, false
	}
	return l.World.MulPosition(p), true
}
