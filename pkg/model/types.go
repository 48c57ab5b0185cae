package model

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// JointType enumerates the supported joint kinds.
type JointType int

const (
	JointRevolute   JointType = iota // 1-DOF rotation about Axis, with limits
	JointContinuous                  // 1-DOF rotation, no limits
	JointPrismatic                   // 1-DOF translation along Axis
	JointFixed                       // rigid connection, no DOF
)

func (t JointType) String() string {
	switch t {
	case JointRevolute:
		return "revolute"
	case JointContinuous:
		return "continuous"
	case JointPrismatic:
		return "prismatic"
	case JointFixed:
		return "fixed"
	default:
		return fmt.Sprintf("JointType(%d)", int(t))
	}
}

// ParseJointType converts a description string to a JointType.
func ParseJointType(s string) (JointType, error) {
	switch s {
	case "revolute":
		return JointRevolute, nil
	case "continuous":
		return JointContinuous, nil
	case "prismatic":
		return JointPrismatic, nil
	case "fixed":
		return JointFixed, nil
	}
	return 0, fmt.Errorf("unknown joint type %q", s)
}

// ConstraintType enumerates the supported constraint kinds.
type ConstraintType int

const (
	ConstraintConnect       ConstraintType = iota // coincident anchor points on two bodies
	ConstraintWeld                                // coincident anchor frames (recognized, not solved)
	ConstraintJointCoupling                       // polynomial coupling of two joints (recognized, not solved)
	ConstraintDistance                            // fixed anchor separation (recognized, not solved)
)

func (t ConstraintType) String() string {
	switch t {
	case ConstraintConnect:
		return "connect"
	case ConstraintWeld:
		return "weld"
	case ConstraintJointCoupling:
		return "joint-coupling"
	case ConstraintDistance:
		return "distance"
	default:
		return fmt.Sprintf("ConstraintType(%d)", int(t))
	}
}

// ParseConstraintType converts a description string to a ConstraintType.
func ParseConstraintType(s string) (ConstraintType, error) {
	switch s {
	case "connect":
		return ConstraintConnect, nil
	case "weld":
		return ConstraintWeld, nil
	case "joint-coupling":
		return ConstraintJointCoupling, nil
	case "distance":
		return ConstraintDistance, nil
	}
	return 0, fmt.Errorf("unknown constraint type %q", s)
}

// Limits bounds a joint's value. Absent limits (nil on the Joint) mean the
// joint is unbounded, which is the normal case for continuous joints.
type Limits struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Origin is a joint's fixed local transform, expressed in the parent link's
// frame: a translation followed by a roll/pitch/yaw rotation.
type Origin struct {
	Translation v3.Vec
	RPY         v3.Vec // roll (X), pitch (Y), yaw (Z), radians
}

// Matrix returns the origin as a 4x4 transform. Rotation follows the
// Rz(yaw) * Ry(pitch) * Rx(roll) convention.
func (o Origin) Matrix() sdf.M44 {
	m := sdf.Translate3d(o.Translation)
	m = m.Mul(sdf.RotateZ(o.RPY.Z))
	m = m.Mul(sdf.RotateY(o.RPY.Y))
	m = m.Mul(sdf.RotateX(o.RPY.X))
	return m
}

// DefaultAxis is used when a joint's description carries no axis. Defaulting
// instead of failing keeps partially specified models manipulable.
var DefaultAxis = v3.Vec{X: 0, Y: 0, Z: 1}

// Link is a rigid body in the kinematic tree.
type Link struct {
	Name        string
	ParentJoint string // name of the joint whose child this link is; "" for the root
	Payload     any    // opaque rigid-body payload owned by the renderer collaborator

	// World is the link's derived world pose. It is written only by
	// kinematics.Recompute and is never ground truth: joint values are.
	World sdf.M44
}

// Joint is a 1-DOF (or fixed) connection between two links.
type Joint struct {
	Name       string
	Type       JointType
	ParentLink string
	ChildLink  string
	Origin     Origin
	Axis       *v3.Vec // unit vector in the joint's local frame; nil if unspecified
	Limits     *Limits // nil means unbounded
	Value      float64 // radians or meters
}

// AxisOrDefault returns the joint's axis, falling back to DefaultAxis when
// the description did not specify one.
func (j *Joint) AxisOrDefault() v3.Vec {
	if j.Axis == nil {
		return DefaultAxis
	}
	return *j.Axis
}

// Fixed reports whether the joint has no degree of freedom.
func (j *Joint) Fixed() bool { return j.Type == JointFixed }

// Constraint is an extra edge layered over the tree. Only names are stored;
// referenced links/joints are resolved against the model at use time, so a
// constraint naming a missing body is inert rather than fatal.
type Constraint struct {
	Name  string
	Type  ConstraintType
	Body1 string
	Body2 string
	// Anchor is a point in Body1's local frame where the two bodies are
	// supposed to coincide (connect/weld/distance).
	Anchor      v3.Vec
	TorqueScale float64

	// joint-coupling only.
	Joint1       string
	Joint2       string
	Coefficients []float64
}
