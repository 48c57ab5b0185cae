package model

import (
	"encoding/json"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Description is the JSON interchange format supplied by the parsing
// collaborator (the layer that reads URDF/SDF/MJCF and the like). The core
// never parses robot source formats itself; it only builds a Model from an
// already-parsed description.
type Description struct {
	Name        string           `json:"name,omitempty"`
	Root        string           `json:"root,omitempty"` // inferred when empty
	Links       []LinkDesc       `json:"links"`
	Joints      []JointDesc      `json:"joints"`
	Constraints []ConstraintDesc `json:"constraints,omitempty"`
}

// LinkDesc describes one rigid link. Visuals are the rigid-body payload:
// the core carries them opaquely on the Link and only the renderer/scene
// collaborator interprets them.
type LinkDesc struct {
	Name    string       `json:"name"`
	Visuals []VisualDesc `json:"visuals,omitempty"`
}

// VisualDesc describes one solid attached to a link, in the link's local
// frame. Collision and auxiliary solids are carried for completeness but
// are never pickable.
type VisualDesc struct {
	Kind      string     `json:"kind"` // "box", "cylinder" or "sphere"
	Size      [3]float64 `json:"size,omitempty"`
	Radius    float64    `json:"radius,omitempty"`
	Height    float64    `json:"height,omitempty"`
	Offset    [3]float64 `json:"offset,omitempty"`
	Collision bool       `json:"collision,omitempty"`
	Auxiliary bool       `json:"auxiliary,omitempty"`
}

// JointDesc describes one joint. Origin and RPY are in the parent link's
// frame; Axis is in the joint's own local frame and may be omitted.
type JointDesc struct {
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Parent string      `json:"parent"`
	Child  string      `json:"child"`
	Origin [3]float64  `json:"origin,omitempty"`
	RPY    [3]float64  `json:"rpy,omitempty"`
	Axis   *[3]float64 `json:"axis,omitempty"`
	Limits *[2]float64 `json:"limits,omitempty"` // [lower, upper]
	Value  float64     `json:"value,omitempty"`
}

// ConstraintDesc describes one constraint.
type ConstraintDesc struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Body1        string     `json:"body1,omitempty"`
	Body2        string     `json:"body2,omitempty"`
	Anchor       [3]float64 `json:"anchor,omitempty"`
	TorqueScale  float64    `json:"torque_scale,omitempty"`
	Joint1       string     `json:"joint1,omitempty"`
	Joint2       string     `json:"joint2,omitempty"`
	Coefficients []float64  `json:"coefficients,omitempty"`
}

func toVec(a [3]float64) v3.Vec {
	return v3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

// Build constructs a Model from a description. Malformed structure (unknown
// joint types, duplicate names, no root) is an error; dangling constraint
// references are not, since such constraints are inert by design.
func Build(d Description) (*Model, error) {
	m := New()

	for _, ld := range d.Links {
		if ld.Name == "" {
			return nil, fmt.Errorf("link with empty name")
		}
		l := &Link{Name: ld.Name}
		if len(ld.Visuals) > 0 {
			l.Payload = ld.Visuals
		}
		if err := m.AddLink(l); err != nil {
			return nil, err
		}
	}

	for _, jd := range d.Joints {
		jt, err := ParseJointType(jd.Type)
		if err != nil {
			return nil, fmt.Errorf("joint %q: %w", jd.Name, err)
		}
		j := &Joint{
			Name:       jd.Name,
			Type:       jt,
			ParentLink: jd.Parent,
			ChildLink:  jd.Child,
			Origin: Origin{
				Translation: toVec(jd.Origin),
				RPY:         toVec(jd.RPY),
			},
			Value: jd.Value,
		}
		if jd.Axis != nil {
			// A zero axis is treated as unspecified so the model stays
			// manipulable with the default axis.
			if axis := toVec(*jd.Axis); axis.Dot(axis) > 0 {
				j.Axis = &axis
			}
		}
		if jd.Limits != nil {
			j.Limits = &Limits{Lower: jd.Limits[0], Upper: jd.Limits[1]}
		}
		if err := m.AddJoint(j); err != nil {
			return nil, err
		}
	}

	for _, cd := range d.Constraints {
		ct, err := ParseConstraintType(cd.Type)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %w", cd.Name, err)
		}
		c := &Constraint{
			Name:         cd.Name,
			Type:         ct,
			Body1:        cd.Body1,
			Body2:        cd.Body2,
			Anchor:       toVec(cd.Anchor),
			TorqueScale:  cd.TorqueScale,
			Joint1:       cd.Joint1,
			Joint2:       cd.Joint2,
			Coefficients: cd.Coefficients,
		}
		if err := m.AddConstraint(c); err != nil {
			return nil, err
		}
	}

	root := d.Root
	if root == "" {
		root = inferRoot(m)
	}
	if root == "" {
		return nil, fmt.Errorf("model has no root link")
	}
	if m.Links[root] == nil {
		return nil, fmt.Errorf("root link %q not present in model", root)
	}
	m.Root = root
	return m, nil
}

// FromJSON decodes a JSON description and builds a Model from it.
func FromJSON(data []byte) (*Model, error) {
	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding model description: %w", err)
	}
	return Build(d)
}

// inferRoot finds the unique link that is no joint's child. Returns "" when
// no such link exists (cyclic or empty input).
func inferRoot(m *Model) string {
	isChild := make(map[string]bool)
	for _, j := range m.Joints {
		isChild[j.ChildLink] = true
	}
	root := ""
	for _, name := range m.LinkNames() {
		if !isChild[name] {
			if root != "" {
				// Ambiguous; let validation report the details.
				return root
			}
			root = name
		}
	}
	return root
}
