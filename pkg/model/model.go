package model

import (
	"fmt"
	"sort"

	"github.com/deadsy/sdfx/sdf"
)

// Model is the kinematic model: arenas of links, joints and constraints
// keyed by name, plus the root link identifier. Restricted to parent/child
// joint edges the link graph is a tree rooted at Root; constraints are
// extra edges that may close loops and are never used for forward
// kinematics.
type Model struct {
	Links       map[string]*Link
	Joints      map[string]*Joint
	Constraints map[string]*Constraint
	Root        string

	// IgnoreLimits disables joint-limit clamping model-wide. It is owned
	// here so every consumer reads the same flag.
	IgnoreLimits bool

	children map[string][]string // parent link name -> child joint names, sorted
}

// New creates an empty model.
func New() *Model {
	return &Model{
		Links:       make(map[string]*Link),
		Joints:      make(map[string]*Joint),
		Constraints: make(map[string]*Constraint),
		children:    make(map[string][]string),
	}
}

// AddLink adds a link to the model. The link's world pose starts as
// identity until the first forward-kinematics pass.
func (m *Model) AddLink(l *Link) error {
	if _, exists := m.Links[l.Name]; exists {
		return fmt.Errorf("duplicate link name %q", l.Name)
	}
	l.World = sdf.Identity3d()
	m.Links[l.Name] = l
	return nil
}

// AddJoint adds a joint and indexes it under its parent link. The child
// link's ParentJoint back-reference is set if the child is already present.
func (m *Model) AddJoint(j *Joint) error {
	if _, exists := m.Joints[j.Name]; exists {
		return fmt.Errorf("duplicate joint name %q", j.Name)
	}
	m.Joints[j.Name] = j
	kids := append(m.children[j.ParentLink], j.Name)
	sort.Strings(kids)
	m.children[j.ParentLink] = kids
	if child, ok := m.Links[j.ChildLink]; ok {
		child.ParentJoint = j.Name
	}
	return nil
}

// AddConstraint adds a constraint. References are not checked here;
// constraints naming missing bodies are inert (see Validate).
func (m *Model) AddConstraint(c *Constraint) error {
	if _, exists := m.Constraints[c.Name]; exists {
		return fmt.Errorf("duplicate constraint name %q", c.Name)
	}
	m.Constraints[c.Name] = c
	return nil
}

// Link returns the named link, or nil.
func (m *Model) Link(name string) *Link { return m.Links[name] }

// Joint returns the named joint, or nil.
func (m *Model) Joint(name string) *Joint { return m.Joints[name] }

// RootLink returns the root link, or nil if the model is empty or Root is
// unset.
func (m *Model) RootLink() *Link { return m.Links[m.Root] }

// ChildJoints returns the names of the joints whose parent is the given
// link, in deterministic (sorted) order.
func (m *Model) ChildJoints(link string) []string { return m.children[link] }

// ParentJoint returns the joint whose child is the given link, or nil for
// the root link.
func (m *Model) ParentJoint(link string) *Joint {
	l := m.Links[link]
	if l == nil || l.ParentJoint == "" {
		return nil
	}
	return m.Joints[l.ParentJoint]
}

// PathToLink returns the ordered list of joints on the tree path from the
// root to the named link. An unknown link yields a nil path.
func (m *Model) PathToLink(link string) []*Joint {
	var rev []*Joint
	cur := m.Links[link]
	if cur == nil {
		return nil
	}
	for cur != nil && cur.Name != m.Root {
		j := m.ParentJoint(cur.Name)
		if j == nil {
			break
		}
		rev = append(rev, j)
		cur = m.Links[j.ParentLink]
	}
	// Reverse into root-to-leaf order.
	path := make([]*Joint, len(rev))
	for i, j := range rev {
		path[len(rev)-1-i] = j
	}
	return path
}

// ClampJointValue returns the value that would be committed for a
// requested joint value: clamped to the joint's limits unless the
// model-wide IgnoreLimits flag is set or the joint carries no limits.
// Continuous joints are unlimited by definition and always pass through.
// The rule lives here so interactive edits and solver trials cannot drift
// apart.
func (m *Model) ClampJointValue(j *Joint, requested float64) float64 {
	if m.IgnoreLimits || j.Limits == nil || j.Type == JointContinuous {
		return requested
	}
	if requested < j.Limits.Lower {
		return j.Limits.Lower
	}
	if requested > j.Limits.Upper {
		return j.Limits.Upper
	}
	return requested
}

// HasConstraints reports whether the model carries any constraints, which
// gates the loop-closure solve after committed joint edits.
func (m *Model) HasConstraints() bool { return len(m.Constraints) > 0 }

// ConstraintNames returns constraint names in deterministic order.
func (m *Model) ConstraintNames() []string {
	names := make([]string, 0, len(m.Constraints))
	for name := range m.Constraints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JointNames returns joint names in deterministic order.
func (m *Model) JointNames() []string {
	names := make([]string, 0, len(m.Joints))
	for name := range m.Joints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LinkNames returns link names in deterministic order.
func (m *Model) LinkNames() []string {
	names := make([]string, 0, len(m.Links))
	for name := range m.Links {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
