package model

import "testing"

// twoChain builds base -> (r1) -> armA -> (fix) -> tipA plus base -> (r2) -> armB.
func twoChain(t *testing.T) *Model {
	t.Helper()
	m, err := Build(Description{
		Root: "base",
		Links: []LinkDesc{
			{Name: "base"}, {Name: "armA"}, {Name: "tipA"}, {Name: "armB"},
		},
		Joints: []JointDesc{
			{Name: "r1", Type: "revolute", Parent: "base", Child: "armA", Axis: &[3]float64{0, 0, 1}, Limits: &[2]float64{-1, 1}},
			{Name: "fix", Type: "fixed", Parent: "armA", Child: "tipA", Origin: [3]float64{1, 0, 0}},
			{Name: "r2", Type: "continuous", Parent: "base", Child: "armB", Axis: &[3]float64{0, 0, 1}},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestBuildAndLookup(t *testing.T) {
	m := twoChain(t)

	if m.Root != "base" {
		t.Errorf("root = %q, want base", m.Root)
	}
	if m.Link("armA") == nil {
		t.Fatal("Link(armA) returned nil")
	}
	if m.Link("nope") != nil {
		t.Error("Link should return nil for missing name")
	}
	if j := m.Joint("r1"); j == nil || j.Type != JointRevolute {
		t.Errorf("Joint(r1) = %+v, want revolute", j)
	}
	if m.ParentJoint("armA").Name != "r1" {
		t.Errorf("ParentJoint(armA) = %v, want r1", m.ParentJoint("armA"))
	}
	if m.ParentJoint("base") != nil {
		t.Error("root link should have no parent joint")
	}
}

func TestChildJointsDeterministic(t *testing.T) {
	m := twoChain(t)
	kids := m.ChildJoints("base")
	if len(kids) != 2 || kids[0] != "r1" || kids[1] != "r2" {
		t.Errorf("ChildJoints(base) = %v, want [r1 r2]", kids)
	}
}

func TestPathToLink(t *testing.T) {
	m := twoChain(t)

	path := m.PathToLink("tipA")
	if len(path) != 2 || path[0].Name != "r1" || path[1].Name != "fix" {
		names := make([]string, len(path))
		for i, j := range path {
			names[i] = j.Name
		}
		t.Errorf("PathToLink(tipA) = %v, want [r1 fix]", names)
	}
	if got := m.PathToLink("base"); len(got) != 0 {
		t.Errorf("PathToLink(base) should be empty, got %d joints", len(got))
	}
	if got := m.PathToLink("missing"); got != nil {
		t.Errorf("PathToLink(missing) = %v, want nil", got)
	}
}

func TestDuplicateNamesRejected(t *testing.T) {
	m := New()
	if err := m.AddLink(&Link{Name: "a"}); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if err := m.AddLink(&Link{Name: "a"}); err == nil {
		t.Error("duplicate link name should be rejected")
	}
	if err := m.AddJoint(&Joint{Name: "j"}); err != nil {
		t.Fatalf("AddJoint: %v", err)
	}
	if err := m.AddJoint(&Joint{Name: "j"}); err == nil {
		t.Error("duplicate joint name should be rejected")
	}
}

func TestAxisOrDefault(t *testing.T) {
	j := &Joint{Name: "j", Type: JointRevolute}
	if got := j.AxisOrDefault(); got != DefaultAxis {
		t.Errorf("AxisOrDefault with nil axis = %v, want %v", got, DefaultAxis)
	}
}

func TestClampJointValue(t *testing.T) {
	m := New()
	limited := &Joint{Name: "r", Type: JointRevolute, Limits: &Limits{Lower: -1, Upper: 1}}
	spin := &Joint{Name: "c", Type: JointContinuous, Limits: &Limits{Lower: -1, Upper: 1}}
	free := &Joint{Name: "p", Type: JointPrismatic}

	cases := []struct {
		name      string
		joint     *Joint
		ignore    bool
		requested float64
		want      float64
	}{
		{"within limits", limited, false, 0.5, 0.5},
		{"above upper", limited, false, 3, 1},
		{"below lower", limited, false, -3, -1},
		{"override", limited, true, 3, 3},
		{"continuous ignores stray limits", spin, false, 9, 9},
		{"no limits", free, false, 7, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m.IgnoreLimits = tc.ignore
			if got := m.ClampJointValue(tc.joint, tc.requested); got != tc.want {
				t.Errorf("ClampJointValue(%g) = %g, want %g", tc.requested, got, tc.want)
			}
		})
	}
}

func TestHasConstraints(t *testing.T) {
	m := twoChain(t)
	if m.HasConstraints() {
		t.Error("model without constraints reports HasConstraints")
	}
	if err := m.AddConstraint(&Constraint{Name: "c", Type: ConstraintConnect, Body1: "armA", Body2: "armB"}); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}
	if !m.HasConstraints() {
		t.Error("model with a constraint reports no constraints")
	}
}
