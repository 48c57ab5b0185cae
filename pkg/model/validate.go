package model

import "fmt"

// Severity indicates whether a validation finding makes the model unusable
// or is merely advisory.
type Severity int

const (
	SeverityError   Severity = iota // model is structurally unsound
	SeverityWarning                 // advisory; model remains usable
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Name     string // offending link/joint/constraint name, "" for model-level
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Name, e.Message)
}

// Validate runs structural checks on the model and returns all findings.
// An empty slice means the model is sound. Constraints referencing missing
// bodies or joints produce warnings, not errors: such constraints are inert
// and are skipped by the solver. Validate never mutates the model.
func Validate(m *Model) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateRoot(m)...)
	errs = append(errs, validateJointRefs(m)...)
	errs = append(errs, validateTree(m)...)
	errs = append(errs, validateLimits(m)...)
	errs = append(errs, validateConstraintRefs(m)...)
	return errs
}

func validateRoot(m *Model) []ValidationError {
	var errs []ValidationError
	if m.Root == "" {
		errs = append(errs, ValidationError{
			Message:  "model has no root link",
			Severity: SeverityError,
		})
	} else if m.Links[m.Root] == nil {
		errs = append(errs, ValidationError{
			Name:     m.Root,
			Message:  "root link not present in model",
			Severity: SeverityError,
		})
	}
	return errs
}

func validateJointRefs(m *Model) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]string) // child link -> joint claiming it
	for _, name := range m.JointNames() {
		j := m.Joints[name]
		if m.Links[j.ParentLink] == nil {
			errs = append(errs, ValidationError{
				Name:     name,
				Message:  fmt.Sprintf("parent link %q does not exist", j.ParentLink),
				Severity: SeverityError,
			})
		}
		if m.Links[j.ChildLink] == nil {
			errs = append(errs, ValidationError{
				Name:     name,
				Message:  fmt.Sprintf("child link %q does not exist", j.ChildLink),
				Severity: SeverityError,
			})
		}
		if prev, ok := seen[j.ChildLink]; ok {
			errs = append(errs, ValidationError{
				Name:     name,
				Message:  fmt.Sprintf("link %q is the child of both %q and %q", j.ChildLink, prev, name),
				Severity: SeverityError,
			})
		} else {
			seen[j.ChildLink] = name
		}
	}
	return errs
}

// validateTree checks that parent/child joint edges form an acyclic tree,
// using DFS with 3-color marking over the child-joint index.
func validateTree(m *Model) []ValidationError {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)
	var errs []ValidationError

	var visit func(link string) bool
	visit = func(link string) bool {
		switch color[link] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				Name:     link,
				Message:  "cycle detected in parent/child joint edges",
				Severity: SeverityError,
			})
			return true
		}
		color[link] = gray
		for _, jname := range m.ChildJoints(link) {
			j := m.Joints[jname]
			if m.Links[j.ChildLink] == nil {
				continue // reported by validateJointRefs
			}
			if visit(j.ChildLink) {
				return true
			}
		}
		color[link] = black
		return false
	}

	for _, name := range m.LinkNames() {
		if color[name] == white {
			visit(name)
		}
	}
	return errs
}

func validateLimits(m *Model) []ValidationError {
	var errs []ValidationError
	for _, name := range m.JointNames() {
		j := m.Joints[name]
		if j.Limits != nil && j.Limits.Lower > j.Limits.Upper {
			errs = append(errs, ValidationError{
				Name:     name,
				Message:  fmt.Sprintf("limits [%g, %g] are inverted", j.Limits.Lower, j.Limits.Upper),
				Severity: SeverityError,
			})
		}
		if j.Type == JointContinuous && j.Limits != nil {
			errs = append(errs, ValidationError{
				Name:     name,
				Message:  "continuous joint carries limits; they are ignored",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func validateConstraintRefs(m *Model) []ValidationError {
	var errs []ValidationError
	for _, name := range m.ConstraintNames() {
		c := m.Constraints[name]
		if c.Type == ConstraintJointCoupling {
			for _, jn := range []string{c.Joint1, c.Joint2} {
				if m.Joints[jn] == nil {
					errs = append(errs, ValidationError{
						Name:     name,
						Message:  fmt.Sprintf("references missing joint %q; constraint is inert", jn),
						Severity: SeverityWarning,
					})
				}
			}
			continue
		}
		for _, ln := range []string{c.Body1, c.Body2} {
			if m.Links[ln] == nil {
				errs = append(errs, ValidationError{
					Name:     name,
					Message:  fmt.Sprintf("references missing link %q; constraint is inert", ln),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}
