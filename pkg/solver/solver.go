// Package solver restores closed-loop constraint satisfaction after joint
// edits. Only connect constraints are numerically enforced; weld,
// joint-coupling and distance constraints are carried in the model and
// validated, but not corrected here.
//
// The algorithm is greedy coordinate descent over the joints on the tree
// path from the root to the constraint's dependent body: each sweep trials
// value, value+step and value-step per joint, keeps whichever minimizes the
// anchor error, and stops early once the error drops below tolerance. It is
// deliberately not a Jacobian solver and carries no convergence guarantee
// for arbitrary topologies; on budget exhaustion the best state found is
// kept.
package solver

import (
	"log"

	"github.com/chazu/armature/pkg/config"
	"github.com/chazu/armature/pkg/kinematics"
	"github.com/chazu/armature/pkg/model"
)

// Result reports the outcome of solving one connect constraint.
type Result struct {
	Constraint string
	Converged  bool
	Error      float64 // final anchor distance
	Sweeps     int
}

// Solver holds the tunables and the diagnostic sink.
type Solver struct {
	Settings config.Solver

	// Logf receives debug diagnostics (inert constraints, convergence
	// vs budget exhaustion). Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// New creates a solver with the given settings.
func New(settings config.Solver) *Solver {
	return &Solver{Settings: settings, Logf: log.Printf}
}

func (s *Solver) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// Solve processes every connect constraint in the model in deterministic
// order. The model's world poses must be current on entry; they are
// current again on return. Results cover only constraints that were
// actually solvable (both bodies present).
func (s *Solver) Solve(m *model.Model) []Result {
	var results []Result
	for _, name := range m.ConstraintNames() {
		c := m.Constraints[name]
		if c.Type != model.ConstraintConnect {
			continue
		}
		if m.Link(c.Body1) == nil || m.Link(c.Body2) == nil {
			s.logf("solver: constraint %q references a missing body, skipping", name)
			continue
		}
		results = append(results, s.solveConnect(m, c))
	}
	return results
}

// anchorError measures the world-space distance between the constraint
// anchor as carried by each body.
func anchorError(m *model.Model, c *model.Constraint) float64 {
	p1, _ := kinematics.AnchorWorld(m, c.Body1, c.Anchor)
	p2, _ := kinematics.AnchorWorld(m, c.Body2, c.Anchor)
	return p1.Sub(p2).Length()
}

// solveConnect runs coordinate descent on the path joints for one
// constraint.
func (s *Solver) solveConnect(m *model.Model, c *model.Constraint) Result {
	res := Result{Constraint: c.Name}
	res.Error = anchorError(m, c)
	if res.Error < s.Settings.Tolerance {
		res.Converged = true
		return res
	}

	// Candidate joints: the tree path from the root to the dependent
	// body, fixed joints excluded.
	var candidates []*model.Joint
	for _, j := range m.PathToLink(c.Body2) {
		if !j.Fixed() {
			candidates = append(candidates, j)
		}
	}
	if len(candidates) == 0 {
		s.logf("solver: constraint %q has no movable joints on the path to %q", c.Name, c.Body2)
		return res
	}

	step := s.Settings.Step
	for sweep := 0; sweep < s.Settings.Iterations; sweep++ {
		res.Sweeps = sweep + 1
		improved := false
		for _, j := range candidates {
			if s.descendJoint(m, c, j, step, &res.Error) {
				improved = true
			}
			if res.Error < s.Settings.Tolerance {
				res.Converged = true
				s.logf("solver: constraint %q converged after %d sweeps (error %.3g)", c.Name, res.Sweeps, res.Error)
				return res
			}
		}
		// A sweep that moved nothing means the step is too coarse for
		// further progress; refine and keep sweeping.
		if !improved {
			step /= 2
		}
	}

	s.logf("solver: constraint %q exhausted %d sweeps, keeping best state (error %.3g)", c.Name, res.Sweeps, res.Error)
	return res
}

// descendJoint trial-evaluates value-step, value and value+step for one
// joint, commits the best of the three, and updates err. Trials re-run
// forward kinematics from the joint without committing; the winning value
// is committed last, so poses are always consistent on return. Reports
// whether the joint moved.
func (s *Solver) descendJoint(m *model.Model, c *model.Constraint, j *model.Joint, step float64, err *float64) bool {
	base := j.Value
	bestValue := base
	bestErr := *err

	for _, trial := range []float64{base - step, base + step} {
		trial = m.ClampJointValue(j, trial)
		if trial == base {
			continue
		}
		j.Value = trial
		if kinematics.Recompute(m, j.Name) != nil {
			continue
		}
		if e := anchorError(m, c); e < bestErr {
			bestErr = e
			bestValue = trial
		}
	}

	j.Value = bestValue
	// Re-run even when the value is unchanged: the last trial left the
	// subtree posed with a rejected value.
	if e := kinematics.Recompute(m, j.Name); e != nil {
		s.logf("solver: recompute from %q: %v", j.Name, e)
	}
	*err = bestErr
	return bestValue != base
}
