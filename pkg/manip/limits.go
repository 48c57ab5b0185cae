package manip

import "github.com/chazu/armature/pkg/model"

// Clamp returns the value that would be committed for a requested joint
// value. The clamping rule (limits, model-wide override, continuous
// pass-through) is model.ClampJointValue.
func Clamp(m *model.Model, j *model.Joint, requested float64) float64 {
	return m.ClampJointValue(j, requested)
}

// Commit clamps the requested value and writes it to the joint, returning
// the committed value. The caller must run kinematics.Recompute before any
// consumer reads world poses.
func Commit(m *model.Model, j *model.Joint, requested float64) float64 {
	j.Value = Clamp(m, j, requested)
	return j.Value
}
