package engine

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/armature/pkg/manip"
	"github.com/chazu/armature/pkg/model"
)

// preprocessSource converts kebab-case identifiers (set-joint) to the
// underscore form zygomys requires (set_joint), and ; line comments to //.
// Both transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source))
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Hyphen between identifier characters is kebab-case, not minus.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// registerBuiltins installs the pose-scripting builtins into a zygomys
// environment. All joint writes go through the session so limits,
// recompute ordering and the loop-closure solve apply exactly as they do
// for interactive edits.
func registerBuiltins(env *zygo.Zlisp, m *model.Model, session *manip.Session) {
	// (set-joint "name" value) commits a joint value; returns the value
	// actually committed after clamping.
	env.AddFunction("set_joint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("set-joint expects (set-joint \"name\" value)")
		}
		jname, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-joint: %w", err)
		}
		value, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-joint: %w", err)
		}
		if err := session.SetJointValue(jname, value); err != nil {
			return zygo.SexpNull, fmt.Errorf("set-joint: %w", err)
		}
		return &zygo.SexpFloat{Val: m.Joint(jname).Value}, nil
	})

	// (get-joint "name") returns a joint's current value.
	env.AddFunction("get_joint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("get-joint expects (get-joint \"name\")")
		}
		jname, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("get-joint: %w", err)
		}
		j := m.Joint(jname)
		if j == nil {
			return zygo.SexpNull, fmt.Errorf("get-joint: unknown joint %q", jname)
		}
		return &zygo.SexpFloat{Val: j.Value}, nil
	})

	// (joints) returns the list of joint names.
	env.AddFunction("joints", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		names := m.JointNames()
		items := make([]zygo.Sexp, len(names))
		for i, n := range names {
			items[i] = &zygo.SexpStr{S: n}
		}
		return env.NewSexpArray(items), nil
	})

	// (solve) forces a loop-closure solve and returns the number of
	// constraints that converged. Joint writes already solve implicitly;
	// this re-runs it after state changes that bypass the session, such
	// as toggling ignore-limits.
	env.AddFunction("solve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		converged := 0
		for _, r := range session.Solve() {
			if r.Converged {
				converged++
			}
		}
		return &zygo.SexpInt{Val: int64(converged)}, nil
	})

	// (ignore-limits bool) sets the model-wide limit override.
	env.AddFunction("ignore_limits", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("ignore-limits expects (ignore-limits true/false)")
		}
		b, ok := args[0].(*zygo.SexpBool)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("ignore-limits: expected bool, got %T", args[0])
		}
		m.IgnoreLimits = b.Val
		return args[0], nil
	})
}
