package engine

import "testing"

func TestPreprocessSource(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"kebab call", `(set-joint "swing" 1)`, `(set_joint "swing" 1)`},
		{"minus untouched", `(- 3 1)`, `(- 3 1)`},
		{"negative literal", `(set-joint "swing" -0.5)`, `(set_joint "swing" -0.5)`},
		{"infix minus", `(- x 1)`, `(- x 1)`},
		{"kebab inside string kept", `(set-joint "pan-tilt" 1)`, `(set_joint "pan-tilt" 1)`},
		{"semicolon comment", "; note\n(joints)", "// note\n(joints)"},
		{"double semicolon", ";; note", "// note"},
		{"semicolon inside string kept", `(get-joint "a;b")`, `(get_joint "a;b")`},
		{"escaped quote", `"say \" ; here"`, `"say \" ; here"`},
		{"multi-segment kebab", `(ignore-limits true)`, `(ignore_limits true)`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := preprocessSource(tc.in); got != tc.want {
				t.Errorf("preprocessSource(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseZygomysError(t *testing.T) {
	cases := []struct {
		msg      string
		wantLine int
	}{
		{"Error on line 4: unbound symbol", 4},
		{"line 2: unexpected end of input", 2},
		{"something with no position", 0},
	}
	for _, tc := range cases {
		errs := parseZygomysError(errFromString(tc.msg))
		if len(errs) != 1 {
			t.Fatalf("%q: got %d errors", tc.msg, len(errs))
		}
		if errs[0].Line != tc.wantLine {
			t.Errorf("%q: line = %d, want %d", tc.msg, errs[0].Line, tc.wantLine)
		}
		if errs[0].Message == "" {
			t.Errorf("%q: empty message", tc.msg)
		}
	}
}

type errFromString string

func (e errFromString) Error() string { return string(e) }
