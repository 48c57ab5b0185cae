// Package engine provides a pose-scripting console for Armature. It wraps
// zygomys in a sandboxed environment and exposes builtins that read and
// write joint values on a live kinematic model through the manipulation
// session, so scripted edits follow the same clamp/recompute/solve pipeline
// as sliders and dragging.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/armature/pkg/manip"
	"github.com/chazu/armature/pkg/model"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates pose scripts against a model and session. Each call to
// Evaluate creates a fresh sandboxed environment; only the model state
// persists between calls.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	model   *model.Model
	session *manip.Session
}

// New creates an engine bound to a model and its manipulation session.
func New(m *model.Model, s *manip.Session) *Engine {
	return &Engine{model: m, session: s}
}

// Evaluate runs a pose script. Parse and runtime errors in the script come
// back as EvalErrors; the error return is reserved for fatal failures
// (timeout, panic).
func (e *Engine) Evaluate(source string) ([]EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		ch <- evalResult{errors: e.evaluate(source)}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate runs one script in a fresh zygomys sandbox.
func (e *Engine) evaluate(source string) []EvalError {
	if strings.TrimSpace(source) == "" {
		return nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, e.model, e.session)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return parseZygomysError(err)
	}
	return nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError
// values, extracting line numbers from the message where possible.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
