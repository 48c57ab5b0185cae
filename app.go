package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/armature/pkg/config"
	"github.com/chazu/armature/pkg/engine"
	"github.com/chazu/armature/pkg/kinematics"
	"github.com/chazu/armature/pkg/manip"
	"github.com/chazu/armature/pkg/model"
	"github.com/chazu/armature/pkg/scene"
	"github.com/chazu/armature/pkg/scene/sdfscene"
	"github.com/chazu/armature/pkg/solver"
)

// settingsFile is the optional per-deployment settings override.
const settingsFile = "armature.yaml"

// App is the Wails backend. It exposes the manipulation pipeline to the
// frontend via bindings and reports hover/drag/joint changes via runtime
// events.
type App struct {
	ctx      context.Context
	settings config.Settings

	mdl     *model.Model
	scene   *sdfscene.Scene
	session *manip.Session
	scripts *engine.Engine
}

// NewApp creates a new App, loading settings overrides when present.
func NewApp() *App {
	settings := config.Default()
	if _, err := os.Stat(settingsFile); err == nil {
		loaded, err := config.Load(settingsFile)
		if err != nil {
			log.Printf("settings: %v (using defaults)", err)
		} else {
			settings = loaded
		}
	}
	return &App{settings: settings}
}

// startup is called by Wails on app startup. The context is saved so
// runtime events can be emitted later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// emit sends a runtime event when running under Wails. Outside the runtime
// (tests) events are dropped.
func (a *App) emit(name string, data ...any) {
	if a.ctx == nil {
		return
	}
	wailsruntime.EventsEmit(a.ctx, name, data...)
}

// uiEvents bridges manip callbacks onto Wails runtime events.
type uiEvents struct{ app *App }

func (e uiEvents) OnHover(link string)     { e.app.emit("link:hover", link) }
func (e uiEvents) OnUnhover(link string)   { e.app.emit("link:unhover", link) }
func (e uiEvents) OnDragStart(link string) { e.app.emit("link:dragstart", link) }
func (e uiEvents) OnDragEnd(link string)   { e.app.emit("link:dragend", link) }
func (e uiEvents) OnUpdateJoint(joint string, value float64) {
	e.app.emit("joint:update", map[string]any{"joint": joint, "value": value})
}

// JointState is the JSON-serializable joint snapshot sent to the frontend
// for sliders and numeric displays.
type JointState struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Value   float64  `json:"value"`
	Lower   *float64 `json:"lower,omitempty"`
	Upper   *float64 `json:"upper,omitempty"`
	Movable bool     `json:"movable"`
}

// LoadResult is the full result of loading a model description.
type LoadResult struct {
	Errors   []string              `json:"errors"`
	Warnings []string              `json:"warnings"`
	Meshes   []*scene.Mesh         `json:"meshes"`
	Joints   []JointState          `json:"joints"`
	Poses    map[string][16]float64 `json:"poses"`
}

// RayArg is a world-space pointer ray from the frontend.
type RayArg struct {
	Origin [3]float64 `json:"origin"`
	Dir    [3]float64 `json:"dir"`
}

// CameraArg is the frontend camera basis used by the revolute drag
// heuristic.
type CameraArg struct {
	Position [3]float64 `json:"position"`
	Right    [3]float64 `json:"right"`
	Up       [3]float64 `json:"up"`
}

func toVec(a [3]float64) v3.Vec { return v3.Vec{X: a[0], Y: a[1], Z: a[2]} }

func (r RayArg) ray() scene.Ray {
	return scene.Ray{Origin: toVec(r.Origin), Dir: toVec(r.Dir)}
}

func (c CameraArg) camera() manip.Camera {
	return manip.Camera{
		Position: toVec(c.Position),
		Right:    toVec(c.Right),
		Up:       toVec(c.Up),
	}
}

// LoadModel builds a kinematic model from an already-parsed JSON
// description, discarding any previously loaded scene wholesale. Structural
// errors abort the load; warnings (inert constraints and the like) are
// reported and the model stays usable.
func (a *App) LoadModel(descJSON string) LoadResult {
	result := LoadResult{Errors: []string{}, Warnings: []string{}}

	m, err := model.FromJSON([]byte(descJSON))
	if err != nil {
		log.Printf("LoadModel: %v", err)
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	for _, v := range model.Validate(m) {
		if v.Severity == model.SeverityError {
			result.Errors = append(result.Errors, v.Error())
		} else {
			log.Printf("LoadModel: %v", v)
			result.Warnings = append(result.Warnings, v.Error())
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	if err := kinematics.Recompute(m, ""); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	sc := sdfscene.New(m)
	if err := buildScene(sc, m); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	a.mdl = m
	a.scene = sc
	a.session = manip.NewSession(m, sc, solver.New(a.settings.Solver), uiEvents{a}, a.settings.Manipulation)
	a.scripts = engine.New(m, a.session)

	result.Meshes = sc.Meshes()
	result.Joints = a.JointStates()
	result.Poses = a.Poses()
	return result
}

// buildScene attaches each link's visual payload to the scene. Links
// without visuals are legal; they are simply not pickable.
func buildScene(sc *sdfscene.Scene, m *model.Model) error {
	for _, name := range m.LinkNames() {
		visuals, ok := m.Link(name).Payload.([]model.VisualDesc)
		if !ok {
			continue
		}
		for _, vd := range visuals {
			s, err := visualSolid(vd)
			if err != nil {
				return fmt.Errorf("link %q: %w", name, err)
			}
			opts := sdfscene.Options{
				Visible:   !vd.Collision && !vd.Auxiliary,
				Collision: vd.Collision,
				Auxiliary: vd.Auxiliary,
			}
			if err := sc.AddSolid(name, s, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

// visualSolid builds the SDF solid for one visual description.
func visualSolid(vd model.VisualDesc) (sdf.SDF3, error) {
	var s sdf.SDF3
	var err error
	switch vd.Kind {
	case "box":
		s, err = sdf.Box3D(toVec(vd.Size), 0)
	case "cylinder":
		s, err = sdf.Cylinder3D(vd.Height, vd.Radius, 0)
	case "sphere":
		s, err = sdf.Sphere3D(vd.Radius)
	default:
		return nil, fmt.Errorf("unknown visual kind %q", vd.Kind)
	}
	if err != nil {
		return nil, err
	}
	return sdf.Transform3D(s, sdf.Translate3d(toVec(vd.Offset))), nil
}

// PointerHover reports hover transitions for the pointer ray.
func (a *App) PointerHover(r RayArg) {
	if a.session == nil {
		return
	}
	a.session.Hover(r.ray())
}

// PointerPress starts a drag. Returns false when the ray hits nothing,
// which the frontend uses to fall back to camera orbiting.
func (a *App) PointerPress(r RayArg, cam CameraArg) bool {
	if a.session == nil {
		return false
	}
	return a.session.Press(r.ray(), cam.camera())
}

// PointerDrag advances the active drag and returns the updated link poses.
func (a *App) PointerDrag(r RayArg) map[string][16]float64 {
	if a.session == nil {
		return nil
	}
	a.session.Drag(r.ray())
	return a.Poses()
}

// PointerRelease ends the active drag.
func (a *App) PointerRelease() {
	if a.session == nil {
		return
	}
	a.session.Release()
}

// SetJointValue is the slider binding: commit one joint value through the
// full clamp/recompute/solve pipeline and return the updated poses.
func (a *App) SetJointValue(name string, value float64) (map[string][16]float64, error) {
	if a.session == nil {
		return nil, fmt.Errorf("no model loaded")
	}
	if err := a.session.SetJointValue(name, value); err != nil {
		return nil, err
	}
	return a.Poses(), nil
}

// SetIgnoreLimits toggles the model-wide joint-limit override.
func (a *App) SetIgnoreLimits(ignore bool) {
	if a.mdl == nil {
		return
	}
	a.mdl.IgnoreLimits = ignore
}

// JointStates returns a snapshot of every joint for the frontend.
func (a *App) JointStates() []JointState {
	if a.mdl == nil {
		return nil
	}
	states := make([]JointState, 0, len(a.mdl.Joints))
	for _, name := range a.mdl.JointNames() {
		j := a.mdl.Joint(name)
		st := JointState{
			Name:    j.Name,
			Type:    j.Type.String(),
			Value:   j.Value,
			Movable: !j.Fixed(),
		}
		if j.Limits != nil {
			lower, upper := j.Limits.Lower, j.Limits.Upper
			st.Lower, st.Upper = &lower, &upper
		}
		states = append(states, st)
	}
	return states
}

// Poses returns every link's world pose as a column-major 4x4 matrix,
// ready for three.js Matrix4.fromArray on the frontend.
func (a *App) Poses() map[string][16]float64 {
	if a.mdl == nil {
		return nil
	}
	poses := make(map[string][16]float64, len(a.mdl.Links))
	for _, name := range a.mdl.LinkNames() {
		poses[name] = poseColumns(a.mdl.Link(name).World)
	}
	return poses
}

// poseColumns flattens a transform to column-major floats by applying it
// to the basis vectors, avoiding any dependence on matrix internals.
func poseColumns(m sdf.M44) [16]float64 {
	t := m.MulPosition(v3.Vec{})
	ex := m.MulPosition(v3.Vec{X: 1}).Sub(t)
	ey := m.MulPosition(v3.Vec{Y: 1}).Sub(t)
	ez := m.MulPosition(v3.Vec{Z: 1}).Sub(t)
	return [16]float64{
		ex.X, ex.Y, ex.Z, 0,
		ey.X, ey.Y, ey.Z, 0,
		ez.X, ez.Y, ez.Z, 0,
		t.X, t.Y, t.Z, 1,
	}
}

// ScriptError is a JSON-serializable script error for the frontend console.
type ScriptError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ScriptResult bundles the outcome of a console evaluation.
type ScriptResult struct {
	Errors []ScriptError          `json:"errors"`
	Joints []JointState           `json:"joints"`
	Poses  map[string][16]float64 `json:"poses"`
}

// EvalScript runs a pose script against the loaded model.
func (a *App) EvalScript(source string) ScriptResult {
	result := ScriptResult{Errors: []ScriptError{}}
	if a.scripts == nil {
		result.Errors = append(result.Errors, ScriptError{Message: "no model loaded"})
		return result
	}
	evalErrs, err := a.scripts.Evaluate(source)
	if err != nil {
		log.Printf("EvalScript fatal error: %v", err)
		result.Errors = append(result.Errors, ScriptError{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, ScriptError{Line: e.Line, Message: e.Message})
	}
	result.Joints = a.JointStates()
	result.Poses = a.Poses()
	return result
}
