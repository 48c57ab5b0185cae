package manip

import "github.com/chazu/armature/pkg/model"

// Selection is the result of resolving a ray hit to something manipulable.
// Joint is nil when the climb from the hit link reaches the root without
// crossing a movable joint; the link is then still a valid hover and
// selection target, it just yields no drag motion.
type Selection struct {
	Link  string       // the link that was hit
	Joint *model.Joint // the manipulable joint, or nil
}

// Resolve walks from the hit link up through parent joints to find the
// manipulable joint. Fixed joints merge their two links into one rigid
// body for manipulation purposes, so the walk skips through them. Returns
// false only when the link is not part of the model.
func Resolve(m *model.Model, hitLink string) (Selection, bool) {
	if m.Link(hitLink) == nil {
		return Selection{}, false
	}
	cur := hitLink
	for {
		j := m.ParentJoint(cur)
		if j == nil {
			// Reached the root: selectable, not draggable.
			return Selection{Link: hitLink}, true
		}
		if j.Fixed() {
			cur = j.ParentLink
			continue
		}
		return Selection{Link: hitLink, Joint: j}, true
	}
}

// hoverTracker reports hover transitions by link name. Comparing names
// rather than object identity avoids highlight churn when wrapper objects
// are recreated between frames.
type hoverTracker struct {
	current string
}

// update records the newly hovered link name ("" for none) and returns the
// names to unhover and hover. Both are "" when nothing changed.
func (h *hoverTracker) update(name string) (unhover, hover string) {
	if name == h.current {
		return "", ""
	}
	unhover = h.current
	hover = name
	h.current = name
	return unhover, hover
}
