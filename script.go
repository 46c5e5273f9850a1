package forest

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in a viewer script.
type scriptStep struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
	Tree   int    `json:"tree,omitempty"`
	Frames int    `json:"frames,omitempty"`
}

// script is the top-level JSON structure for a viewer script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

var scriptActions = map[string]bool{
	"screenshot": true,
	"wait":       true,
	"regenerate": true,
	"next":       true,
	"prev":       true,
	"show":       true,
	"quit":       true,
}

// ScriptRunner sequences viewer actions and screenshots across frames for
// automated visual checks. Attach to a Scene via SetScriptRunner.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON viewer script and returns a ScriptRunner ready to
// be attached to a Scene.
//
//	{"steps": [
//		{"action": "wait", "frames": 2},
//		{"action": "screenshot", "label": "tree-0"},
//		{"action": "regenerate"},
//		{"action": "show", "tree": 1},
//		{"action": "quit"}
//	]}
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// SetScriptRunner attaches a ScriptRunner to the scene. The runner's step
// method is called from Scene.Update each frame.
func (s *Scene) SetScriptRunner(runner *ScriptRunner) {
	s.runner = runner
}

// Done reports whether all steps in the script have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Called from Scene.Update.
func (r *ScriptRunner) step(s *Scene) error {
	if r.done {
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	var err error
	switch st.Action {
	case "screenshot":
		s.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "regenerate":
		err = s.Regenerate()
	case "next":
		s.NextTree()
	case "prev":
		s.PrevTree()
	case "show":
		err = s.ShowTree(st.Tree)
	case "quit":
		s.Quit()
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
	return err
}
