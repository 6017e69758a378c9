package demo

import (
	"fmt"
	"time"

	"github.com/go-drift/lifecycle/pkg/core"
	"github.com/go-drift/lifecycle/pkg/lifecycle"
)

// AutosaveInterval is how often the autosave form saves.
const AutosaveInterval = 500 * time.Millisecond

// The autosave scenario edits a form while two savers run on an interval.
// The plain one captured the form when it started and keeps saving that
// copy; the synced one reads the latest committed form.
var autosaveScenario = Scenario{
	Name:  "autosave",
	Short: "stale captured value vs synced ref read from an interval",
	build: func(h *harness) (core.Component, []step) {
		ctl := &formControls{}
		return autosaveForm{h: h, ctl: ctl}, []step{
			{at: 100 * time.Millisecond, name: "type name", do: func() { ctl.setName("Ada") }},
			{at: 200 * time.Millisecond, name: "type email", do: func() { ctl.setEmail("ada@example.com") }, snapshot: true},
			{at: 2*AutosaveInterval + 200*time.Millisecond, name: "close", do: func() {}},
		}
	},
}

// FormData is the state edited in the autosave scenario.
type FormData struct {
	Name  string
	Email string
}

func (f FormData) String() string {
	return fmt.Sprintf("name=%q email=%q", f.Name, f.Email)
}

type formControls struct {
	setName  func(string)
	setEmail func(string)
}

type autosaveForm struct {
	core.StatefulBase
	h   *harness
	ctl *formControls
}

func (autosaveForm) CreateState() core.State { return &autosaveFormState{} }

type autosaveFormState struct {
	core.StateBase
	form *core.Managed[FormData]
}

func (s *autosaveFormState) InitState() {
	c := s.Element().Component().(autosaveForm)
	h := c.h
	s.form = core.NewManaged(s, FormData{})

	c.ctl.setName = func(name string) {
		s.form.Update(func(f FormData) FormData { f.Name = name; return f })
		h.emit("form: name=%q", name)
	}
	c.ctl.setEmail = func(email string) {
		s.form.Update(func(f FormData) FormData { f.Email = email; return f })
		h.emit("form: email=%q", email)
	}

	// Captures the form once, when the effect runs.
	core.UseEffect(s, func() lifecycle.CleanupFunc {
		captured := s.form.Value()
		h.emit("stale autosave started")
		stop := h.loop.Every(AutosaveInterval, func() {
			h.emit("stale save: %s", captured)
		})
		return func() {
			stop()
			h.emit("stale autosave stopped")
		}
	})

	latest := core.UseSyncedRef(s, s.form.Value)
	core.UseTrueEffect(s, func() lifecycle.CleanupFunc {
		h.emit("synced autosave started")
		stop := h.loop.Every(AutosaveInterval, func() {
			h.emit("synced save: %s", latest.Read())
		})
		return func() {
			stop()
			h.emit("synced autosave stopped")
		}
	})
}

func (s *autosaveFormState) HookNames() []string {
	return []string{"UseEffect", "UseSyncedRef", "UseTrueEffect"}
}
