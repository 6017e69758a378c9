package lifecycle

// Snapshot is the generation captured when a deferred check was scheduled.
type Snapshot uint64

// Tracker counts mount executions of one component instance. Every mount,
// genuine or diagnostic, advances the generation by exactly one. Unmounts do
// not touch it.
//
// A Tracker is owned by a single instance and must only be used from the
// goroutine driving that instance's lifecycle.
type Tracker struct {
	generation uint64
}

// OnMount advances the generation and returns it as a snapshot.
func (t *Tracker) OnMount() Snapshot {
	t.generation++
	return Snapshot(t.generation)
}

// IsCurrent reports whether no mount has executed since snap was taken.
func (t *Tracker) IsCurrent(snap Snapshot) bool {
	return t.generation == uint64(snap)
}

// Current returns a snapshot of the current generation without advancing it.
func (t *Tracker) Current() Snapshot {
	return Snapshot(t.generation)
}

// Generation returns the number of mount executions so far.
func (t *Tracker) Generation() uint64 {
	return t.generation
}
