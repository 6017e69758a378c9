package core

import (
	"slices"
	"sync"

	"github.com/uber-go/tally/v4"

	"github.com/go-drift/lifecycle/pkg/lifecycle"
	"github.com/go-drift/lifecycle/pkg/scheduler"
)

// Metric names emitted by BuildOwner.
const (
	MetricMounts             = "mounts"
	MetricUnmounts           = "unmounts"
	MetricDiagnosticRemounts = "diagnostic_remounts"
	MetricBuilds             = "builds"
)

// BuildOwner owns a tree of elements: it tracks dirty elements that need
// rebuilding, runs mount hooks (twice in strict mode) and provides the
// scheduler deferred lifecycle checks run on.
type BuildOwner struct {
	dirty     []*StatefulElement
	dirtySet  map[*StatefulElement]bool
	roots     []*StatefulElement
	scheduler lifecycle.Scheduler
	mu        sync.Mutex

	// StrictMode makes every first mount execute the mount hooks, their
	// teardowns and the mount hooks again, synchronously.
	StrictMode bool

	// Metrics receives lifecycle counters. Nil disables them.
	Metrics tally.Scope

	// OnNeedsBuild is called when an element is scheduled for rebuild.
	OnNeedsBuild func()
}

// NewBuildOwner creates a BuildOwner posting deferred work to s. A nil s
// uses scheduler.Default().
func NewBuildOwner(s lifecycle.Scheduler) *BuildOwner {
	if s == nil {
		s = scheduler.Default()
	}
	return &BuildOwner{scheduler: s}
}

// Scheduler returns the scheduler used for deferred lifecycle checks.
func (b *BuildOwner) Scheduler() lifecycle.Scheduler {
	return b.scheduler
}

func (b *BuildOwner) metrics() tally.Scope {
	if b.Metrics == nil {
		return tally.NoopScope
	}
	return b.Metrics
}

// Attach mounts component as a new root.
func (b *BuildOwner) Attach(component Component) *StatefulElement {
	element := NewStatefulElement(component, b)
	b.mu.Lock()
	slot := len(b.roots)
	b.roots = append(b.roots, element)
	b.mu.Unlock()
	element.Mount(nil, slot)
	return element
}

// Detach unmounts a root previously returned by Attach.
func (b *BuildOwner) Detach(element *StatefulElement) {
	if element == nil {
		return
	}
	b.mu.Lock()
	b.roots = slices.DeleteFunc(b.roots, func(e *StatefulElement) bool { return e == element })
	b.mu.Unlock()
	element.Unmount()
}

// Roots returns the attached roots.
func (b *BuildOwner) Roots() []*StatefulElement {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.roots)
}

// Remount performs a diagnostic unmount/mount cycle on a mounted subtree,
// synchronously. State survives; only the mount hooks and their teardowns
// run.
func (b *BuildOwner) Remount(element *StatefulElement) {
	if element == nil || !element.mounted {
		return
	}
	element.diagnosticCycle()
	b.metrics().Counter(MetricDiagnosticRemounts).Inc(1)
}

// ScheduleBuild marks an element as needing rebuild.
func (b *BuildOwner) ScheduleBuild(element *StatefulElement) {
	added := func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.dirtySet[element] {
			return false
		}
		if b.dirtySet == nil {
			b.dirtySet = make(map[*StatefulElement]bool)
		}
		b.dirtySet[element] = true
		b.dirty = append(b.dirty, element)
		return true
	}()

	if added && b.OnNeedsBuild != nil {
		b.OnNeedsBuild()
	}
}

// NeedsWork returns true if there are dirty elements.
func (b *BuildOwner) NeedsWork() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.dirty) > 0
}

// FlushBuild rebuilds all dirty elements in depth order.
func (b *BuildOwner) FlushBuild() {
	for {
		b.mu.Lock()
		if len(b.dirty) == 0 {
			b.mu.Unlock()
			return
		}

		slices.SortFunc(b.dirty, func(x, y *StatefulElement) int {
			return x.Depth() - y.Depth()
		})

		dirty := b.dirty
		b.dirty = nil
		clear(b.dirtySet)
		b.mu.Unlock()

		for _, element := range dirty {
			if !element.mounted {
				continue
			}
			element.RebuildIfNeeded()
			b.metrics().Counter(MetricBuilds).Inc(1)
		}
	}
}

func (b *BuildOwner) mountEffects(element *StatefulElement) {
	base := baseOf(element.state)
	b.metrics().Counter(MetricMounts).Inc(1)
	if base == nil {
		return
	}
	base.runMountHooks()
	if b.StrictMode {
		base.runUnmountHooks()
		base.runMountHooks()
		b.metrics().Counter(MetricDiagnosticRemounts).Inc(1)
	}
}
