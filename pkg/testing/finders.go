package testing

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/go-drift/lifecycle/pkg/core"
)

// Finder locates elements in the component tree.
type Finder interface {
	// Evaluate returns all matching elements under root (depth-first pre-order).
	Evaluate(root *core.StatefulElement) []*core.StatefulElement
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []*core.StatefulElement
	finder   Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *core.StatefulElement {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.describe()))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *core.StatefulElement {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *core.StatefulElement {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.elements), r.describe()))
	}
	return r.elements[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*core.StatefulElement {
	return r.elements
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.elements)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.elements) > 0
}

// Component returns the component of the first matched element. Panics if
// no matches.
func (r FinderResult) Component() core.Component {
	return r.First().Component()
}

// State returns the state of the first matched element. Panics if no
// matches.
func (r FinderResult) State() core.State {
	return r.First().State()
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// finder is a Finder built from a description and an evaluation function.
type finder struct {
	desc string
	eval func(root *core.StatefulElement) []*core.StatefulElement
}

func (f finder) Evaluate(root *core.StatefulElement) []*core.StatefulElement {
	if root == nil {
		return nil
	}
	return f.eval(root)
}

func (f finder) Description() string {
	return f.desc
}

// matching returns a finder selecting every element under root for which
// match returns true.
func matching(desc string, match func(*core.StatefulElement) bool) Finder {
	return finder{desc: desc, eval: func(root *core.StatefulElement) []*core.StatefulElement {
		var found []*core.StatefulElement
		walk(root, func(e *core.StatefulElement) {
			if match(e) {
				found = append(found, e)
			}
		})
		return found
	}}
}

// ByType returns a finder that matches elements whose component is type T.
func ByType[T core.Component]() Finder {
	want := reflect.TypeOf((*T)(nil)).Elem()
	return matching("ByType("+want.String()+")", func(e *core.StatefulElement) bool {
		return reflect.TypeOf(e.Component()) == want
	})
}

// ByKey returns a finder that matches elements whose component key equals
// key. Keys of non-comparable types are compared with reflect.DeepEqual.
func ByKey(key any) Finder {
	return matching(fmt.Sprintf("ByKey(%v)", key), func(e *core.StatefulElement) bool {
		return keysEqual(e.Component().Key(), key)
	})
}

// ByState returns a finder that matches elements whose state is type S.
func ByState[S core.State]() Finder {
	want := reflect.TypeOf((*S)(nil)).Elem()
	return matching("ByState("+want.String()+")", func(e *core.StatefulElement) bool {
		return reflect.TypeOf(e.State()) == want
	})
}

// ByPredicate returns a finder that matches elements satisfying fn.
func ByPredicate(fn func(*core.StatefulElement) bool) Finder {
	return matching("ByPredicate(...)", fn)
}

// Descendant returns a finder that matches elements satisfying 'matching'
// strictly below an element matching 'of'.
func Descendant(of, match Finder) Finder {
	desc := fmt.Sprintf("Descendant(of: %s, matching: %s)", of.Description(), match.Description())
	return finder{desc: desc, eval: func(root *core.StatefulElement) []*core.StatefulElement {
		var found []*core.StatefulElement
		seen := make(map[*core.StatefulElement]bool)
		for _, top := range of.Evaluate(root) {
			top.VisitChildren(func(child *core.StatefulElement) bool {
				for _, e := range match.Evaluate(child) {
					if !seen[e] {
						seen[e] = true
						found = append(found, e)
					}
				}
				return true
			})
		}
		return found
	}}
}

// Ancestor returns a finder that matches elements satisfying 'matching'
// strictly above an element matching 'of'.
func Ancestor(of, match Finder) Finder {
	desc := fmt.Sprintf("Ancestor(of: %s, matching: %s)", of.Description(), match.Description())
	return finder{desc: desc, eval: func(root *core.StatefulElement) []*core.StatefulElement {
		below := of.Evaluate(root)
		var found []*core.StatefulElement
		for _, candidate := range match.Evaluate(root) {
			if slices.ContainsFunc(below, func(e *core.StatefulElement) bool {
				return isAncestorOf(candidate, e)
			}) {
				found = append(found, candidate)
			}
		}
		return found
	}}
}

// isAncestorOf reports whether descendant is strictly below ancestor.
func isAncestorOf(ancestor, descendant *core.StatefulElement) bool {
	return descendant.FindAncestor(func(e *core.StatefulElement) bool {
		return e == ancestor
	}) != nil
}

func keysEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

// walk visits root and its subtree in depth-first pre-order.
func walk(root *core.StatefulElement, visit func(*core.StatefulElement)) {
	visit(root)
	root.VisitChildren(func(child *core.StatefulElement) bool {
		walk(child, visit)
		return true
	})
}
