package testing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/webbridge/pkg/core"
	"github.com/go-drift/webbridge/pkg/widgets"
)

// Finder locates elements in the widget tree.
type Finder interface {
	// Evaluate returns all matching elements under root, in depth-first
	// pre-order.
	Evaluate(root core.Element) []core.Element
	// Description names the finder in failure messages.
	Description() string
}

// match is a Finder built from a predicate over single elements.
type match struct {
	desc string
	fn   func(core.Element) bool
}

func (m match) Evaluate(root core.Element) []core.Element {
	var found []core.Element
	walk(root, func(e core.Element) bool {
		if m.fn(e) {
			found = append(found, e)
		}
		return true
	})
	return found
}

func (m match) Description() string { return m.desc }

// ByType matches elements whose widget is exactly T.
func ByType[T core.Widget]() Finder {
	t := reflect.TypeFor[T]()
	return match{
		desc: fmt.Sprintf("ByType(%s)", t),
		fn:   func(e core.Element) bool { return reflect.TypeOf(e.Widget()) == t },
	}
}

// ByKey matches elements whose widget key equals key.
func ByKey(key any) Finder {
	return match{
		desc: fmt.Sprintf("ByKey(%v)", key),
		fn:   func(e core.Element) bool { return keysEqual(e.Widget().Key(), key) },
	}
}

// ByText matches [widgets.Text] with exactly this content.
func ByText(text string) Finder {
	return textMatch(fmt.Sprintf("ByText(%q)", text), func(s string) bool { return s == text })
}

// ByTextContaining matches [widgets.Text] whose content contains substring.
func ByTextContaining(substring string) Finder {
	return textMatch(fmt.Sprintf("ByTextContaining(%q)", substring), func(s string) bool {
		return strings.Contains(s, substring)
	})
}

func textMatch(desc string, accept func(string) bool) Finder {
	return match{desc: desc, fn: func(e core.Element) bool {
		t, ok := e.Widget().(widgets.Text)
		return ok && accept(t.Content)
	}}
}

// ByViewID matches the native web view surface bound to viewID.
func ByViewID(viewID int64) Finder {
	return match{
		desc: fmt.Sprintf("ByViewID(%d)", viewID),
		fn: func(e core.Element) bool {
			n, ok := e.Widget().(widgets.NativeBridgedWebView)
			return ok && n.ViewID() == viewID
		},
	}
}

// VisibleSurfaces matches native web view surfaces that are not collapsed.
func VisibleSurfaces() Finder {
	return match{
		desc: "VisibleSurfaces()",
		fn: func(e core.Element) bool {
			n, ok := e.Widget().(widgets.NativeBridgedWebView)
			return ok && n.Visible()
		},
	}
}

// ByPredicate matches elements satisfying fn.
func ByPredicate(fn func(core.Element) bool) Finder {
	return match{desc: "ByPredicate(...)", fn: fn}
}

// Descendant matches elements found by matching strictly inside an element
// found by of.
func Descendant(of, matching Finder) Finder {
	return relation{
		desc: fmt.Sprintf("Descendant(of: %s, matching: %s)", of.Description(), matching.Description()),
		eval: func(root core.Element) []core.Element {
			var found []core.Element
			for _, ancestor := range of.Evaluate(root) {
				ancestor.VisitChildren(func(child core.Element) bool {
					found = append(found, matching.Evaluate(child)...)
					return true
				})
			}
			return found
		},
	}
}

// Ancestor matches elements found by matching that contain an element
// found by of.
func Ancestor(of, matching Finder) Finder {
	return relation{
		desc: fmt.Sprintf("Ancestor(of: %s, matching: %s)", of.Description(), matching.Description()),
		eval: func(root core.Element) []core.Element {
			targets := of.Evaluate(root)
			var found []core.Element
			for _, candidate := range matching.Evaluate(root) {
				for _, target := range targets {
					if candidate != target && contains(candidate, target) {
						found = append(found, candidate)
						break
					}
				}
			}
			return found
		},
	}
}

// relation combines two finders. Its results are deduplicated, keeping
// the first occurrence.
type relation struct {
	desc string
	eval func(core.Element) []core.Element
}

func (r relation) Evaluate(root core.Element) []core.Element {
	seen := map[core.Element]bool{}
	var out []core.Element
	for _, e := range r.eval(root) {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

func (r relation) Description() string { return r.desc }

// FinderResult holds the elements a finder matched.
type FinderResult struct {
	elements []core.Element
	finder   Finder
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. It panics when nothing matched.
func (r FinderResult) First() core.Element {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.describe()))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or nil.
func (r FinderResult) FirstOrNil() core.Element {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

// At returns the match at index. It panics when index is out of range.
func (r FinderResult) At(index int) core.Element {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.elements), r.describe()))
	}
	return r.elements[index]
}

// All returns every match in traversal order.
func (r FinderResult) All() []core.Element { return r.elements }

// Count returns the number of matches.
func (r FinderResult) Count() int { return len(r.elements) }

// Exists reports whether anything matched.
func (r FinderResult) Exists() bool { return len(r.elements) > 0 }

// Widget returns the widget of the first match.
func (r FinderResult) Widget() core.Widget { return r.First().Widget() }

// State returns the state of the first match, or nil when it is not
// stateful.
func (r FinderResult) State() core.State {
	if e, ok := r.First().(*core.StatefulElement); ok {
		return e.State()
	}
	return nil
}

// Surface returns the native surface of the first match.
func (r FinderResult) Surface() widgets.NativeBridgedWebView {
	n, ok := r.Widget().(widgets.NativeBridgedWebView)
	if !ok {
		panic(fmt.Sprintf("%s matched %T, not a native web view surface", r.describe(), r.Widget()))
	}
	return n
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

func contains(ancestor, target core.Element) bool {
	found := false
	walk(ancestor, func(e core.Element) bool {
		found = e == target
		return !found
	})
	return found
}

// walk visits root and its subtree in depth-first pre-order until visit
// returns false.
func walk(root core.Element, visit func(core.Element) bool) bool {
	if !visit(root) {
		return false
	}
	cont := true
	root.VisitChildren(func(child core.Element) bool {
		cont = walk(child, visit)
		return cont
	})
	return cont
}
