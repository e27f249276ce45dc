package core

import (
	"cmp"
	"slices"
	"sync"
)

// BuildOwner collects elements marked dirty and rebuilds them, parents
// before children, when the host runs a frame.
type BuildOwner struct {
	mu      sync.Mutex
	pending []Element
	queued  map[Element]struct{}

	// OnNeedsFrame is called when the first element of a frame is marked
	// dirty. The host responds by calling FlushBuild.
	OnNeedsFrame func()
}

// NewBuildOwner returns an empty BuildOwner.
func NewBuildOwner() *BuildOwner {
	return &BuildOwner{queued: make(map[Element]struct{})}
}

// ScheduleBuild queues element for the next FlushBuild. Queuing an element
// twice is a no-op.
func (b *BuildOwner) ScheduleBuild(element Element) {
	b.mu.Lock()
	if b.queued == nil {
		b.queued = make(map[Element]struct{})
	}
	if _, ok := b.queued[element]; ok {
		b.mu.Unlock()
		return
	}
	b.queued[element] = struct{}{}
	b.pending = append(b.pending, element)
	notify := b.OnNeedsFrame
	b.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// NeedsWork reports whether any element is queued.
func (b *BuildOwner) NeedsWork() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending) > 0
}

// FlushBuild rebuilds queued elements, shallowest first, until no element
// is left dirty. Elements unmounted while queued are skipped.
func (b *BuildOwner) FlushBuild() {
	for {
		batch := b.take()
		if len(batch) == 0 {
			return
		}
		for _, element := range batch {
			if m, ok := element.(interface{ isMounted() bool }); ok && !m.isMounted() {
				continue
			}
			element.RebuildIfNeeded()
		}
	}
}

func (b *BuildOwner) take() []Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch := b.pending
	b.pending = nil
	clear(b.queued)
	slices.SortStableFunc(batch, func(x, y Element) int {
		return cmp.Compare(x.Depth(), y.Depth())
	})
	return batch
}

// MountRoot inflates widget as the root of a new tree owned by owner.
func MountRoot(widget Widget, owner *BuildOwner) Element {
	element := inflateWidget(widget, owner)
	if element != nil {
		element.Mount(nil, nil)
	}
	return element
}

// UpdateRoot reconfigures the root element with widget, replacing it when
// the widget type or key changed. It returns the element now at the root.
func UpdateRoot(root Element, widget Widget, owner *BuildOwner) Element {
	return updateChild(root, widget, nil, owner)
}
