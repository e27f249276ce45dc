package core

import (
	"testing"

	"github.com/go-drift/webbridge/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStatelessWidget is a simple stateless widget for testing.
type testStatelessWidget struct {
	StatelessBase
	buildFn func(BuildContext) Widget
}

func (w testStatelessWidget) Build(ctx BuildContext) Widget {
	if w.buildFn != nil {
		return w.buildFn(ctx)
	}
	return nil
}

// testStatefulWidget is a simple stateful widget for testing.
type testStatefulWidget struct {
	StatefulBase
	label string
	state *testState
}

func (w testStatefulWidget) CreateState() State {
	return w.state
}

type testState struct {
	StateBase
	inits, updates int
	builds         int
	lastOld        string
	disposed       int
	buildFn        func(BuildContext) Widget
}

func (s *testState) InitState() { s.inits++ }

func (s *testState) DidUpdateWidget(old StatefulWidget) {
	s.updates++
	s.lastOld = old.(testStatefulWidget).label
}

func (s *testState) Build(ctx BuildContext) Widget {
	s.builds++
	if s.buildFn != nil {
		return s.buildFn(ctx)
	}
	return nil
}

func (s *testState) Dispose() {
	s.disposed++
	s.StateBase.Dispose()
}

type testLeaf struct {
	ParentBase
	label    string
	children []Widget
}

func (w testLeaf) ChildWidgets() []Widget { return w.children }

type keyedLeaf struct {
	testLeaf
	key any
}

func (w keyedLeaf) Key() any { return w.key }

func TestStatefulElement_Lifecycle(t *testing.T) {
	owner := NewBuildOwner()
	state := &testState{}

	root := MountRoot(testStatefulWidget{label: "a", state: state}, owner)

	assert.Equal(t, 1, state.inits)
	assert.Equal(t, 1, state.builds)
	assert.Same(t, root, state.Element())

	root = UpdateRoot(root, testStatefulWidget{label: "b", state: state}, owner)
	assert.Equal(t, 1, state.updates)
	assert.Equal(t, "a", state.lastOld)
	assert.Equal(t, 2, state.builds)
	assert.Equal(t, "b", root.Widget().(testStatefulWidget).label)

	root.Unmount()
	assert.Equal(t, 1, state.disposed)
	assert.True(t, state.IsDisposed())
}

func TestSetState_SchedulesRebuild(t *testing.T) {
	owner := NewBuildOwner()
	frames := 0
	owner.OnNeedsFrame = func() { frames++ }
	state := &testState{}
	MountRoot(testStatefulWidget{state: state}, owner)

	state.SetState(nil)
	state.SetState(nil)

	assert.Equal(t, 1, frames)
	assert.True(t, owner.NeedsWork())
	owner.FlushBuild()
	assert.Equal(t, 2, state.builds)
	assert.False(t, owner.NeedsWork())
}

func TestSetState_AfterDisposeIsNoop(t *testing.T) {
	owner := NewBuildOwner()
	state := &testState{}
	root := MountRoot(testStatefulWidget{state: state}, owner)
	root.Unmount()

	called := false
	state.SetState(func() { called = true })

	assert.False(t, called)
	assert.False(t, owner.NeedsWork())
}

func TestParentElement_ReconcilesChildren(t *testing.T) {
	owner := NewBuildOwner()
	childState := &testState{}

	root := MountRoot(testLeaf{children: []Widget{
		testStatefulWidget{label: "keep", state: childState},
		testLeaf{label: "extra"},
	}}, owner)

	var count int
	root.VisitChildren(func(Element) bool { count++; return true })
	assert.Equal(t, 2, count)

	UpdateRoot(root, testLeaf{children: []Widget{
		testStatefulWidget{label: "keep2", state: childState},
	}}, owner)

	count = 0
	root.VisitChildren(func(Element) bool { count++; return true })
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, childState.inits, "state survives a parent rebuild")
	assert.Equal(t, 1, childState.updates)
	assert.Zero(t, childState.disposed)
}

func TestUpdateChild_KeyChangeRemounts(t *testing.T) {
	owner := NewBuildOwner()
	root := MountRoot(keyedLeaf{key: "a"}, owner)

	same := UpdateRoot(root, keyedLeaf{key: "a"}, owner)
	assert.Same(t, root, same)

	replaced := UpdateRoot(root, keyedLeaf{key: "b"}, owner)
	assert.NotSame(t, root, replaced)
}

func TestStatelessElement_BuildsChild(t *testing.T) {
	owner := NewBuildOwner()
	var ctxWidget Widget
	w := testStatelessWidget{buildFn: func(ctx BuildContext) Widget {
		ctxWidget = ctx.Widget()
		return testLeaf{label: "child"}
	}}

	root := MountRoot(w, owner)

	require.NotNil(t, ctxWidget)
	var child Element
	root.VisitChildren(func(e Element) bool { child = e; return true })
	require.NotNil(t, child)
	assert.Equal(t, "child", child.Widget().(testLeaf).label)
	assert.Equal(t, 1, child.Depth())
	assert.Same(t, root, child.FindAncestor(func(Element) bool { return true }))
}

func TestBuildPanic_ReportedAndReplaced(t *testing.T) {
	rec := &errors.Recorder{}
	t.Cleanup(rec.Install())
	SetErrorWidgetBuilder(func(err *errors.BuildError) Widget {
		return testLeaf{label: "error"}
	})
	t.Cleanup(func() { SetErrorWidgetBuilder(nil) })

	root := MountRoot(testStatelessWidget{buildFn: func(BuildContext) Widget {
		panic("boom")
	}}, NewBuildOwner())

	require.Len(t, rec.BuildErrors(), 1)
	assert.Equal(t, "boom", rec.BuildErrors()[0].Recovered)
	var child Element
	root.VisitChildren(func(e Element) bool { child = e; return true })
	require.NotNil(t, child)
	assert.Equal(t, "error", child.Widget().(testLeaf).label)
}

func TestStateful_Inline(t *testing.T) {
	owner := NewBuildOwner()
	var bump func(func(int) int)
	var seen []int

	MountRoot(Stateful(
		func() int { return 1 },
		func(n int, ctx BuildContext, setState func(func(int) int)) Widget {
			seen = append(seen, n)
			bump = setState
			return nil
		},
	), owner)

	bump(func(n int) int { return n + 1 })
	owner.FlushBuild()

	assert.Equal(t, []int{1, 2}, seen)
}
