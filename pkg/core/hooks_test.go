package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockDisposable struct {
	disposed int
}

func (m *mockDisposable) Dispose() {
	m.disposed++
}

func TestUseController(t *testing.T) {
	base := &StateBase{}

	controller := UseController(base, func() *mockDisposable {
		return &mockDisposable{}
	})
	assert.Zero(t, controller.disposed)

	base.Dispose()
	base.Dispose()

	assert.Equal(t, 1, controller.disposed)
}

func TestOnDispose_RunsInReverseOrder(t *testing.T) {
	base := &StateBase{}
	var order []int
	base.OnDispose(func() { order = append(order, 1) })
	unregister := base.OnDispose(func() { order = append(order, 2) })
	base.OnDispose(func() { order = append(order, 3) })
	unregister()

	base.Dispose()

	assert.Equal(t, []int{3, 1}, order)
}

func TestOnDispose_AfterDisposeRunsImmediately(t *testing.T) {
	base := &StateBase{}
	base.Dispose()

	ran := false
	base.OnDispose(func() { ran = true })

	assert.True(t, ran)
}

func TestManaged(t *testing.T) {
	owner := NewBuildOwner()
	state := &testState{}
	MountRoot(testStatefulWidget{state: state}, owner)

	m := NewManaged(state, "idle")
	m.Set("loading")

	assert.Equal(t, "loading", m.Value())
	assert.True(t, owner.NeedsWork())
}

func TestManaged_Update(t *testing.T) {
	owner := NewBuildOwner()
	state := &testState{}
	MountRoot(testStatefulWidget{state: state}, owner)
	owner.FlushBuild()

	m := NewManaged(state, 1)
	m.Update(func(n int) int { return n * 10 })

	assert.Equal(t, 10, m.Value())
	assert.True(t, owner.NeedsWork())
}

func TestManaged_IgnoredAfterDispose(t *testing.T) {
	base := &StateBase{}
	m := NewManaged(base, "idle")
	base.Dispose()

	m.Set("loading")

	assert.Equal(t, "idle", m.Value())
}
