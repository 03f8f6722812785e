package bt

import (
	"context"
	"sync"
)

// mockLeaf counts hook calls and replays scripted statuses. The last status repeats.
type mockLeaf struct {
	mu             sync.Mutex
	startCalled    int
	updateCalled   int
	terminateCalls int
	terminateWith  Status
	script         []Status
}

func newMock(script ...Status) *mockLeaf {
	if len(script) == 0 {
		script = []Status{Success}
	}
	return &mockLeaf{script: script}
}

func (m *mockLeaf) Start(Context, *struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalled++
}

func (m *mockLeaf) Update(Context, *struct{}) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.updateCalled
	if i >= len(m.script) {
		i = len(m.script) - 1
	}
	m.updateCalled++
	return m.script[i]
}

func (m *mockLeaf) Terminate(_ Context, _ *struct{}, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminateCalls++
	m.terminateWith = status
}

func (m *mockLeaf) calls() (start, update, terminate int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startCalled, m.updateCalled, m.terminateCalls
}

func leaf(name string, m *mockLeaf) *Node {
	return NewLeaf[struct{}](name, m)
}

// counterState is a richer per-run context used by countingLeaf.
type counterState struct {
	updates int
}

// countingLeaf runs for `ticks` updates, keeping its progress in per-run state.
type countingLeaf struct {
	BaseLeaf[counterState]
	ticks int
}

func (l countingLeaf) Update(_ Context, s *counterState) Status {
	s.updates++
	if s.updates >= l.ticks {
		return Success
	}
	return Running
}

var bg = context.Background()
