package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flipState struct {
	started bool
}

// flip inverts a terminal child status.
type flip struct {
	BaseDecorator[flipState]
}

func (flip) Start(_ Context, s *flipState) { s.started = true }

func (flip) Update(_ Context, s *flipState, child Child) Status {
	if !s.started {
		return Failed
	}
	switch st := child.Tick(); st {
	case Success:
		return Failed
	case Failed:
		return Success
	default:
		return st
	}
}

// giveUp returns Failed as soon as the child reports Running.
type giveUp struct {
	BaseDecorator[struct{}]
}

func (giveUp) Update(_ Context, _ *struct{}, child Child) Status {
	if st := child.Tick(); st != Running {
		return st
	}
	return Failed
}

func TestDecorator_PassThrough(t *testing.T) {
	m := newMock(Running, Success)
	run := MustCompile(NewDecorator[struct{}]("pass", nil, leaf("a", m))).NewRun()

	assert.Equal(t, Running, run.Tick(bg))
	assert.Equal(t, Success, run.Tick(bg))
	assertCalls(t, m, 1, 2, 1)
}

func TestDecorator_WithoutChildFails(t *testing.T) {
	run := MustCompile(NewDecorator[struct{}]("lonely", nil, nil)).NewRun()
	assert.Equal(t, Failed, run.Tick(bg))
}

func TestDecorator_TypedStateAndInversion(t *testing.T) {
	tree := MustCompile(NewSequence("seq",
		NewDecorator[flipState]("not-a", flip{}, leaf("a", newMock(Failed))),
		NewDecorator[flipState]("not-b", flip{}, leaf("b", newMock(Success))),
	))
	assert.Equal(t, Failed, tree.NewRun().Tick(bg))

	ok := MustCompile(NewDecorator[flipState]("not", flip{}, leaf("a", newMock(Failed))))
	assert.Equal(t, Success, ok.NewRun().Tick(bg))
}

func TestDecorator_TerminalResetsRunningChild(t *testing.T) {
	m := newMock(Running)
	run := MustCompile(NewDecorator[struct{}]("give-up", giveUp{}, leaf("a", m))).NewRun()

	assert.Equal(t, Failed, run.Tick(bg))
	assertCalls(t, m, 1, 1, 0)
	assert.Empty(t, run.Active())

	assert.Equal(t, Failed, run.Tick(bg))
	assertCalls(t, m, 2, 2, 0)
}

type resetOnce struct {
	BaseDecorator[int]
}

func (resetOnce) Update(_ Context, calls *int, child Child) Status {
	*calls++
	st := child.Tick()
	if *calls == 1 && st == Running {
		child.Reset()
		return Running
	}
	return st
}

func TestChild_Reset(t *testing.T) {
	m := newMock(Running, Success)
	run := MustCompile(NewDecorator[int]("reset", resetOnce{}, leaf("a", m))).NewRun()

	assert.Equal(t, Running, run.Tick(bg))
	assert.Equal(t, Invalid, run.Status(1), "child context was abandoned")

	assert.Equal(t, Success, run.Tick(bg))
	assertCalls(t, m, 2, 2, 1)
}

type probeChild struct {
	BaseDecorator[struct{}]
	seen *[]bool
}

func (p probeChild) Update(_ Context, _ *struct{}, child Child) Status {
	*p.seen = append(*p.seen, child.Present())
	before := child.Status()
	st := child.Tick()
	if before != Invalid && before != Running {
		return Failed
	}
	return st
}

func TestChild_PresentAndStatus(t *testing.T) {
	var seen []bool
	tree := MustCompile(NewSequence("seq",
		NewDecorator[struct{}]("with", probeChild{seen: &seen}, leaf("a", newMock(Success))),
		NewDecorator[struct{}]("without", probeChild{seen: &seen}, nil),
	))
	assert.Equal(t, Failed, tree.NewRun().Tick(bg))
	require.Len(t, seen, 2)
	assert.Equal(t, []bool{true, false}, seen)
}
