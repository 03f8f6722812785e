package bt

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaf_StartUpdateTerminateOnce(t *testing.T) {
	m := newMock(Failed)
	tree := MustCompile(leaf("leaf", m))
	run := tree.NewRun()

	s, u, term := m.calls()
	assert.Equal(t, [3]int{0, 0, 0}, [3]int{s, u, term})

	status := tree.Tick(bg, run)

	assert.Equal(t, Failed, status)
	s, u, term = m.calls()
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{s, u, term})
	assert.Equal(t, Failed, m.terminateWith)
	assert.Equal(t, Invalid, run.Status(0), "context is destroyed after a terminal status")
}

func TestLeaf_RunningIsResumedWithoutRestart(t *testing.T) {
	m := newMock(Running, Running, Success)
	run := MustCompile(leaf("leaf", m)).NewRun()

	assert.Equal(t, Running, run.Tick(bg))
	assert.Equal(t, Running, run.Status(0))
	assert.Equal(t, Running, run.Tick(bg))
	assert.Equal(t, Success, run.Tick(bg))

	s, u, term := m.calls()
	assert.Equal(t, 1, s)
	assert.Equal(t, 3, u)
	assert.Equal(t, 1, term)
	assert.Equal(t, uint64(3), run.Ticks())
	assert.Equal(t, Success, run.LastStatus())
}

func TestLeaf_RetickAfterTerminalRestarts(t *testing.T) {
	m := newMock(Success)
	run := MustCompile(leaf("leaf", m)).NewRun()

	run.Tick(bg)
	run.Tick(bg)

	s, _, term := m.calls()
	assert.Equal(t, 2, s)
	assert.Equal(t, 2, term)
}

func TestLeaf_TypedStateIsPerRun(t *testing.T) {
	tree := MustCompile(NewLeaf[counterState]("count", countingLeaf{ticks: 3}))
	a, b := tree.NewRun(), tree.NewRun()

	assert.Equal(t, Running, a.Tick(bg))
	assert.Equal(t, Running, a.Tick(bg))
	assert.Equal(t, Running, b.Tick(bg))
	assert.Equal(t, Success, a.Tick(bg))
	assert.Equal(t, Running, b.Tick(bg))
	assert.Equal(t, Success, b.Tick(bg))

	// a fresh run starts from zero again
	assert.Equal(t, Running, a.Tick(bg))
}

func TestLeaf_InvalidResultIsTreatedAsFailure(t *testing.T) {
	m := newMock(Invalid)
	run := MustCompile(leaf("leaf", m)).NewRun()
	assert.Equal(t, Failed, run.Tick(bg))
	assert.Equal(t, Failed, m.terminateWith)
}

func TestActionAndCondition(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(bg, key{}, "agent-7")

	var seen string
	act := Action("act", func(ctx context.Context) Status {
		seen, _ = ctx.Value(key{}).(string)
		return Running
	})
	assert.Equal(t, Running, MustCompile(act).NewRun().Tick(ctx))
	assert.Equal(t, "agent-7", seen)

	yes := Condition("yes", func(context.Context) bool { return true })
	no := Condition("no", func(context.Context) bool { return false })
	assert.Equal(t, Success, MustCompile(yes).NewRun().Tick(bg))
	assert.Equal(t, Failed, MustCompile(no).NewRun().Tick(bg))
}

func TestRun_ResetSkipsTerminate(t *testing.T) {
	m := newMock(Running)
	run := MustCompile(NewSequence("seq", leaf("a", m))).NewRun()

	run.Tick(bg)
	assert.Equal(t, []int{0, 1}, run.Active())

	run.Reset()
	assert.Empty(t, run.Active())
	_, _, term := m.calls()
	assert.Equal(t, 0, term)

	run.Tick(bg)
	s, _, _ := m.calls()
	assert.Equal(t, 2, s, "a reset run starts again")
}

func TestRun_Snapshot(t *testing.T) {
	run := MustCompile(NewSequence("seq", leaf("a", newMock()), leaf("b", newMock(Running)))).NewRun()
	run.Tick(bg)

	snap := run.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, SlotView{Index: 0, Name: "seq", Kind: "sequence", Status: Running, Current: 1}, snap[0])
	assert.Equal(t, Invalid, snap[1].Status)
	assert.Equal(t, Running, snap[2].Status)
}

func TestRun_ForeignRunPanics(t *testing.T) {
	t1 := MustCompile(leaf("a", newMock()))
	t2 := MustCompile(leaf("b", newMock()))
	assert.Panics(t, func() { t1.Tick(bg, t2.NewRun()) })
}

func TestRun_Hooks(t *testing.T) {
	var events []string
	hooks := domain.LifecycleHooks{
		OnNodeStart: func(_ context.Context, e *domain.NodeEvent) {
			events = append(events, "start:"+e.Node)
		},
		OnNodeTerminate: func(_ context.Context, e *domain.NodeEvent) {
			events = append(events, "end:"+e.Node+":"+e.Status.String())
		},
		OnTick: func(_ context.Context, e *domain.TickEvent) {
			events = append(events, "tick:"+e.RunID+":"+e.Status.String())
		},
	}
	tree := MustCompile(NewSequence("seq", leaf("a", newMock()), leaf("b", newMock(Failed))))
	run := tree.NewRun(WithRunID("r1"), WithHooks(hooks))
	run.Tick(bg)

	assert.Equal(t, []string{
		"start:seq",
		"start:a", "end:a:success",
		"start:b", "end:b:failed",
		"end:seq:failed",
		"tick:r1:failed",
	}, events)
}

func TestRun_ContextHandle(t *testing.T) {
	var name, runID string
	var index int
	probe := NewLeaf[struct{}]("probe", probeLeaf{fn: func(c Context) {
		name, runID, index = c.Name(), c.RunID(), c.Index()
	}})
	MustCompile(NewSequence("root", probe)).NewRun(WithRunID("agent")).Tick(bg)

	assert.Equal(t, "probe", name)
	assert.Equal(t, "agent", runID)
	assert.Equal(t, 1, index)
}

type probeLeaf struct {
	BaseLeaf[struct{}]
	fn func(Context)
}

func (p probeLeaf) Update(c Context, _ *struct{}) Status {
	p.fn(c)
	return Success
}

func TestTree_ConcurrentRuns(t *testing.T) {
	tree := MustCompile(NewParallel("root", ParallelSkipCompleted,
		NewLeaf[counterState]("slow", countingLeaf{ticks: 5}),
		NewSequence("seq",
			NewLeaf[counterState]("a", countingLeaf{ticks: 2}),
			NewLeaf[counterState]("b", countingLeaf{ticks: 2}),
		),
	))

	const agents = 32
	results := make([]int, agents)
	var wg sync.WaitGroup
	for i := 0; i < agents; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run := tree.NewRun()
			ticks := 1
			for run.Tick(bg) == Running {
				ticks++
			}
			results[i] = ticks
		}(i)
	}
	wg.Wait()

	for i, ticks := range results {
		assert.Equal(t, 5, ticks, "agent %d", i)
	}
}
