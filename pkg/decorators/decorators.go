// Package decorators provides single-child transformers built on bt.NewDecorator.
//
// Every constructor returns a build-phase *bt.Node; the child may be nil and
// attached later with SetChild. Repeat and Retry complete at most one run of
// their child per tick, so they never loop inside a single Tick.
package decorators

import (
	"github.com/aretw0/canopy/pkg/bt"
)

// Inverter swaps Success and Failed. Running passes through.
func Inverter(name string, child *bt.Node) *bt.Node {
	return bt.NewDecorator[struct{}](name, inverter{}, child)
}

type inverter struct {
	bt.BaseDecorator[struct{}]
}

func (inverter) Update(_ bt.Context, _ *struct{}, child bt.Child) bt.Status {
	switch status := child.Tick(); status {
	case bt.Success:
		return bt.Failed
	case bt.Failed:
		return bt.Success
	default:
		return status
	}
}

// Force reports result whenever the child finishes, whatever the child returned.
// A non-terminal result is treated as Success.
func Force(name string, result bt.Status, child *bt.Node) *bt.Node {
	if !result.IsTerminal() {
		result = bt.Success
	}
	return bt.NewDecorator[struct{}](name, force{result: result}, child)
}

type force struct {
	bt.BaseDecorator[struct{}]
	result bt.Status
}

func (f force) Update(_ bt.Context, _ *struct{}, child bt.Child) bt.Status {
	if child.Tick() == bt.Running {
		return bt.Running
	}
	return f.result
}

// Repeat runs the child to success times times and then succeeds. A child failure
// fails the decorator immediately. times <= 0 repeats forever.
func Repeat(name string, times int, child *bt.Node) *bt.Node {
	return bt.NewDecorator[counter](name, repeat{times: times}, child)
}

// counter is the per-run state of Repeat and Retry.
type counter struct {
	n int
}

type repeat struct {
	bt.BaseDecorator[counter]
	times int
}

func (r repeat) Update(_ bt.Context, c *counter, child bt.Child) bt.Status {
	switch child.Tick() {
	case bt.Running:
		return bt.Running
	case bt.Failed:
		return bt.Failed
	}
	c.n++
	if r.times > 0 && c.n >= r.times {
		return bt.Success
	}
	return bt.Running
}

// Retry reruns a failing child until it succeeds or attempts runs have failed.
// attempts <= 0 retries forever.
func Retry(name string, attempts int, child *bt.Node) *bt.Node {
	return bt.NewDecorator[counter](name, retry{attempts: attempts}, child)
}

type retry struct {
	bt.BaseDecorator[counter]
	attempts int
}

func (r retry) Update(_ bt.Context, c *counter, child bt.Child) bt.Status {
	switch child.Tick() {
	case bt.Running:
		return bt.Running
	case bt.Success:
		return bt.Success
	}
	c.n++
	if r.attempts > 0 && c.n >= r.attempts {
		return bt.Failed
	}
	return bt.Running
}
