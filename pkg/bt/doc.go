/*
Package bt implements the Canopy behavior-tree execution core.

A tree is authored as a graph of *Node values (the build phase), then compiled
into an immutable *Tree. The compiled tree is shared: any number of agents can
tick it, each through its own *Run, which owns every piece of mutable per-run
state in a flat slot arena indexed by the compiled node index.

# Lifecycle

Every node follows the same state machine on each run:

	Invalid --start--> Running --update--> Running | Success | Failed --terminate--> Invalid

Start fires exactly once per run, immediately before the first update. Terminate
fires exactly once per run, immediately after the update that produced a terminal
status, and the node's slot (and every slot below it) is then reset to Invalid.
Ticking a node again after a terminal result starts a fresh run.

# Composites

  - Sequence: ticks children in order, resuming at the active child; the first
    non-Success result is returned. Empty sequences succeed.
  - Selector: dual of Sequence; the first non-Failed result is returned. Empty
    selectors fail.
  - Parallel: ticks every child on every call; any failure fails the parallel,
    it succeeds once every child has succeeded. See ParallelMode.

# Usage

	root := bt.NewSequence("patrol",
		bt.Condition("has-target", hasTarget),
		bt.Action("move", move),
	)
	tree, err := bt.Compile(root)
	if err != nil {
		return err
	}

	run := tree.NewRun()
	for run.Tick(ctx) == bt.Running {
		// wait for the next frame
	}
*/
package bt
