/*
Package canopy is a behavior tree execution engine for driving many agents over
one shared tree definition.

A tree is described as plain data (YAML or JSON), built into nodes by a kind
registry and compiled once. Each agent owns a Run: a flat arena of per-node
contexts indexed in pre-order, so ticking an agent never allocates and never
touches another agent's state.

# Concept

Nodes are leaves (actions and conditions), decorators (one child) or composites
(sequence, selector, parallel). Every tick returns Running, Success or Failed.
A node is started the first time it is ticked in a run, updated on every tick,
and terminated when it reaches a terminal result. Subtrees that are abandoned
while running are reset without a terminate callback.

# Usage

	engine, err := canopy.New("patrol.yaml")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	d := engine.Driver()
	id, _ := d.Spawn(ctx, "")
	status, _ := d.Tick(ctx, id)
	fmt.Println(status)

Custom behaviors are plugged in by registering kinds on a registry.Registry and
passing it with WithRegistry. Trees can also be loaded from any ports.TreeStore
(memory, file directory, redis) with WithStore, and reloaded in place with
Reload or Follow.

# Packages

  - pkg/bt: nodes, compilation and per-agent runs.
  - pkg/decorators: inverter, force, repeat and retry.
  - pkg/registry: kinds, tree building from specs and the reverse reduction.
  - pkg/driver: concurrent agent management.
  - pkg/adapters: tree stores.
  - pkg/observability: metrics and logging hooks.
*/
package canopy
