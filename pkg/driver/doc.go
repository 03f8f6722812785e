/*
Package driver owns the runs of a behavior tree: one bt.Run per agent.

A Manager ticks agents individually or all at once, serializes access per agent
with reference-counted locks, and installs new trees with Swap. Runs belonging to
a replaced tree are discarded on their next use, which resets the agent without
calling any Terminate hook.

	m := driver.NewManager(tree, driver.WithConcurrency(8))
	id, _ := m.Spawn(ctx, "")
	status, _ := m.Tick(ctx, id)
*/
package driver
