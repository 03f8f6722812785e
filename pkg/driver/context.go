package driver

import "context"

type agentKey struct{}

// WithAgentID returns ctx carrying the id of the agent being ticked.
func WithAgentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, agentKey{}, id)
}

// AgentID returns the id of the agent being ticked, for leaves built from plain
// context functions such as bt.Action.
func AgentID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(agentKey{}).(string)
	return id, ok
}
