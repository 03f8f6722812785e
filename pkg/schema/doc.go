// Package schema validates the free-form config maps attached to tree nodes.
//
// A Schema maps config keys to types. Node kinds declare one schema each and the
// registry checks a node's config against it before decoding:
//
//	s := schema.Schema{
//	    "ticks":  schema.Int(),
//	    "result": schema.Status(),
//	}
//	err := schema.ValidatePartial(s, map[string]any{"ticks": 3})
//
// Validate requires every key; ValidatePartial accepts missing keys but rejects
// keys the schema does not know. Both report every failure at once through an
// *AggregateError of *ValidationError values, ordered by key.
//
// Schemas round-trip through JSON as a map of key to type name ("int",
// "[string]", "status", "enum(a|b)"), which is how the kind catalog is served.
package schema
