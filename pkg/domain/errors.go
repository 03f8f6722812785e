package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTopology is the parent of every topology fault raised while editing or compiling a tree.
var ErrInvalidTopology = errors.New("invalid topology")

// ErrCycle is returned when an edit or a spec would make a node its own descendant.
var ErrCycle = fmt.Errorf("%w: cycle detected", ErrInvalidTopology)

// ErrTooManyChildren is returned when a node kind cannot hold another child (leaves, decorators).
var ErrTooManyChildren = fmt.Errorf("%w: too many children", ErrInvalidTopology)

// ErrNilNode is returned when a nil node is used as a child or root.
var ErrNilNode = fmt.Errorf("%w: nil node", ErrInvalidTopology)

// ErrInvalidSpec is returned when a tree spec cannot be turned into a node graph.
var ErrInvalidSpec = errors.New("invalid tree spec")

// ErrUnknownKind is returned when a spec references a node kind that is not registered.
var ErrUnknownKind = errors.New("unknown node kind")

// ErrTreeNotFound is returned when a tree ID cannot be found in the store.
var ErrTreeNotFound = errors.New("tree not found")

// ErrAgentNotFound is returned when the driver has no agent with the given ID.
var ErrAgentNotFound = errors.New("agent not found")

// ErrAgentExists is returned when spawning an agent whose ID is already taken.
var ErrAgentExists = errors.New("agent already exists")
