/*
Package domain contains the core value types shared by the Canopy engine and its adapters.

It is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Status: the four-valued tick result (Invalid, Running, Success, Failed).
  - TreeSpec / NodeSpec: the plain data form of a tree, used by persistence and editors.
  - LifecycleHooks: observability callbacks fired while ticking.
  - Sentinel errors for topology faults, unknown kinds and missing trees/agents.
*/
package domain
