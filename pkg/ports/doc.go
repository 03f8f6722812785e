/*
Package ports defines the driven ports of Canopy: the interfaces the engine uses
to reach tree definitions kept outside the process.

# Key Interfaces

  - TreeStore: persists and loads tree specs (memory, file, redis adapters).
  - Watchable: implemented by stores that can signal that their trees changed.

RunTreeStoreContract is a shared test suite every TreeStore adapter runs.
*/
package ports
