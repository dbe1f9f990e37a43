/*
Package ports defines the driven ports (interfaces) for the Gaea engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various instance stores, component sets and hosts.

# Key Interfaces

  - InstanceLoader: Responsible for loading instance records (e.g., from a file, Loam, Redis or memory).
  - InstanceStore: A writable InstanceLoader (memory, Redis, bbolt) used by imports.
  - ComponentRegistry: Resolves a component key into an implementation plus capabilities.
  - EventBus: The render-root scoped publish/subscribe service behind "subscribe" triggers.
  - Navigator: Executes "jump" actions.
*/
package ports
