/*
Package domain contains the core models of the Gaea preview runtime.

It defines the authored instance tree as the editor serializes it, the event
model (triggers and actions as closed sets of variants), the sibling state
exchanged between children of one parent, and the headless Element tree the
engine produces. The package is kept pure and free of I/O, following
Hexagonal Architecture principles.

# Key Entities

  - Instance: one authored node (component key, props, events, child keys, variable bindings).
  - Event: a Trigger (init, subscribe, callback) paired with an Action (none, passingSiblingNodes, jump).
  - SiblingState: the parent-owned variable table, updated through Reduce.
  - Element: the rendered output of an instance, patched in place on re-render.
*/
package domain
