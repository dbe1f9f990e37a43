/*
Package gaea is a preview-mode runtime for page-builder instance trees.

An external editor stores a page as a flat map of instances: each one names a
component, static props, events and the keys of its children. Gaea walks that
map from a root key, instantiates the registered components, wires their events
to a publish/subscribe bus and lets sibling instances share data through their
parent. The output is a headless Element tree that hosts present however they
like: JSON over HTTP, an MCP resource, or a terminal outline.

# Concept

Data flows down and events flow up. A parent keeps the sibling state of its
children; a child emitting "passingSiblingNodes" updates that state, and every
sibling whose props bind to the changed variable re-renders. A change detector
skips re-renders whose inputs did not change.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/gaea"
	)

	func main() {
		// Reads instances from ./my-page using the built-in components
		eng, err := gaea.New("./my-page")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		root, err := eng.Instantiate(ctx, "page")
		if err != nil {
			log.Fatal(err)
		}
		defer root.Unmount(ctx)

		// Fire the button's onClick callback with one positional value
		if err := root.Invoke(ctx, "button", "onClick", "hello"); err != nil {
			log.Fatal(err)
		}
		log.Println(root.Tree().Find("label").Text)
	}
*/
package gaea
