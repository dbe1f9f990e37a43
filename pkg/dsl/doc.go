/*
Package dsl provides a Go DSL for programmatically constructing Gaea instance trees.

It lets developers describe a page with a fluent builder instead of writing the
editor's JSON by hand. This is useful for tests, demos and generated pages.

Example usage:

	b := dsl.New()

	b.Add("page").
		Component(components.Container).
		Prop("direction", "column").
		Children("button", "label")

	b.Add("button").
		Component(components.Button).
		Prop("text", "Press").
		OnCallback("onClick").PassSiblings("x")

	b.Add("label").
		Component(components.Text).
		Bind("text", "x")

	// The resulting loader can be passed to gaea.WithLoader(...)
	loader, err := b.Build()
*/
package dsl
