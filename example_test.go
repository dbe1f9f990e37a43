package gaea_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/gaea"
	"github.com/aretw0/gaea/pkg/components"
	"github.com/aretw0/gaea/pkg/dsl"
)

// ExampleNew_memory builds a page in memory and lets a button feed a sibling label.
func ExampleNew_memory() {
	b := dsl.New()
	b.Add("page").
		Component(components.Container).
		Children("button", "label")
	b.Add("button").
		Component(components.Button).
		Prop("text", "Press").
		OnCallback("onClick").PassSiblings("message")
	b.Add("label").
		Component(components.Text).
		Bind("text", "message")

	loader, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	// We leave path empty ("") because we are providing a loader.
	engine, err := gaea.New("", gaea.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	root, err := engine.Instantiate(ctx, "page")
	if err != nil {
		log.Fatal(err)
	}
	defer root.Unmount(ctx)

	fmt.Printf("%q\n", root.Tree().Find("label").Text)

	if err := root.Invoke(ctx, "button", "onClick", "clicked"); err != nil {
		log.Fatal(err)
	}
	fmt.Println(root.Tree().Find("label").Text)

	// Output:
	// ""
	// clicked
}

// ExampleRoot_Publish shows a subscribe trigger feeding sibling state.
// Subscribe handlers run their action without arguments, so "now" is set to nil.
func ExampleRoot_Publish() {
	b := dsl.New()
	b.Add("page").
		Component(components.Container).
		Children("clock", "display")
	b.Add("clock").
		Component(components.Text).
		OnSubscribe("tick").PassSiblings("now")
	b.Add("display").
		Component(components.Text).
		Bind("text", "now")

	loader, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}
	engine, err := gaea.New("", gaea.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	root, err := engine.Instantiate(ctx, "page")
	if err != nil {
		log.Fatal(err)
	}
	defer root.Unmount(ctx)

	fmt.Println(root.Subscriptions())
	if err := root.Publish(ctx, "tick", "ignored"); err != nil {
		log.Fatal(err)
	}
	_, ok := root.State("page")["now"]
	fmt.Println(ok)

	// Output:
	// 1
	// true
}
