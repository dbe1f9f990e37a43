// Package components is the built-in component set used by the CLI and the servers.
//
// Each component decodes its props into a typed struct with mapstructure and renders
// a headless domain.Element. Hosts embedding Gaea usually register their own set instead.
package components

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/registry"
)

// Component keys of the built-in set.
const (
	Container = "gaea-container"
	Button    = "gaea-button"
	Text      = "gaea-text"
	Input     = "gaea-input"
	Link      = "gaea-link"
)

// ContainerProps lays out children.
type ContainerProps struct {
	Direction string `mapstructure:"direction"`
	Gap       int    `mapstructure:"gap"`
}

// ButtonProps is a clickable label. Clicks arrive through the onClick callback.
type ButtonProps struct {
	Text     string `mapstructure:"text"`
	Disabled bool   `mapstructure:"disabled"`
}

// TextProps is static or bound text.
type TextProps struct {
	Text    string `mapstructure:"text"`
	Variant string `mapstructure:"variant"`
}

// InputProps is a text field. Edits arrive through the onChange callback.
type InputProps struct {
	Value       string `mapstructure:"value"`
	Placeholder string `mapstructure:"placeholder"`
}

// LinkProps points at an external URL.
type LinkProps struct {
	Href string `mapstructure:"href"`
	Text string `mapstructure:"text"`
}

// Register adds the built-in set to reg.
func Register(reg *registry.Registry) {
	reg.Register(Container, domain.ComponentFunc(renderContainer),
		registry.AsContainer(),
		registry.WithDefaults(domain.Props{"direction": "column", "gap": 0}))
	reg.Register(Button, domain.ComponentFunc(renderButton),
		registry.WithDefaults(domain.Props{"text": "Button", "disabled": false}))
	reg.Register(Text, domain.ComponentFunc(renderText),
		registry.WithDefaults(domain.Props{"variant": "body"}))
	reg.Register(Input, domain.ComponentFunc(renderInput),
		registry.WithDefaults(domain.Props{"placeholder": ""}))
	reg.Register(Link, domain.ComponentFunc(renderLink))
}

// Default returns a registry holding only the built-in set.
func Default() *registry.Registry {
	reg := registry.NewRegistry()
	Register(reg)
	return reg
}

// Decode reads props into out. Values are converted loosely since bound
// sibling values arrive with whatever type the emitter used.
func Decode(props domain.Props, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(props)); err != nil {
		return fmt.Errorf("invalid props: %w", err)
	}
	return nil
}

func renderContainer(props domain.Props, children []*domain.Element) (*domain.Element, error) {
	var p ContainerProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	if p.Direction != "row" && p.Direction != "column" {
		return nil, fmt.Errorf("invalid direction %q", p.Direction)
	}
	return domain.NewElement("container", props, children), nil
}

func renderButton(props domain.Props, _ []*domain.Element) (*domain.Element, error) {
	var p ButtonProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	el := domain.NewElement("button", props, nil)
	el.Text = p.Text
	return el, nil
}

func renderText(props domain.Props, _ []*domain.Element) (*domain.Element, error) {
	var p TextProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	el := domain.NewElement("text", props, nil)
	el.Text = p.Text
	return el, nil
}

func renderInput(props domain.Props, _ []*domain.Element) (*domain.Element, error) {
	var p InputProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	el := domain.NewElement("input", props, nil)
	el.Text = p.Value
	return el, nil
}

func renderLink(props domain.Props, _ []*domain.Element) (*domain.Element, error) {
	var p LinkProps
	if err := Decode(props, &p); err != nil {
		return nil, err
	}
	el := domain.NewElement("link", props, nil)
	el.Text = p.Text
	if el.Text == "" {
		el.Text = p.Href
	}
	return el, nil
}
