package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/gaea/pkg/domain"
)

// GraphOverlay contains live mount data to visualize on the graph.
type GraphOverlay struct {
	MountedInstances []string
	RootInstance     string
}

// GenerateMermaid produces a Mermaid flowchart from a list of instances.
// It applies semantic styling:
// - Root (no parent): ((Circle))
// - Container: [[Subroutine]]
// - Default: [Rectangle]
// Child edges are solid. Sibling data flow (an emitter passing a variable that a
// sibling binds) is drawn dotted and labelled with the variable name.
// Overlay styles mark mounted instances when provided.
func GenerateMermaid(instances []domain.Instance, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	sorted := slices.Clone(instances)
	slices.SortFunc(sorted, func(a, b domain.Instance) int { return strings.Compare(a.Key, b.Key) })

	byKey := make(map[string]domain.Instance, len(sorted))
	for _, inst := range sorted {
		byKey[inst.Key] = inst
	}

	for _, inst := range sorted {
		safeID := sanitizeMermaidID(inst.Key)

		opener, closer := "[", "]"
		switch {
		case inst.ParentKey == "":
			opener, closer = "((", "))"
		case len(inst.Children) > 0:
			opener, closer = "[[", "]]"
		}

		label := fmt.Sprintf("%s <br/> %s", inst.Key, inst.ComponentKey)
		for _, ch := range subscribedChannels(inst) {
			label += " <br/> ⚡ " + ch
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer)

		for _, child := range inst.Children {
			fmt.Fprintf(&sb, "    %s --> %s\n", safeID, sanitizeMermaidID(child))
		}

		for _, url := range jumpTargets(inst) {
			fmt.Fprintf(&sb, "    %s -. \"jump\" .-> %s_jump[/\"%s\"/]\n", safeID, safeID, escapeLabel(url))
		}
	}

	for _, parent := range sorted {
		for _, edge := range siblingEdges(parent, byKey) {
			fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n",
				sanitizeMermaidID(edge.from), escapeLabel(edge.name), sanitizeMermaidID(edge.to))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef mounted fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef root fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, key := range overlay.MountedInstances {
			safeID := sanitizeMermaidID(key)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s mounted;\n", safeID)
			}
		}
		if overlay.RootInstance != "" {
			fmt.Fprintf(&sb, "    class %s root;\n", sanitizeMermaidID(overlay.RootInstance))
		}
	}

	return sb.String()
}

type siblingEdge struct {
	from, to, name string
}

// siblingEdges links children of parent that emit a variable to children that bind it.
func siblingEdges(parent domain.Instance, byKey map[string]domain.Instance) []siblingEdge {
	readers := make(map[string][]string)
	for _, key := range parent.Children {
		child, ok := byKey[key]
		if !ok {
			continue
		}
		for _, name := range child.SiblingKeys() {
			readers[name] = append(readers[name], key)
		}
	}

	var edges []siblingEdge
	for _, key := range parent.Children {
		child, ok := byKey[key]
		if !ok {
			continue
		}
		for _, name := range emittedNames(child) {
			for _, reader := range readers[name] {
				edges = append(edges, siblingEdge{from: key, to: reader, name: name})
			}
		}
	}
	return edges
}

func emittedNames(inst domain.Instance) []string {
	var names []string
	for _, ev := range inst.Data.Events {
		a, ok := ev.Action.(domain.PassSiblingNodesAction)
		if !ok {
			continue
		}
		for _, m := range a.Mappings {
			if m.Name != "" && !slices.Contains(names, m.Name) {
				names = append(names, m.Name)
			}
		}
	}
	return names
}

func subscribedChannels(inst domain.Instance) []string {
	var channels []string
	for _, ev := range inst.Data.Events {
		if t, ok := ev.Trigger.(domain.SubscribeTrigger); ok && !slices.Contains(channels, t.Channel) {
			channels = append(channels, t.Channel)
		}
	}
	return channels
}

func jumpTargets(inst domain.Instance) []string {
	var urls []string
	for _, ev := range inst.Data.Events {
		if a, ok := ev.Action.(domain.JumpAction); ok && a.URL != "" && !slices.Contains(urls, a.URL) {
			urls = append(urls, a.URL)
		}
	}
	return urls
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
