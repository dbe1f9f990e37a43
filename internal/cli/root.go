package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/gaea"
)

// conventionalRoots are tried, in order, when several instances have no parent.
var conventionalRoots = []string{"root", "page", "index", "main"}

// ResolveRoot picks the root instance key: the explicit flag, then the key the
// backend declares, then the only instance nobody lists as a child.
func ResolveRoot(eng *gaea.Engine, flag, declared string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if declared != "" {
		return declared, nil
	}

	instances, err := eng.Inspect()
	if err != nil {
		return "", err
	}
	listed := make(map[string]bool)
	for _, inst := range instances {
		for _, child := range inst.Children {
			listed[child] = true
		}
	}
	var candidates []string
	for _, inst := range instances {
		if !listed[inst.Key] && inst.ParentKey == "" {
			candidates = append(candidates, inst.Key)
		}
	}
	slices.Sort(candidates)

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("no root instance found, pass --root")
	case 1:
		return candidates[0], nil
	}
	for _, name := range conventionalRoots {
		if slices.Contains(candidates, name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("several root candidates (%s), pass --root", strings.Join(candidates, ", "))
}
