package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/domain"
)

// Describe renders a tree spec and its compiled form as markdown: a header, an
// indented outline of the compiled tree and a table of node configs.
func Describe(spec *domain.TreeSpec, tree *bt.Tree) string {
	var b strings.Builder

	title := spec.ID
	if title == "" {
		title = spec.Root
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if spec.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", spec.Description)
	}
	fmt.Fprintf(&b, "%d definitions, %d compiled nodes, root `%s`.\n\n", len(spec.Nodes), tree.Len(), spec.Root)

	b.WriteString("## Outline\n\n")
	for _, n := range tree.Nodes() {
		kind := n.KindName
		if n.Type != "" {
			kind = n.Type
		}
		if n.Kind == bt.KindParallel {
			kind += ", " + n.Mode.String()
		}
		fmt.Fprintf(&b, "%s- **%s** _(%s)_\n", strings.Repeat("  ", n.Depth), n.Name, kind)
	}

	b.WriteString("\n## Nodes\n\n| id | kind | children | config |\n|---|---|---|---|\n")
	for _, n := range spec.Nodes {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", n.ID, n.Kind, strings.Join(n.Children, ", "), formatConfig(n.Config))
	}

	if len(spec.Metadata) > 0 {
		b.WriteString("\n## Metadata\n\n")
		for _, k := range slices.Sorted(maps.Keys(spec.Metadata)) {
			fmt.Fprintf(&b, "- %s: %s\n", k, spec.Metadata[k])
		}
	}
	return b.String()
}

func formatConfig(config map[string]any) string {
	if len(config) == 0 {
		return ""
	}
	parts := make([]string, 0, len(config))
	for _, k := range slices.Sorted(maps.Keys(config)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, config[k]))
	}
	return "`" + strings.Join(parts, " ") + "`"
}
