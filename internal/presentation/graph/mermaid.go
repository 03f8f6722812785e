package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/domain"
)

// Overlay carries run state to highlight on the graph.
type Overlay struct {
	// Active lists the compiled indices of nodes with a live context.
	Active []int
	// Last is the status of the most recent root tick.
	Last domain.Status
}

// OverlayOf builds an overlay from a run.
func OverlayOf(run *bt.Run) *Overlay {
	return &Overlay{Active: run.Active(), Last: run.LastStatus()}
}

// GenerateMermaid renders the compiled tree as a top-down Mermaid flowchart.
// Every compiled occurrence is one graph node, so a shared definition appears
// once per path. Shapes follow the node kind:
//   - Sequence: [["→ name"]]
//   - Selector: [["? name"]]
//   - Parallel: [["⇉ name"]]
//   - Decorator: {{"name"}}
//   - Leaf: ("name")
//
// Edges out of composites are numbered in tick order.
func GenerateMermaid(tree *bt.Tree, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	nodes := tree.Nodes()
	for _, n := range nodes {
		fmt.Fprintf(&sb, "    %s%s\n", mermaidID(n.Index), shape(n))
	}
	for _, n := range nodes {
		for i, c := range n.Children {
			if n.Kind.IsComposite() {
				fmt.Fprintf(&sb, "    %s -- \"%d\" --> %s\n", mermaidID(n.Index), i+1, mermaidID(c))
			} else {
				fmt.Fprintf(&sb, "    %s --> %s\n", mermaidID(n.Index), mermaidID(c))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef running fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef success fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")

		rootRunning := false
		for _, idx := range overlay.Active {
			if idx < 0 || idx >= tree.Len() {
				continue
			}
			rootRunning = rootRunning || idx == 0
			fmt.Fprintf(&sb, "    class %s running;\n", mermaidID(idx))
		}
		if !rootRunning && overlay.Last.IsTerminal() && tree.Len() > 0 {
			fmt.Fprintf(&sb, "    class %s %s;\n", mermaidID(0), overlay.Last)
		}
	}
	return sb.String()
}

func mermaidID(index int) string {
	return fmt.Sprintf("n%d", index)
}

func shape(n bt.NodeInfo) string {
	label := escape(n.Name)
	if label == "" {
		label = n.KindName
	}
	if n.Type != "" && n.Type != n.KindName {
		label += "<br/><i>" + escape(n.Type) + "</i>"
	}
	switch n.Kind {
	case bt.KindSequence:
		return fmt.Sprintf("[[\"→ %s\"]]", label)
	case bt.KindSelector:
		return fmt.Sprintf("[[\"? %s\"]]", label)
	case bt.KindParallel:
		return fmt.Sprintf("[[\"⇉ %s\"]]", label)
	case bt.KindDecorator:
		return fmt.Sprintf("{{\"%s\"}}", label)
	}
	return fmt.Sprintf("(\"%s\")", label)
}

// escape keeps labels from closing Mermaid's quoted strings.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
