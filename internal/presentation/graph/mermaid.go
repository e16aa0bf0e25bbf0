package graph

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/agavesunset/agave/pkg/expr"
	"github.com/agavesunset/agave/pkg/workflow"
)

// GraphOverlay contains data to highlight on the graph.
type GraphOverlay struct {
	// Catalogue lists node types the host can execute; they are drawn as subroutines.
	Catalogue []string
	// Referenced lists node ids read by an expression.
	Referenced []workflow.NodeID
	// Current is the node evaluating the expression.
	Current workflow.NodeID
}

// GenerateMermaid produces a Mermaid flowchart of a workflow snapshot.
// It applies semantic styling:
// - Sources (no incoming link): ((Circle))
// - Catalogue nodes: [[Subroutine]]
// - Default: [Rectangle]
// Links are labelled with their socket type. Overlay styles are applied if provided.
func GenerateMermaid(snap *workflow.Snapshot, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	if snap == nil {
		return sb.String()
	}

	incoming := make(map[workflow.NodeID]bool)
	for _, l := range snap.Workflow.Links {
		incoming[l.To] = true
	}
	catalogue := make(map[string]bool)
	if overlay != nil {
		for _, c := range overlay.Catalogue {
			catalogue[c] = true
		}
	}

	for _, node := range snap.Workflow.Nodes {
		opener, closer := "[", "]"
		switch {
		case catalogue[node.Type]:
			opener, closer = "[[", "]]"
		case !incoming[node.ID]:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(node.ID), opener, label(node), closer)
	}

	links := append([]workflow.Link(nil), snap.Workflow.Links...)
	sort.SliceStable(links, func(i, j int) bool { return links[i].ID < links[j].ID })
	for _, l := range links {
		arrow := "-->"
		if l.Type != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escape(l.Type))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(l.From), arrow, mermaidID(l.To))
	}

	if overlay != nil && (len(overlay.Referenced) > 0 || overlay.Current != "") {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef referenced fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		done := make(map[string]bool)
		for _, id := range overlay.Referenced {
			safeID := mermaidID(id)
			if !done[safeID] && safeID != "" {
				done[safeID] = true
				fmt.Fprintf(&sb, "    class %s referenced;\n", safeID)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", mermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func label(n workflow.Node) string {
	name := n.Name()
	if n.Title != "" && n.Title != name {
		return escape(n.Title) + " <br/> " + escape(name)
	}
	return escape(name)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// mermaidID prefixes numeric ids, which Mermaid does not accept as node names.
func mermaidID(id workflow.NodeID) string {
	s := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(string(id))
	if s == "" {
		return ""
	}
	return "n" + s
}

// ReferencedNodes returns the ids of the snapshot nodes an expression reads
// through `Node.field` references. Names that match no node are skipped.
func ReferencedNodes(snap *workflow.Snapshot, expression string) ([]workflow.NodeID, error) {
	n, err := expr.Parse(expression)
	if err != nil {
		return nil, err
	}
	var ids []workflow.NodeID
	for _, ref := range expr.References(n) {
		if id, ok := snap.Find(ref.Node); ok && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
