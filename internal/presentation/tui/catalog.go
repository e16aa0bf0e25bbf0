package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agavesunset/agave/pkg/domain"
)

// CatalogMarkdown renders node specs as a markdown document grouped by category.
func CatalogMarkdown(specs []domain.Spec) string {
	byCategory := make(map[string][]domain.Spec)
	for _, s := range specs {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var sb strings.Builder
	sb.WriteString("# Nodes\n")
	for _, c := range categories {
		fmt.Fprintf(&sb, "\n## %s\n\n", c)
		sb.WriteString("| Class | Display name | Outputs |\n|---|---|---|\n")
		for _, s := range byCategory[c] {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", s.Class, s.DisplayName, outputs(s))
		}
	}
	return sb.String()
}

// NodeMarkdown renders the full declaration of one node.
func NodeMarkdown(s domain.Spec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", s.DisplayName)
	fmt.Fprintf(&sb, "`%s` in *%s*\n", s.Class, s.Category)
	if s.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", s.Description)
	}

	sections := []struct {
		title  string
		inputs []domain.Input
	}{
		{"Required", s.Required},
		{"Optional", s.Optional},
		{"Hidden", s.Hidden},
	}
	for _, sec := range sections {
		if len(sec.inputs) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", sec.title)
		for _, in := range sec.inputs {
			fmt.Fprintf(&sb, "- `%s` %s", in.Name, in.Type)
			if len(in.Choices) > 0 {
				fmt.Fprintf(&sb, " (%s)", strings.Join(in.Choices, ", "))
			}
			if def, ok := in.Default(); ok {
				fmt.Fprintf(&sb, ", default `%v`", def)
			}
			sb.WriteString("\n")
		}
	}

	fmt.Fprintf(&sb, "\n## Outputs\n\n%s\n", outputs(s))
	return sb.String()
}

func outputs(s domain.Spec) string {
	parts := make([]string, len(s.ReturnTypes))
	for i, t := range s.ReturnTypes {
		if i < len(s.ReturnNames) && s.ReturnNames[i] != "" {
			parts[i] = fmt.Sprintf("%s %s", s.ReturnNames[i], t)
		} else {
			parts[i] = string(t)
		}
	}
	return strings.Join(parts, ", ")
}
