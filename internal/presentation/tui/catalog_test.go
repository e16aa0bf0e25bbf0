package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/agavesunset/agave/pkg/domain"
	"github.com/stretchr/testify/assert"
)

var specs = []domain.Spec{
	{
		Class:       "MathAgaveSunset",
		DisplayName: "Math_AS",
		Category:    "AgaveSunset/AS",
		Description: "Evaluates a math expression.",
		Required:    []domain.Input{{Name: "expression", Type: domain.SocketString}},
		Optional:    []domain.Input{{Name: "a", Type: domain.SocketAny}},
		ReturnTypes: []domain.SocketType{domain.SocketInt, domain.SocketFloat},
	},
	{
		Class:       "calculate_AgaveSunset",
		DisplayName: "calculate_AgaveSunset",
		Category:    "AgaveSunset",
		Required: []domain.Input{{
			Name:    "operation",
			Type:    domain.SocketCombo,
			Choices: []string{"add_ab", "sub_ab"},
			Options: map[string]any{"default": "add_ab"},
		}},
		ReturnTypes: []domain.SocketType{domain.SocketFloat},
		ReturnNames: []string{"result"},
	},
}

func TestCatalogMarkdown(t *testing.T) {
	md := CatalogMarkdown(specs)

	assert.True(t, strings.HasPrefix(md, "# Nodes\n"))
	assert.Less(t, strings.Index(md, "## AgaveSunset\n"), strings.Index(md, "## AgaveSunset/AS\n"))
	assert.Contains(t, md, "| `MathAgaveSunset` | Math_AS | INT, FLOAT |")
	assert.Contains(t, md, "| `calculate_AgaveSunset` | calculate_AgaveSunset | result FLOAT |")
}

func TestNodeMarkdown(t *testing.T) {
	md := NodeMarkdown(specs[1])
	assert.Contains(t, md, "# calculate_AgaveSunset")
	assert.Contains(t, md, "- `operation` COMBO (add_ab, sub_ab), default `add_ab`")
	assert.NotContains(t, md, "## Optional")

	md = NodeMarkdown(specs[0])
	assert.Contains(t, md, "Evaluates a math expression.")
	assert.Contains(t, md, "## Optional\n\n- `a` *")
}

func TestNewRenderer_Plain(t *testing.T) {
	out, err := NewRenderer(false)("# Title")
	assert.NoError(t, err)
	assert.Equal(t, "# Title", out)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "sunset")
}
