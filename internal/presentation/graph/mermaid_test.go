package graph_test

import (
	"strings"
	"testing"

	"github.com/agavesunset/agave/internal/presentation/graph"
	"github.com/agavesunset/agave/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `
workflow:
  nodes:
    - {id: 3, type: KSampler, title: Main sampler, properties: {"Node name for S&R": KSampler}}
    - {id: 5, type: EmptyLatentImage}
    - {id: 7, type: MathAgaveSunset, title: "Half \"steps\""}
  links:
    - [2, 7, 0, 3, 2, INT]
    - [1, 5, 0, 3, 3, LATENT]
prompt:
  "3": {class_type: KSampler, inputs: {steps: 20}}
  "5": {class_type: EmptyLatentImage, inputs: {width: 1024, height: 768}}
  "7": {class_type: MathAgaveSunset, inputs: {expression: "KSampler.steps / 2"}}
`

func load(t *testing.T) *workflow.Snapshot {
	t.Helper()
	snap, err := workflow.Parse([]byte(snapshot))
	require.NoError(t, err)
	return snap
}

func TestGenerateMermaid(t *testing.T) {
	snap := load(t)

	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes",
			contains: []string{
				"graph LR",
				`n3["Main sampler <br/> KSampler"]`,
				`n5(("EmptyLatentImage"))`,
				`n7(("Half 'steps' <br/> MathAgaveSunset"))`,
			},
		},
		{
			name:    "Catalogue Nodes",
			overlay: &graph.GraphOverlay{Catalogue: []string{"MathAgaveSunset"}},
			contains: []string{
				`n7[["Half 'steps' <br/> MathAgaveSunset"]]`,
			},
			excludes: []string{"Overlay Styles"},
		},
		{
			name: "Links In Id Order",
			contains: []string{
				"    n5 -- \"LATENT\" --> n3\n    n7 -- \"INT\" --> n3\n",
			},
		},
		{
			name:    "Overlay",
			overlay: &graph.GraphOverlay{Referenced: []workflow.NodeID{"3", "3"}, Current: "7"},
			contains: []string{
				"classDef referenced",
				"class n3 referenced;",
				"class n7 current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(snap, tt.overlay)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}

	t.Run("Referenced Once", func(t *testing.T) {
		got := graph.GenerateMermaid(snap, &graph.GraphOverlay{Referenced: []workflow.NodeID{"3", "3"}})
		assert.Equal(t, 1, strings.Count(got, "class n3 referenced;"))
	})
}

func TestGenerateMermaid_NilSnapshot(t *testing.T) {
	assert.Equal(t, "graph LR\n", graph.GenerateMermaid(nil, nil))
}

func TestReferencedNodes(t *testing.T) {
	snap := load(t)

	ids, err := graph.ReferencedNodes(snap, "KSampler.steps + Missing.x + EmptyLatentImage.width * a.width")
	require.NoError(t, err)
	assert.Equal(t, []workflow.NodeID{"3", "5"}, ids)

	_, err = graph.ReferencedNodes(snap, "1 +")
	assert.Error(t, err)
}
