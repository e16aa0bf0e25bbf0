package mcp

import (
	"context"
	"testing"

	"github.com/agavesunset/agave"
	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/expr"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTools_Declared(t *testing.T) {
	s := NewServer(agave.New())

	var names []string
	for _, tool := range s.tools() {
		names = append(names, tool.Tool.Name)
	}
	assert.Equal(t, []string{"list_nodes", "execute_node", "evaluate_expression"}, names)
}

func TestListNodes(t *testing.T) {
	s := NewServer(agave.New())

	res, err := s.handleListNodes(context.Background(), mcp.CallToolRequest{}, map[string]any{})
	require.NoError(t, err)
	assert.Len(t, res.Nodes, 10)

	res, err = s.handleListNodes(context.Background(), mcp.CallToolRequest{}, map[string]any{"category": "AgaveSunset/AS"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Nodes)
	for _, n := range res.Nodes {
		assert.Equal(t, "AgaveSunset/AS", n.Category)
	}
}

func TestExecuteNode(t *testing.T) {
	s := NewServer(agave.New())
	ctx := context.Background()

	res, err := s.handleExecuteNode(ctx, mcp.CallToolRequest{}, ExecuteNodeArgs{
		Class:  "MathAgaveSunset",
		Inputs: map[string]any{"expression": "a * b", "a": 3.0, "b": 2.5},
	})
	require.NoError(t, err)
	assert.Equal(t, "MathAgaveSunset", res.Class)
	assert.Equal(t, []any{int64(7), 7.5}, res.Result)

	res, err = s.handleExecuteNode(ctx, mcp.CallToolRequest{}, ExecuteNodeArgs{
		Class:  "DemuxAgaveSunset",
		Inputs: map[string]any{"input": "x", "select": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "x", res.Result[1])
	assert.IsType(t, &domain.Blocker{}, res.Result[0])

	_, err = s.handleExecuteNode(ctx, mcp.CallToolRequest{}, ExecuteNodeArgs{Class: "Missing"})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	_, err = s.handleExecuteNode(ctx, mcp.CallToolRequest{}, ExecuteNodeArgs{})
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	s := NewServer(agave.New())
	ctx := context.Background()

	res, err := s.handleEvaluate(ctx, mcp.CallToolRequest{}, EvaluateArgs{
		Expression: "a.height / 2",
		Bindings:   map[string]any{"a": map[string]any{"samples": []any{1.0, 4.0, 64.0, 64.0}}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(256), res.Int)
	assert.Equal(t, 256.0, res.Float)

	_, err = s.handleEvaluate(ctx, mcp.CallToolRequest{}, EvaluateArgs{Expression: "1 / 0"})
	assert.ErrorIs(t, err, expr.ErrDivisionByZero)
}

func TestEvaluate_ResolvesSiblingFields(t *testing.T) {
	s := NewServer(agave.New())

	res, err := s.handleEvaluate(context.Background(), mcp.CallToolRequest{}, EvaluateArgs{
		Expression: "Steps.steps + 1",
		Workflow: map[string]any{
			"nodes": []any{
				map[string]any{"id": 3.0, "type": "KSampler", "title": "Steps"},
			},
		},
		Prompt: map[string]any{
			"3": map[string]any{"class_type": "KSampler", "inputs": map[string]any{"steps": 20.0}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(21), res.Int)
}

func TestExecuteNode_ToolHandlerReportsErrors(t *testing.T) {
	s := NewServer(agave.New())

	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	for _, tool := range s.tools() {
		if tool.Tool.Name == "execute_node" {
			handler = tool.Handler
		}
	}
	require.NotNil(t, handler)

	req := mcp.CallToolRequest{}
	req.Params.Name = "execute_node"
	req.Params.Arguments = map[string]any{"class": "Missing"}

	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
