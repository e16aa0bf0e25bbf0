package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/agavesunset/agave"
	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/expr"
	"github.com/agavesunset/agave/pkg/workflow"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const objectInfoURI = "agave://object_info"

// NodeSummary is the short description of a node class returned by list_nodes.
type NodeSummary struct {
	Class       string              `json:"class" jsonschema_description:"Class key used with execute_node"`
	DisplayName string              `json:"display_name"`
	Category    string              `json:"category"`
	Description string              `json:"description,omitempty"`
	Inputs      []string            `json:"inputs" jsonschema_description:"Required and optional input names"`
	Outputs     []domain.SocketType `json:"outputs" jsonschema_description:"Return socket types in order"`
}

// ListNodesResult is the output of list_nodes.
type ListNodesResult struct {
	Nodes []NodeSummary `json:"nodes"`
}

// ExecuteNodeArgs are the arguments of execute_node.
type ExecuteNodeArgs struct {
	Class  string         `json:"class"`
	Inputs map[string]any `json:"inputs,omitempty"`
	Hidden domain.Hidden  `json:"hidden,omitempty"`
}

// ExecuteNodeResult is the output of execute_node.
type ExecuteNodeResult struct {
	Class  string         `json:"class"`
	Result []any          `json:"result" jsonschema_description:"One value per return socket; blocked outputs are {\"$blocker\": message}"`
	UI     map[string]any `json:"ui,omitempty"`
}

// EvaluateArgs are the arguments of evaluate_expression.
type EvaluateArgs struct {
	Expression string         `json:"expression"`
	Bindings   map[string]any `json:"bindings,omitempty"`
	Workflow   map[string]any `json:"workflow,omitempty"`
	Prompt     map[string]any `json:"prompt,omitempty"`
}

// EvaluateResult is the output of evaluate_expression.
type EvaluateResult struct {
	Int   int64   `json:"int"`
	Float float64 `json:"float"`
	Value any     `json:"value"`
}

// Server wraps a Host and exposes it as an MCP Server.
type Server struct {
	host      *agave.Host
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(host *agave.Host) *Server {
	s := &Server{
		host:      host,
		mcpServer: server.NewMCPServer("agave-mcp", strings.TrimSpace(agave.Version)),
	}
	s.mcpServer.AddTools(s.tools()...)
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("list_nodes",
				mcp.WithDescription("List the node classes the host can execute."),
				mcp.WithString("category", mcp.Description("Only list nodes in this category (optional)")),
				mcp.WithOutputSchema[ListNodesResult](),
			),
			Handler: mcp.NewStructuredToolHandler(s.handleListNodes),
		},
		{
			Tool: mcp.NewTool("execute_node",
				mcp.WithDescription("Execute one node class with the given inputs. Missing widget inputs take their defaults."),
				mcp.WithString("class", mcp.Required(), mcp.Description("Node class key, e.g. MathAgaveSunset")),
				mcp.WithObject("inputs", mcp.Description("Input values keyed by input name")),
				mcp.WithObject("hidden", mcp.Description("Hidden inputs: prompt, extra_pnginfo, unique_id (optional)")),
				mcp.WithOutputSchema[ExecuteNodeResult](),
			),
			Handler: mcp.NewStructuredToolHandler(s.handleExecuteNode),
		},
		{
			Tool: mcp.NewTool("evaluate_expression",
				mcp.WithDescription("Evaluate a restricted arithmetic expression. Returns integer and float views of the result."),
				mcp.WithString("expression", mcp.Required(), mcp.Description("Expression such as 'max(a, b) * 2'")),
				mcp.WithObject("bindings", mcp.Description("Variable values keyed by name; latents as {\"samples\": [B, C, H, W]}")),
				mcp.WithObject("workflow", mcp.Description("Workflow used to resolve NodeName.widget references (optional)")),
				mcp.WithObject("prompt", mcp.Description("Prompt used to resolve NodeName.widget references (optional)")),
				mcp.WithOutputSchema[EvaluateResult](),
			),
			Handler: mcp.NewStructuredToolHandler(s.handleEvaluate),
		},
	}
}

func (s *Server) handleListNodes(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ListNodesResult, error) {
	category, _ := args["category"].(string)

	res := ListNodesResult{Nodes: []NodeSummary{}}
	for _, spec := range s.host.Catalog() {
		if category != "" && spec.Category != category {
			continue
		}
		inputs := make([]string, 0, len(spec.Required)+len(spec.Optional))
		for _, in := range spec.Inputs() {
			inputs = append(inputs, in.Name)
		}
		res.Nodes = append(res.Nodes, NodeSummary{
			Class:       spec.Class,
			DisplayName: spec.DisplayName,
			Category:    spec.Category,
			Description: spec.Description,
			Inputs:      inputs,
			Outputs:     spec.ReturnTypes,
		})
	}
	return res, nil
}

func (s *Server) handleExecuteNode(ctx context.Context, request mcp.CallToolRequest, args ExecuteNodeArgs) (ExecuteNodeResult, error) {
	if args.Class == "" {
		return ExecuteNodeResult{}, errors.New("class is required")
	}
	if args.Inputs == nil {
		args.Inputs = map[string]any{}
	}

	out, err := s.host.Execute(ctx, args.Class, domain.Request{Inputs: args.Inputs, Hidden: args.Hidden})
	if err != nil {
		slog.Debug("MCP execute_node failed", "class", args.Class, "err", err)
		return ExecuteNodeResult{}, fmt.Errorf("execute failed: %w", err)
	}
	return ExecuteNodeResult{Class: args.Class, Result: out.Result, UI: out.UI}, nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args EvaluateArgs) (EvaluateResult, error) {
	var resolver expr.FieldResolver
	if args.Workflow != nil || args.Prompt != nil {
		snap, err := workflow.FromHidden(args.Workflow, args.Prompt)
		if err != nil {
			return EvaluateResult{}, fmt.Errorf("invalid snapshot: %w", err)
		}
		resolver = snap
	}

	res, err := s.host.Evaluate(ctx, args.Expression, expr.Bindings(args.Bindings), resolver)
	if err != nil {
		return EvaluateResult{}, err
	}
	return EvaluateResult{Int: res.Int(), Float: res.Float(), Value: res.Value.Interface()}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(objectInfoURI, "Node Catalogue",
		mcp.WithResourceDescription("INPUT_TYPES declarations of every registered node, keyed by class"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.host.ObjectInfo())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalogue: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      objectInfoURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
