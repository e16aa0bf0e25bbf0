package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/agavesunset/agave/internal/config"
	"github.com/agavesunset/agave/internal/logging"
	"github.com/agavesunset/agave/pkg/domain"
	"gopkg.in/yaml.v3"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sc.sigCh)
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
	}()
	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger from cfg.
// It always writes to Stderr so results and JSON-RPC keep Stdout.
func NewLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithOptions(os.Stderr, level, logging.Format(cfg.Format)), nil
}

// ReadDocument decodes a JSON or YAML object from path. "-" reads stdin.
func ReadDocument(path string, stdin io.Reader) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// HiddenFromSnapshot turns a {"workflow": ..., "prompt": ...} document into
// the hidden inputs a node receives.
func HiddenFromSnapshot(doc map[string]any) domain.Hidden {
	var hidden domain.Hidden
	if wf, ok := doc["workflow"]; ok {
		hidden.ExtraPNGInfo = map[string]any{"workflow": wf}
	}
	if p, ok := doc["prompt"].(map[string]any); ok {
		hidden.Prompt = p
	}
	return hidden
}

// ParseAssignments reads key=value pairs. Values are decoded as YAML, so 3 is
// an int, 0.5 a float, true a bool, {samples: [1, 4, 64, 64]} a latent and
// anything that does not parse a string.
func ParseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, want key=value", pair)
		}
		var v any = raw
		var parsed any
		if err := yaml.Unmarshal([]byte(raw), &parsed); err == nil && parsed != nil {
			v = parsed
		}
		out[key] = v
	}
	return out, nil
}

// WriteJSON prints v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// FormatOutput renders a node output for humans: one line per return
// socket, blocked sockets marked as such.
func FormatOutput(spec domain.Spec, out domain.Output) string {
	var sb strings.Builder
	for i, v := range out.Result {
		name := ""
		if i < len(spec.ReturnNames) {
			name = spec.ReturnNames[i]
		}
		if name == "" && i < len(spec.ReturnTypes) {
			name = string(spec.ReturnTypes[i])
		}
		if b, ok := v.(*domain.Blocker); ok {
			if b.Message != "" {
				fmt.Fprintf(&sb, "%d %s: <blocked: %s>\n", i, name, b.Message)
			} else {
				fmt.Fprintf(&sb, "%d %s: <blocked>\n", i, name)
			}
			continue
		}
		fmt.Fprintf(&sb, "%d %s: %v\n", i, name, v)
	}
	if text, ok := out.UI["text"]; ok {
		fmt.Fprintf(&sb, "ui: %v\n", text)
	}
	return sb.String()
}
