package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/agavesunset/agave/pkg/domain"
)

// Registry manages the available node classes.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]domain.Node
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes: make(map[string]domain.Node),
	}
}

// Register adds a node under its spec's class key.
// If a node with the same class exists, it is overwritten.
func (r *Registry) Register(node domain.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[node.Spec().Class] = node
}

// Lookup returns the node registered under class.
// Returns domain.ErrNodeNotFound if the class is unknown.
func (r *Registry) Lookup(class string) (domain.Node, error) {
	r.mu.RLock()
	node, ok := r.nodes[class]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, class)
	}
	return node, nil
}

// Classes returns the registered class keys in sorted order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	classes := make([]string, 0, len(r.nodes))
	for class := range r.nodes {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// ClassMappings is the host's NODE_CLASS_MAPPINGS: class key to node.
func (r *Registry) ClassMappings() map[string]domain.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]domain.Node, len(r.nodes))
	for class, node := range r.nodes {
		out[class] = node
	}
	return out
}

// DisplayNameMappings is the host's NODE_DISPLAY_NAME_MAPPINGS: class key to
// display name.
func (r *Registry) DisplayNameMappings() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.nodes))
	for class, node := range r.nodes {
		out[class] = node.Spec().DisplayName
	}
	return out
}
