package nodes

import (
	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/registry"
)

// All returns one instance of every built-in node.
func All() []domain.Node {
	return []domain.Node{
		Math{},
		Calculate{},
		Compare{},
		Demux{},
		Demux8{},
		Switch{},
		MapRange{},
		Transforms{},
		Show{},
		Primitives{},
	}
}

// Register adds every built-in node to reg.
func Register(reg *registry.Registry) {
	for _, n := range All() {
		reg.Register(n)
	}
}
