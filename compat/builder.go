package compat

import (
	"fmt"

	"github.com/coriolin/logtree"
)

// Builder provides a flexible way to create configured logger adapters
// for gnet and fasthttp. It can use an existing *logtree.Node or build
// a fresh root from a *logtree.Config.
type Builder struct {
	node   *logtree.Node
	logCfg *logtree.Config
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithNode specifies an existing logger node to use for the adapters.
// Recommended for applications that already have a logger tree; a
// dedicated child per server keeps each server's output attributable.
// If this is set WithConfig is ignored.
func (b *Builder) WithNode(n *logtree.Node) *Builder {
	if n == nil {
		b.err = fmt.Errorf("logtree/compat: provided node cannot be nil")
		return b
	}
	b.node = n
	return b
}

// WithConfig provides a configuration for a new root logger.
// This is used only if an existing node is NOT provided via WithNode.
// If neither WithNode nor WithConfig is used, a default root is created.
func (b *Builder) WithConfig(cfg *logtree.Config) *Builder {
	b.logCfg = cfg
	return b
}

// getNode resolves the node to be used, creating a root if necessary
func (b *Builder) getNode() (*logtree.Node, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.node != nil {
		return b.node, nil
	}

	cfg := b.logCfg
	if cfg == nil {
		cfg = logtree.DefaultConfig()
	}
	root, err := logtree.NewRootFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	// Cache the newly created root for subsequent builds with this builder
	b.node = root
	return root, nil
}

// BuildGnet creates a gnet adapter.
// It can be used for servers that require a standard gnet logger.
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	n, err := b.getNode()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(n, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	n, err := b.getNode()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(n, opts...), nil
}

// GetNode returns the underlying *logtree.Node.
// If a node has not been provided or created yet, it will be initialized.
func (b *Builder) GetNode() (*logtree.Node, error) {
	return b.getNode()
}
