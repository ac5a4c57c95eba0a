package logtree

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sink is the record-accepting surface a Node exposes to collaborators
// such as stream tailers. It is a fixed, enumerated set of methods; a
// record call names its level explicitly.
type Sink interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Critical(args ...any)
	Record(level Level, args ...any)
}

// consoleSpec carries the console configuration a child copies from its
// parent at attachment time.
type consoleSpec struct {
	enabled         bool
	w               io.Writer
	color           bool
	timestampFormat string
}

// Node is one logger in the tree. Children inherit directory placement,
// propagated handlers, and (until they set their own) the severity
// threshold of their ancestors.
//
// Tree mutation (adding children, attaching handlers, assigning
// directories) assumes a single writer; record emission is safe from
// multiple goroutines because handlers serialize their own writes.
type Node struct {
	name     string
	parent   *Node
	children []*Node

	level    Level
	hasLevel bool

	// handlers receives every record this node emits; owned is the
	// subset this node created or was handed directly, the ones Close
	// is responsible for.
	handlers           []Handler
	owned              []Handler
	descendantHandlers []Handler

	directory string
	tmpDir    string

	console      consoleSpec
	cleanupEmpty bool
	closed       bool
}

// NewRoot creates a root logger with an explicit severity threshold and
// a colorized console handler on stderr. Use the Builder or
// NewRootFromConfig for customized construction.
func NewRoot(name string, level Level) (*Node, error) {
	return newRoot(name, level, consoleSpec{
		enabled:         true,
		w:               os.Stderr,
		color:           true,
		timestampFormat: DefaultTimestampFormat,
	}, false)
}

func newRoot(name string, level Level, console consoleSpec, cleanupEmpty bool) (*Node, error) {
	if strings.TrimSpace(name) == "" {
		return nil, configErrorf("logger name cannot be empty")
	}
	if !level.valid() {
		return nil, configErrorf("invalid log level: %d", level)
	}
	n := &Node{
		name:         name,
		level:        level,
		hasLevel:     true,
		console:      console,
		cleanupEmpty: cleanupEmpty,
	}
	n.attachConsole(true)
	return n, nil
}

// NewChild creates a logger named name under n, wiring storage and
// replaying every ancestor-propagated handler onto it. The child has no
// explicit threshold of its own: it resolves severity through n until
// SetLevel decouples it.
func (n *Node) NewChild(name string) (*Node, error) {
	if strings.TrimSpace(name) == "" {
		return nil, configErrorf("logger name cannot be empty")
	}
	child := &Node{
		name:         name,
		parent:       n,
		console:      n.console,
		cleanupEmpty: n.cleanupEmpty,
	}
	child.attachConsole(false)
	if err := n.addChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

// addChild wires storage and handler inheritance for a newly created
// child. Double-adding (same node, or a sibling name collision) fails.
func (n *Node) addChild(child *Node) error {
	for _, existing := range n.children {
		if existing == child || existing.name == child.name {
			return configErrorf("cannot double-add child logger %s to logger %s", child.name, n.name)
		}
	}
	n.children = append(n.children, child)

	if n.directory != "" {
		if err := child.AssignDirectory(filepath.Join(n.directory, child.name)); err != nil {
			return err
		}
	} else {
		tmp, err := os.MkdirTemp("", "logtree-"+child.name+"-")
		if err != nil {
			return fmtErrorf("failed to create transient log directory for %s: %w", child.name, err)
		}
		if err := child.AssignDirectory(tmp); err != nil {
			return err
		}
		child.tmpDir = tmp
	}

	// Replay every handler an ancestor propagated, so the new child and
	// its future descendants converge to the same handler set.
	for ancestor := n; ancestor != nil; ancestor = ancestor.parent {
		for _, h := range ancestor.descendantHandlers {
			child.addHandler(h, true, false, false)
		}
	}
	return nil
}

func (n *Node) attachConsole(root bool) {
	if !n.console.enabled {
		return
	}
	var renderer Renderer
	if n.console.color {
		cr := NewColorRenderer()
		cr.TimestampFormat = n.console.timestampFormat
		renderer = cr
	} else {
		renderer = &PlainRenderer{TimestampFormat: n.console.timestampFormat}
	}
	if root {
		renderer = InfoPassthrough{Next: renderer}
	}
	h := NewConsoleHandler(n.console.w, renderer)
	h.SetLevel(n.EffectiveLevel())
	n.addHandler(h, false, false, true)
}

// AddHandler attaches an output handler to this node. With
// includeDescendants the handler also reaches every current and future
// node below this one. With setLevel the handler's own threshold is set
// to this node's effective level first. Attaching a handler that is
// already present on a node is a no-op for that node.
func (n *Node) AddHandler(h Handler, includeDescendants, setLevel bool) {
	n.addHandler(h, includeDescendants, setLevel, true)
}

func (n *Node) addHandler(h Handler, includeDescendants, setLevel, owned bool) {
	if setLevel {
		h.SetLevel(n.EffectiveLevel())
	}
	if !containsHandler(n.handlers, h) {
		n.handlers = append(n.handlers, h)
		if owned {
			n.owned = append(n.owned, h)
		}
	}
	if includeDescendants {
		if !containsHandler(n.descendantHandlers, h) {
			n.descendantHandlers = append(n.descendantHandlers, h)
		}
		for _, child := range n.children {
			child.addHandler(h, true, setLevel, false)
		}
	}
}

func containsHandler(handlers []Handler, h Handler) bool {
	for _, existing := range handlers {
		if existing == h {
			return true
		}
	}
	return false
}

// SetLevel sets this node's explicit severity threshold and aligns every
// handler currently attached here. Descendants without an explicit
// threshold observe the change through their resolution chain;
// descendants with their own threshold are unaffected.
func (n *Node) SetLevel(level Level) error {
	if !level.valid() {
		return configErrorf("invalid log level: %d", level)
	}
	n.level = level
	n.hasLevel = true
	for _, h := range n.handlers {
		h.SetLevel(level)
	}
	return nil
}

// EffectiveLevel resolves the node's severity threshold, walking to the
// parent when the node has none of its own. A root always has one.
func (n *Node) EffectiveLevel() Level {
	if n.hasLevel {
		return n.level
	}
	return n.parent.EffectiveLevel()
}

// Name returns the node's identifier, unique among its siblings.
func (n *Node) Name() string { return n.name }

// Parent returns the owning node, nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in attachment order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Directory returns the node's assigned directory, empty when none has
// been assigned yet.
func (n *Node) Directory() string { return n.directory }

// Path returns the logger names from the root down to this node.
func (n *Node) Path() []string {
	if n.parent == nil {
		return []string{n.name}
	}
	return append(n.parent.Path(), n.name)
}

// Record emits one log record at the given level through every handler
// attached to this node.
func (n *Node) Record(level Level, args ...any) {
	if n.closed || level < n.EffectiveLevel() {
		return
	}
	msg := formatArgs(n.console.timestampFormat, args)
	ts := time.Now()
	path := n.Path()
	for _, h := range n.handlers {
		if level >= h.Level() {
			_ = h.Emit(level, ts, path, msg)
		}
	}
}

// Debug logs a message at debug level.
func (n *Node) Debug(args ...any) { n.Record(LevelDebug, args...) }

// Info logs a message at info level.
func (n *Node) Info(args ...any) { n.Record(LevelInfo, args...) }

// Warn logs a message at warning level.
func (n *Node) Warn(args ...any) { n.Record(LevelWarn, args...) }

// Error logs a message at error level.
func (n *Node) Error(args ...any) { n.Record(LevelError, args...) }

// Critical logs a message at critical level.
func (n *Node) Critical(args ...any) { n.Record(LevelCritical, args...) }

var _ Sink = (*Node)(nil)
