package compat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coriolin/logtree"
)

type recorded struct {
	level logtree.Level
	msg   string
}

// captureHandler collects records emitted through an adapter's node.
type captureHandler struct {
	mu      sync.Mutex
	level   logtree.Level
	records []recorded
}

func (h *captureHandler) Emit(level logtree.Level, ts time.Time, path []string, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, recorded{level: level, msg: msg})
	return nil
}

func (h *captureHandler) Level() logtree.Level { return h.level }

func (h *captureHandler) SetLevel(level logtree.Level) { h.level = level }

func (h *captureHandler) Close() error { return nil }

func newTestNode(t *testing.T) (*logtree.Node, *captureHandler) {
	t.Helper()
	cfg := logtree.DefaultConfig()
	cfg.Name = "server"
	cfg.Level = "debug"
	cfg.EnableConsole = false
	node, err := logtree.NewRootFromConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { node.Close() })

	h := &captureHandler{level: logtree.LevelDebug}
	node.AddHandler(h, false, false)
	return node, h
}

func TestGnetAdapterLevels(t *testing.T) {
	node, h := newTestNode(t)
	adapter := NewGnetAdapter(node, WithFatalHandler(func(string) {}))

	adapter.Debugf("debug %d", 1)
	adapter.Infof("info %d", 2)
	adapter.Warnf("warn %d", 3)
	adapter.Errorf("error %d", 4)

	require.Len(t, h.records, 4)
	assert.Equal(t, recorded{logtree.LevelDebug, "debug 1"}, h.records[0])
	assert.Equal(t, recorded{logtree.LevelInfo, "info 2"}, h.records[1])
	assert.Equal(t, recorded{logtree.LevelWarn, "warn 3"}, h.records[2])
	assert.Equal(t, recorded{logtree.LevelError, "error 4"}, h.records[3])
}

func TestGnetAdapterFatal(t *testing.T) {
	node, h := newTestNode(t)

	var fatalMsg string
	adapter := NewGnetAdapter(node, WithFatalHandler(func(msg string) {
		fatalMsg = msg
	}))

	adapter.Fatalf("engine died: %s", "oom")

	require.Len(t, h.records, 1)
	assert.Equal(t, recorded{logtree.LevelCritical, "engine died: oom"}, h.records[0])
	assert.Equal(t, "engine died: oom", fatalMsg)
}

func TestFastHTTPAdapterDetection(t *testing.T) {
	node, h := newTestNode(t)
	adapter := NewFastHTTPAdapter(node)

	adapter.Printf("error when serving connection")
	adapter.Printf("warning: deprecated option")
	adapter.Printf("debug trace enabled")
	adapter.Printf("serving on :8080")

	require.Len(t, h.records, 4)
	assert.Equal(t, logtree.LevelError, h.records[0].level)
	assert.Equal(t, logtree.LevelWarn, h.records[1].level)
	assert.Equal(t, logtree.LevelDebug, h.records[2].level)
	assert.Equal(t, logtree.LevelInfo, h.records[3].level)
}

func TestFastHTTPAdapterDefaultLevel(t *testing.T) {
	node, h := newTestNode(t)
	adapter := NewFastHTTPAdapter(node,
		WithDefaultLevel(logtree.LevelDebug),
		WithLevelDetector(nil),
	)

	adapter.Printf("anything at all")

	require.Len(t, h.records, 1)
	assert.Equal(t, logtree.LevelDebug, h.records[0].level)
}

func TestDetectLogLevel(t *testing.T) {
	tests := []struct {
		msg      string
		want     logtree.Level
		detected bool
	}{
		{"connection failed", logtree.LevelError, true},
		{"PANIC in handler", logtree.LevelError, true},
		{"warning: slow response", logtree.LevelWarn, true},
		{"trace output", logtree.LevelDebug, true},
		{"listening on :8080", logtree.LevelInfo, false},
	}

	for _, tt := range tests {
		level, detected := DetectLogLevel(tt.msg)
		assert.Equal(t, tt.want, level, tt.msg)
		assert.Equal(t, tt.detected, detected, tt.msg)
	}
}

func TestBuilderWithNode(t *testing.T) {
	node, h := newTestNode(t)

	adapter, err := NewBuilder().WithNode(node).BuildGnet(WithFatalHandler(func(string) {}))
	require.NoError(t, err)
	adapter.Infof("via builder")
	require.Len(t, h.records, 1)

	got, err := NewBuilder().WithNode(node).GetNode()
	require.NoError(t, err)
	assert.Equal(t, node, got)
}

func TestBuilderWithConfig(t *testing.T) {
	cfg := logtree.DefaultConfig()
	cfg.Name = "adapters"
	cfg.EnableConsole = false

	b := NewBuilder().WithConfig(cfg)
	gnetAdapter, err := b.BuildGnet()
	require.NoError(t, err)
	assert.NotNil(t, gnetAdapter)

	// The same root is shared across adapters built from one builder
	fastAdapter, err := b.BuildFastHTTP()
	require.NoError(t, err)
	assert.NotNil(t, fastAdapter)

	node, err := b.GetNode()
	require.NoError(t, err)
	defer node.Close()
	assert.Equal(t, "adapters", node.Name())
}

func TestBuilderNilNode(t *testing.T) {
	_, err := NewBuilder().WithNode(nil).BuildGnet()
	assert.Error(t, err)
}
