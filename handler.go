package logtree

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Handler is a destination for rendered log records. Emit may be called
// from multiple goroutines (one per stream tailer), so implementations
// must serialize their writes.
type Handler interface {
	// Emit renders and writes one record. Records below the handler's
	// level are dropped by the owning node before Emit is called.
	Emit(level Level, ts time.Time, path []string, msg string) error

	// Level returns the handler's own severity threshold.
	Level() Level

	// SetLevel changes the handler's severity threshold.
	SetLevel(level Level)

	// Close releases any resources owned by the handler.
	Close() error
}

// leveled provides the shared threshold implementation for handlers.
type leveled struct {
	level atomic.Int64
}

func (h *leveled) Level() Level {
	return Level(h.level.Load())
}

func (h *leveled) SetLevel(level Level) {
	h.level.Store(int64(level))
}

// ConsoleHandler writes rendered records to a terminal-ish writer,
// stderr by default.
type ConsoleHandler struct {
	leveled
	mu       sync.Mutex
	w        io.Writer
	renderer Renderer
}

// NewConsoleHandler creates a console handler. A nil writer defaults to
// stderr; a nil renderer defaults to the colorized console renderer.
func NewConsoleHandler(w io.Writer, renderer Renderer) *ConsoleHandler {
	if w == nil {
		w = os.Stderr
	}
	if renderer == nil {
		renderer = NewColorRenderer()
	}
	h := &ConsoleHandler{w: w, renderer: renderer}
	h.SetLevel(LevelDebug)
	return h
}

func (h *ConsoleHandler) Emit(level Level, ts time.Time, path []string, msg string) error {
	line := h.renderer.Render(level, ts, path, msg)
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := io.WriteString(h.w, line+"\n"); err != nil {
		return fmtErrorf("failed to write console record: %w", err)
	}
	return nil
}

// Close is a no-op; the console handler does not own its writer.
func (h *ConsoleHandler) Close() error {
	return nil
}

// FileHandler appends rendered records to a single log file using the
// plain (uncolored) renderer.
type FileHandler struct {
	leveled
	mu       sync.Mutex
	path     string
	file     *os.File
	renderer Renderer
}

// NewFileHandler opens (creating if needed) the log file at path in
// append mode.
func NewFileHandler(path string, renderer Renderer) (*FileHandler, error) {
	if renderer == nil {
		renderer = NewPlainRenderer()
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmtErrorf("failed to open/create log file '%s': %w", path, err)
	}
	h := &FileHandler{path: path, file: file, renderer: renderer}
	h.SetLevel(LevelDebug)
	return h, nil
}

// Path returns the absolute location of the backing file.
func (h *FileHandler) Path() string {
	return h.path
}

func (h *FileHandler) Emit(level Level, ts time.Time, path []string, msg string) error {
	line := h.renderer.Render(level, ts, path, msg)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		return fmtErrorf("log file '%s' already closed", h.path)
	}
	if _, err := h.file.WriteString(line + "\n"); err != nil {
		return fmtErrorf("failed to write to log file '%s': %w", h.path, err)
	}
	return nil
}

// Close syncs and closes the backing file. Safe to call twice.
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		return nil
	}
	var finalErr error
	if err := h.file.Sync(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to sync log file '%s': %w", h.path, err))
	}
	if err := h.file.Close(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to close log file '%s': %w", h.path, err))
	}
	h.file = nil
	return finalErr
}

// reopen retargets the handler at a new path after its backing file has
// been moved during directory migration. Caller must have closed the
// handler first.
func (h *FileHandler) reopen(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmtErrorf("failed to reopen log file '%s': %w", path, err)
	}
	h.path = path
	h.file = file
	return nil
}
