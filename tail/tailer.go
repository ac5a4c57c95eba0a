// Package tail drains the output streams of supervised subprocesses
// into discrete log records. A Tailer owns one reader task per stream
// plus a dispatcher that forwards assembled lines to a record sink,
// watches process liveness, and drains whatever remains once the
// process dies.
package tail

import (
	"bufio"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coriolin/logtree"
)

// DefaultPollInterval is how often the dispatcher re-checks process
// liveness when no output is arriving.
const DefaultPollInterval = 500 * time.Millisecond

// RecordSink accepts assembled log records. *logtree.Node satisfies it.
type RecordSink interface {
	Record(level logtree.Level, args ...any)
}

// Options configures a Tailer.
type Options struct {
	// Delimiter splits the byte stream into lines. Zero means '\n'.
	Delimiter byte

	// Level is the severity for clean lines. Lines the sanitizer had
	// to rewrite are raised to warning level instead. Zero means info.
	Level logtree.Level

	// PollInterval is the liveness re-check cadence. Zero means
	// DefaultPollInterval.
	PollInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = '\n'
	}
	if o.Level == 0 {
		o.Level = logtree.LevelInfo
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

type line struct {
	text      string
	sanitized bool
}

// Tailer drains one or more byte streams belonging to a single
// supervised process into a RecordSink, one record per delimited line.
//
// Termination is detected two ways: every stream reaching EOF, or the
// liveness probe reporting the process dead while the streams are
// quiet. Either way the dispatcher drains already-assembled lines,
// discards partial trailing input, and closes Done.
type Tailer struct {
	sink    RecordSink
	alive   func() bool
	opts    Options
	streams []io.Reader

	lines chan line
	eof   chan struct{}
	dead  chan struct{}
	done  chan struct{}

	started    bool
	terminated bool
}

// New creates a Tailer over the given streams. alive reports whether
// the owning process is still running; nil means "alive until EOF".
// Call Start to begin draining.
func New(sink RecordSink, alive func() bool, opts Options, streams ...io.Reader) *Tailer {
	if alive == nil {
		alive = func() bool { return true }
	}
	return &Tailer{
		sink:    sink,
		alive:   alive,
		opts:    opts.withDefaults(),
		streams: streams,
		lines:   make(chan line, 256),
		eof:     make(chan struct{}),
		dead:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the reader tasks and the dispatcher.
func (t *Tailer) Start() error {
	if t.started {
		return errAlreadyStarted
	}
	if len(t.streams) == 0 {
		return errNoStreams
	}
	t.started = true

	var g errgroup.Group
	for _, stream := range t.streams {
		g.Go(t.readLoop(stream))
	}
	go func() {
		_ = g.Wait()
		close(t.eof)
	}()
	go t.dispatch()
	return nil
}

// readLoop assembles delimited lines from one stream and hands them to
// the dispatcher. Any read error, EOF included, ends just this stream;
// a pty master reporting EIO when its child exits lands here too.
func (t *Tailer) readLoop(stream io.Reader) func() error {
	return func() error {
		r := bufio.NewReader(stream)
		asm := NewLineAssembler(t.opts.Delimiter)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return nil
			}
			text, sanitized, complete := asm.Feed(b)
			if !complete {
				continue
			}
			select {
			case t.lines <- line{text: text, sanitized: sanitized}:
			case <-t.dead:
				return nil
			}
		}
	}
}

func (t *Tailer) dispatch() {
	ticker := time.NewTicker(t.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case l := <-t.lines:
			t.emit(l)
		case <-t.eof:
			t.finish()
			return
		case <-ticker.C:
			if !t.alive() {
				t.finish()
				return
			}
		}
	}
}

// finish drains already-assembled lines and marks the tailer
// terminated. Bytes still buffered without a trailing delimiter are
// discarded.
func (t *Tailer) finish() {
	close(t.dead)
	for _, stream := range t.streams {
		if c, ok := stream.(io.Closer); ok {
			_ = c.Close()
		}
	}
	// Closing the streams errors out any blocked read, so the reader
	// tasks wind down promptly and everything they assembled is queued.
	<-t.eof
	for {
		select {
		case l := <-t.lines:
			t.emit(l)
		default:
			t.terminated = true
			close(t.done)
			return
		}
	}
}

func (t *Tailer) emit(l line) {
	level := t.opts.Level
	if l.sanitized {
		level = logtree.LevelWarn
	}
	t.sink.Record(level, l.text)
}

// Done is closed once the tailer has observed termination and finished
// draining.
func (t *Tailer) Done() <-chan struct{} { return t.done }

// Wait blocks until the tailer has drained and shut down.
func (t *Tailer) Wait() { <-t.done }

// Terminated reports whether the tailer has shut down.
func (t *Tailer) Terminated() bool {
	select {
	case <-t.done:
		return t.terminated
	default:
		return false
	}
}
