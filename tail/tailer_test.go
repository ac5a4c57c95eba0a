package tail

import (
	"io"
	"strings"
	"sync"
	"sync/atomic"
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

// testSink captures records emitted by a tailer.
type testSink struct {
	mu      sync.Mutex
	records []recorded
}

func (s *testSink) Record(level logtree.Level, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, _ := args[0].(string)
	s.records = append(s.records, recorded{level: level, msg: msg})
}

func (s *testSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.msg
	}
	return out
}

func waitDone(t *testing.T, tailer *Tailer) {
	t.Helper()
	select {
	case <-tailer.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("tailer did not terminate")
	}
}

func TestTailerDrainsToEOF(t *testing.T) {
	sink := &testSink{}
	tailer := New(sink, nil, Options{PollInterval: 10 * time.Millisecond},
		strings.NewReader("one\ntwo\nthree\n"))

	require.NoError(t, tailer.Start())
	waitDone(t, tailer)

	assert.Equal(t, []string{"one", "two", "three"}, sink.messages())
	for _, r := range sink.records {
		assert.Equal(t, logtree.LevelInfo, r.level)
	}
	assert.True(t, tailer.Terminated())
}

func TestTailerDiscardsPartialTrailing(t *testing.T) {
	sink := &testSink{}
	tailer := New(sink, nil, Options{}, strings.NewReader("full\npartial without newline"))

	require.NoError(t, tailer.Start())
	waitDone(t, tailer)

	assert.Equal(t, []string{"full"}, sink.messages())
}

func TestTailerTwoStreams(t *testing.T) {
	sink := &testSink{}
	tailer := New(sink, nil, Options{},
		strings.NewReader("out1\nout2\n"),
		strings.NewReader("err1\nerr2\n"))

	require.NoError(t, tailer.Start())
	waitDone(t, tailer)

	msgs := sink.messages()
	assert.ElementsMatch(t, []string{"out1", "out2", "err1", "err2"}, msgs)

	// Order within each stream is preserved even though the streams
	// interleave arbitrarily
	var outs, errs []string
	for _, m := range msgs {
		if strings.HasPrefix(m, "out") {
			outs = append(outs, m)
		} else {
			errs = append(errs, m)
		}
	}
	assert.Equal(t, []string{"out1", "out2"}, outs)
	assert.Equal(t, []string{"err1", "err2"}, errs)
}

func TestTailerSanitizedLineWarns(t *testing.T) {
	sink := &testSink{}
	tailer := New(sink, nil, Options{}, strings.NewReader("clean\nnoisy\a\n"))

	require.NoError(t, tailer.Start())
	waitDone(t, tailer)

	require.Len(t, sink.records, 2)
	assert.Equal(t, recorded{logtree.LevelInfo, "clean"}, sink.records[0])
	assert.Equal(t, recorded{logtree.LevelWarn, "noisy<07>"}, sink.records[1])
}

func TestTailerCustomLevel(t *testing.T) {
	sink := &testSink{}
	tailer := New(sink, nil, Options{Level: logtree.LevelDebug}, strings.NewReader("verbose\n"))

	require.NoError(t, tailer.Start())
	waitDone(t, tailer)

	require.Len(t, sink.records, 1)
	assert.Equal(t, logtree.LevelDebug, sink.records[0].level)
}

func TestTailerLivenessTermination(t *testing.T) {
	pr, pw := io.Pipe()
	var dead atomic.Bool

	sink := &testSink{}
	tailer := New(sink, func() bool { return !dead.Load() },
		Options{PollInterval: 10 * time.Millisecond}, pr)
	require.NoError(t, tailer.Start())

	_, err := io.WriteString(pw, "before death\n")
	require.NoError(t, err)

	// The pipe stays open; only the liveness probe can end the tailer
	assert.Eventually(t, func() bool {
		return len(sink.messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, tailer.Terminated())

	dead.Store(true)
	waitDone(t, tailer)

	assert.Equal(t, []string{"before death"}, sink.messages())
	assert.True(t, tailer.Terminated())
}

func TestTailerSilentStreamTermination(t *testing.T) {
	// One stream produces two lines and ends; the other never speaks
	// and never closes, so only the liveness probe can finish things.
	silent, _ := io.Pipe()
	var dead atomic.Bool

	sink := &testSink{}
	tailer := New(sink, func() bool { return !dead.Load() },
		Options{PollInterval: 10 * time.Millisecond},
		strings.NewReader("a\nb\n"), silent)
	require.NoError(t, tailer.Start())

	assert.Eventually(t, func() bool {
		return len(sink.messages()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	dead.Store(true)
	waitDone(t, tailer)

	assert.Equal(t, []string{"a", "b"}, sink.messages())
	assert.True(t, tailer.Terminated())
}

func TestTailerStartValidation(t *testing.T) {
	sink := &testSink{}

	tailer := New(sink, nil, Options{})
	assert.ErrorIs(t, tailer.Start(), errNoStreams)

	tailer = New(sink, nil, Options{}, strings.NewReader("x\n"))
	require.NoError(t, tailer.Start())
	assert.ErrorIs(t, tailer.Start(), errAlreadyStarted)
	waitDone(t, tailer)
}
