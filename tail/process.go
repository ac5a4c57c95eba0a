package tail

import (
	"os"
	"os/exec"
)

// ProcessTailer supervises a subprocess over plain pipes, draining its
// stdout and stderr into the sink. Stdout and stderr lines interleave
// in arrival order; no ordering is guaranteed across the two streams.
type ProcessTailer struct {
	*Tailer
	cmd       *exec.Cmd
	writeEnds []*os.File
	exited    chan struct{}
	waitErr   error
}

// NewProcess wires a not-yet-started command to a tailer. The command's
// stdout and stderr must be unset; the tailer installs its own pipes so
// buffered output survives process reaping. Call Start to launch the
// command and begin draining.
func NewProcess(sink RecordSink, cmd *exec.Cmd, opts Options) (*ProcessTailer, error) {
	if cmd.Process != nil {
		return nil, fmtErrorf("command %s is already started", cmd.Path)
	}
	if cmd.Stdout != nil || cmd.Stderr != nil {
		return nil, fmtErrorf("command %s already has output streams attached", cmd.Path)
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, fmtErrorf("failed to create stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, fmtErrorf("failed to create stderr pipe: %w", err)
	}
	cmd.Stdout = outW
	cmd.Stderr = errW

	p := &ProcessTailer{
		cmd:       cmd,
		writeEnds: []*os.File{outW, errW},
		exited:    make(chan struct{}),
	}
	p.Tailer = New(sink, p.Alive, opts, outR, errR)
	return p, nil
}

// Start launches the command and begins draining its streams.
func (p *ProcessTailer) Start() error {
	if err := p.cmd.Start(); err != nil {
		for _, w := range p.writeEnds {
			w.Close()
		}
		return fmtErrorf("failed to start %s: %w", p.cmd.Path, err)
	}
	// The child holds its own copies of the write ends; release ours so
	// the read sides see EOF when the child exits.
	for _, w := range p.writeEnds {
		w.Close()
	}
	go func() {
		p.waitErr = p.cmd.Wait()
		close(p.exited)
	}()
	return p.Tailer.Start()
}

// Alive reports whether the supervised process is still running.
func (p *ProcessTailer) Alive() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// Process returns the underlying command.
func (p *ProcessTailer) Process() *exec.Cmd { return p.cmd }

// ExitErr blocks until the process has been reaped and returns the
// error from its exit, nil for a zero exit status.
func (p *ProcessTailer) ExitErr() error {
	<-p.exited
	return p.waitErr
}
