package tail

import (
	"errors"
	"fmt"
)

var (
	errAlreadyStarted = errors.New("tail: tailer already started")
	errNoStreams      = errors.New("tail: no streams to drain")
)

// fmtErrorf wraps fmt.Errorf with the package prefix
func fmtErrorf(format string, args ...any) error {
	return fmt.Errorf("tail: "+format, args...)
}
