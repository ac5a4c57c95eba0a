package logtree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration marks failures of tree-construction and configuration
// operations: invalid levels, conflicting directory assignment, duplicate
// children. Matchable with errors.Is.
var ErrConfiguration = errors.New("invalid configuration")

// fmtErrorf wrapper, keeps the module prefix consistent
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "logtree: ") {
		format = "logtree: " + format
	}
	return fmt.Errorf(format, args...)
}

// configErrorf wraps ErrConfiguration with context.
func configErrorf(format string, args ...any) error {
	return fmt.Errorf("logtree: %w: "+format, append([]any{ErrConfiguration}, args...)...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}
