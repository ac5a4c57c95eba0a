package logtree

import "time"

// Builder provides a fluent API for building root logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a root logger with the accumulated configuration.
func (b *Builder) Build() (*Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewRootFromConfig(b.cfg)
}

// Name sets the root logger name.
func (b *Builder) Name(name string) *Builder {
	b.cfg.Name = name
	return b
}

// Level sets the severity threshold.
func (b *Builder) Level(level Level) *Builder {
	if b.err != nil {
		return b
	}
	if !level.valid() {
		b.err = configErrorf("invalid log level: %d", level)
		return b
	}
	b.cfg.Level = level.String()
	return b
}

// LevelString sets the severity threshold from a string.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := ParseLevel(level); err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = level
	return b
}

// Directory sets the durable log directory.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// Console enables or disables console output.
func (b *Builder) Console(enable bool) *Builder {
	b.cfg.EnableConsole = enable
	return b
}

// ConsoleTarget selects the console stream, "stdout" or "stderr".
func (b *Builder) ConsoleTarget(target string) *Builder {
	b.cfg.ConsoleTarget = target
	return b
}

// Color enables or disables colorized console output.
func (b *Builder) Color(enable bool) *Builder {
	b.cfg.Color = enable
	return b
}

// TimestampFormat sets the time format used in record timestamps.
func (b *Builder) TimestampFormat(format string) *Builder {
	b.cfg.TimestampFormat = format
	return b
}

// CleanupEmpty enables removal of empty log files and directories on close.
func (b *Builder) CleanupEmpty(enable bool) *Builder {
	b.cfg.CleanupEmpty = enable
	return b
}

// PollInterval sets the subprocess liveness poll interval for tailers
// built against this logger's configuration.
func (b *Builder) PollInterval(interval time.Duration) *Builder {
	b.cfg.PollIntervalMs = interval.Milliseconds()
	return b
}

// Example usage:
// root, err := logtree.NewBuilder().
//
//	Name("supervisor").
//	LevelString("debug").
//	Directory("/var/log/supervisor").
//	CleanupEmpty(true).
//	Build()
//
// if err == nil {
//
//	 defer root.Close()
//	 root.Info("supervisor started")
//
// }
