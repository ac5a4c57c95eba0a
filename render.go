package logtree

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

// DefaultTimestampFormat is the on-the-wire timestamp layout of rendered
// records: month-day, then wall clock.
const DefaultTimestampFormat = "01-02|15:04:05"

// Renderer turns one log record into a line of text, newline excluded.
// path is the bracketed logger chain from the root down to the emitting
// node.
type Renderer interface {
	Render(level Level, ts time.Time, path []string, msg string) string
}

// PlainRenderer produces uncolored text suitable for log files:
//
//	WARNING  [05-17|14:03:59][supervisor][geth] taking too long
type PlainRenderer struct {
	TimestampFormat string
}

// NewPlainRenderer returns a renderer using the default timestamp layout.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{TimestampFormat: DefaultTimestampFormat}
}

func (r *PlainRenderer) Render(level Level, ts time.Time, path []string, msg string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-8s ", level.String()))
	sb.WriteByte('[')
	sb.WriteString(ts.Format(r.timestampFormat()))
	sb.WriteByte(']')
	for _, name := range path {
		sb.WriteByte('[')
		sb.WriteString(name)
		sb.WriteByte(']')
	}
	sb.WriteByte(' ')
	sb.WriteString(msg)
	return sb.String()
}

func (r *PlainRenderer) timestampFormat() string {
	if r.TimestampFormat == "" {
		return DefaultTimestampFormat
	}
	return r.TimestampFormat
}

// levelColors maps severities to their console colors.
var levelColors = map[Level]*color.Color{
	LevelCritical: color.New(color.FgMagenta, color.Bold),
	LevelError:    color.New(color.FgRed, color.Bold),
	LevelWarn:     color.New(color.FgYellow, color.Bold),
	LevelInfo:     color.New(color.FgGreen, color.Bold),
	LevelDebug:    color.New(color.FgCyan, color.Bold),
}

// ColorRenderer produces the colorized console form of a record: the
// level word takes the severity color, brackets are blue, timestamp and
// logger names are white.
type ColorRenderer struct {
	TimestampFormat string

	bracket *color.Color
	text    *color.Color
}

// NewColorRenderer returns a console renderer with the default palette
// and timestamp layout.
func NewColorRenderer() *ColorRenderer {
	return &ColorRenderer{
		TimestampFormat: DefaultTimestampFormat,
		bracket:         color.New(color.FgBlue, color.Bold),
		text:            color.New(color.FgWhite),
	}
}

func (r *ColorRenderer) Render(level Level, ts time.Time, path []string, msg string) string {
	lc, ok := levelColors[level]
	if !ok {
		lc = color.New(color.FgBlue, color.Bold)
	}

	format := r.TimestampFormat
	if format == "" {
		format = DefaultTimestampFormat
	}

	var sb strings.Builder
	sb.WriteString(lc.Sprintf("%-8s ", level.String()))
	sb.WriteString(r.bracket.Sprint("["))
	sb.WriteString(r.text.Sprint(ts.Format(format)))
	sb.WriteString(r.bracket.Sprint("]"))
	for _, name := range path {
		sb.WriteString(r.bracket.Sprint("["))
		sb.WriteString(r.text.Sprint(name))
		sb.WriteString(r.bracket.Sprint("]"))
	}
	sb.WriteByte(' ')
	sb.WriteString(msg)
	return sb.String()
}

// InfoPassthrough renders INFO records as the bare message and delegates
// every other level to the wrapped renderer. The root console handler
// uses it so tailed child output reads as a plain live stream while
// warnings and errors stay decorated.
type InfoPassthrough struct {
	Next Renderer
}

func (r InfoPassthrough) Render(level Level, ts time.Time, path []string, msg string) string {
	if level == LevelInfo {
		return msg
	}
	return r.Next.Render(level, ts, path, msg)
}
