package tail

import "github.com/coriolin/logtree/sanitizer"

// LineAssembler accumulates bytes from a stream and produces one
// sanitized line per delimiter. The delimiter itself is not part of the
// line. Bytes accumulated without a trailing delimiter stay buffered
// and are never emitted on their own.
type LineAssembler struct {
	delim byte
	buf   []byte
	san   *sanitizer.Sanitizer
}

// NewLineAssembler creates an assembler splitting on delim.
func NewLineAssembler(delim byte) *LineAssembler {
	return &LineAssembler{
		delim: delim,
		buf:   make([]byte, 0, 256),
		san:   sanitizer.New().Policy(sanitizer.PolicyStream),
	}
}

// Feed consumes one byte. When b completes a line, Feed returns it with
// complete true; sanitized reports whether the sanitizer had to rewrite
// any of its content. A trailing '\r' left by CRLF output is trimmed.
func (a *LineAssembler) Feed(b byte) (text string, sanitized, complete bool) {
	if b != a.delim {
		a.buf = append(a.buf, b)
		return "", false, false
	}
	raw := a.buf
	if a.delim == '\n' && len(raw) > 0 && raw[len(raw)-1] == '\r' {
		raw = raw[:len(raw)-1]
	}
	text, sanitized = a.san.SanitizeDetect(string(raw))
	a.buf = a.buf[:0]
	return text, sanitized, true
}

// Pending returns the number of bytes buffered without a delimiter.
func (a *LineAssembler) Pending() int { return len(a.buf) }
