package runtime

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// lineBuffer accumulates output history as plain-text lines, capped at a
// fixed number of lines with the oldest dropped first.
type lineBuffer struct {
	limit int
	lines []string
	tail  string
}

func newLineBuffer(limit int) *lineBuffer {
	return &lineBuffer{limit: limit}
}

// absorb appends a chunk of raw PTY output. Escape sequences are stripped;
// a carriage return without a following newline rewinds the current line,
// matching terminal overwrite semantics.
func (b *lineBuffer) absorb(data []byte) {
	plain := ansi.Strip(string(data))
	if plain == "" {
		return
	}

	var line strings.Builder
	line.WriteString(b.tail)

	flush := func() {
		b.lines = append(b.lines, line.String())
		line.Reset()
	}

	for i := 0; i < len(plain); i++ {
		switch plain[i] {
		case '\r':
			if i+1 < len(plain) && plain[i+1] == '\n' {
				flush()
				i++
				continue
			}
			line.Reset()
		case '\n':
			flush()
		default:
			line.WriteByte(plain[i])
		}
	}
	b.tail = line.String()

	if len(b.lines) > b.limit {
		drop := len(b.lines) - b.limit
		b.lines = b.lines[drop:]
	}
}

// len returns the number of completed history lines.
func (b *lineBuffer) len() int { return len(b.lines) }

// all returns the completed lines plus the unfinished tail, if any.
func (b *lineBuffer) all() []string {
	out := make([]string, 0, len(b.lines)+1)
	out = append(out, b.lines...)
	if b.tail != "" {
		out = append(out, b.tail)
	}
	return out
}

func (b *lineBuffer) reset() {
	b.lines = nil
	b.tail = ""
}
