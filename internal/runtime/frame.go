package runtime

import (
	"strconv"
	"strings"

	"github.com/hinshun/vt10x"
)

const (
	attrReverse = 1 << iota
	attrUnderline
	attrBold
	attrGfx
	attrItalic
	attrBlink
	attrWrap
)

// Frame is one rendered snapshot of a process's terminal: the visible rows
// with their style attributes baked in as SGR sequences, cursor state,
// scrollback depth, and the generation counter it corresponds to.
type Frame struct {
	Lines         []string
	Cols, Rows    int
	CursorX       int
	CursorY       int
	CursorVisible bool
	ScrollbackLen int
	Offset        int
	Generation    uint64
	Status        Status
}

// Frame renders the current terminal state. With a zero scroll offset the
// live screen is rendered from the parser grid; a positive offset locks the
// viewport into history.
func (p *Process) Frame() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame := Frame{
		Cols:          p.cols,
		Rows:          p.rows,
		ScrollbackLen: p.scrollback.len(),
		Offset:        p.offset,
		Generation:    p.generation.Load(),
		Status:        p.status,
	}

	if p.offset > 0 {
		frame.Lines = p.historyLinesLocked()
		return frame
	}

	frame.Lines = p.screenLinesLocked()
	cursor := p.term.Cursor()
	frame.CursorX, frame.CursorY = cursor.X, cursor.Y
	frame.CursorVisible = p.term.CursorVisible()
	return frame
}

// historyLinesLocked slices the scrollback so that an offset equal to the
// scrollback height puts the oldest row at the top of the viewport.
func (p *Process) historyLinesLocked() []string {
	hist := p.scrollback.all()
	total := len(hist)

	start := total - p.rows - p.offset
	if start < 0 {
		start = 0
	}
	end := start + p.rows
	if end > total {
		end = total
	}

	visible := make([]string, 0, p.rows)
	visible = append(visible, hist[start:end]...)
	for len(visible) < p.rows {
		visible = append(visible, "")
	}
	return visible
}

// screenLinesLocked renders the parser grid row by row, emitting an SGR
// sequence whenever the style changes.
func (p *Process) screenLinesLocked() []string {
	p.term.Lock()
	defer p.term.Unlock()

	lines := make([]string, 0, p.rows)
	for y := 0; y < p.rows; y++ {
		var b strings.Builder
		b.Grow(p.cols + 16)

		var prev cellStyle
		hasPrev := false
		for x := 0; x < p.cols; x++ {
			cell := p.term.Cell(x, y)
			ch := cell.Char
			if ch == 0 {
				ch = ' '
			}

			style := cellStyleFromGlyph(cell)
			if !hasPrev || style != prev {
				b.WriteString(style.sgr())
				prev = style
				hasPrev = true
			}
			b.WriteRune(ch)
		}
		if hasPrev {
			b.WriteString("\x1b[0m")
		}
		lines = append(lines, b.String())
	}
	return lines
}

type cellStyle struct {
	fg, bg    vt10x.Color
	bold      bool
	italic    bool
	underline bool
	blink     bool
	reverse   bool
}

func cellStyleFromGlyph(g vt10x.Glyph) cellStyle {
	return cellStyle{
		fg:        g.FG,
		bg:        g.BG,
		bold:      g.Mode&attrBold != 0,
		italic:    g.Mode&attrItalic != 0,
		underline: g.Mode&attrUnderline != 0,
		blink:     g.Mode&attrBlink != 0,
		reverse:   g.Mode&attrReverse != 0,
	}
}

func (s cellStyle) sgr() string {
	codes := []string{"0"}

	if s.bold {
		codes = append(codes, "1")
	}
	if s.italic {
		codes = append(codes, "3")
	}
	if s.underline {
		codes = append(codes, "4")
	}
	if s.blink {
		codes = append(codes, "5")
	}
	if s.reverse {
		codes = append(codes, "7")
	}

	codes = append(codes, colorCode(true, s.fg))
	codes = append(codes, colorCode(false, s.bg))

	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func colorCode(fg bool, c vt10x.Color) string {
	if fg {
		if c == vt10x.DefaultFG {
			return "39"
		}
	} else {
		if c == vt10x.DefaultBG {
			return "49"
		}
	}

	if c < 16 {
		return strconv.Itoa(ansiColorCode(fg, int(c)))
	}
	if c < 256 {
		prefix := "48;5;"
		if fg {
			prefix = "38;5;"
		}
		return prefix + strconv.Itoa(int(c))
	}
	if c < 1<<24 {
		r := (int(c) >> 16) & 0xff
		g := (int(c) >> 8) & 0xff
		b := int(c) & 0xff
		sep := ";"
		if fg {
			return "38;2;" + strconv.Itoa(r) + sep + strconv.Itoa(g) + sep + strconv.Itoa(b)
		}
		return "48;2;" + strconv.Itoa(r) + sep + strconv.Itoa(g) + sep + strconv.Itoa(b)
	}
	if fg {
		return "39"
	}
	return "49"
}

func ansiColorCode(fg bool, c int) int {
	if c < 8 {
		if fg {
			return 30 + c
		}
		return 40 + c
	}
	if fg {
		return 90 + (c - 8)
	}
	return 100 + (c - 8)
}
