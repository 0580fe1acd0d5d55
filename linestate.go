//-----------------------------------------------------------------------------
/*

Line Buffer and Renderer

An editing session owns an ordered rune buffer and a cursor, and knows how
to redraw itself - as a single scrolling line or as wrapped multi-line text -
after every mutation.

Notes on Unicode: this code operates on UTF8 codepoints. It assumes each
glyph occupies k columns, where k is an integer >= 0, and that runewidth's
StringWidth call reports that correctly. It does not attempt grapheme
clustering; a multi-codepoint grapheme will be treated as separate glyphs.

*/
//-----------------------------------------------------------------------------

package cli

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

//-----------------------------------------------------------------------------

// Hint is returned by a hints callback to display inline, read-only text
// after the cursor. Color follows SGR foreground numbering; -1 means default.
type Hint struct {
	Hint  string
	Color int
	Bold  bool
}

// boolean to integer, for SGR sequence building
func btoi(x bool) int {
	if x {
		return 1
	}
	return 0
}

//-----------------------------------------------------------------------------

// linestate is the mutable state of one line-editing session.
type linestate struct {
	ifd, ofd    int        // stdin/stdout file descriptors
	prompt      string     // prompt string
	promptWidth int        // prompt width in terminal columns
	ts          *Linenoise // engine configuration and history
	historyIdx  int        // history index we are currently editing, 0 is the LAST entry
	buf         []rune     // line buffer
	cols        int        // number of columns in terminal
	pos         int        // current cursor position within the line buffer
	oldpos      int        // previous refresh cursor position (multiline)
	maxrows     int        // maximum number of rows used so far (multiline)
	u           utf8Decoder
}

func newLineState(ifd, ofd int, prompt string, ts *Linenoise) *linestate {
	ls := linestate{
		ifd:    ifd,
		ofd:    ofd,
		prompt: prompt,
		ts:     ts,
		cols:   getColumns(ifd, ofd),
	}
	ls.promptWidth = runewidth.StringWidth(prompt)
	return &ls
}

// String returns the current line buffer content.
func (ls *linestate) String() string {
	return string(ls.buf)
}

//-----------------------------------------------------------------------------
// rendering

// refreshShowHints renders the hint sequence to the right of the cursor, if any.
func (ls *linestate) refreshShowHints() []string {
	if ls.ts.hintsCallback == nil {
		return nil
	}
	hintCols := ls.cols - ls.promptWidth - runewidth.StringWidth(string(ls.buf))
	if hintCols <= 0 {
		return nil
	}
	h := ls.ts.hintsCallback(ls.String())
	if h == nil || len(h.Hint) == 0 {
		return nil
	}
	hEnd := len(h.Hint)
	for runewidth.StringWidth(h.Hint[:hEnd]) > hintCols {
		hEnd--
	}
	if h.Bold && h.Color < 0 {
		h.Color = 37
	}
	seq := make([]string, 0, 3)
	if h.Color >= 0 || h.Bold {
		seq = append(seq, fmt.Sprintf("\033[%d;%d;49m", btoi(h.Bold), h.Color))
	}
	seq = append(seq, h.Hint[:hEnd])
	if h.Color >= 0 || h.Bold {
		seq = append(seq, "\033[0m")
	}
	return seq
}

// refreshSingleline redraws a single scrolling line. When write is false,
// only the clearing half of the sequence is emitted (used by hide()).
func (ls *linestate) refreshSingleline(clear, write bool) {
	bStart := 0
	bEnd := len(ls.buf)
	posWidth := runewidth.StringWidth(string(ls.buf[:ls.pos]))
	for ls.promptWidth+posWidth >= ls.cols {
		bStart++
		posWidth = runewidth.StringWidth(string(ls.buf[bStart:ls.pos]))
	}
	bufWidth := runewidth.StringWidth(string(ls.buf[bStart:bEnd]))
	for ls.promptWidth+bufWidth >= ls.cols {
		bEnd--
		bufWidth = runewidth.StringWidth(string(ls.buf[bStart:bEnd]))
	}
	seq := make([]string, 0, 6)
	if clear {
		seq = append(seq, "\r")
	}
	if write {
		seq = append(seq, ls.prompt)
		seq = append(seq, string(ls.buf[bStart:bEnd]))
		seq = append(seq, ls.refreshShowHints()...)
	}
	if clear {
		seq = append(seq, "\x1b[0K")
	}
	if write {
		seq = append(seq, fmt.Sprintf("\r\x1b[%dC", ls.promptWidth+posWidth))
	}
	puts(ls.ofd, strings.Join(seq, ""))
}

// refreshMultiline redraws wrapped multi-line text. When write is false,
// only the clearing half of the sequence is emitted (used by hide()).
func (ls *linestate) refreshMultiline(clear, write bool) {
	bufWidth := runewidth.StringWidth(string(ls.buf))
	oldRows := ls.maxrows
	rpos := (ls.promptWidth + ls.oldpos + ls.cols) / ls.cols
	rows := (ls.promptWidth + bufWidth + ls.cols - 1) / ls.cols
	if rows > ls.maxrows {
		ls.maxrows = rows
	}
	seq := make([]string, 0, 15)
	if clear {
		if oldRows-rpos > 0 {
			seq = append(seq, fmt.Sprintf("\x1b[%dB", oldRows-rpos))
		}
		for j := 0; j < oldRows-1; j++ {
			seq = append(seq, "\r\x1b[0K\x1b[1A")
		}
		seq = append(seq, "\r\x1b[0K")
	}
	if write {
		seq = append(seq, ls.prompt)
		seq = append(seq, string(ls.buf))
		seq = append(seq, ls.refreshShowHints()...)
		if ls.pos != 0 && ls.pos == len(ls.buf) && (ls.pos+ls.promptWidth)%ls.cols == 0 {
			seq = append(seq, "\n\r")
			rows++
			if rows > ls.maxrows {
				ls.maxrows = rows
			}
		}
		rpos2 := (ls.promptWidth + ls.pos + ls.cols) / ls.cols
		if rows-rpos2 > 0 {
			seq = append(seq, fmt.Sprintf("\x1b[%dA", rows-rpos2))
		}
		col := (ls.promptWidth + ls.pos) % ls.cols
		if col != 0 {
			seq = append(seq, fmt.Sprintf("\r\x1b[%dC", col))
		} else {
			seq = append(seq, "\r")
		}
	}
	ls.oldpos = ls.pos
	puts(ls.ofd, strings.Join(seq, ""))
}

// refreshLine redraws the edit line in whichever mode is configured.
func (ls *linestate) refreshLine() {
	if ls.ts.mlmode {
		ls.refreshMultiline(true, true)
	} else {
		ls.refreshSingleline(true, true)
	}
}

// hide clears the rendered line and drops raw mode, so the caller can print
// asynchronously without corrupting the prompt. Pair with show().
func (ls *linestate) hide() {
	if ls.ts.mlmode {
		ls.refreshMultiline(true, false)
	} else {
		ls.refreshSingleline(true, false)
	}
	ls.ts.disableRawMode(ls.ifd)
}

// show re-acquires raw mode and repaints without clearing - the clear was
// already done by hide().
func (ls *linestate) show() error {
	if err := ls.ts.enableRawMode(ls.ifd); err != nil {
		return err
	}
	if ls.ts.mlmode {
		ls.refreshMultiline(false, true)
	} else {
		ls.refreshSingleline(false, true)
	}
	return nil
}

//-----------------------------------------------------------------------------
// buffer mutation primitives - every mutation is followed by a refreshLine call.

// editDelete deletes the character at the current cursor position.
func (ls *linestate) editDelete() {
	if len(ls.buf) > 0 && ls.pos < len(ls.buf) {
		ls.buf = append(ls.buf[:ls.pos], ls.buf[ls.pos+1:]...)
		ls.refreshLine()
	}
}

// editBackspace deletes the character to the left of the cursor.
func (ls *linestate) editBackspace() {
	if ls.pos > 0 && len(ls.buf) > 0 {
		ls.buf = append(ls.buf[:ls.pos-1], ls.buf[ls.pos:]...)
		ls.pos--
		ls.refreshLine()
	}
}

// editInsert inserts a rune at the current cursor position.
func (ls *linestate) editInsert(r rune) {
	ls.buf = append(ls.buf[:ls.pos], append([]rune{r}, ls.buf[ls.pos:]...)...)
	ls.pos++
	ls.refreshLine()
}

// editSwap swaps the character at the cursor with the one before it.
func (ls *linestate) editSwap() {
	if ls.pos > 0 && ls.pos < len(ls.buf) {
		ls.buf[ls.pos-1], ls.buf[ls.pos] = ls.buf[ls.pos], ls.buf[ls.pos-1]
		if ls.pos != len(ls.buf)-1 {
			ls.pos++
		}
		ls.refreshLine()
	}
}

// editSet replaces the buffer content; the cursor defaults to the end.
func (ls *linestate) editSet(s string) {
	ls.buf = []rune(s)
	ls.pos = len(ls.buf)
	ls.refreshLine()
}

// editMoveLeft moves the cursor one position left.
func (ls *linestate) editMoveLeft() {
	if ls.pos > 0 {
		ls.pos--
		ls.refreshLine()
	}
}

// editMoveRight moves the cursor one position right.
func (ls *linestate) editMoveRight() {
	if ls.pos != len(ls.buf) {
		ls.pos++
		ls.refreshLine()
	}
}

// editMoveHome moves the cursor to the start of the buffer.
func (ls *linestate) editMoveHome() {
	if ls.pos > 0 {
		ls.pos = 0
		ls.refreshLine()
	}
}

// editMoveEnd moves the cursor to the end of the buffer.
func (ls *linestate) editMoveEnd() {
	if ls.pos != len(ls.buf) {
		ls.pos = len(ls.buf)
		ls.refreshLine()
	}
}

// isWordSep reports whether r separates words (whitespace).
func isWordSep(r rune) bool {
	return r == ' ' || r == '\t'
}

// editMoveWordLeft moves to the start of the current or previous word.
func (ls *linestate) editMoveWordLeft() {
	pos := ls.pos
	for pos > 0 && isWordSep(ls.buf[pos-1]) {
		pos--
	}
	for pos > 0 && !isWordSep(ls.buf[pos-1]) {
		pos--
	}
	if pos != ls.pos {
		ls.pos = pos
		ls.refreshLine()
	}
}

// editMoveWordRight moves to the start of the next word.
func (ls *linestate) editMoveWordRight() {
	pos := ls.pos
	for pos < len(ls.buf) && !isWordSep(ls.buf[pos]) {
		pos++
	}
	for pos < len(ls.buf) && isWordSep(ls.buf[pos]) {
		pos++
	}
	if pos != ls.pos {
		ls.pos = pos
		ls.refreshLine()
	}
}

// deleteLine clears the whole buffer.
func (ls *linestate) deleteLine() {
	ls.buf = nil
	ls.pos = 0
	ls.refreshLine()
}

// deleteToEnd deletes from the cursor to the end of the buffer.
func (ls *linestate) deleteToEnd() {
	ls.buf = ls.buf[:ls.pos]
	ls.refreshLine()
}

// deletePrevWord deletes trailing spaces then the preceding non-space run.
func (ls *linestate) deletePrevWord() {
	oldPos := ls.pos
	for ls.pos > 0 && ls.buf[ls.pos-1] == ' ' {
		ls.pos--
	}
	for ls.pos > 0 && ls.buf[ls.pos-1] != ' ' {
		ls.pos--
	}
	ls.buf = append(ls.buf[:ls.pos], ls.buf[oldPos:]...)
	ls.refreshLine()
}

//-----------------------------------------------------------------------------
// tab completion sub-mode

// completeLine runs the tab-completion sub-mode and returns the key that
// should be forwarded to the main edit loop (KeyNone if nothing should be
// dispatched further).
func (ls *linestate) completeLine() Key {
	lc := ls.ts.completionCallback(ls.String())
	if len(lc) == 0 {
		beep()
		return KeyNone
	}
	idx := 0
	for {
		if idx < len(lc) {
			savedBuf, savedPos := ls.buf, ls.pos
			ls.buf = []rune(lc[idx])
			ls.pos = len(ls.buf)
			ls.refreshLine()
			ls.buf, ls.pos = savedBuf, savedPos
		} else {
			// preview the original, untouched buffer
			ls.refreshLine()
		}
		r, ok, eof := ls.u.getRune(ls.ifd, nil)
		if eof || !ok {
			return Key(keycodeNull)
		}
		switch {
		case r == keycodeTAB:
			idx = (idx + 1) % (len(lc) + 1)
			if idx == len(lc) {
				beep()
			}
			continue
		case r == keycodeESC:
			if wouldBlock(ls.ifd, &timeout20ms) {
				// a bare escape - cancel completion, restore the original display
				if idx < len(lc) {
					ls.refreshLine()
				}
				return KeyNone
			}
			// an escape sequence - commit the current candidate and forward
			// the escape so the main loop decodes the rest of the sequence.
			if idx < len(lc) {
				ls.buf = []rune(lc[idx])
				ls.pos = len(ls.buf)
			}
			return KeyEscape
		default:
			if idx < len(lc) {
				ls.buf = []rune(lc[idx])
				ls.pos = len(ls.buf)
			}
			return Key(r)
		}
	}
}
