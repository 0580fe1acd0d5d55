//-----------------------------------------------------------------------------
/*

Editor State Machine and Driver API

Linenoise is the process-scoped engine: history, raw-mode bookkeeping, and
the callbacks that customize completion/hints/hotkey behavior. Sessions
(linestate) are created and destroyed per line read; edit_start/edit_feed/
edit_stop let a host interleave editing with other work by only calling
feed when input is actually available.

*/
//-----------------------------------------------------------------------------

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"unicode"

	"github.com/creack/termios/raw"
	"github.com/mattn/go-isatty"
)

// ErrQuit is returned when the user has quit line editing (Ctrl-C, or
// Ctrl-D on an empty buffer).
var ErrQuit = errors.New("quit")

//-----------------------------------------------------------------------------

// Linenoise is the line-editing engine. One instance owns one history and
// one set of callbacks; it is not safe for concurrent use from multiple
// goroutines without external serialization.
type Linenoise struct {
	history             []string              // history strings, oldest first
	historyMaxlen       int                   // maximum number of history entries
	rawmode             bool                  // are we currently in raw mode?
	mlmode              bool                  // are we in multiline mode?
	savedmode           *raw.Termios          // saved terminal mode, valid iff rawmode
	completionCallback  func(string) []string // tab completion callback
	hintsCallback       func(string) *Hint    // inline hint callback
	hotkey              rune                  // character that ends editing like Enter
	scanner             *bufio.Scanner        // buffered reader for non-tty fallback
	log                 *slog.Logger          // session lifecycle logging
}

// NewLineNoise returns a new line editor with the default history bound.
func NewLineNoise() *Linenoise {
	return &Linenoise{
		historyMaxlen: 32,
		log:           slog.Default(),
	}
}

// SetLogger overrides the logger used for session lifecycle events
// (raw-mode enable failures, at debug level). History I/O errors are
// returned to the caller, not logged here. The default is slog.Default().
func (l *Linenoise) SetLogger(logger *slog.Logger) {
	l.log = logger
}

//-----------------------------------------------------------------------------
// raw mode acquisition/release - exactly one session may hold raw mode on a given fd.

func (l *Linenoise) enableRawMode(fd int) error {
	mode, err := setRawMode(fd)
	if err != nil {
		return err
	}
	l.rawmode = true
	l.savedmode = mode
	return nil
}

func (l *Linenoise) disableRawMode(fd int) error {
	if l.rawmode {
		if err := restoreMode(fd, l.savedmode); err != nil {
			return err
		}
	}
	l.rawmode = false
	return nil
}

//-----------------------------------------------------------------------------
// editor state machine - one step per key event

// step reads one key event from ls.ifd (blocking on the first byte) and
// applies it, returning the result of the transition.
func (l *Linenoise) step(ls *linestate) EditResult {
	r, ok, eof := ls.u.getRune(ls.ifd, nil)
	if eof {
		return EofOrError
	}
	if !ok {
		// shouldn't happen on a blocking read, but treat as "nothing happened"
		return More
	}

	// Tab completion is special: it runs its own read loop and hands back
	// the key that should be processed next (possibly KeyNone).
	if r == keycodeTAB && l.completionCallback != nil {
		key := ls.completeLine()
		switch key {
		case KeyNone, Key(keycodeNull):
			return More
		case KeyEscape:
			// completeLine saw the start of a real escape sequence but left the
			// rest unconsumed - decode it the same way a fresh ESC would be.
			return l.dispatch(ls, resolveKey(&ls.u, ls.ifd, keycodeESC))
		default:
			return l.dispatch(ls, key)
		}
	}

	key := resolveKey(&ls.u, ls.ifd, r)
	return l.dispatch(ls, key)
}

// dispatch applies a single already-decoded key to the session.
func (l *Linenoise) dispatch(ls *linestate, key Key) EditResult {
	switch {
	case key == KeyEnter || (l.hotkey != 0 && key == Key(l.hotkey)):
		l.historyPop(-1)
		if l.hintsCallback != nil {
			// refresh without hints so the echoed line matches what was typed
			hcb := l.hintsCallback
			l.hintsCallback = nil
			ls.refreshLine()
			l.hintsCallback = hcb
		}
		if key == KeyEnter {
			return Enter
		}
		return Hotkey

	case key == KeyBackspace || key == Key(keycodeCtrlH):
		ls.editBackspace()

	case key == KeyEscape:
		l.historyPop(-1)
		return Escape

	case key == Key(keycodeCtrlA) || key == KeyHome:
		ls.editMoveHome()
	case key == Key(keycodeCtrlB) || key == KeyArrowLeft:
		ls.editMoveLeft()
	case key == Key(keycodeCtrlC):
		return EofOrError
	case key == Key(keycodeCtrlD):
		if len(ls.buf) > 0 {
			ls.editDelete()
		} else {
			l.historyPop(-1)
			return EofOrError
		}
	case key == Key(keycodeCtrlE) || key == KeyEnd:
		ls.editMoveEnd()
	case key == Key(keycodeCtrlF) || key == KeyArrowRight:
		ls.editMoveRight()
	case key == Key(keycodeCtrlK):
		ls.deleteToEnd()
	case key == Key(keycodeCtrlL):
		clearScreen()
		ls.refreshLine()
	case key == Key(keycodeCtrlN) || key == KeyArrowDown:
		ls.editSet(l.historyNext(ls))
	case key == Key(keycodeCtrlP) || key == KeyArrowUp:
		ls.editSet(l.historyPrev(ls))
	case key == Key(keycodeCtrlT):
		ls.editSwap()
	case key == Key(keycodeCtrlU):
		ls.deleteLine()
	case key == Key(keycodeCtrlW):
		ls.deletePrevWord()
	case key == KeyDelete:
		ls.editDelete()
	case key == KeyWordLeft:
		ls.editMoveWordLeft()
	case key == KeyWordRight:
		ls.editMoveWordRight()
	case key == KeyNone:
		// unrecognized escape sequence - discard without side effects

	default:
		if key >= 0 && key <= unicode.MaxRune && unicode.IsPrint(rune(key)) {
			ls.editInsert(rune(key))
		}
	}
	return More
}

//-----------------------------------------------------------------------------
// non-blocking driver

// EditStart enables raw mode on ifd, creates a session, and pushes the
// initial text as the live history entry. Returns nil on failure (ifd is
// not a tty, say); the caller should fall back to a non-raw read.
func (l *Linenoise) EditStart(prompt, initial string, ifd, ofd int) *linestate {
	if err := l.enableRawMode(ifd); err != nil {
		l.log.Debug("enable raw mode failed", "fd", ifd, "err", err)
		return nil
	}
	ls := newLineState(ifd, ofd, prompt, l)
	ls.editSet(initial)
	l.HistoryAdd(ls.String())
	return ls
}

// EditFeed processes one key event of a session started with EditStart.
// Call it again whenever ls.ifd has more input, until it returns something
// other than More, then call EditStop.
func (l *Linenoise) EditFeed(ls *linestate) EditResult {
	if ls == nil {
		return EofOrError
	}
	return l.step(ls)
}

// EditStop releases raw mode acquired by EditStart and terminates the line visually.
func (l *Linenoise) EditStop(ls *linestate) {
	l.disableRawMode(ls.ifd)
	puts(ls.ofd, "\r\n")
}

//-----------------------------------------------------------------------------
// blocking read built on top of the same driver

func (l *Linenoise) editBlocking(prompt, initial string, ifd, ofd int) (EditResult, *linestate) {
	ls := l.EditStart(prompt, initial, ifd, ofd)
	if ls == nil {
		return EofOrError, nil
	}
	var res EditResult
	for {
		res = l.step(ls)
		if res != More {
			break
		}
	}
	l.EditStop(ls)
	return res, ls
}

// readRaw reads a line from stdin/stdout in raw mode.
func (l *Linenoise) readRaw(prompt, initial string) (string, error) {
	res, ls := l.editBlocking(prompt, initial, syscall.Stdin, syscall.Stdout)
	switch res {
	case Enter:
		return ls.String(), nil
	case Hotkey:
		return ls.String() + string(l.hotkey), nil
	case Escape:
		return "", nil
	default:
		return "", ErrQuit
	}
}

// readBasic reads one line from stdin using buffered, non-raw I/O - the
// fallback for pipes and unsupported terminals.
func (l *Linenoise) readBasic() (string, error) {
	if l.scanner == nil {
		l.scanner = bufio.NewScanner(os.Stdin)
	}
	if !l.scanner.Scan() {
		if err := l.scanner.Err(); err != nil {
			return "", err
		}
		return "", ErrQuit
	}
	return l.scanner.Text(), nil
}

// Read reads a line, blocking until Enter/hotkey/EOF. Returns ErrQuit on
// Ctrl-C, Ctrl-D on an empty buffer, or end of input.
func (l *Linenoise) Read(prompt, initial string) (string, error) {
	if !isatty.IsTerminal(uintptr(syscall.Stdin)) {
		return l.readBasic()
	}
	if unsupportedTerm() {
		fmt.Print(prompt)
		s, err := l.readBasic()
		if err == ErrQuit {
			fmt.Println()
		}
		return s, err
	}
	return l.readRaw(prompt, initial)
}

//-----------------------------------------------------------------------------

// Loop calls fn repeatedly, polling stdin for exitKey between calls.
// Returns true if fn completed (returned true), false if exitKey cancelled it.
func (l *Linenoise) Loop(fn func() bool, exitKey rune) bool {
	if err := l.enableRawMode(syscall.Stdin); err != nil {
		l.log.Debug("enable raw mode failed", "err", err)
		return false
	}
	defer l.disableRawMode(syscall.Stdin)

	u := utf8Decoder{}
	for {
		r, ok, eof := u.getRune(syscall.Stdin, &timeout10ms)
		if !eof && ok && r == exitKey {
			return false
		}
		if fn() {
			return true
		}
	}
}

//-----------------------------------------------------------------------------
// key code debugging

// PrintKeycodes prints raw key codes until the last four keys spell "quit".
func (l *Linenoise) PrintKeycodes() {
	fmt.Println("Linenoise key codes debugging mode.")
	fmt.Println("Press keys to see scan codes. Type 'quit' at any time to exit.")
	if err := l.enableRawMode(syscall.Stdin); err != nil {
		l.log.Debug("enable raw mode failed", "err", err)
		return
	}
	defer l.disableRawMode(syscall.Stdin)

	u := utf8Decoder{}
	var cmd [4]rune
	for {
		r, ok, eof := u.getRune(syscall.Stdin, nil)
		if eof {
			return
		}
		if !ok {
			continue
		}
		var s string
		if unicode.IsPrint(r) {
			s = string(r)
		} else {
			switch r {
			case keycodeCR:
				s = "\\r"
			case keycodeTAB:
				s = "\\t"
			case keycodeESC:
				s = "ESC"
			case keycodeLF:
				s = "\\n"
			case keycodeBS:
				s = "BS"
			default:
				s = "?"
			}
		}
		fmt.Printf("'%s' 0x%x (%d)\r\n", s, int32(r), int32(r))
		copy(cmd[:], cmd[1:])
		cmd[3] = r
		if string(cmd[:]) == "quit" {
			return
		}
	}
}

//-----------------------------------------------------------------------------
// configuration

// SetCompletionCallback sets the tab-completion callback.
func (l *Linenoise) SetCompletionCallback(fn func(string) []string) {
	l.completionCallback = fn
}

// SetHintsCallback sets the inline hints callback.
func (l *Linenoise) SetHintsCallback(fn func(string) *Hint) {
	l.hintsCallback = fn
}

// SetMultiline enables or disables multi-line editing mode.
func (l *Linenoise) SetMultiline(mode bool) {
	l.mlmode = mode
}

// SetHotkey sets a character that ends editing like Enter, but is appended
// to the returned text rather than displayed.
func (l *Linenoise) SetHotkey(key rune) {
	l.hotkey = key
}
