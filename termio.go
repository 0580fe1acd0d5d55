//-----------------------------------------------------------------------------
/*

Terminal I/O

Raw mode enable/disable, byte-level reads with timeouts, cursor and column
probing, and the handful of escape sequences used to clear the screen or
ring the bell.

*/
//-----------------------------------------------------------------------------

package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"unsafe"

	"github.com/creack/termios/raw"
	fdset "github.com/deadsy/go-fdset"
	"github.com/mattn/go-isatty"
)

//-----------------------------------------------------------------------------

var timeout20ms = syscall.Timeval{Sec: 0, Usec: 20 * 1000}
var timeout10ms = syscall.Timeval{Sec: 0, Usec: 10 * 1000}

// Use this value if we can't work out how many columns the terminal has.
const defaultCols = 80

//-----------------------------------------------------------------------------
// control the terminal mode

// setRawMode puts a tty file descriptor into raw mode and returns the prior state.
func setRawMode(fd int) (*raw.Termios, error) {
	if !isatty.IsTerminal(uintptr(fd)) {
		return nil, fmt.Errorf("fd %d is not a tty", fd)
	}
	originalMode, err := raw.TcGetAttr(uintptr(fd))
	if err != nil {
		return nil, err
	}
	newMode := *originalMode
	newMode.Iflag &^= syscall.IGNBRK | syscall.BRKINT | syscall.PARMRK | syscall.ISTRIP | syscall.INLCR | syscall.IGNCR | syscall.ICRNL | syscall.IXON
	newMode.Oflag &^= syscall.OPOST
	newMode.Lflag &^= syscall.ECHO | syscall.ECHONL | syscall.ICANON | syscall.ISIG | syscall.IEXTEN
	newMode.Cflag &^= syscall.CSIZE | syscall.PARENB
	newMode.Cflag |= syscall.CS8
	newMode.Cc[syscall.VMIN] = 1
	newMode.Cc[syscall.VTIME] = 0
	if err := raw.TcSetAttr(uintptr(fd), &newMode); err != nil {
		return nil, err
	}
	return originalMode, nil
}

// restoreMode restores a previously saved terminal mode.
func restoreMode(fd int, mode *raw.Termios) error {
	return raw.TcSetAttr(uintptr(fd), mode)
}

//-----------------------------------------------------------------------------

// wouldBlock returns true if fd has nothing to read within the timeout period.
func wouldBlock(fd int, timeout *syscall.Timeval) bool {
	rd := syscall.FdSet{}
	fdset.Set(fd, &rd)
	n, err := syscall.Select(fd+1, &rd, nil, nil, timeout)
	if err != nil {
		return false
	}
	return n == 0
}

// puts writes a string to the file descriptor, returning the number of bytes written.
func puts(fd int, s string) int {
	n, err := syscall.Write(fd, []byte(s))
	if err != nil {
		return n
	}
	return n
}

//-----------------------------------------------------------------------------

// getCursorPosition queries the terminal for the cursor's current column.
func getCursorPosition(ifd, ofd int) int {
	if puts(ofd, "\x1b[6n") != 4 {
		return -1
	}
	// read the response: ESC [ rows ; cols R
	u := utf8Decoder{}
	buf := make([]rune, 0, 32)
	for len(buf) < 32 {
		r, ok, eof := u.getRune(ifd, &timeout20ms)
		if eof || !ok {
			break
		}
		buf = append(buf, r)
		if r == 'R' {
			break
		}
	}
	if len(buf) < 6 || buf[0] != keycodeESC || buf[1] != '[' || buf[len(buf)-1] != 'R' {
		return -1
	}
	x := strings.Split(string(buf[2:len(buf)-1]), ";")
	if len(x) != 2 {
		return -1
	}
	cols, err := strconv.Atoi(x[1])
	if err != nil {
		return -1
	}
	return cols
}

// getColumns returns the terminal's column count, falling back to defaultCols.
func getColumns(ifd, ofd int) int {
	var winsize [4]uint16
	_, _, err := syscall.Syscall(syscall.SYS_IOCTL, uintptr(ofd), syscall.TIOCGWINSZ, uintptr(unsafe.Pointer(&winsize)))
	if err == 0 && winsize[1] != 0 {
		return int(winsize[1])
	}
	// the ioctl failed - try using the terminal itself
	start := getCursorPosition(ifd, ofd)
	if start < 0 {
		return defaultCols
	}
	if puts(ofd, "\x1b[999C") != 6 {
		return defaultCols
	}
	cols := getCursorPosition(ifd, ofd)
	if cols < 0 {
		return defaultCols
	}
	if cols > start {
		puts(ofd, fmt.Sprintf("\x1b[%dD", cols-start))
	}
	return cols
}

//-----------------------------------------------------------------------------

// clearScreen clears the terminal and homes the cursor.
func clearScreen() {
	puts(syscall.Stdout, "\x1b[H\x1b[2J")
}

// beep rings the terminal bell on stderr.
func beep() {
	puts(syscall.Stderr, "\x07")
}

//-----------------------------------------------------------------------------

var unsupportedTerms = map[string]bool{
	"dumb":   true,
	"cons25": true,
	"emacs":  true,
}

// unsupportedTerm returns true if we know we don't support this terminal.
func unsupportedTerm() bool {
	return unsupportedTerms[os.Getenv("TERM")]
}

//-----------------------------------------------------------------------------
