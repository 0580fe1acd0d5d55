//-----------------------------------------------------------------------------
/*

Key Decoder

Turns raw input bytes into semantic key events. Escape is both a complete
key and the prefix of a multi-byte sequence; the ambiguity is resolved with a
short timeout on the bytes that would follow a real sequence.

*/
//-----------------------------------------------------------------------------

package cli

import (
	"syscall"
	"unicode"

	fdset "github.com/deadsy/go-fdset"
)

//-----------------------------------------------------------------------------
// byte-level key codes (also valid as decoded runes - these are real ASCII values)

const (
	keycodeNull  = 0
	keycodeCtrlA = 1
	keycodeCtrlB = 2
	keycodeCtrlC = 3
	keycodeCtrlD = 4
	keycodeCtrlE = 5
	keycodeCtrlF = 6
	keycodeCtrlH = 8
	keycodeTAB   = 9
	keycodeLF    = 10
	keycodeCtrlK = 11
	keycodeCtrlL = 12
	keycodeCR    = 13
	keycodeCtrlN = 14
	keycodeCtrlP = 16
	keycodeCtrlT = 20
	keycodeCtrlU = 21
	keycodeCtrlW = 23
	keycodeESC   = 27
	keycodeBS    = 127
)

//-----------------------------------------------------------------------------

// Key is a semantic key event. Values in the ASCII control/printable range
// are plain decoded runes (so a Key can be compared directly against a
// keycode constant or a Printable rune). Values above unicode.MaxRune are
// reserved tags for keys with no natural rune representation.
type Key rune

const (
	keySentinelBase Key = Key(unicode.MaxRune) + 1 + iota
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyHome
	KeyEnd
	KeyDelete
	KeyWordLeft
	KeyWordRight
	KeyNone // decoded but discarded (unrecognized escape sequence)
)

// KeyEnter, KeyTab, KeyEscape, KeyBackspace, KeyCtrlD are just their ASCII
// codes, exposed under readable names for callers outside this package -
// KeyCtrlD is commonly used as the exit key for Loop.
const (
	KeyEnter     = Key(keycodeCR)
	KeyTab       = Key(keycodeTAB)
	KeyEscape    = Key(keycodeESC)
	KeyBackspace = Key(keycodeBS)
	KeyCtrlD     = Key(keycodeCtrlD)
)

//-----------------------------------------------------------------------------
// UTF8 decoding

const (
	getByte0 = iota
	get3More
	get2More
	get1More
)

type utf8Decoder struct {
	state byte
	count int
	val   int32
}

// add feeds a byte into the decode state machine.
// Returns the decoded rune and its size in bytes, or size 0 if more bytes are needed.
func (u *utf8Decoder) add(c byte) (r rune, size int) {
	switch u.state {
	case getByte0:
		if c&0x80 == 0 {
			return rune(c), 1
		} else if c&0xe0 == 0xc0 {
			u.val = int32(c&0x1f) << 6
			u.count = 2
			u.state = get1More
			return keycodeNull, 0
		} else if c&0xf0 == 0xe0 {
			u.val = int32(c&0x0f) << 6
			u.count = 3
			u.state = get2More
			return keycodeNull, 0
		} else if c&0xf8 == 0xf0 {
			u.val = int32(c&0x07) << 6
			u.count = 4
			u.state = get3More
			return keycodeNull, 0
		}
	case get3More:
		if c&0xc0 == 0x80 {
			u.state = get2More
			u.val |= int32(c & 0x3f)
			u.val <<= 6
			return keycodeNull, 0
		}
	case get2More:
		if c&0xc0 == 0x80 {
			u.state = get1More
			u.val |= int32(c & 0x3f)
			u.val <<= 6
			return keycodeNull, 0
		}
	case get1More:
		if c&0xc0 == 0x80 {
			u.state = getByte0
			u.val |= int32(c & 0x3f)
			return rune(u.val), u.count
		}
	}
	// malformed sequence - resync and report a replacement char
	u.state = getByte0
	return unicode.ReplacementChar, 1
}

// readByte reads a single byte with an optional timeout.
// ok is false and eof is false on a timeout (nothing available).
// ok is false and eof is true on end of file or a read error.
func readByte(fd int, timeout *syscall.Timeval) (b byte, ok bool, eof bool) {
	if timeout != nil {
		rd := syscall.FdSet{}
		fdset.Set(fd, &rd)
		n, err := syscall.Select(fd+1, &rd, nil, nil, timeout)
		if err != nil || n == 0 {
			return 0, false, false
		}
	}
	buf := make([]byte, 1)
	n, err := syscall.Read(fd, buf)
	if err != nil || n == 0 {
		return 0, false, true
	}
	return buf[0], true, false
}

// getRune assembles one decoded rune from the byte stream.
// timeout == nil blocks until a full rune arrives or the stream ends.
// ok is false with eof false on a timeout; ok is false with eof true on EOF/error.
func (u *utf8Decoder) getRune(fd int, timeout *syscall.Timeval) (r rune, ok bool, eof bool) {
	for {
		b, got, isEOF := readByte(fd, timeout)
		if isEOF {
			return 0, false, true
		}
		if !got {
			return 0, false, false
		}
		rr, size := u.add(b)
		if size == 0 {
			// incomplete multi-byte sequence - keep reading; each remaining byte is
			// read with the caller's timeout too, and a timeout returns ok=false.
			continue
		}
		return rr, true, false
	}
}

//-----------------------------------------------------------------------------

// resolveKey expands an already-read rune into a semantic Key, reading and
// consuming any escape-sequence continuation bytes from ifd as needed.
func resolveKey(u *utf8Decoder, ifd int, r rune) Key {
	if r != keycodeESC {
		return Key(r)
	}
	if wouldBlock(ifd, &timeout20ms) {
		// nothing more to read - this is a bare escape
		return KeyEscape
	}
	s0, ok, _ := u.getRune(ifd, &timeout20ms)
	if !ok {
		return KeyEscape
	}
	s1, ok, _ := u.getRune(ifd, &timeout20ms)
	if !ok {
		return KeyEscape
	}
	switch s0 {
	case '[':
		if s1 >= '0' && s1 <= '9' {
			s2, ok, _ := u.getRune(ifd, &timeout20ms)
			if !ok {
				return KeyEscape
			}
			if s2 == '~' && s1 == '3' {
				return KeyDelete
			}
			if s2 == ';' {
				s3, _, _ := u.getRune(ifd, &timeout20ms)
				s4, _, _ := u.getRune(ifd, &timeout20ms)
				if s3 == '5' {
					if s4 == 'C' {
						return KeyWordRight
					}
					if s4 == 'D' {
						return KeyWordLeft
					}
				}
			}
			return KeyNone
		}
		switch s1 {
		case 'A':
			return KeyArrowUp
		case 'B':
			return KeyArrowDown
		case 'C':
			return KeyArrowRight
		case 'D':
			return KeyArrowLeft
		case 'H':
			return KeyHome
		case 'F':
			return KeyEnd
		}
		return KeyNone
	case 'O':
		switch s1 {
		case 'H':
			return KeyHome
		case 'F':
			return KeyEnd
		}
		return KeyNone
	}
	return KeyNone
}

//-----------------------------------------------------------------------------

// EditResult is the outcome of processing one key event in a line edit session.
type EditResult int

const (
	// More means the session is still in progress - keep feeding keys.
	More EditResult = iota
	// Enter means the line was accepted.
	Enter
	// Hotkey means the configured hotkey character ended the line.
	Hotkey
	// Escape means a bare escape key abandoned the line.
	Escape
	// EofOrError means the input stream ended or a read error occurred.
	EofOrError
)

func (r EditResult) String() string {
	switch r {
	case More:
		return "more"
	case Enter:
		return "enter"
	case Hotkey:
		return "hotkey"
	case Escape:
		return "escape"
	case EofOrError:
		return "eof_or_error"
	default:
		return "unknown"
	}
}
