package cli

import "testing"

func Test_Utf8Decoder_Ascii(t *testing.T) {
	u := utf8Decoder{}
	r, n := u.add('A')
	if n != 1 || r != 'A' {
		t.Errorf("expected ('A', 1), got (%q, %d)", r, n)
	}
}

func Test_Utf8Decoder_MultiByte(t *testing.T) {
	// U+00E9 'é' encodes as 0xC3 0xA9
	u := utf8Decoder{}
	r, n := u.add(0xC3)
	if n != 0 {
		t.Fatalf("expected incomplete sequence, got size %d", n)
	}
	r, n = u.add(0xA9)
	if n != 2 || r != 'é' {
		t.Errorf("expected ('é', 2), got (%q, %d)", r, n)
	}
}

func Test_Utf8Decoder_Resync(t *testing.T) {
	u := utf8Decoder{}
	u.add(0xC3) // start a 2-byte sequence
	r, n := u.add(0x41)
	if n != 1 || r != 0xFFFD {
		t.Errorf("expected a resync to the replacement char, got (%q, %d)", r, n)
	}
	// decoder should be usable again after a resync
	r, n = u.add('z')
	if n != 1 || r != 'z' {
		t.Errorf("expected decoder to resume decoding ASCII, got (%q, %d)", r, n)
	}
}

func Test_EditResult_String(t *testing.T) {
	tests := []struct {
		r EditResult
		s string
	}{
		{More, "more"},
		{Enter, "enter"},
		{Hotkey, "hotkey"},
		{Escape, "escape"},
		{EofOrError, "eof_or_error"},
		{EditResult(99), "unknown"},
	}
	for _, v := range tests {
		if got := v.r.String(); got != v.s {
			t.Errorf("%d: expected %q, got %q", v.r, v.s, got)
		}
	}
}

func Test_ResolveKey_PlainRune(t *testing.T) {
	u := utf8Decoder{}
	if got := resolveKey(&u, -1, 'q'); got != Key('q') {
		t.Errorf("expected Key('q'), got %v", got)
	}
}

func Test_ResolveKey_BareEscape(t *testing.T) {
	// fd -1 always reports "nothing more to read" from wouldBlock, so a bare
	// ESC with no following bytes resolves to KeyEscape without blocking.
	u := utf8Decoder{}
	if got := resolveKey(&u, -1, keycodeESC); got != KeyEscape {
		t.Errorf("expected KeyEscape, got %v", got)
	}
}
