package cli

import (
	"os"
	"testing"
)

func Test_UnsupportedTerm(t *testing.T) {
	old := os.Getenv("TERM")
	defer os.Setenv("TERM", old)

	os.Setenv("TERM", "dumb")
	if !unsupportedTerm() {
		t.Error("expected TERM=dumb to be unsupported")
	}
	os.Setenv("TERM", "xterm-256color")
	if unsupportedTerm() {
		t.Error("expected TERM=xterm-256color to be supported")
	}
}

func Test_WouldBlock_NoDataOnPipe(t *testing.T) {
	rfd, wfd, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer rfd.Close()
	defer wfd.Close()

	if !wouldBlock(int(rfd.Fd()), &timeout10ms) {
		t.Error("expected an empty pipe to report wouldBlock")
	}
	if _, err := wfd.WriteString("x"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if wouldBlock(int(rfd.Fd()), &timeout10ms) {
		t.Error("expected a pipe with pending data to not block")
	}
}

func Test_GetColumns_FallsBackOnNonTty(t *testing.T) {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	defer devNull.Close()
	// /dev/null is not a tty so the ioctl and cursor probe both fail,
	// and getColumns must fall back to the default.
	if got := getColumns(int(devNull.Fd()), int(devNull.Fd())); got != defaultCols {
		t.Errorf("expected fallback to %d columns, got %d", defaultCols, got)
	}
}
