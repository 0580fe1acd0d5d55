package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_HistoryAdd_DedupAndMaxlen(t *testing.T) {
	l := NewLineNoise()
	l.HistorySetMaxlen(2)
	l.HistoryAdd("one")
	l.HistoryAdd("one") // duplicate of the last entry - suppressed
	l.HistoryAdd("two")
	l.HistoryAdd("three") // history is full - drop the oldest

	got := l.historyList()
	want := []string{"two", "three"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func Test_HistorySetMaxlen_Truncates(t *testing.T) {
	l := NewLineNoise()
	l.HistorySetMaxlen(10)
	for _, s := range []string{"a", "b", "c", "d"} {
		l.HistoryAdd(s)
	}
	l.HistorySetMaxlen(2)
	got := l.historyList()
	want := []string{"c", "d"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func Test_HistorySaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.txt")

	l := NewLineNoise()
	l.HistoryAdd("first")
	l.HistoryAdd("second")
	if err := l.HistorySave(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	l2 := NewLineNoise()
	if err := l2.HistoryLoad(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := l2.historyList()
	want := []string{"first", "second"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func Test_HistoryLoad_MissingFileIsNotError(t *testing.T) {
	l := NewLineNoise()
	if err := l.HistoryLoad(filepath.Join(t.TempDir(), "nope.txt")); err != nil {
		t.Errorf("expected no error for a missing file, got %v", err)
	}
}

func Test_HistoryNextPrev_PreservesLiveEdit(t *testing.T) {
	l := NewLineNoise()
	l.HistoryAdd("alpha")
	l.HistoryAdd("beta")

	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	defer devNull.Close()

	ls := &linestate{ts: l, ofd: int(devNull.Fd()), cols: 80}
	ls.editSet("beta-edited")
	ls.historyIdx = 0

	// alpha is now the previous (older) entry
	prev := l.historyPrev(ls)
	if prev != "alpha" {
		t.Fatalf("expected 'alpha', got %q", prev)
	}
	// the edit made to "beta" before navigating away must be preserved
	if got := l.historyGet(0); got != "beta-edited" {
		t.Errorf("expected live edit 'beta-edited' to be preserved, got %q", got)
	}
}
