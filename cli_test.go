package cli

import "testing"

func Test_DisplayCols(t *testing.T) {
	clist := [][]string{
		{"a", "bb", "c"},
		{"aa", "b", "cb"},
		{"aaa", "bbbb", "ccccccc"},
	}
	csize := []int{8, 10, 15}
	t.Logf("\n%s\n", TableString(clist, csize, 1))
	t.Logf("\n%s\n", TableString(clist, nil, 1))
}

func indexCompare(a, b [][2]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i][0] != b[i][0] {
			return false
		}
		if a[i][1] != b[i][1] {
			return false
		}
	}
	return true
}

func Test_SplitIndex(t *testing.T) {
	tests := []struct {
		s string
		r [][2]int
	}{
		{"aaa bb  ccccc      ddddd", [][2]int{{0, 3}, {4, 6}, {8, 13}, {19, 24}}},
		{"", [][2]int{}},
		{"a", [][2]int{{0, 1}}},
	}
	for i, v := range tests {
		r := split_index(v.s)
		if !indexCompare(r, v.r) {
			t.Errorf("%d: FAIL expected (%v) != actual (%v)", i, v.r, r)
		}
	}
}

func Test_Completions(t *testing.T) {
	names := []string{"show", "shutdown"}
	got := completions("sh", "sh", names, 4)
	want := []string{"show", "shutdown"}
	if len(got) != len(want) {
		t.Fatalf("expected %d completions, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

var testLeaf = Leaf{
	Descr: "test leaf",
	F:     func(c *CLI, args []string) {},
}

var testMenu = Menu{
	{"show", testMenu2, "show submenu"},
	{"set", testLeaf},
}

var testMenu2 = Menu{
	{"version", testLeaf},
	{"config", testLeaf},
}

func Test_CompletionCallback(t *testing.T) {
	c := &CLI{root: testMenu}
	got := c.completion_callback("sh")
	if len(got) != 1 || got[0][:4] != "show" {
		t.Errorf("expected a single 'show' completion, got %v", got)
	}
	got = c.completion_callback("show ")
	if len(got) != 2 {
		t.Errorf("expected 2 completions under 'show', got %v", got)
	}
}
