//-----------------------------------------------------------------------------
/*

Application shell for the line editing engine and command menu.

Runs either a hierarchical command menu (the default) or, with -raw, a bare
line-reading loop that exercises completion/hints/history directly. -keycodes
is a standalone diagnostic mode; the Loop demo is the menu's "demo loop" command.

*/
//-----------------------------------------------------------------------------

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	cli "github.com/ap-go/linecli"
	"github.com/mattn/go-runewidth"
)

//-----------------------------------------------------------------------------
// menu leaves

var cmdHelp = cli.Leaf{
	Descr: "general help",
	F: func(c *cli.CLI, args []string) {
		c.GeneralHelp()
	},
}

var cmdHistory = cli.Leaf{
	Descr: "command history",
	F: func(c *cli.CLI, args []string) {
		c.SetLine(c.DisplayHistory(args))
	},
}

var cmdExit = cli.Leaf{
	Descr: "exit application",
	F: func(c *cli.CLI, args []string) {
		c.Exit()
	},
}

const maxLoops = 10

var loopIndex int

func demoLoop() bool {
	fmt.Printf("loop index %d/%d\r\n", loopIndex, maxLoops)
	time.Sleep(200 * time.Millisecond)
	loopIndex++
	return loopIndex > maxLoops
}

var cmdLoop = cli.Leaf{
	Descr: "run a demo loop, ctrl-d to exit early",
	F: func(c *cli.CLI, args []string) {
		c.Put("Looping... Ctrl-D to exit\n")
		loopIndex = 0
		c.Loop(demoLoop, rune(cli.KeyCtrlD))
	},
}

var echoArgHelp = []cli.Help{
	{Parm: "text", Descr: "text to echo back"},
}

var cmdEcho = cli.Leaf{
	Descr: "echo arguments",
	F: func(c *cli.CLI, args []string) {
		c.Put(fmt.Sprintf("%s\n", strings.Join(args, " ")))
	},
}

var demoMenu = cli.Menu{
	{"echo", cmdEcho, echoArgHelp},
	{"loop", cmdLoop},
}

var menuRoot = cli.Menu{
	{"demo", demoMenu, "demo functions"},
	{"exit", cmdExit},
	{"help", cmdHelp},
	{"history", cmdHistory, cli.HistoryHelp},
}

//-----------------------------------------------------------------------------

// shellUser is the USER implementation for the command menu, writing to stdout.
type shellUser struct{}

func (shellUser) Put(s string) {
	fmt.Print(s)
}

//-----------------------------------------------------------------------------
// -raw mode: direct engine use, no menu layer

func rawCompletion(s string) []string {
	if strings.HasPrefix(s, "h") {
		return []string{"hello", "hello there"}
	}
	return nil
}

func rawHints(s string) *cli.Hint {
	if s == "hello" {
		return &cli.Hint{Hint: " World", Color: 35, Bold: false}
	}
	return nil
}

func runRaw(historyPath, prompt string, multiline bool) {
	l := cli.NewLineNoise()
	l.SetMultiline(multiline)
	l.SetCompletionCallback(rawCompletion)
	l.SetHintsCallback(rawHints)
	if err := l.HistoryLoad(historyPath); err != nil {
		slog.Error("load history", "path", historyPath, "err", err)
	}

	for {
		s, err := l.Read(prompt, "")
		if err != nil {
			if err != cli.ErrQuit {
				slog.Error("read line", "err", err)
			}
			break
		}
		if len(s) == 0 {
			continue
		}
		fmt.Printf("echo: '%s' %d cols\n", s, runewidth.StringWidth(s))
		l.HistoryAdd(s)
		if err := l.HistorySave(historyPath); err != nil {
			slog.Error("save history", "path", historyPath, "err", err)
		}
	}
}

//-----------------------------------------------------------------------------

func main() {
	historyPath := flag.String("history", "history.txt", "command history file")
	prompt := flag.String("prompt", "cli> ", "command prompt string")
	multiline := flag.Bool("multiline", false, "enable multiline editing mode")
	raw := flag.Bool("raw", false, "bare line editing loop, no command menu")
	keycodes := flag.Bool("keycodes", false, "read and display keycodes, then exit")
	flag.Parse()

	if *keycodes {
		cli.NewLineNoise().PrintKeycodes()
		return
	}

	if *raw {
		runRaw(*historyPath, *prompt, *multiline)
		return
	}

	c := cli.NewCLI(shellUser{})
	c.HistoryLoad(*historyPath)
	c.SetRoot(menuRoot)
	c.SetPrompt(*prompt)
	for c.Running() {
		c.Run()
	}
	c.HistorySave(*historyPath)
}

//-----------------------------------------------------------------------------
