package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/shibukawa/configdir"

	"github.com/kwpflash/kwpflash/go/ui/cmd"
)

type Shell struct {
	ctx *cmd.Context
	rl  *readline.Instance
}

type nullCloser struct{ io.Writer }

func (n *nullCloser) Close() error { return nil }

func completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range cmd.Names() {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// NewShell opens an interactive session on ctx. Command output and log
// messages are routed through readline so the prompt survives them.
func NewShell(ctx *cmd.Context) (*Shell, error) {
	// get history path
	configDirs := configdir.New("kwpflash", "shell")
	cacheDir := configDirs.QueryCacheFolder()
	historyPath := ""
	if err := cacheDir.MkdirAll(); err == nil {
		historyPath = filepath.Join(cacheDir.Path, "history")
	}
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		HistoryFile:     historyPath,
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, err
	}
	ctx.Writer = rl.Stdout()
	if l, ok := ctx.Log.(interface{ SetOutput(io.Writer) }); ok {
		l.SetOutput(&nullCloser{rl.Stderr()})
	}
	return &Shell{ctx: ctx, rl: rl}, nil
}

func (s *Shell) setPrompt() {
	img := s.ctx.Img
	switch {
	case img == nil:
		s.rl.SetPrompt("> ")
	case s.ctx.Dirty:
		s.rl.SetPrompt(fmt.Sprintf("%#x*> ", img.StartAddress))
	default:
		s.rl.SetPrompt(fmt.Sprintf("%#x> ", img.StartAddress))
	}
}

// Run reads commands until EOF or "exit".
func (s *Shell) Run() {
	defer s.Close()
	for {
		s.setPrompt()
		line, err := s.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "exit" || line == "quit" {
			break
		}
		cmd.Run(s.ctx, line)
	}
	if s.ctx.Dirty {
		s.ctx.Printf("warning: unsaved changes discarded\n")
	}
}

func (s *Shell) Close() {
	s.rl.Close()
}
