package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Group sections the usage listing.
type Group int

const (
	Checksums Group = iota
	Images
	Layouts
	Interactive
)

var groupNames = [...]string{
	Checksums:   "Checksums",
	Images:      "Images",
	Layouts:     "Flash layouts",
	Interactive: "Interactive",
}

func (g Group) String() string { return groupNames[g] }

type command struct {
	group      Group
	name, desc string
	main       func(args []string)
}

var commands = make(map[string]*command)
var grouped [len(groupNames)][]*command
var pad int

// Register adds a subcommand. Within a group, commands are listed in
// registration order.
func Register(group Group, name, desc string, main func(args []string)) {
	if _, dup := commands[name]; dup {
		panic("cmd: duplicate command " + name)
	}
	if len(name) > pad {
		pad = len(name)
	}
	c := &command{group, name, desc, main}
	commands[name] = c
	grouped[group] = append(grouped[group], c)
}

func usage(w io.Writer, prog string) {
	fstr := fmt.Sprintf("  %%-%ds  %%s\n", pad)
	for g, cmds := range grouped {
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", Group(g))
		for _, c := range cmds {
			fmt.Fprintf(w, fstr, c.name, c.desc)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Example: %s verify -base 0x800000 ecu.bin\n", prog)
	fmt.Fprintf(w, "Run '%s <command> -h' for the flags of a command.\n\n", prog)
}

// dispatch picks the command named by args[1]. It returns nil with an exit
// code when only usage should be printed.
func dispatch(args []string, w io.Writer) (*command, int) {
	if len(args) < 2 {
		usage(w, args[0])
		return nil, 1
	}
	switch args[1] {
	case "help", "-h", "-help", "--help":
		usage(w, args[0])
		return nil, 0
	}
	c, ok := commands[args[1]]
	if !ok {
		fmt.Fprintf(w, "Command '%s' not found.\n\n", args[1])
		usage(w, args[0])
		return nil, 1
	}
	return c, 0
}

func Main() {
	c, code := dispatch(os.Args, os.Stderr)
	if c == nil {
		os.Exit(code)
	}
	args := append([]string{strings.Join(os.Args[:2], " ")}, os.Args[2:]...)
	c.main(args)
}
