// Package cmd holds the commands shared by the interactive shell and the
// one-shot command line tools.
package cmd

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/lunixbochs/argjoy"
	"github.com/lunixbochs/fvbommel-util/sortorder"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

type Command struct {
	Name string
	Args string
	Desc string
	Run  interface{}
}

var Commands = make(map[string]*Command)

func cmd(c *Command) *Command {
	fn := reflect.ValueOf(c.Run)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		panic(fmt.Sprintf("Command.Run must be a func: got (%T) %#v\n", c.Run, c.Run))
	}
	Commands[c.Name] = c
	return c
}

// Names lists the commands in natural order.
func Names() []string {
	names := make([]string, 0, len(Commands))
	for name := range Commands {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return sortorder.NaturalLess(names[i], names[j]) })
	return names
}

// numArgCodec converts command words into integers. Numbers are decimal
// unless prefixed with 0x.
func numArgCodec(arg interface{}, vals []interface{}) error {
	s, ok := vals[0].(string)
	if !ok {
		return argjoy.NoMatch
	}
	switch v := arg.(type) {
	case *uint32:
		n, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return errors.Errorf("bad number %q", s)
		}
		*v = uint32(n)
	case *int:
		n, err := strconv.ParseInt(s, 0, 0)
		if err != nil {
			return errors.Errorf("bad number %q", s)
		}
		*v = int(n)
	case *string:
		*v = s
	default:
		return argjoy.NoMatch
	}
	return nil
}

var aj = argjoy.NewArgjoy()

func init() { aj.Register(numArgCodec) }

// Exec runs one command by name with already split arguments.
func Exec(c *Context, name string, args []string) error {
	cmd, ok := Commands[name]
	if !ok {
		return errors.Errorf("command %q not found", name)
	}
	if want := reflect.TypeOf(cmd.Run).NumIn() - 1; want != len(args) {
		return errors.Errorf("usage: %s %s", cmd.Name, cmd.Args)
	}
	in := make([]interface{}, 0, len(args)+1)
	in = append(in, c)
	for _, a := range args {
		in = append(in, a)
	}
	out, err := aj.Call(cmd.Run, in...)
	if err != nil {
		return err
	}
	if len(out) > 0 {
		if err, ok := out[0].(error); ok {
			return err
		}
	}
	return nil
}

// Run parses a shell line and executes it, printing any error.
func Run(c *Context, line string) {
	args, err := shellwords.Parse(line)
	if err != nil {
		c.Printf("parse error: %v\n", err)
		return
	}
	if len(args) == 0 {
		return
	}
	if err := Exec(c, args[0], args[1:]); err != nil {
		c.Printf("error: %v\n", err)
	}
}

var HelpCmd = cmd(&Command{
	Name: "help",
	Desc: "List commands.",
	Run: func(c *Context) error {
		pad := 0
		for _, name := range Names() {
			if n := len(name) + len(Commands[name].Args) + 1; n > pad {
				pad = n
			}
		}
		for _, name := range Names() {
			cmd := Commands[name]
			c.Printf("  %-*s  %s\n", pad, name+" "+cmd.Args, cmd.Desc)
		}
		return nil
	},
})
