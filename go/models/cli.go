package models

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// PrintFlags prints a wrapped, aligned flag listing for usage output.
func PrintFlags(w io.Writer, flags []*flag.Flag) {
	wname := 0
	wdef := 0
	for _, f := range flags {
		if len(f.Name) > wname {
			wname = len(f.Name)
		}
		if len(f.DefValue) > wdef {
			wdef = len(f.DefValue)
		}
	}
	wdesc := 80 - wname - wdef - 7
	if wdesc < 20 {
		wdesc = 20
	}

	namefmt := fmt.Sprintf("%%-%ds", wname)
	deffmt := fmt.Sprintf("%%-%ds ", wdef+2)
	lpad := strings.Repeat(" ", wname+wdef+7)
	for _, f := range flags {
		fmt.Fprintf(w, "  -"+namefmt, f.Name)
		if f.DefValue != "" && f.DefValue != "false" {
			fmt.Fprintf(w, " "+deffmt, "("+f.DefValue+")")
		} else {
			fmt.Fprintf(w, " "+deffmt, "  ")
		}
		usage := f.Usage
		for first := true; usage != "" || first; first = false {
			if !first {
				fmt.Fprint(w, lpad)
			}
			l := len(usage)
			if l > wdesc {
				l = wdesc
				if s := strings.LastIndexByte(usage[:l], ' '); s > 0 {
					l = s
				}
			}
			fmt.Fprintln(w, usage[:l])
			usage = strings.TrimLeft(usage[l:], " ")
		}
	}
}
