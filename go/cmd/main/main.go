package main

import (
	"github.com/kwpflash/kwpflash/go/cmd"

	_ "github.com/kwpflash/kwpflash/go/cmd/checksum"
	_ "github.com/kwpflash/kwpflash/go/cmd/image"
	_ "github.com/kwpflash/kwpflash/go/cmd/layout"
	_ "github.com/kwpflash/kwpflash/go/cmd/shell"
)

func main() { cmd.Main() }
