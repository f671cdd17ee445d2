package main

import (
	"os"

	"github.com/alecthomas/kong"

	"pomotaro/cmd/pomotaro/commands"
)

var version = "dev"

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("pomotaro"),
		kong.Description("A Pomodoro timer and study tracker for the terminal."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	err := parser.Run(&commands.Global{Out: os.Stdout}, cli)
	parser.FatalIfErrorf(err)
}
