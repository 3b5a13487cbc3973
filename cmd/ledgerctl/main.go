// Command ledgerctl runs valuation jobs and maintenance tasks without the HTTP server,
// so cron can drive the engines directly.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var configDir = flag.String("config", "./configs", "directory holding app.env")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range commands {
		commander.Register(c, "")
	}

	commander.ImportantFlag("config")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
