package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"tradingdesk/internal/config"
	"tradingdesk/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Logging)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(subcommands.HelpCommand(), "")
	commander.Register(subcommands.FlagsCommand(), "")
	commander.Register(&backtestCmd{cfg: cfg}, "trading")
	commander.Register(&accountCmd{cfg: cfg}, "trading")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
