package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrebq/packbox/cmd/packbox/serve"
	"github.com/andrebq/packbox/cmd/packbox/users"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "packbox",
		Usage: "Keep track of what went into each box",
		Commands: []*cli.Command{
			serve.Cmd(),
			users.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
