package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("ghostsim")

func main() {
	app := &cli.App{
		Name:  "ghostsim",
		Usage: "simulate withholding attacks against GHOST fork choice",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level of the simulator loggers",
			},
		},
		Before: func(c *cli.Context) error {
			return logging.SetLogLevelRegex("ghostsim.*", c.String("log-level"))
		},
		Commands: []*cli.Command{
			&runCmd,
			&sweepCmd,
			&scenariosCmd,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %+v\n", err)
		os.Exit(1)
	}
}
