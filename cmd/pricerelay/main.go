package main

import (
	"fmt"
	"os"

	"pricerelay/internal/app"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var version = "dev"

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "pricerelay"
	cliApp.Usage = "price oracle relay with a rate store, proxy and price cache"
	cliApp.Version = version

	cliApp.Writer = os.Stdout
	cliApp.ErrWriter = os.Stderr

	cliApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Value:  "config.yaml",
			Usage:  "configuration `FILE`",
			EnvVar: "PRICERELAY_CONFIG",
		},
		cli.StringFlag{
			Name:  "log-level, l",
			Value: "",
			Usage: "override the configured `LEVEL` [debug|info|warn|error]",
		},
	}
	cliApp.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "deploy the contracts and serve the HTTP API",
			Action: runServe,
		},
		{
			Name:   "migrate",
			Usage:  "apply postgres migrations and exit",
			Action: runMigrate,
		},
	}
	cliApp.Action = runServe

	if err := cliApp.Run(os.Args); err != nil {
		logrus.WithError(err).Error("pricerelay terminated")
		os.Exit(1)
	}
}

func runServe(c *cli.Context) error {
	return app.Run(c.GlobalString("config"), c.GlobalString("log-level"))
}

func runMigrate(c *cli.Context) error {
	if err := app.Migrate(c.GlobalString("config")); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(c.App.Writer, "migrations applied")
	return nil
}
