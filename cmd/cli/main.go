package main

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"os"
)

func main() {
	config.Init("cli")

	app := &cli.App{
		Name:  "marketplace",
		Usage: "Operate the marketplace settlement engine",
		Commands: []*cli.Command{
			{
				Name:      "scenario",
				Usage:     "Run a settlement scenario (a-e, or all) against an in-memory market",
				ArgsUsage: "<name>",
				Action:    runScenario,
			},
			{
				Name:   "serve",
				Usage:  "Serve the query api over an in-memory market seeded with every scenario",
				Action: serve,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Value: config.Get().Api.Port, Usage: "Port to listen on"},
				},
			},
			{
				Name:   "listen",
				Usage:  "Print marketplace events published to NATS",
				Action: listen,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "item", Value: "*", Usage: "Event subject to subscribe to, e.g. ItemSold"},
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start CLI")
	}
}
