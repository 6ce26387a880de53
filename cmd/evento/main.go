// Command evento runs the payments API and exposes one-shot helpers for
// resolving an invoice or tracking a pledge from the shell.
//
//	@title						Evento Payments API
//	@version					1.0
//	@description				Lightning invoices, notification dedup and pledge settlement tracking.
//	@BasePath					/v1
//	@securityDefinitions.apikey	EventoUser
//	@in							header
//	@name						X-Evento-User
package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "evento",
		Usage:   "Evento payments service",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "env-file", Usage: "dotenv files loaded before reading the environment", Value: cli.NewStringSlice(".env")},
			&cli.StringFlag{Name: "log-level", Usage: "debug|info|warn|error"},
			&cli.BoolFlag{Name: "log-pretty", Usage: "human readable console logs"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			invoiceCommand(),
			trackCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("evento exited")
	}
}
