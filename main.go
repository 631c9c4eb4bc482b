package main

import (
	"os"

	"github.com/emberstone/vitrine/cmd/serve"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "Vitrine CLI",
		Usage: "Run vitrine",
		Commands: []*cli.Command{
			serve.Command(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("Error while executing command")
	}
}
