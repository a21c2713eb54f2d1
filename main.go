package main

import (
	"context"
	"errors"
	"os"

	"sheet_manager/internal/app"
	"sheet_manager/internal/cli"

	"github.com/rs/zerolog/log"
)

func main() {
	app.SetupEnvironment()

	// Load configuration; required values are validated after flags are parsed
	config, err := app.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	root := cli.NewRootCommand(config, cli.GoogleConnector(config), os.Stdout)
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, cli.ErrFailed) {
			log.Error().Err(err).Msg("Command failed")
		}
		os.Exit(1)
	}
}
