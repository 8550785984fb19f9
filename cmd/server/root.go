package main

import (
	"github.com/dmitrijs2005/authkeeper/internal/server"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the authkeeper server. Flag
// parsing is left to config.LoadConfig so that defaults, the JSON file and
// flags are layered in one place.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authkeeper-server",
		Short: "authkeeper credential server",
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "serve [flags]",
		Short:              "Apply migrations and start the HTTP API",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(args)
			if err != nil {
				return err
			}

			app, err := server.NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			return app.Run(cmd.Context())
		},
	}
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "migrate [flags]",
		Short:              "Run database migrations",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(args)
			if err != nil {
				return err
			}

			app, err := server.NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Migrate(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	}
}
