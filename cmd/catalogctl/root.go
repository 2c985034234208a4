package main

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/motorcat/internal/app"
	"github.com/JonMunkholm/motorcat/internal/config"
	"github.com/JonMunkholm/motorcat/internal/logging"
)

// cli carries state shared by subcommands after the root pre-run.
type cli struct {
	envFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Administer the vehicle catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newImportCmd(c),
		newPurgeCmd(c),
		newResolveCmd(c),
		newMigrateCmd(c),
	)
	return root
}

// init loads the dotenv file, configuration and logging. Logs go to stderr
// so command output on stdout stays clean.
func (c *cli) init(cmd *cobra.Command) error {
	if c.envFile != "" {
		if err := godotenv.Overload(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	app.ApplyCatalog(cfg.Catalog)

	c.logger = logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(c.logger)
	return nil
}

