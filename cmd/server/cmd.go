package main

import (
	"example.com/loupgarou/internal/app"
	"example.com/loupgarou/internal/config"
	"github.com/spf13/cobra"
)

func newCmd() *cobra.Command {
	cfg := config.Defaults()
	var envFile string

	cmd := &cobra.Command{
		Use:           "loupgarou",
		Short:         "Lobby and secret role distribution for Loup Garou games.",
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			return config.ApplyEnv(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			level, _ := config.ParseLevel(cfg.Log.Level)
			log := newLogger(cfg.Log.Format, level)
			log.Info("starting", "version", version, "env", cfg.Env)

			a, err := app.New(cmd.Context(), cfg, log, app.Options{Version: version})
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading LOUPGAROU_* variables")
	config.BindFlags(fs, &cfg)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("loupgarou {{.Version}}\n")

	return cmd
}
