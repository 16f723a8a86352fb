package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jason-s-yu/towerofsins/internal/config"
	"github.com/jason-s-yu/towerofsins/internal/deck"
)

type rootOptions struct {
	envFile string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "towerd",
		Short:         "Tower of Sins session engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			if err := cfg.ConfigureLogging(); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "dotenv file to load before reading TOWER_* variables")

	cmd.AddCommand(newSimulateCmd(opts))
	cmd.AddCommand(newThemesCmd(opts))
	return cmd
}

// loadCatalogue returns the built-in themes plus TOWER_THEMES_FILE, if set.
func loadCatalogue(cfg config.Config) (*deck.Catalogue, error) {
	cat, err := deck.Default()
	if err != nil {
		return nil, err
	}
	if cfg.ThemesFile != "" {
		if err := cat.LoadFile(cfg.ThemesFile); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func newThemesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the available deck themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalogue(opts.cfg)
			if err != nil {
				return err
			}
			for _, id := range cat.IDs() {
				t, _ := cat.Theme(id)
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", t.ID, t.Name)
			}
			return nil
		},
	}
}
