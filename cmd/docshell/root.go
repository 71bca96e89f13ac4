package main

import (
	"log/slog"
	"os"

	"github.com/dgallion1/docshell/internal/app"
	"github.com/dgallion1/docshell/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docshell",
	Short: "Serve a manifest-driven documentation shell",
	Long: `docshell serves a single-page documentation viewer. It loads a section
tree and a page manifest from a content root, routes on URL fragments of
the form module--page--section, and renders numbered page fragments next
to a generated sidebar.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "docshell.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgFile)
}

func newLogger(cfg config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadApp builds the app and loads its manifests.
func loadApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, newLogger(cfg))
	if err != nil {
		return nil, err
	}
	a.Shell.Reload(cmd.Context())
	return a, nil
}
