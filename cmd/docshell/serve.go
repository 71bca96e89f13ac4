package main

import (
	"os/signal"
	"syscall"

	"github.com/dgallion1/docshell/internal/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docshell HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "override the configured port")
	serveCmd.Flags().String("root", "", "override the content root (directory or http(s) URL)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		cfg.ContentRoot = root
	}

	a, err := app.New(cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}
