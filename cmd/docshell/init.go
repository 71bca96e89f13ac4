package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/docshell/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	initCmd.Flags().String("root", "", "content root to record in the config")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(cfgFile); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}

	cfg := config.Default()
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		cfg.ContentRoot = root
	}
	if err := cfg.Save(cfgFile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgFile)
	return nil
}
