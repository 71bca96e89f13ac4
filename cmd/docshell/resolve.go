package main

import (
	"fmt"

	"github.com/dgallion1/docshell/internal/route"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <fragment>",
	Short: "Print the page a URL fragment resolves to",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().Bool("render", false, "print the rendered content instead of the href")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if render, _ := cmd.Flags().GetBool("render"); render {
		view := a.Shell.Navigate(cmd.Context(), args[0])
		fmt.Fprintln(out, view.HTML)
		return nil
	}

	f := route.Parse(args[0])
	href, ok := route.Resolve(a.Shell.Manifests().Pages, f)
	if !ok {
		return fmt.Errorf("fragment %q resolves to no page", args[0])
	}
	fmt.Fprintln(out, href)
	return nil
}
