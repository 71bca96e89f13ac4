package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Cross-check the section tree, the page manifest, and page headings",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	issues := a.Shell.Validate(cmd.Context())
	out := cmd.OutOrStdout()
	for _, issue := range issues {
		if issue.Href != "" {
			fmt.Fprintf(out, "%s\t%s\t%s\n", issue.Kind, issue.Href, issue.Message)
		} else {
			fmt.Fprintf(out, "%s\t-\t%s\n", issue.Kind, issue.Message)
		}
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d manifest issue(s)", len(issues))
	}
	fmt.Fprintln(out, "manifests are consistent")
	return nil
}
