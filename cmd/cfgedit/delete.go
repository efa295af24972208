package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinwang15/cfgedit"
)

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind>...",
		Short: "Delete documents written for the assistant or the agent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}
			report, err := a.store.DeleteTargets(kinds...)
			out := cmd.OutOrStdout()
			for _, p := range report.Deleted {
				fmt.Fprintf(out, "deleted %s\n", p)
			}
			for _, p := range report.AlreadyAbsent {
				fmt.Fprintf(out, "%s was already absent\n", p)
			}
			return err
		},
	}
}

func newPathsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "List where each document is looked for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, k := range cfgedit.Kinds() {
				resolved, _ := a.locator.Path(k)
				for _, p := range a.locator.Candidates(k) {
					mark := ""
					if p == resolved {
						mark = "  (selected)"
					}
					fmt.Fprintf(out, "%-20s %s%s\n", k, p, mark)
				}
			}
			return nil
		},
	}
}
