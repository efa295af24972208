package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kevinwang15/cfgedit"
)

func newApplyCommand(a *app) *cobra.Command {
	var (
		apiKey  string
		baseURL string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "apply <kind>...",
		Short: "Write the API key and managed settings into one or more documents",
		Long: "Write the API key and managed settings into one or more documents.\n\n" +
			"Kinds: " + kindList() + ".\n" +
			"Provider and editor values come from the cfgedit settings file.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}
			u := cfgedit.Update{
				APIKey:   apiKey,
				BaseURL:  baseURL,
				Provider: a.settings.ProviderProfile(),
				Editor:   a.settings.EditorProfile(),
			}
			out := cmd.OutOrStdout()
			for _, k := range kinds {
				if dryRun {
					c, err := a.store.Plan(k, u)
					if err != nil {
						return err
					}
					printChange(out, c)
					continue
				}
				res, err := a.store.ApplyBasic(k, u)
				if err != nil {
					return err
				}
				printResult(out, res)
				a.log.Info("applied update", "kind", k, "path", res.Path, "api_key", maskAPIKey(apiKey))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key to write")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Base URL for the code assistant")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the diff without writing")
	return cmd
}

func newApplyAdvancedCommand(a *app) *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "apply-advanced <kind>",
		Short: "Merge a full replacement document into a document",
		Long: `Merge a full replacement document into a document.

Keys in the replacement win, keys missing from it are kept. The replacement is
JSON for JSON documents, TOML for agent-config and JSON with comments for
editor-settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := cfgedit.ParseKind(args[0])
			if err != nil {
				return err
			}
			text, err := readReplacement(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dryRun {
				c, err := a.store.PlanAdvanced(kind, text)
				if err != nil {
					return err
				}
				printChange(out, c)
				return nil
			}
			res, err := a.store.ApplyAdvanced(kind, text)
			if err != nil {
				return err
			}
			printResult(out, res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Replacement document, - for stdin")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the diff without writing")
	return cmd
}

func readReplacement(stdin io.Reader, file string) (string, error) {
	var (
		data []byte
		err  error
	)
	if file == "" || file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read replacement document: %w", err)
	}
	return string(data), nil
}

func printResult(w io.Writer, res cfgedit.Result) {
	switch {
	case !res.Written:
		fmt.Fprintf(w, "%s: %s is up to date\n", res.Kind, res.Path)
	case res.BackedUp:
		fmt.Fprintf(w, "%s: updated %s (backup saved)\n", res.Kind, res.Path)
	default:
		fmt.Fprintf(w, "%s: updated %s\n", res.Kind, res.Path)
	}
}
