package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinwang15/cfgedit"
)

func newShowCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <kind>",
		Short: "Print a document as JSON, YAML or TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := cfgedit.ParseKind(args[0])
			if err != nil {
				return err
			}
			v, ok, err := a.store.ReadCurrent(kind)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s does not exist yet\n", kind)
				return nil
			}
			switch output {
			case "json":
				fmt.Fprint(out, cfgedit.EncodeJSON(v))
			case "yaml":
				b, err := cfgedit.EncodeYAML(v)
				if err != nil {
					return err
				}
				out.Write(b)
			case "toml":
				t, _ := v.AsTable()
				s, err := cfgedit.EncodeTOML(t)
				if err != nil {
					return err
				}
				fmt.Fprint(out, s)
			default:
				return fmt.Errorf("unknown output format %q (want json, yaml or toml)", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: json, yaml or toml")
	return cmd
}
