package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/emtpl/pkg/vdom"
)

func parseCmd(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a template and print its tree",
		Long: `Parse a template file ("-" for stdin) and print the resulting tree.

Formats:
  json     the tree as JSON (default)
  yaml     the tree as YAML
  markup   the tree serialized back to markup

Examples:
  emtpl parse page.html
  emtpl parse --format yaml page.html
  cat page.html | emtpl parse -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			eng, _, err := g.engine(cmd, cfg, "")
			if err != nil {
				return err
			}
			markup, err := readMarkup(cmd, args[0])
			if err != nil {
				return err
			}
			tree, err := eng.Parse(cmd.Context(), markup)
			if err != nil {
				return err
			}

			if format == "markup" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), vdom.InnerMarkup(tree))
				return err
			}
			return encode(cmd.OutOrStdout(), format, vdom.ToSnapshot(tree))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml, markup)")

	return cmd
}
