package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/emtpl"
	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/render"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

type renderFlags struct {
	state     string
	template  string
	format    string
	pretty    bool
	snapshot  string
	storePath string
}

func renderCmd(g *globalFlags) *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [FILE]",
		Short: "Render a template against a state file",
		Long: `Render a template file ("-" for stdin), or a named template from the
configured template source, against a YAML or JSON state file.

With --snapshot, the render is diffed against the stored render of that
name and then replaces it, so node statuses show what changed since the
last run.

Formats:
  html   rendered HTML (default)
  json   the annotated tree as JSON
  yaml   the annotated tree as YAML

Examples:
  emtpl render page.html --state state.yaml
  emtpl render --template page --state state.json --format json
  emtpl render page.html --state next.yaml --snapshot page --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (f.template != "") {
				return errors.New("X001").
					WithDetail("exactly one of FILE and --template is required")
			}
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runRender(cmd, g, &f, file)
		},
	}

	cmd.Flags().StringVarP(&f.state, "state", "s", "", "State file (.yaml, .yml or .json)")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Render a named template from the template source")
	cmd.Flags().StringVarP(&f.format, "format", "f", "html", "Output format (html, json, yaml)")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Indent HTML output")
	cmd.Flags().StringVar(&f.snapshot, "snapshot", "", "Diff against and replace this stored render")
	cmd.Flags().StringVar(&f.storePath, "store", "", "Snapshot database (default from emtpl.json)")

	return cmd
}

func runRender(cmd *cobra.Command, g *globalFlags, f *renderFlags, file string) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	storePath := f.storePath
	if storePath == "" && f.snapshot != "" {
		storePath = cfg.StorePath()
	}
	if f.snapshot != "" && storePath == "" {
		return errors.New("X001").
			WithDetail("--snapshot needs a snapshot database").
			WithSuggestion("Pass --store or set store.path in emtpl.json")
	}

	eng, st, err := g.engine(cmd, cfg, storePath)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	ctx := cmd.Context()
	tree, err := loadTree(ctx, cmd, eng, file, f.template)
	if err != nil {
		return err
	}
	state, err := readState(f.state)
	if err != nil {
		return err
	}

	var prev *vdom.Element
	if f.snapshot != "" {
		if prev, err = st.Get(f.snapshot); err != nil {
			return err
		}
	}

	root, err := eng.Render(ctx, tree, prev, state, nil)
	if err != nil {
		return err
	}

	if f.snapshot != "" {
		rev, err := st.Put(f.snapshot, root)
		if err != nil {
			return err
		}
		success(cmd.ErrOrStderr(), "saved snapshot %s (rev %d)", f.snapshot, rev)
	}

	out := cmd.OutOrStdout()
	if f.format == "html" {
		if err := render.WriteHTML(out, root, render.HTMLOptions{Pretty: f.pretty}); err != nil {
			return err
		}
		if !f.pretty {
			fmt.Fprintln(out)
		}
		return nil
	}
	return encode(out, f.format, vdom.ToSnapshot(root))
}

// loadTree parses file, or loads the named template.
func loadTree(ctx context.Context, cmd *cobra.Command, eng *emtpl.Engine, file, template string) (*vdom.Element, error) {
	if template != "" {
		return eng.Template(ctx, template)
	}
	markup, err := readMarkup(cmd, file)
	if err != nil {
		return nil, err
	}
	return eng.Parse(ctx, markup)
}
