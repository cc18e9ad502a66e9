package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// Change is one reported difference between two renders.
type Change struct {
	Status  string         `json:"status" yaml:"status"`
	Path    string         `json:"path" yaml:"path"`
	Node    string         `json:"node" yaml:"node"`
	Set     map[string]any `json:"set,omitempty" yaml:"set,omitempty"`
	Removed []string       `json:"removed,omitempty" yaml:"removed,omitempty"`
	Text    string         `json:"text,omitempty" yaml:"text,omitempty"`
}

// statusText marks text nodes whose content changed. Text nodes carry no
// attributes, so the diff status alone does not show it.
const statusText = "TEXT"

func diffCmd(g *globalFlags) *cobra.Command {
	var oldState, newState, template, format string

	cmd := &cobra.Command{
		Use:   "diff [FILE]",
		Short: "Show what changes between renders of two states",
		Long: `Render a template against --old, render it again against --new and list
every node the second render changes.

Examples:
  emtpl diff list.html --old before.yaml --new after.yaml
  emtpl diff --template list --old a.json --new b.json --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (template != "") {
				return errors.New("X001").
					WithDetail("exactly one of FILE and --template is required")
			}
			if newState == "" {
				return errors.New("X001").WithDetail("--new is required")
			}
			file := ""
			if len(args) == 1 {
				file = args[0]
			}

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			eng, _, err := g.engine(cmd, cfg, "")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			tree, err := loadTree(ctx, cmd, eng, file, template)
			if err != nil {
				return err
			}

			before, err := readState(oldState)
			if err != nil {
				return err
			}
			after, err := readState(newState)
			if err != nil {
				return err
			}

			first, err := eng.Render(ctx, tree, nil, before, nil)
			if err != nil {
				return err
			}
			next, err := eng.Render(ctx, tree, first, after, nil)
			if err != nil {
				return err
			}

			changes := collectChanges(next)
			if format == "text" {
				return writeChanges(cmd, changes)
			}
			return encode(cmd.OutOrStdout(), format, changes)
		},
	}

	cmd.Flags().StringVar(&oldState, "old", "", "State of the first render (empty state if unset)")
	cmd.Flags().StringVar(&newState, "new", "", "State of the second render")
	cmd.Flags().StringVarP(&template, "template", "t", "", "Use a named template from the template source")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, yaml)")

	return cmd
}

// collectChanges lists the changed nodes of root in document order. The
// subtree of an appended or deleted node is reported by the node alone.
func collectChanges(root *vdom.Element) []Change {
	var changes []Change
	vdom.Walk(root, func(n *vdom.Element) bool {
		for _, d := range n.DeleteElements {
			changes = append(changes, Change{
				Status: vdom.StatusDelete.String(),
				Path:   pathString(d.Path),
				Node:   nodeName(d),
			})
		}
		if n == root {
			return true
		}

		c := Change{Status: n.Status.String(), Path: pathString(n.Path), Node: nodeName(n)}
		switch {
		case n.Status == vdom.StatusNormal && n.TextChanged:
			c.Status = statusText
			c.Text = n.InnerHTML
			changes = append(changes, c)
		case n.Status == vdom.StatusNormal:
		default:
			c.Set = n.ChangeAttrs
			c.Removed = n.DeleteAttrs
			if n.IsText() {
				c.Text = n.InnerHTML
			}
			changes = append(changes, c)
		}
		return n.Status != vdom.StatusAppend && n.Status != vdom.StatusDelete
	})
	return changes
}

func writeChanges(cmd *cobra.Command, changes []Change) error {
	out := cmd.OutOrStdout()
	if len(changes) == 0 {
		_, err := fmt.Fprintln(out, "no changes")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tPATH\tNODE\tDETAIL")
	for _, c := range changes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Status, c.Path, c.Node, detail(c))
	}
	return tw.Flush()
}

func detail(c Change) string {
	var parts []string
	keys := make([]string, 0, len(c.Set))
	for k := range c.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, fmt.Sprint(c.Set[k])))
	}
	for _, k := range c.Removed {
		parts = append(parts, "-"+k)
	}
	if c.Text != "" {
		parts = append(parts, strconv.Quote(c.Text))
	}
	return strings.Join(parts, " ")
}

func nodeName(n *vdom.Element) string {
	switch {
	case n.IsText():
		return "#text"
	case n.IsComment():
		return "#comment"
	}
	return "<" + n.TagName + ">"
}

func pathString(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}
