package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/emtpl/internal/config"
	"github.com/vango-dev/emtpl/internal/errors"
)

const sampleTemplate = `<!DOCTYPE html>
<main class="{{ theme }}">
  <h1>Hello, {{ user.name }}</h1>
  <ul>
    <forEach data="items" item="item">
      <li key="item-">{{ item.label }}</li>
    </forEach>
  </ul>
  <p if="{{ empty }}">Nothing here yet.</p>
</main>
`

const sampleState = `theme: light
user:
  name: World
empty: false
items:
  - id: 1
    label: first
  - id: 2
    label: second
`

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create emtpl.json and a sample template",
		Long: `Create emtpl.json with default settings, a templates directory with
index.html and a matching state.yaml.

Examples:
  emtpl init
  emtpl init ./site
  emtpl render -t index --state state.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := runInit(dir, force); err != nil {
				return err
			}
			success(cmd.ErrOrStderr(), "created %s", filepath.Join(dir, config.ConfigFileName))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")

	return cmd
}

func runInit(dir string, force bool) error {
	if config.Exists(dir) && !force {
		return errors.New("X001").
			WithDetail(config.ConfigFileName + " already exists in " + dir).
			WithSuggestion("Use --force to overwrite it")
	}

	cfg := config.New()
	templatesDir := filepath.Join(dir, cfg.Templates.Dir)
	if err := os.MkdirAll(templatesDir, 0755); err != nil {
		return errors.New("X001").Wrap(err)
	}
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return err
	}

	files := map[string]string{
		filepath.Join(templatesDir, "index"+cfg.Templates.Extension): sampleTemplate,
		filepath.Join(dir, "state.yaml"):                             sampleState,
	}
	for path, content := range files {
		if _, err := os.Stat(path); err == nil && !force {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return errors.New("X001").Wrap(err)
		}
	}
	return nil
}
