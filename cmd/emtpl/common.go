package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/emtpl"
	"github.com/vango-dev/emtpl/internal/config"
	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/store"
)

// loadConfig loads --config, or the nearest emtpl.json, or defaults.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	if g.config == "" {
		return config.LoadOrDefault(".")
	}
	path := g.config
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, config.ConfigFileName)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// engine builds an Engine for cmd. When storePath is set, the snapshot
// store is opened and must be closed by the caller.
func (g *globalFlags) engine(cmd *cobra.Command, cfg *config.Config, storePath string) (*emtpl.Engine, *store.Store, error) {
	var st *store.Store
	if storePath != "" {
		var err error
		if st, err = store.Open(storePath); err != nil {
			return nil, nil, err
		}
	}
	eng, err := emtpl.New(emtpl.Config{
		File:   cfg,
		Store:  st,
		Logger: g.logger(cmd.ErrOrStderr()),
	})
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, nil, err
	}
	return eng, st, nil
}

// readMarkup reads a template file, or stdin for "-".
func readMarkup(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.New("X001").WithDetail("cannot read template " + path).Wrap(err)
	}
	return string(data), nil
}

// readState reads a YAML or JSON state file. An empty path is an empty
// state.
func readState(path string) (map[string]any, error) {
	state := map[string]any{}
	if path == "" {
		return state, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("X001").WithDetail("cannot read state " + path).Wrap(err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &state)
	default:
		err = yaml.Unmarshal(data, &state)
	}
	if err != nil {
		return nil, errors.New("X001").
			WithDetail("invalid state file " + path).
			WithSuggestion("State files hold one YAML or JSON object").
			Wrap(err)
	}
	return state, nil
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return badFormat(format)
}

func badFormat(format string) error {
	return errors.New("X001").WithDetail("unknown format " + format)
}
