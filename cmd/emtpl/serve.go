package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/emtpl"
	"github.com/vango-dev/emtpl/internal/config"
	"github.com/vango-dev/emtpl/internal/dev"
	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/metrics"
	"github.com/vango-dev/emtpl/pkg/middleware"
	"github.com/vango-dev/emtpl/pkg/server"
	"github.com/vango-dev/emtpl/pkg/store"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var (
		port      int
		host      string
		templates string
		storePath string
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the render server",
		Long: `Start the HTTP render server.

Endpoints:
  POST   /render             render a template or inline markup
  GET    /templates          list templates
  GET    /templates/{name}   show a parsed template
  GET    /snapshots/{name}   show a stored render
  GET    /live               websocket live render session
  GET    /metrics            Prometheus metrics

Examples:
  emtpl serve
  emtpl serve --port=8080 --templates=./views
  emtpl serve --store=renders.db
  emtpl serve --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if templates != "" {
				if cfg.Templates.Dir, err = filepath.Abs(templates); err != nil {
					return err
				}
			}
			if storePath != "" {
				cfg.Store.Path = storePath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var st *store.Store
			if p := cfg.StorePath(); p != "" {
				if st, err = store.Open(p); err != nil {
					return err
				}
				defer st.Close()
			}

			m := metrics.New()
			m.Init()
			eng, err := emtpl.New(emtpl.Config{
				File:    cfg,
				Store:   st,
				Metrics: m,
				Logger:  g.logger(cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}

			if watch {
				if cfg.Templates.Bucket != "" {
					return errors.New("X001").
						WithDetail("--watch requires a local template directory").
						WithSuggestion("Remove templates.bucket from " + config.ConfigFileName)
				}
				w := dev.NewWatcher(dev.WatcherConfig{
					Root:      cfg.TemplatesPath(),
					Extension: cfg.Templates.Extension,
				})
				w.OnChange(func(names []string) {
					eng.Invalidate(names...)
					eng.Logger().Info("templates changed", "names", names)
				})
				go w.Start(cmd.Context())
				defer w.Stop()
			}

			srv := server.New(eng, server.ConfigFrom(cfg), middleware.Prometheus())
			success(cmd.ErrOrStderr(), "serving on http://%s", cfg.ServerAddress())
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from emtpl.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from emtpl.json)")
	cmd.Flags().StringVar(&templates, "templates", "", "Template directory (default from emtpl.json)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload templates when their files change")
	cmd.Flags().StringVar(&storePath, "store", "", "Snapshot database (default from emtpl.json)")

	return cmd
}
