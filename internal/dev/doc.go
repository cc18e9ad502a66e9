// Package dev provides development helpers for the render server.
//
// Watcher polls a template directory and reports which templates changed,
// so a running server can drop its cached parse of them:
//
//	w := dev.NewWatcher(dev.WatcherConfig{Root: "templates", Extension: ".html"})
//	w.OnChange(func(names []string) { eng.Invalidate(names...) })
//	go w.Start(ctx)
package dev
