package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/wordcount/internal/config"
	"github.com/dshills/wordcount/internal/config/watcher"
	"github.com/dshills/wordcount/internal/rpc"
)

// loadConfig reads the configuration file and environment, then applies
// the flag overrides.
func (app *Application) loadConfig() (config.Config, error) {
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return cfg, NewOperationError("load config", app.opts.ConfigPath, err)
	}
	if app.opts.LogLevel != "" {
		cfg.Logging.Level = app.opts.LogLevel
	}
	if app.opts.Tokenizer != "" {
		cfg.Tokenizer.Kind = app.opts.Tokenizer
	}
	if err := cfg.Validate(); err != nil {
		return cfg, NewOperationError("validate config", app.opts.ConfigPath, err)
	}
	return cfg, nil
}

// applyConfig rebuilds the components for cfg and swaps them into the
// plugin. Must run on the dispatch goroutine in plugin mode.
func (app *Application) applyConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	app.mu.Lock()
	old := app.current
	app.cfg = cfg
	app.current = c
	app.mu.Unlock()

	app.plugin.Reconfigure(c.engine, c.transform)
	app.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))
	old.close()
	return nil
}

// reloadFile re-reads the configuration file and refreshes every view.
// Invalid files are logged and the running configuration is kept.
func (app *Application) reloadFile(ctx context.Context) error {
	log := app.logger.WithComponent("config")

	cfg, err := app.loadConfig()
	if err != nil {
		log.Warn("keeping current configuration: %v", err)
		return nil
	}
	app.mu.Lock()
	cfg = withEditorSettings(cfg, app.editor)
	app.mu.Unlock()
	if cfg == app.Config() {
		log.Debug("configuration unchanged")
		return nil
	}
	if err := app.applyConfig(cfg); err != nil {
		log.Warn("keeping current configuration: %v", err)
		return nil
	}
	log.Info("reloaded %s", app.opts.ConfigPath)
	return app.server.RefreshAll(ctx)
}

// applyEditorConfig applies settings sent by the editor in config_changed.
// Accepted settings are remembered so a later file reload keeps them.
func (app *Application) applyEditorConfig(_ context.Context, change rpc.ConfigChange) (bool, error) {
	cfg := withEditorSettings(app.Config(), change)
	if cfg == app.Config() {
		app.rememberEditorSettings(change)
		return false, nil
	}
	if err := app.applyConfig(cfg); err != nil {
		return false, fmt.Errorf("editor settings: %w", err)
	}
	app.rememberEditorSettings(change)
	app.logger.WithComponent("config").Info("editor settings applied: tokenizer=%s capitalize=%t",
		cfg.Tokenizer.Kind, cfg.Capitalize.Enabled)
	return true, nil
}

func (app *Application) rememberEditorSettings(change rpc.ConfigChange) {
	app.mu.Lock()
	defer app.mu.Unlock()
	if change.Tokenizer != "" {
		app.editor.Tokenizer = change.Tokenizer
	}
	if change.Capitalize != nil {
		enabled := *change.Capitalize
		app.editor.Capitalize = &enabled
	}
}

// withEditorSettings returns cfg with the editor's settings applied.
func withEditorSettings(cfg config.Config, change rpc.ConfigChange) config.Config {
	if change.Tokenizer != "" {
		cfg.Tokenizer.Kind = strings.ToLower(change.Tokenizer)
	}
	if change.Capitalize != nil {
		cfg.Capitalize.Enabled = *change.Capitalize
	}
	return cfg
}

// startWatcher reloads the configuration whenever its file changes. The
// reload is queued on the server's dispatch goroutine so it never races
// with editor events.
func (app *Application) startWatcher() error {
	if app.opts.ConfigPath == "" {
		return nil
	}
	log := app.logger.WithComponent("config")

	w, err := watcher.New(app.opts.ConfigPath,
		func(ev watcher.Event) {
			log.Debug("%s %s", ev.Op, ev.Path)
			app.server.Enqueue("reload config", app.reloadFile)
		},
		watcher.WithErrorHandler(func(err error) {
			log.Warn("watcher: %v", err)
		}),
	)
	if err != nil {
		return err
	}

	app.mu.Lock()
	app.watcher = w
	app.mu.Unlock()
	return nil
}
