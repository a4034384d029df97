// Package app wires configuration, logging, the plugin core and its host
// adapters into the two run modes of the binary: serving an editor over
// stdio, and one-shot counting of files.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/dshills/wordcount/internal/config"
	"github.com/dshills/wordcount/internal/config/watcher"
	"github.com/dshills/wordcount/internal/plugin"
	"github.com/dshills/wordcount/internal/rpc"
)

// Options configures the application. Non-empty flag values override the
// configuration file.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// LogLevel overrides logging.level.
	LogLevel string

	// Tokenizer overrides tokenizer.kind.
	Tokenizer string

	// Stderr receives logs when no log file is configured.
	// Defaults to os.Stderr.
	Stderr io.Writer
}

// Application owns the plugin and the components built from configuration.
type Application struct {
	mu sync.Mutex

	opts Options
	cfg  config.Config

	// editor holds the settings received in config_changed. They are
	// reapplied on top of every file reload.
	editor rpc.ConfigChange

	logger  *Logger
	logFile *os.File

	current *components
	plugin  *plugin.Plugin
	server  *rpc.Server
	watcher *watcher.Watcher

	shutdownOnce sync.Once
}

// New loads the configuration and builds the application.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	app.logger.Debug("configured: tokenizer=%s capitalize=%t", app.cfg.Tokenizer.Kind, app.cfg.Capitalize.Enabled)
	return app, nil
}

// Config returns the configuration in effect.
func (app *Application) Config() config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.cfg
}

// Logger returns the application's logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Plugin returns the plugin core.
func (app *Application) Plugin() *plugin.Plugin {
	return app.plugin
}

// Server returns the stdio protocol server.
func (app *Application) Server() *rpc.Server {
	return app.server
}

// RunStdio serves an editor on stdin and stdout until it shuts the plugin
// down or the connection closes.
func (app *Application) RunStdio(ctx context.Context) error {
	return app.run(ctx, app.server.ServeStdio)
}

// Serve is RunStdio over an arbitrary connection.
func (app *Application) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	return app.run(ctx, func(ctx context.Context) error {
		return app.server.Serve(ctx, rwc)
	})
}

func (app *Application) run(ctx context.Context, serve func(context.Context) error) error {
	if err := app.startWatcher(); err != nil {
		app.logger.Warn("config watcher disabled: %v", err)
	}

	app.logger.Info("serving editor")
	err := serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return NewOperationError("serve", "editor", err)
	}
	return nil
}

// Shutdown stops the config watcher, releases the tokenizer and closes the
// log file. It is safe to call more than once.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		app.mu.Lock()
		w := app.watcher
		app.watcher = nil
		app.mu.Unlock()
		if w != nil {
			w.Close()
		}

		m := app.plugin.Metrics().Snapshot()
		app.logger.WithComponent("plugin").Info(
			"refreshes=%d failed=%d avg=%s max=%s triggers=%d edits=%d transform_failures=%d uptime=%s",
			m.RefreshCount, m.RefreshFailures, m.RefreshAvg, m.RefreshMax,
			m.Triggers, m.EditsEmitted, m.TransformFailures, m.Uptime)

		app.mu.Lock()
		app.current.close()
		app.current = nil
		app.mu.Unlock()

		if app.logFile != nil {
			app.logFile.Close()
		}
	})
}
