package app

import (
	"fmt"
	"os"

	"github.com/dshills/wordcount/internal/capitalize"
	"github.com/dshills/wordcount/internal/config"
	"github.com/dshills/wordcount/internal/host"
	"github.com/dshills/wordcount/internal/plugin"
	"github.com/dshills/wordcount/internal/rpc"
	"github.com/dshills/wordcount/internal/stats"
	"github.com/dshills/wordcount/internal/tokenize"
)

// components is what one configuration produces. Reloads build a new set
// and release the old one.
type components struct {
	engine    *stats.Engine
	transform *capitalize.Transform // nil when capitalization is disabled
	tokenizer tokenize.Tokenizer
}

// buildComponents creates the engine and transform described by cfg.
func buildComponents(cfg config.Config) (*components, error) {
	tok, err := tokenize.New(cfg.Tokenizer.Kind, tokenize.Options{Script: cfg.Tokenizer.Script})
	if err != nil {
		return nil, err
	}
	align, err := host.ParseAlignment(cfg.Status.Alignment)
	if err != nil {
		release(tok)
		return nil, err
	}

	c := &components{
		engine:    stats.NewEngine(stats.WithTokenizer(tok), stats.WithAlignment(align)),
		tokenizer: tok,
	}
	if cfg.Capitalize.Enabled {
		c.transform = capitalize.New(cfg.EditOptions())
	}
	return c, nil
}

// close releases resources held by the tokenizer.
func (c *components) close() {
	if c != nil {
		release(c.tokenizer)
	}
}

func release(t tokenize.Tokenizer) {
	if l, ok := t.(*tokenize.Lua); ok {
		l.Close()
	}
}

// bootstrapper initializes the application's components in dependency
// order, cleaning up what was already created if a step fails.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{app: app, initOrder: make([]string, 0, 4)}
}

func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"config", b.initConfig},
		{"logger", b.initLogger},
		{"components", b.initComponents},
		{"plugin", b.initPlugin},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			b.cleanup()
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

func (b *bootstrapper) initConfig() error {
	cfg, err := b.app.loadConfig()
	if err != nil {
		return err
	}
	b.app.cfg = cfg
	return nil
}

func (b *bootstrapper) initLogger() error {
	cfg := b.app.cfg
	lc := DefaultLoggerConfig()
	lc.Level = ParseLogLevel(cfg.Logging.Level)
	if b.app.opts.Stderr != nil {
		lc.Output = b.app.opts.Stderr
	}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		b.app.logFile = f
		lc.Output = f
	}
	b.app.logger = NewLogger(lc)
	return nil
}

func (b *bootstrapper) initComponents() error {
	c, err := buildComponents(b.app.cfg)
	if err != nil {
		return err
	}
	b.app.current = c
	return nil
}

func (b *bootstrapper) initPlugin() error {
	app := b.app
	app.plugin = plugin.New(
		plugin.WithEngine(app.current.engine),
		plugin.WithTransform(app.current.transform),
		plugin.WithSink(ReportSink(app.logger.WithComponent("plugin"))),
	)
	app.server = rpc.NewServer(app.plugin,
		rpc.WithLogger(app.logger.WithComponent("rpc")),
		rpc.WithConfigFunc(app.applyEditorConfig),
		rpc.WithTrafficLog(app.logger.Level() == LogLevelDebug),
	)
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "components":
			b.app.current.close()
			b.app.current = nil
		case "logger":
			if b.app.logFile != nil {
				b.app.logFile.Close()
				b.app.logFile = nil
			}
		}
	}
}
