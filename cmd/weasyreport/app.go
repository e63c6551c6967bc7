package main

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	weasyreport "github.com/alnah/go-weasyreport"
	"github.com/alnah/go-weasyreport/internal/config"
	"github.com/alnah/go-weasyreport/internal/hints"
	"github.com/alnah/go-weasyreport/internal/logging"
	"github.com/alnah/go-weasyreport/internal/paramstore"
)

// app holds what every store-backed command needs: the loaded config, a
// logger and the parameter store.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	logCloser io.Closer
	store     *paramstore.SQLite
}

// loadConfig resolves the config from the flag, then WEASYREPORT_CONFIG,
// then defaults, and applies environment overrides.
func loadConfig(name string, env *Environment) (*config.Config, error) {
	if name == "" {
		name = env.Getenv(config.EnvConfig)
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			var nf *config.NotFoundError
			if errors.As(err, &nf) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(nf.Tried))
			}
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(env.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads config, builds the logger and opens the store.
func newApp(flags commonFlags, env *Environment) (*app, error) {
	cfg, err := loadConfig(flags.config, env)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	switch {
	case flags.verbose:
		logCfg.Level = "debug"
	case flags.quiet:
		logCfg.Level = "error"
	}
	logger, closer, err := logging.New(logCfg, logging.Streams{Stdout: env.Stdout, Stderr: env.Stderr})
	if err != nil {
		return nil, err
	}

	store, err := paramstore.OpenSQLite(cfg.Store.Path, paramstore.DefaultOptions())
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("%w: %v%s", ErrOpenStore, err, hints.ForStore(cfg.Store.Path))
	}

	return &app{cfg: cfg, logger: logger, logCloser: closer, store: store}, nil
}

// Close flushes the logger and closes the store.
func (a *app) Close() {
	_ = a.logger.Sync()
	_ = a.store.Close()
	_ = a.logCloser.Close()
}

// reporter builds a Reporter from the configured backends.
func (a *app) reporter(env *Environment) (*weasyreport.Reporter, error) {
	engine, fallback := env.Backends(a.cfg, a.logger)

	opts := []weasyreport.Option{
		weasyreport.WithParamStore(a.store),
		weasyreport.WithLogger(a.logger),
		weasyreport.WithModuleResolver(weasyreport.NewMapResolver(a.cfg.Reports)),
		weasyreport.WithWorkers(weasyreport.ResolvePoolSize(a.cfg.Engine.Workers)),
	}
	if engine != nil {
		opts = append(opts, weasyreport.WithEngine(engine))
	}
	if fallback != nil {
		opts = append(opts, weasyreport.WithFallback(fallback))
	}
	return weasyreport.NewReporter(opts...)
}

// defaultBackends builds the configured engine and the wkhtmltopdf fallback.
// Missing binaries are logged with an install hint and left nil.
func defaultBackends(cfg *config.Config, logger *zap.Logger) (weasyreport.Engine, weasyreport.Renderer) {
	var engine weasyreport.Engine
	switch cfg.Engine.Name {
	case config.EngineChrome:
		// One browser per worker: a ChromeEngine renders one page at a time.
		chromeCfg := &weasyreport.ChromeConfig{
			BinaryPath: cfg.Engine.ChromeBin,
			NoSandbox:  cfg.Engine.NoSandbox,
			Logger:     logger,
		}
		engine = weasyreport.NewEnginePool(weasyreport.ResolvePoolSize(cfg.Engine.Workers), func() (weasyreport.Engine, error) {
			return weasyreport.NewChromeEngine(chromeCfg), nil
		})
	default:
		wp, err := weasyreport.NewWeasyPrintEngine(&weasyreport.WeasyPrintConfig{
			BinaryPath:          cfg.Engine.WeasyPrintBin,
			PresentationalHints: cfg.Engine.PresentationalHints,
			Logger:              logger,
		})
		if err != nil {
			logger.Warn(err.Error() + hints.ForEngineNotFound("weasyprint"))
		} else {
			engine = wp
		}
	}

	var fallback weasyreport.Renderer
	if !cfg.Fallback.Disabled {
		wk, err := weasyreport.NewWkhtmltopdfRenderer(&weasyreport.WkhtmltopdfConfig{
			BinaryPath: cfg.Fallback.WkhtmltopdfBin,
			TempDir:    cfg.Fallback.TempDir,
			DPI:        cfg.Fallback.DPI,
			Logger:     logger,
		})
		if err != nil {
			logger.Warn(err.Error() + hints.ForEngineNotFound("wkhtmltopdf"))
		} else {
			fallback = wk
		}
	}

	return engine, fallback
}
