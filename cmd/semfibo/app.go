package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/c360studio/semstreams/pkg/retry"

	"github.com/c360studio/semfibo/agent"
	"github.com/c360studio/semfibo/audit"
	"github.com/c360studio/semfibo/config"
	"github.com/c360studio/semfibo/dispatch"
	"github.com/c360studio/semfibo/llm"
	"github.com/c360studio/semfibo/metric"
	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/planner"
)

// App wires the ontology store, planner, dispatcher and agent together.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metric.Metrics

	store      *ontology.Store
	client     *llm.Client
	planner    *planner.Planner
	dispatcher *dispatch.Dispatcher
	recorder   *audit.Recorder
	agent      *agent.Agent
	watcher    *ontology.Watcher
}

// loadConfig layers the config files and environment, then applies flags.
func loadConfig(flags *globalFlags, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.NewLoader(logger).Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.basePath != "" {
		cfg.Ontology.BasePath = flags.basePath
	}
	if flags.moduleSet != "" {
		cfg.Ontology.ModuleSet = flags.moduleSet
	}
	if flags.provider != "" {
		cfg.Model.Provider = flags.provider
	}
	if flags.endpoint != "" {
		cfg.Model.Endpoint = flags.endpoint
	}
	if flags.model != "" {
		cfg.Model.Name = flags.model
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewApp loads the configured module set and builds the question pipeline.
// A module set that fails to load is fatal here; later switches and reloads
// keep the previous graph instead.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: metric.New(),
	}

	a.store = ontology.NewStore(cfg.Ontology.BasePath, cfg.Sets(),
		ontology.WithStoreLogger(logger),
		ontology.WithOnSwap(a.metrics.SetGraph))
	if err := a.store.Load(ctx, cfg.Ontology.ModuleSet); err != nil {
		return nil, fmt.Errorf("load ontology: %w", err)
	}

	retryCfg := llm.DefaultRetryConfig()
	if cfg.Model.MaxAttempts > 0 {
		retryCfg = retry.DefaultConfig()
		retryCfg.MaxAttempts = cfg.Model.MaxAttempts
	}
	a.client = llm.NewClient(llm.Endpoint{
		Provider: cfg.Model.Provider,
		URL:      cfg.Model.Endpoint,
		Model:    cfg.Model.Name,
	},
		llm.WithTimeout(cfg.Model.Timeout),
		llm.WithRetryConfig(retryCfg),
		llm.WithLogger(logger))

	a.planner = planner.New(a.client, dispatch.Tools(),
		planner.WithLogger(logger),
		planner.WithTemperature(cfg.Model.Temperature),
		planner.WithObserver(a.metrics.RecordPlanner))

	a.dispatcher = dispatch.New(a.store,
		dispatch.WithLogger(logger),
		dispatch.WithMetrics(a.metrics))

	if err := a.openAudit(); err != nil {
		return nil, err
	}

	a.agent = agent.New(a.store, a.planner, a.dispatcher,
		agent.WithLogger(logger),
		agent.WithMetrics(a.metrics),
		agent.WithRecorder(a.recorder),
		agent.WithMultiStep(!cfg.Model.SingleStep))

	return a, nil
}

// openAudit builds the session log sinks. A NATS URL adds a publisher next
// to the file sink.
func (a *App) openAudit() error {
	ac := a.cfg.Audit
	if !ac.Enabled && ac.NATSURL == "" {
		return nil
	}

	var sinks audit.Multi
	if ac.Enabled {
		fs, err := audit.NewFileSink(ac.Path)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		sinks = append(sinks, fs)
	}
	if ac.NATSURL != "" {
		ns, err := audit.DialNATS(ac.NATSURL, ac.Subject)
		if err != nil {
			_ = sinks.Close()
			return fmt.Errorf("connect audit NATS: %w", err)
		}
		sinks = append(sinks, ns)
	}

	a.recorder = audit.NewRecorder(sinks, a.logger)
	a.logger.Info("Audit log enabled",
		"session", a.recorder.SessionID(),
		"path", ac.Path,
		"nats", ac.NATSURL)
	return nil
}

// StartWatcher reloads the current module set when its files change, until
// ctx is cancelled. It is a no-op unless ontology.watch is set.
func (a *App) StartWatcher(ctx context.Context) error {
	if !a.cfg.Ontology.Watch {
		return nil
	}
	files, err := ontology.ExpandModules(a.store.BasePath(), a.store.Current().Modules)
	if err != nil {
		return fmt.Errorf("watch ontology: %w", err)
	}
	w, err := ontology.NewWatcher(a.store, files, ontology.WatchConfig{Debounce: a.cfg.Ontology.Debounce}, a.logger)
	if err != nil {
		return fmt.Errorf("watch ontology: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watch ontology: %w", err)
	}
	a.watcher = w

	go func() {
		for ev := range w.Events() {
			a.metrics.RecordReload(ev.Err)
			if ev.Err != nil {
				a.logger.Warn("Ontology reload failed, keeping previous graph", "paths", ev.Paths, "error", ev.Err)
				continue
			}
			a.logger.Info("Ontology reloaded", "paths", ev.Paths)
		}
	}()
	return nil
}

// Close stops the watcher and flushes the audit sinks.
func (a *App) Close() error {
	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Stop())
	}
	errs = append(errs, a.recorder.Close())
	return errors.Join(errs...)
}
