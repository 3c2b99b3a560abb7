package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mocksi/webforge/activity"
	"github.com/mocksi/webforge/analysis"
	"github.com/mocksi/webforge/browser"
	"github.com/mocksi/webforge/config"
	"github.com/mocksi/webforge/engine"
	"github.com/mocksi/webforge/httpapi"
	"github.com/mocksi/webforge/inference"
	"github.com/mocksi/webforge/model"
	"github.com/mocksi/webforge/storage"
	"github.com/mocksi/webforge/workflow"
)

// App wires together all components.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	// NATS
	embeddedServer *server.Server
	natsConn       *nats.Conn
	js             jetstream.JetStream

	// Components
	registry   storage.Registry
	engine     *engine.Engine
	worker     *engine.Worker
	httpServer *http.Server
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, logger: logger}, nil
}

// Start initializes and starts all components.
func (a *App) Start(ctx context.Context) error {
	if err := a.startNATS(); err != nil {
		return fmt.Errorf("start NATS: %w", err)
	}

	registry, err := storage.NewKVStore(ctx, a.js, a.cfg.Tasks.TTL)
	if err != nil {
		return fmt.Errorf("initialize task registry: %w", err)
	}
	a.registry = registry

	eng, err := engine.New(ctx, a.js, registry, a.logger)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	a.engine = eng

	browserClient := a.buildBrowserClient()
	inferenceClient := a.buildInferenceClient()
	analyzer := analysis.New(inferenceClient, analysis.WithLogger(a.logger))
	activities := activity.New(browserClient, analyzer, activity.WithLogger(a.logger))
	pipelines := workflow.New(activities, a.logger)

	a.worker = engine.NewWorker(a.js, registry, pipelines, a.logger)
	if err := a.worker.Start(ctx); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	api := httpapi.New(eng,
		httpapi.WithLogger(a.logger),
		httpapi.WithBrowser(browserClient),
		httpapi.WithInference(inferenceClient),
		httpapi.WithReadiness(func() bool {
			return a.natsConn != nil && a.natsConn.IsConnected()
		}),
	)

	a.httpServer = &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: api.Handler(),
	}
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server stopped", "error", err)
		}
	}()

	return nil
}

func (a *App) startNATS() error {
	if a.cfg.NATS.URL != "" && !a.cfg.NATS.Embedded {
		a.logger.Info("Connecting to NATS", "url", a.cfg.NATS.URL)
		conn, err := nats.Connect(a.cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		a.natsConn = conn
	} else {
		a.logger.Info("Starting embedded NATS server")
		opts := &server.Options{
			Port:      -1, // Random available port
			JetStream: true,
			NoLog:     true,
			NoSigs:    true,
		}

		ns, err := server.NewServer(opts)
		if err != nil {
			return fmt.Errorf("create embedded NATS server: %w", err)
		}

		go ns.Start()

		if !ns.ReadyForConnections(5 * time.Second) {
			ns.Shutdown()
			return fmt.Errorf("embedded NATS server failed to start")
		}
		a.embeddedServer = ns

		conn, err := nats.Connect(ns.ClientURL())
		if err != nil {
			ns.Shutdown()
			return fmt.Errorf("connect to embedded NATS: %w", err)
		}
		a.natsConn = conn
	}

	js, err := jetstream.New(a.natsConn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	a.js = js

	return nil
}

// buildBrowserClient returns nil when no credentials are configured;
// browser-backed pipelines then report the missing dependency.
func (a *App) buildBrowserClient() *browser.Client {
	if a.cfg.Browser.APIKey == "" {
		a.logger.Warn("Browser provider credentials not configured, browser pipelines disabled")
		return nil
	}
	return browser.NewClient(browser.Config{
		APIKey:    a.cfg.Browser.APIKey,
		ProjectID: a.cfg.Browser.ProjectID,
		BaseURL:   a.cfg.Browser.BaseURL,
	}, browser.WithLogger(a.logger))
}

// buildInferenceClient always returns a client; without a token it
// reports unconfigured and analysis runs rule-based only.
func (a *App) buildInferenceClient() *inference.Client {
	opts := []inference.ClientOption{inference.WithLogger(a.logger)}
	if a.cfg.Inference.BaseURL != "" {
		opts = append(opts, inference.WithBaseURL(a.cfg.Inference.BaseURL))
	}
	if a.cfg.Inference.Token == "" {
		a.logger.Warn("Inference token not configured, analysis will be rule-based")
	}
	return inference.NewClient(model.NewDefaultRegistry(), a.cfg.Inference.Token, opts...)
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown(timeout time.Duration) {
	a.logger.Info("Shutting down")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Warn("HTTP shutdown incomplete", "error", err)
		}
		cancel()
	}

	if a.worker != nil {
		a.worker.Stop()
	}

	if a.natsConn != nil {
		a.natsConn.Drain()
		a.natsConn.Close()
	}

	if a.embeddedServer != nil {
		a.embeddedServer.Shutdown()
		a.embeddedServer.WaitForShutdown()
	}
}
