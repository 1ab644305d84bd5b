package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/strixlab/patrol/config"
	"github.com/strixlab/patrol/internal/adapters/bytes"
	"github.com/strixlab/patrol/internal/adapters/katalogus"
	"github.com/strixlab/patrol/internal/adapters/octopoes"
	"github.com/strixlab/patrol/internal/adapters/rabbit"
	"github.com/strixlab/patrol/internal/adapters/upstream"
	"github.com/strixlab/patrol/internal/core"
	httpx "github.com/strixlab/patrol/internal/http"
)

// Startup readiness: each dependency gets this many pings before the
// process gives up and exits.
const (
	readinessAttempts = 30
	readinessInterval = 2 * time.Second
)

// Connectors groups the upstream service clients and the event broker.
type Connectors struct {
	Catalogue *katalogus.Service
	Inventory *octopoes.Service
	BlobStore *bytes.Service
	Broker    *rabbit.Broker

	// clients are the raw HTTP clients behind the REST connectors, kept
	// for readiness polling and health checks.
	clients []*upstream.Client
}

// ConnectorsOptions groups dependencies for BuildConnectors.
type ConnectorsOptions struct {
	Config *config.AppConfig
	Cache  core.CacheRepository
	Logger *slog.Logger
}

// BuildConnectors constructs the three REST connectors and the AMQP broker
// from configuration. No connections are made here; the first use (or
// WaitForDependencies) connects.
func BuildConnectors(opts ConnectorsOptions) (*Connectors, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.AppConfig{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	katalogusClient, err := newUpstreamClient("katalogus", cfg.Katalogus, logger)
	if err != nil {
		return nil, err
	}
	octopoesClient, err := newUpstreamClient("octopoes", cfg.Octopoes, logger)
	if err != nil {
		return nil, err
	}
	bytesClient, err := newUpstreamClient("bytes", cfg.Bytes.UpstreamConfig, logger)
	if err != nil {
		return nil, err
	}

	broker, err := rabbit.NewBroker(rabbit.BrokerOptions{
		URI:    cfg.Broker.URI,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build broker: %w", err)
	}

	return &Connectors{
		Catalogue: katalogus.NewService(katalogus.ServiceOptions{
			Client:    katalogusClient,
			Cache:     opts.Cache,
			PluginTTL: cfg.Cache.PluginTTL,
			Logger:    logger,
		}),
		Inventory: octopoes.NewService(octopoes.ServiceOptions{
			Client: octopoesClient,
			Logger: logger,
		}),
		BlobStore: bytes.NewService(bytes.ServiceOptions{
			Client:   bytesClient,
			Username: cfg.Bytes.Username,
			Password: cfg.Bytes.Password,
			Logger:   logger,
		}),
		Broker:  broker,
		clients: []*upstream.Client{katalogusClient, octopoesClient, bytesClient},
	}, nil
}

func newUpstreamClient(name string, cfg config.UpstreamConfig, logger *slog.Logger) (*upstream.Client, error) {
	client, err := upstream.NewClient(upstream.ClientOptions{
		Name:         name,
		BaseURL:      cfg.URL,
		Timeout:      cfg.Timeout,
		RetryLimit:   cfg.RetryLimit,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build %s client: %w", name, err)
	}
	return client, nil
}

// Checks exposes every dependency's health probe to the control API.
func (c *Connectors) Checks() []httpx.DependencyChecker {
	checks := make([]httpx.DependencyChecker, 0, len(c.clients)+1)
	for _, client := range c.clients {
		checks = append(checks, client)
	}
	checks = append(checks, brokerCheck{broker: c.Broker})
	return checks
}

// brokerCheck adapts the AMQP broker's Ping to the health check surface.
type brokerCheck struct {
	broker *rabbit.Broker
}

func (c brokerCheck) Name() string { return "rabbitmq" }

func (c brokerCheck) Health(ctx context.Context) error {
	return c.broker.Ping(ctx)
}

// WaitForDependencies blocks until every upstream responds healthy, retrying
// each for a bounded number of attempts. Schedulers started against a dead
// catalogue would tear their first reconcile cycle apart, so startup waits.
func (c *Connectors) WaitForDependencies(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	for _, client := range c.clients {
		logger.Info("waiting for upstream", "upstream", client.Name())
		if err := client.WaitReady(ctx, readinessAttempts, readinessInterval); err != nil {
			return fmt.Errorf("upstream %s not ready: %w", client.Name(), err)
		}
	}

	logger.Info("waiting for upstream", "upstream", "rabbitmq")
	if err := waitForBroker(ctx, c.Broker); err != nil {
		return fmt.Errorf("broker not ready: %w", err)
	}

	logger.Info("all upstreams ready")
	return nil
}

func waitForBroker(ctx context.Context, broker *rabbit.Broker) error {
	var lastErr error
	for attempt := 0; attempt < readinessAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = broker.Ping(ctx)
		if lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readinessInterval):
		}
	}
	return lastErr
}
