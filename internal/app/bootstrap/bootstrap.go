package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	provisioningservice "launchdesk/contexts/launch-operations/provisioning-service"
	provisioningpostgres "launchdesk/contexts/launch-operations/provisioning-service/adapters/postgres"
	requestservice "launchdesk/contexts/launch-operations/request-service"
	requestpostgres "launchdesk/contexts/launch-operations/request-service/adapters/postgres"
	"launchdesk/internal/platform/config"
	"launchdesk/internal/platform/db"
	"launchdesk/internal/platform/httpserver"
	"launchdesk/internal/platform/messaging"
	"launchdesk/internal/platform/notify"
	"launchdesk/internal/platform/storage"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres       *db.Postgres
	relay          requestservice.Module
	provisioning   provisioningservice.Module
	consumeEnabled bool
	pollInterval   time.Duration
	logger         *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	requestRepo := requestpostgres.NewRepository(pg.DB, logger)
	requestModule := requestservice.NewModule(requestservice.Dependencies{
		Requests:      requestRepo,
		Transitions:   requestRepo,
		Editors:       requestRepo,
		Buyers:        requestRepo,
		Uploads:       requestRepo,
		Reassignments: requestRepo,
		Outbox:        requestRepo,
		OutboxReader:  requestRepo,
		Users:         requestRepo,
		Storage:       storage.NewLocalStore(cfg.StorageRoot),
		Notifier:      notify.LogNotifier{Logger: logger},
		Clock:         requestpostgres.SystemClock{},
		IDGen:         requestpostgres.UUIDGenerator{},
		BatchSize:     cfg.OutboxBatchSize,
		Logger:        logger,
	})

	provisioningRepo := provisioningpostgres.NewRepository(pg.DB, logger)
	provisioningModule := provisioningservice.NewModule(provisioningservice.Dependencies{
		Folders:      provisioningRepo,
		Permissions:  provisioningRepo,
		Assets:       provisioningRepo,
		BuyerFolders: requestRepo,
		Uploads:      requestRepo,
		Clock:        provisioningpostgres.SystemClock{},
		IDGen:        provisioningpostgres.UUIDGenerator{},
		Logger:       logger,
	})

	server := httpserver.New(requestModule, provisioningModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

// BuildWorker wires the outbox relay and the provisioning consumer onto
// one in-process bus; both halves must live in the same process for
// published events to reach the consumer.
func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	bus.Workers = cfg.ProvisioningWorkers

	requestRepo := requestpostgres.NewRepository(pg.DB, logger)
	requestModule := requestservice.NewModule(requestservice.Dependencies{
		Requests:      requestRepo,
		Transitions:   requestRepo,
		Editors:       requestRepo,
		Buyers:        requestRepo,
		Uploads:       requestRepo,
		Reassignments: requestRepo,
		Outbox:        requestRepo,
		OutboxReader:  requestRepo,
		Publisher:     bus,
		Users:         requestRepo,
		Storage:       storage.NewLocalStore(cfg.StorageRoot),
		Notifier:      notify.LogNotifier{Logger: logger},
		Clock:         requestpostgres.SystemClock{},
		IDGen:         requestpostgres.UUIDGenerator{},
		BatchSize:     cfg.OutboxBatchSize,
		Logger:        logger,
	})

	provisioningRepo := provisioningpostgres.NewRepository(pg.DB, logger)
	provisioningModule := provisioningservice.NewModule(provisioningservice.Dependencies{
		Folders:       provisioningRepo,
		Permissions:   provisioningRepo,
		Assets:        provisioningRepo,
		BuyerFolders:  requestRepo,
		Uploads:       requestRepo,
		Subscriber:    bus,
		ConsumerGroup: "provisioning-service",
		RouteUploads:  cfg.EnableUploadRouting,
		Clock:         provisioningpostgres.SystemClock{},
		IDGen:         provisioningpostgres.UUIDGenerator{},
		Logger:        logger,
	})

	pollInterval := time.Duration(cfg.OutboxPollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	return &WorkerApp{
		postgres:       pg,
		relay:          requestModule,
		provisioning:   provisioningModule,
		consumeEnabled: cfg.EnableProvisioningConsumer,
		pollInterval:   pollInterval,
		logger:         logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.consumeEnabled {
		if err := w.provisioning.Consumer.Start(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.relay.Relay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
