package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"election/internal/election/service"
	"election/internal/election/store"
	"election/internal/election/store/memory"
	"election/internal/election/store/sqlstore"
	"election/internal/pii"
	"election/internal/platform/config"
	"election/internal/platform/logger"
	"election/internal/platform/metrics"
	platformredis "election/internal/platform/redis"
	"election/internal/platform/storage"
	"election/internal/secrets"
	audit "election/pkg/platform/audit"
	"election/pkg/platform/audit/publisher"
	"election/pkg/platform/audit/store/failover"
	"election/pkg/platform/audit/store/kafka"
	auditmemory "election/pkg/platform/audit/store/memory"
)

// app holds the wired dependencies for one command invocation.
type app struct {
	service *service.Service
	logger  *slog.Logger
	closers []func() error
}

// current is set by the root command's pre-run hook.
var current *app

// newApp wires the configured backends for one invocation of command.
func newApp(ctx context.Context, command string) (a *app, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	a = &app{logger: log}
	defer func() {
		if err != nil {
			_ = a.close()
		}
	}()

	var (
		db      *sql.DB
		dialect storage.Dialect
	)
	if cfg.Store != config.StoreMemory {
		db, dialect, err = storage.Open(ctx, cfg.SQLDriver(), cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
	}

	registry, err := a.secretRegistry(ctx, cfg, db, dialect)
	if err != nil {
		return nil, err
	}
	prov, err := secrets.NewProvisioner(registry, secrets.WithLogger(log))
	if err != nil {
		return nil, err
	}
	protector, err := pii.NewProtector(ctx, prov, pii.WithArgonParams(pii.ArgonParams{
		Time:      cfg.Argon.Time,
		MemoryKiB: cfg.Argon.MemoryKiB,
		Threads:   cfg.Argon.Threads,
		KeyLen:    pii.DefaultArgonParams().KeyLen,
	}))
	if err != nil {
		return nil, err
	}

	var st store.Store
	if db == nil {
		st, err = memory.New(protector)
	} else {
		st, err = sqlstore.New(ctx, db, dialect, protector, sqlstore.WithLogger(log))
	}
	if err != nil {
		return nil, err
	}

	sink, err := a.auditSink(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pub := publisher.NewPublisher(sink, publisher.WithAsyncBuffer(256), publisher.WithLogger(log))
	// Drain audit events before the sink and database go away.
	a.closers = append(a.closers, pub.Close)

	reg := prometheus.NewRegistry()
	if cfg.Metrics.PushgatewayURL != "" {
		a.closers = append(a.closers, a.pushMetrics(cfg.Metrics, reg, command))
	}

	a.service = service.New(st,
		service.WithLogger(log),
		service.WithAuditPublisher(pub),
		service.WithMetrics(metrics.New(reg)),
		service.WithVoterRefs(protector),
	)
	return a, nil
}

// pushMetrics returns a closer that pushes reg to the Pushgateway, grouped by
// command. A failed push is logged; the command's writes have already landed.
func (a *app) pushMetrics(cfg config.MetricsConfig, reg *prometheus.Registry, command string) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.PushTimeout)
		defer cancel()
		start := time.Now()
		if err := metrics.Push(ctx, cfg.PushgatewayURL, cfg.Job, reg, "command", command); err != nil {
			a.logger.Warn("metrics push failed", "command", command, "error", err)
			return nil
		}
		a.logger.Debug("metrics pushed", "command", command, "duration", time.Since(start))
		return nil
	}
}

func (a *app) secretRegistry(ctx context.Context, cfg config.Config, db *sql.DB, dialect storage.Dialect) (secrets.Registry, error) {
	switch cfg.Secrets {
	case config.SecretsMemory:
		a.logger.Warn("secrets are kept in memory; obfuscated ids and names will not survive a restart")
		return secrets.NewInMemoryRegistry(), nil
	case config.SecretsRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return secrets.NewRedisRegistry(client.Client), nil
	case config.SecretsSQL:
		if db == nil {
			return nil, errors.New("sql secret registry needs a sql store")
		}
		return secrets.NewSQLRegistry(ctx, db, dialect)
	}
	return nil, fmt.Errorf("unknown secret registry %q", cfg.Secrets)
}

func (a *app) auditSink(ctx context.Context, cfg config.Config) (audit.Store, error) {
	if len(cfg.Audit.Brokers) == 0 {
		return auditmemory.NewInMemoryStore(), nil
	}
	sink, err := kafka.New(ctx, kafka.Config{Brokers: cfg.Audit.Brokers, Topic: cfg.Audit.Topic})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, sink.Close)
	// Events produced while the brokers are unreachable are kept in process.
	return failover.New(sink, auditmemory.NewInMemoryStore(), failover.WithLogger(a.logger)), nil
}

// close runs closers in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func closeApp() error {
	if current == nil {
		return nil
	}
	err := current.close()
	current = nil
	return err
}
