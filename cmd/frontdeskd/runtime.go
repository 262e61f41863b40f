package main

import (
	"context"
	"fmt"
	"time"

	"github.com/MarkoPoloResearchLab/frontdesk/internal/events"
	"github.com/MarkoPoloResearchLab/frontdesk/internal/lock"
	"github.com/MarkoPoloResearchLab/frontdesk/internal/oplog"
	"github.com/MarkoPoloResearchLab/frontdesk/internal/store/memstore"
	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dependencyPingTimeout = 3 * time.Second

type runtimeDeps struct {
	service *frontdesk.Service
	closers []func() error
}

func (deps *runtimeDeps) close(logger *zap.Logger) {
	for index := len(deps.closers) - 1; index >= 0; index-- {
		if err := deps.closers[index](); err != nil {
			logger.Warn("shutdown cleanup failed", zap.Error(err))
		}
	}
}

// openRuntime opens the store, optional lease and event backends, and builds the service.
func openRuntime(ctx context.Context, cfg *runtimeConfig, logger *zap.Logger, seed bool) (*runtimeDeps, error) {
	deps := &runtimeDeps{}
	store, cleanup, driver, err := openStore(ctx, cfg, false)
	if err != nil {
		return nil, err
	}
	deps.closers = append(deps.closers, cleanup)

	options := []frontdesk.ServiceOption{
		frontdesk.WithLocation(cfg.Location),
		frontdesk.WithOperationLogger(oplog.NewZapLogger(logger)),
	}

	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, dependencyPingTimeout)
		pingErr := client.Ping(pingCtx).Err()
		cancel()
		if pingErr != nil {
			_ = client.Close()
			deps.close(logger)
			return nil, fmt.Errorf("redis ping: %w", pingErr)
		}
		deps.closers = append(deps.closers, client.Close)
		options = append(options, frontdesk.WithTransitionLocker(lock.NewRedis(client, cfg.LockTTL)))
	case driver == driverMemory:
		options = append(options, frontdesk.WithTransitionLocker(lock.NewLocal()))
	}

	if cfg.AMQPURL != "" {
		publisher, err := events.Dial(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			deps.close(logger)
			return nil, err
		}
		deps.closers = append(deps.closers, publisher.Close)
		options = append(options, frontdesk.WithEventPublisher(publisher))
	}

	service, err := frontdesk.NewService(store, time.Now, options...)
	if err != nil {
		deps.close(logger)
		return nil, fmt.Errorf("frontdesk service init: %w", err)
	}
	deps.service = service

	if seed {
		if err := memstore.SeedDemo(ctx, store, time.Now().UTC(), cfg.Location); err != nil {
			deps.close(logger)
			return nil, fmt.Errorf("seed: %w", err)
		}
		logger.Info("demo data seeded", zap.String("driver", driver))
	}
	logger.Info("frontdesk ready",
		zap.String("driver", driver),
		zap.String("timezone", cfg.HotelTimezone),
		zap.Bool("redis_lease", cfg.RedisAddr != ""),
		zap.Bool("amqp_events", cfg.AMQPURL != ""),
	)
	return deps, nil
}
