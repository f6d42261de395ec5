package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/mind-engage/edueval/internal/config"
	"github.com/mind-engage/edueval/internal/db"
	"github.com/mind-engage/edueval/internal/exam"
	"github.com/mind-engage/edueval/internal/session"
	"github.com/mind-engage/edueval/internal/storage"
	syncx "github.com/mind-engage/edueval/internal/sync"
)

func openCatalog(ctx context.Context, cfg config.Config) (*sql.DB, *exam.SQLStore, error) {
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open failed: %w", err)
	}
	return dbh, exam.NewSQLStore(dbh, cfg.DBDriver), nil
}

func openBlobs(ctx context.Context, cfg config.Config) (storage.BlobStore, error) {
	switch cfg.BlobDriver {
	case "", "fs":
		return storage.NewFSStore(cfg.BlobBasePath)
	case "minio":
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unsupported blob driver: %s", cfg.BlobDriver)
	}
}

// pinger is implemented by registries that sit on a network service.
type pinger interface {
	Ping(ctx context.Context) error
}

func openRegistry(ctx context.Context, cfg config.Config) (session.Registry, error) {
	switch cfg.SessionDriver {
	case "", "memory":
		return session.NewMemoryRegistry(), nil
	case "redis":
		reg := session.NewRedisRegistry(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
		if err := reg.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return reg, nil
	default:
		return nil, fmt.Errorf("unsupported session driver: %s", cfg.SessionDriver)
	}
}

// openEvents always records to the SQL event log and also feeds the broker
// when AMQP_URL is set.
func openEvents(dbh *sql.DB, cfg config.Config) (syncx.Publisher, func(), error) {
	broker, err := syncx.NewBrokerPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, nil, err
	}
	pubs := syncx.Fanout{syncx.NewEventRepo(dbh, cfg.SiteID)}
	if broker.Enabled() {
		pubs = append(pubs, broker)
	}
	closer := func() {
		if err := broker.Close(); err != nil {
			log.Printf("amqp close: %v", err)
		}
	}
	return pubs, closer, nil
}
