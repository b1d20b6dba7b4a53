// Package database owns the connection to the relational store.
//
// It handles:
//   - opening a file-backed SQLite database (default) or a Postgres pool
//   - wiring query tracing/logging (pgx tracelog, New Relic nrpgx5)
//   - creating the schema on startup if it is absent
//   - handing out single-use sessions to the repository layer
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/deppfellow/people-api/internal/config"
	loggerConfig "github.com/deppfellow/people-api/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/jmoiron/sqlx"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	// Registers the "sqlite3" database/sql driver.
	_ "github.com/mattn/go-sqlite3"
)

// DatabasePingTimeout is the number of seconds to wait for a ping
// before considering the database "unreachable".
const DatabasePingTimeout = 10

// Database wraps the sqlx handle and the instrumentation shared by every
// session opened from it. It is created once at startup and closed on
// shutdown.
type Database struct {
	DB *sqlx.DB

	driver             string
	log                *zerolog.Logger
	metrics            *Metrics
	slowQueryThreshold time.Duration
}

// multiTracer chains several pgx query tracers into the single
// ConnConfig.Tracer slot (New Relic + local SQL logging).
type multiTracer struct {
	tracers []pgx.QueryTracer
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		ctx = tracer.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		tracer.TraceQueryEnd(ctx, conn, data)
	}
}

// New opens the configured store, pings it and makes sure the schema exists.
//
// Inputs:
//   - cfg: application config (driver, sqlite path or postgres params, pool sizes)
//   - logger: main app logger
//   - loggerService: optional New Relic service (nil if not configured)
//   - reg: Prometheus registerer for query metrics (nil skips registration)
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService, reg prometheus.Registerer) (*Database, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = openPostgres(cfg, logger, loggerService)
	case config.DriverSQLite, "":
		db, err = openSQLite(cfg)
	default:
		err = fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	database := &Database{
		DB:      db,
		driver:  cfg.Database.Driver,
		log:     logger,
		metrics: NewMetrics(reg),
	}
	if cfg.Observability != nil {
		database.slowQueryThreshold = cfg.Observability.Logging.SlowQueryThreshold
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = database.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info().Str("driver", database.Driver()).Msg("connected to the database")

	return database, nil
}

func openSQLite(cfg *config.Config) (*sqlx.DB, error) {
	// WAL lets readers proceed during a write; busy_timeout makes writers
	// wait for the lock instead of failing with SQLITE_BUSY.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", cfg.Database.SQLitePath)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite has a single writer; one connection serializes sessions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

func openPostgres(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*sqlx.DB, error) {
	hostPort := net.JoinHostPort(cfg.Database.Host, strconv.Itoa(cfg.Database.Port))

	// URL-encode the password so characters like ':' or '@' keep the DSN intact.
	encodedPassword := url.QueryEscape(cfg.Database.Password)

	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.Database.User,
		encodedPassword,
		hostPort,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}

	var tracers []pgx.QueryTracer
	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	// SQL query logging is noisy, so only the local environment gets it.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(globalLevel)),
		})
	}

	switch len(tracers) {
	case 0:
	case 1:
		connConfig.Tracer = tracers[0]
	default:
		connConfig.Tracer = &multiTracer{tracers: tracers}
	}

	db := sqlx.NewDb(stdlib.OpenDB(*connConfig), "pgx")
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// Driver returns the configured driver name ("sqlite" or "postgres").
func (db *Database) Driver() string {
	if db.driver == "" {
		return config.DriverSQLite
	}
	return db.driver
}

// Builder returns a squirrel statement builder using the driver's
// placeholder format.
func (db *Database) Builder() sq.StatementBuilderType {
	if db.Driver() == config.DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// Ping verifies the store is reachable.
func (db *Database) Ping(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	return db.DB.Close()
}
