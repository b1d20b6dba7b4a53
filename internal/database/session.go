package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Session is a single-use handle to the store scoped to one repository
// operation. It pins one connection from the pool until Close; every
// statement auto-commits.
//
// Callers must Close it on every exit path:
//
//	sess, err := db.Session(ctx)
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
type Session struct {
	conn *sqlx.Conn
	db   *Database
	log  zerolog.Logger
}

// Session acquires a dedicated connection.
func (db *Database) Session(ctx context.Context) (*Session, error) {
	conn, err := db.DB.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database session: %w", err)
	}

	// Prefer the request-scoped logger so statements carry the request id.
	log := zerolog.Ctx(ctx)
	if log.GetLevel() == zerolog.Disabled {
		log = db.log
	}

	return &Session{
		conn: conn,
		db:   db,
		log:  *log,
	}, nil
}

// Close returns the connection to the pool.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Get runs a single-row query and scans it into dest. A missing row is
// reported as sql.ErrNoRows.
func (s *Session) Get(ctx context.Context, operation string, dest any, stmt sq.Sqlizer) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", operation, err)
	}

	start := time.Now()
	err = s.conn.GetContext(ctx, dest, query, args...)
	s.observe(operation, query, start, err)
	return err
}

// Select runs a multi-row query and scans every row into dest (a pointer
// to a slice).
func (s *Session) Select(ctx context.Context, operation string, dest any, stmt sq.Sqlizer) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", operation, err)
	}

	start := time.Now()
	err = s.conn.SelectContext(ctx, dest, query, args...)
	s.observe(operation, query, start, err)
	return err
}

// Exec runs a statement that returns no rows.
func (s *Session) Exec(ctx context.Context, operation string, stmt sq.Sqlizer) (sql.Result, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s statement: %w", operation, err)
	}

	start := time.Now()
	result, err := s.conn.ExecContext(ctx, query, args...)
	s.observe(operation, query, start, err)
	return result, err
}

// observe records metrics and logs for one statement. sql.ErrNoRows is an
// answer, not a failure, so it is not counted as an error.
func (s *Session) observe(operation, query string, start time.Time, err error) {
	elapsed := time.Since(start)

	s.db.metrics.QueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())

	failed := err != nil && !errors.Is(err, sql.ErrNoRows)
	if failed {
		s.db.metrics.QueryErrors.WithLabelValues(operation).Inc()
	}

	var event *zerolog.Event
	switch {
	case failed:
		event = s.log.Warn().Err(err)
	case s.db.slowQueryThreshold > 0 && elapsed >= s.db.slowQueryThreshold:
		event = s.log.Warn().Bool("slow", true)
	default:
		event = s.log.Debug()
	}

	event.
		Str("operation", operation).
		Str("query", query).
		Dur("duration", elapsed).
		Msg("database statement")
}
