package database

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

// schemaSQL holds the DDL for every table the service owns. Each statement
// is idempotent so it runs on every startup.
//
//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the people table and its index when they are absent.
//
// Statements run one at a time; not every driver accepts a multi-statement Exec.
func (db *Database) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
