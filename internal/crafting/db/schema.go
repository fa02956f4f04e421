// Package db provides SQLite storage for the skill registry, generation
// history and import bookkeeping.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
)

//go:embed schema.sql
var schemaFS embed.FS

// SchemaVersion is recorded in sync_metadata after the schema is applied.
const SchemaVersion = 1

const schemaVersionKey = "schema_version"

// Schema returns the SQL schema for the database.
func Schema() (string, error) {
	data, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return "", fmt.Errorf("reading embedded schema: %w", err)
	}
	return string(data), nil
}

// InitSchema creates all tables if they don't exist and records the schema
// version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	schema, err := Schema()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO sync_metadata (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO NOTHING
	`, schemaVersionKey, strconv.Itoa(SchemaVersion))
	if err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}

	return nil
}
