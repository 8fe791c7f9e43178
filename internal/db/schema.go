package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// migration is one schema step. Statements use types both SQLite and DuckDB
// accept.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "documents",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS documents (
				id BIGINT PRIMARY KEY,
				title VARCHAR NOT NULL DEFAULT '',
				type VARCHAR NOT NULL DEFAULT 'post',
				status VARCHAR NOT NULL DEFAULT 'publish',
				body VARCHAR NOT NULL DEFAULT '',
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		version: 2,
		name:    "custom fields",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS field_groups (
				key VARCHAR PRIMARY KEY,
				title VARCHAR NOT NULL DEFAULT '',
				position INTEGER DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS fields (
				key VARCHAR PRIMARY KEY,
				group_key VARCHAR NOT NULL,
				name VARCHAR NOT NULL,
				label VARCHAR NOT NULL DEFAULT '',
				kind VARCHAR NOT NULL DEFAULT 'text',
				position INTEGER DEFAULT 0
			)`,
			// 문서별 raw 값, seq는 삽입 순서
			`CREATE TABLE IF NOT EXISTS field_values (
				seq BIGINT PRIMARY KEY,
				document_id BIGINT NOT NULL,
				field_name VARCHAR NOT NULL,
				value VARCHAR
			)`,
		},
	},
}

// schemaVersion is the latest migration version
var schemaVersion = migrations[len(migrations)-1].version

const metadataTable = `CREATE TABLE IF NOT EXISTS metadata (
	key VARCHAR PRIMARY KEY,
	value VARCHAR,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// applyMigrations brings a database up to schemaVersion. Each step runs in
// its own transaction together with the version bump.
func applyMigrations(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, metadataTable); err != nil {
		return fmt.Errorf("metadata 테이블 생성 실패: %w", err)
	}

	current, err := readVersion(conn)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, conn, m); err != nil {
			return fmt.Errorf("v%d (%s) 적용 실패: %w", m.version, m.name, err)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, conn *sql.DB, m migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at)
		VALUES ('schema_version', ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		fmt.Sprint(m.version))
	if err != nil {
		return fmt.Errorf("버전 저장 실패: %w", err)
	}
	return tx.Commit()
}

// readVersion returns the stored schema version, 0 for a fresh database
func readVersion(conn *sql.DB) (int, error) {
	var version int
	err := conn.QueryRow(`SELECT CAST(value AS INTEGER) FROM metadata WHERE key = 'schema_version'`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("버전 조회 실패: %w", err)
	}
	return version, nil
}
