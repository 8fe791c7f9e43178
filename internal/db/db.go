package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite 전용 보조 인덱스 (DuckDB는 PK만 사용)
var sqliteIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_documents_type_status ON documents(type, status)`,
	`CREATE INDEX IF NOT EXISTS idx_fields_group ON fields(group_key, position)`,
	`CREATE INDEX IF NOT EXISTS idx_field_values_name ON field_values(field_name, seq)`,
}

// DB is a SQLite content database
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates a SQLite database and applies pending migrations
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("DB 열기 실패: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("DB 연결 실패: %w", err)
	}

	d := &DB{DB: conn, path: path}
	if err := d.Init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("스키마 초기화 실패: %w", err)
	}
	return d, nil
}

// Init applies migrations and indexes. It is safe to call repeatedly.
func (d *DB) Init() error {
	ctx := context.Background()
	if err := applyMigrations(ctx, d.DB); err != nil {
		return err
	}
	for _, stmt := range sqliteIndexes {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("인덱스 생성 실패: %w", err)
		}
	}
	return nil
}

// GetVersion returns current schema version
func (d *DB) GetVersion() (int, error) {
	return readVersion(d.DB)
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}
