package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// duckDBMagic sits at offset 8 of every DuckDB file header
var duckDBMagic = []byte("DUCK")

// DuckDB is a DuckDB content database with the same tables as DB
type DuckDB struct {
	*sql.DB
	path string
}

// OpenDuckDB opens or creates a DuckDB database and applies pending migrations
func OpenDuckDB(path string) (*DuckDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("DuckDB 열기 실패: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("DuckDB 연결 실패: %w", err)
	}

	d := &DuckDB{DB: conn, path: path}
	if err := applyMigrations(context.Background(), conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("스키마 초기화 실패: %w", err)
	}
	return d, nil
}

// GetVersion returns current schema version
func (d *DuckDB) GetVersion() (int, error) {
	return readVersion(d.DB)
}

// Path returns the database file path
func (d *DuckDB) Path() string {
	return d.path
}

// IsDuckDB reports whether path holds a DuckDB file
func IsDuckDB(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}
	return bytes.Equal(header[8:12], duckDBMagic)
}
