package db

import (
	"context"
	"database/sql"
)

// Database is what the store needs from SQLite and DuckDB alike
type Database interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
	Path() string
	GetVersion() (int, error)
}

var (
	_ Database = (*DB)(nil)
	_ Database = (*DuckDB)(nil)
)

// DBType selects the storage engine
type DBType string

const (
	TypeSQLite DBType = "sqlite"
	TypeDuckDB DBType = "duckdb"
)

// resolveType picks the engine for basePath. An empty type prefers an
// existing DuckDB sibling when no SQLite file exists yet.
func resolveType(basePath string, dbType DBType) DBType {
	if dbType != "" {
		return dbType
	}
	if !exists(basePath) && IsDuckDB(GetDuckDBPath(basePath)) {
		return TypeDuckDB
	}
	return TypeSQLite
}

// OpenAuto opens the database for basePath. DuckDB lives in the ".duckdb"
// sibling of basePath; when it cannot be opened SQLite is used instead.
func OpenAuto(basePath string, dbType DBType) (Database, DBType, error) {
	if resolveType(basePath, dbType) == TypeDuckDB {
		duck, duckErr := OpenDuckDB(GetDuckDBPath(basePath))
		if duckErr == nil {
			return duck, TypeDuckDB, nil
		}
		// DuckDB 실패 시 SQLite 폴백, 둘 다 실패하면 DuckDB 에러 반환
		lite, err := Open(basePath)
		if err != nil {
			return nil, "", duckErr
		}
		return lite, TypeSQLite, nil
	}

	lite, err := Open(basePath)
	if err != nil {
		return nil, "", err
	}
	return lite, TypeSQLite, nil
}
