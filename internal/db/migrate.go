package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
)

// MigrationResult contains migration statistics
type MigrationResult struct {
	TablesProcessed int
	RowsMigrated    map[string]int
	Errors          []string
}

// migratedTables are copied in this order
var migratedTables = []string{
	"documents",
	"field_groups",
	"fields",
	"field_values",
}

// MigrateSQLiteToDuckDB copies the content tables from SQLite to DuckDB.
// A table that fails is recorded in Errors and the rest still run.
func MigrateSQLiteToDuckDB(sqlitePath, duckdbPath string) (*MigrationResult, error) {
	src, err := Open(sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("SQLite 열기 실패: %w", err)
	}
	defer src.Close()

	if exists(duckdbPath) {
		if err := os.Rename(duckdbPath, duckdbPath+".backup"); err != nil {
			return nil, fmt.Errorf("기존 DuckDB 백업 실패: %w", err)
		}
	}

	dst, err := OpenDuckDB(duckdbPath)
	if err != nil {
		return nil, fmt.Errorf("DuckDB 열기 실패: %w", err)
	}
	defer dst.Close()

	ctx := context.Background()
	result := &MigrationResult{RowsMigrated: map[string]int{}}
	for _, table := range migratedTables {
		n, err := copyTable(ctx, src.DB, dst.DB, table)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", table, err))
			continue
		}
		result.RowsMigrated[table] = n
		result.TablesProcessed++
	}
	return result, nil
}

// columnsOf lists a table's columns without reading any rows
func columnsOf(ctx context.Context, conn *sql.DB, table string) ([]string, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s LIMIT 0`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}

// sharedColumns keeps the order of from, dropping columns to lacks
func sharedColumns(from, to []string) []string {
	present := make(map[string]struct{}, len(to))
	for _, c := range to {
		present[c] = struct{}{}
	}
	var out []string
	for _, c := range from {
		if _, ok := present[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// copyTable streams one table into DuckDB inside a single transaction
func copyTable(ctx context.Context, src, dst *sql.DB, table string) (int, error) {
	srcCols, err := columnsOf(ctx, src, table)
	if err != nil {
		return 0, fmt.Errorf("원본 컬럼 조회 실패: %w", err)
	}
	dstCols, err := columnsOf(ctx, dst, table)
	if err != nil {
		return 0, fmt.Errorf("대상 컬럼 조회 실패: %w", err)
	}
	cols := sharedColumns(srcCols, dstCols)
	if len(cols) == 0 {
		return 0, nil
	}

	list := strings.Join(cols, ", ")
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	rows, err := src.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s`, list, table))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	tx, err := dst.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, table, list, marks))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	row := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range row {
		dest[i] = &row[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("행 %d 삽입 실패: %w", n+1, err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// GetDuckDBPath maps "x.db" to "x.duckdb"; other names get the suffix appended
func GetDuckDBPath(basePath string) string {
	return strings.TrimSuffix(basePath, ".db") + ".duckdb"
}

// BackupAndMigrate copies the SQLite file to "<path>.backup" and then
// migrates it to DuckDB. It returns the backup path.
func BackupAndMigrate(sqlitePath string) (*MigrationResult, string, error) {
	backupPath := sqlitePath + ".backup"
	if err := copyFile(sqlitePath, backupPath); err != nil {
		return nil, "", err
	}
	result, err := MigrateSQLiteToDuckDB(sqlitePath, GetDuckDBPath(sqlitePath))
	return result, backupPath, err
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("원본 파일 열기 실패: %w", err)
	}
	defer in.Close()

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("백업 파일 생성 실패: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("백업 복사 실패: %w", err)
	}
	return out.Close()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
