package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/n0roo/content-locator/internal/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "데이터베이스 관리",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "SQLite → DuckDB 마이그레이션",
	Long: `SQLite 데이터베이스의 콘텐츠 테이블을 DuckDB로 복사합니다.

마이그레이션 과정:
1. 기존 SQLite 파일 백업
2. DuckDB 스키마 생성
3. 데이터 복사

DuckDB를 쓰려면 설정에서 database.type을 duckdb로 지정하세요.`,
	RunE: runDBMigrate,
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "현재 DB 상태 확인",
	RunE:  runDBStatus,
}

var migrateForce bool

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)

	dbMigrateCmd.Flags().BoolVar(&migrateForce, "force", false, "기존 DuckDB 파일 덮어쓰기")
}

func runDBMigrate(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	sqlitePath := ws.dbPath

	if _, err := os.Stat(sqlitePath); os.IsNotExist(err) {
		return fmt.Errorf("SQLite 파일이 없습니다: %s", sqlitePath)
	}

	duckdbPath := db.GetDuckDBPath(sqlitePath)
	if fileExists(duckdbPath) && !migrateForce {
		return fmt.Errorf("DuckDB 파일이 이미 존재합니다: %s\n--force 옵션으로 덮어쓸 수 있습니다", duckdbPath)
	}

	out := cmd.OutOrStdout()
	if !jsonOut {
		fmt.Fprintf(out, "🔄 %s → %s\n", sqlitePath, duckdbPath)
	}

	result, backupPath, err := db.BackupAndMigrate(sqlitePath)
	if err != nil {
		return fmt.Errorf("마이그레이션 실패: %w", err)
	}

	if jsonOut {
		return json.NewEncoder(out).Encode(map[string]any{
			"source": sqlitePath,
			"target": duckdbPath,
			"backup": backupPath,
			"result": result,
		})
	}

	total := 0
	for _, n := range result.RowsMigrated {
		total += n
	}
	fmt.Fprintf(out, "✅ %d개 테이블, %d행 복사 완료 (백업: %s)\n", result.TablesProcessed, total, backupPath)
	printCounts(out, result.RowsMigrated)

	for _, e := range result.Errors {
		fmt.Fprintf(out, "⚠️  %s\n", e)
	}
	return nil
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	database, typ, err := ws.openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	version, err := database.GetVersion()
	if err != nil {
		return fmt.Errorf("버전 조회 실패: %w", err)
	}
	stats, err := db.NewStore(database).Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(map[string]any{
			"path":    database.Path(),
			"type":    typ,
			"version": version,
			"stats":   stats,
		})
	}

	fmt.Fprintf(out, "📦 DB: %s (%s, v%d)\n", database.Path(), typ, version)
	fmt.Fprintf(out, "   문서:      %d\n", stats.Documents)

	printCounts(out, stats.ByType)
	fmt.Fprintf(out, "   필드 그룹: %d\n", stats.FieldGroups)
	fmt.Fprintf(out, "   필드:      %d\n", stats.Fields)
	fmt.Fprintf(out, "   필드 값:   %d\n", stats.Values)
	return nil
}

// printCounts writes "name: n" lines in key order
func printCounts(w io.Writer, counts map[string]int) {
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(w, "     - %s: %d\n", k, counts[k])
	}
}
