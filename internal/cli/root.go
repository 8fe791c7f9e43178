package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/n0roo/content-locator/internal/config"
	"github.com/n0roo/content-locator/internal/db"
)

var (
	dbPath     string
	configPath string
	verbose    bool
	jsonOut    bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "locator",
	Short: "블록/숏코드 사용처 검색 도구",
	Long: `Content Locator - 콘텐츠 사용처 인벤토리

문서 본문에서 블록과 숏코드를 찾아 어디에 몇 번 쓰였는지 집계합니다.

집계 항목:
  - Native Blocks:         코어 블록
  - Custom Blocks:         네임스페이스 블록
  - ACF Blocks:            커스텀 필드 블록
  - True/False ACF Fields: 켜진 불리언/체크박스 필드
  - Patterns:              재사용 패턴 참조
  - Shortcodes:            숏코드`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("로거 초기화 실패: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "DB 경로 (기본: .locator/locator.db)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "설정 파일 경로 (기본: .locator/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "상세 출력")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "JSON 출력")
}

// workspace is the resolved project: root, config and database location
type workspace struct {
	root   string
	cfg    *config.ProjectConfig
	dbPath string
}

// loadWorkspace resolves the project root and config. A missing default
// config falls back to built-in defaults; an explicit --config must exist.
func loadWorkspace() (*workspace, error) {
	ws := &workspace{}

	if configPath != "" {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		ws.cfg = cfg
		// .locator/config.yaml 의 상위가 프로젝트 루트
		ws.root = filepath.Dir(filepath.Dir(configPath))
	} else {
		ws.root = config.FindProjectRoot()
		if config.Exists(ws.root) {
			cfg, err := config.Load(ws.root)
			if err != nil {
				return nil, err
			}
			ws.cfg = cfg
		} else {
			logger.Debug("config not found, using defaults", zap.String("root", ws.root))
			ws.cfg = config.DefaultConfig(filepath.Base(ws.root))
		}
	}

	switch {
	case dbPath != "":
		ws.dbPath = dbPath
	case ws.cfg.Database.Path != "":
		ws.dbPath = ws.cfg.DBPath(ws.root)
	default:
		ws.dbPath = config.DefaultDBPath(ws.root)
	}

	return ws, nil
}

// openDB opens the configured database
func (ws *workspace) openDB() (db.Database, db.DBType, error) {
	database, typ, err := db.OpenAuto(ws.dbPath, db.DBType(ws.cfg.Database.Type))
	if err != nil {
		return nil, "", fmt.Errorf("DB 열기 실패: %w", err)
	}
	logger.Debug("database opened", zap.String("path", database.Path()), zap.String("type", string(typ)))
	return database, typ, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
