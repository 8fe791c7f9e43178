package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/n0roo/content-locator/internal/config"
)

var (
	initForce   bool
	initSiteURL string
)

var initCmd = &cobra.Command{
	Use:   "init [site-name]",
	Short: "프로젝트 초기화",
	Long: `현재 디렉토리에 Content Locator 설정을 생성합니다.

생성되는 항목:
  - .locator/config.yaml  (사이트, 코퍼스, 분류 설정)

DB는 'locator import'로 코퍼스를 가져올 때 생성됩니다.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "기존 설정 덮어쓰기")
	initCmd.Flags().StringVar(&initSiteURL, "site-url", "", "보기/편집 링크에 쓸 사이트 URL")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("현재 디렉토리 확인 실패: %w", err)
	}

	siteName := filepath.Base(cwd)
	if len(args) > 0 {
		siteName = args[0]
	}

	// 이미 초기화되었는지 확인
	if config.Exists(cwd) && !initForce {
		return fmt.Errorf("이미 초기화되어 있습니다: %s\n--force 옵션으로 덮어쓸 수 있습니다", config.ConfigPath(cwd))
	}

	cfg := config.DefaultConfig(siteName)
	cfg.Site.URL = initSiteURL
	if err := config.Save(cwd, cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(map[string]string{
			"site":   siteName,
			"config": config.ConfigPath(cwd),
		})
	}

	fmt.Fprintf(out, "✅ 초기화 완료: %s\n", siteName)
	fmt.Fprintf(out, "   설정: %s\n", config.ConfigPath(cwd))
	fmt.Fprintf(out, "\n💡 다음 단계: locator import <corpus.yaml>\n")
	return nil
}
