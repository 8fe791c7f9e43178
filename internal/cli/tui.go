package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/n0roo/content-locator/internal/report"
	"github.com/n0roo/content-locator/internal/tui"
)

var tuiCorpus string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "리포트 TUI 실행",
	Long:  `터미널에서 여섯 개 항목을 탭으로 보여 줍니다. 행을 펼쳐 문서별 사용 횟수를 확인합니다.`,
	RunE:  runTui,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVar(&tuiCorpus, "corpus", "", "YAML 코퍼스 파일 (DB 대신 사용)")
}

func runTui(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	src, err := ws.openSource(tuiCorpus)
	if err != nil {
		return err
	}
	defer src.close()

	b, err := ws.newBuilder(src.sources)
	if err != nil {
		return err
	}
	siteURL := ws.cfg.Site.URL
	return tui.Run(func(ctx context.Context) *report.Report {
		r := b.Build(ctx)
		r.AttachLinks(siteURL)
		return r
	})
}
