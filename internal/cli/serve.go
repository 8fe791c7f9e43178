package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/n0roo/content-locator/internal/server"
)

var (
	servePort   int
	serveCorpus string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTP API 실행",
	Long: `리포트 HTTP API를 실행합니다. 요청마다 리포트를 새로 만듭니다.

엔드포인트:
  GET /api/status            사이트/DB 상태
  GET /api/report            전체 리포트
  GET /api/report/{bucket}   한 항목`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "서버 포트 (기본: 설정값)")
	serveCmd.Flags().StringVar(&serveCorpus, "corpus", "", "YAML 코퍼스 파일 (DB 대신 사용)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	src, err := ws.openSource(serveCorpus)
	if err != nil {
		return err
	}
	defer src.close()

	port := ws.cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	b, err := ws.newBuilder(src.sources)
	if err != nil {
		return err
	}

	cfg := server.Config{
		Port:     port,
		SiteName: ws.cfg.Site.Name,
		SiteURL:  ws.cfg.Site.URL,
		Build:    b.Build,
	}
	if src.store != nil {
		cfg.DBPath = ws.dbPath
		cfg.DBType = string(src.dbType)
		cfg.Stats = src.store
	}

	// 서버 로그는 항상 보이도록 info 이상 출력
	srvLogger := logger
	if !verbose {
		if l, err := zap.NewProduction(); err == nil {
			srvLogger = l
			defer l.Sync()
		}
	}
	srv := server.NewServer(cfg, srvLogger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	fmt.Fprintf(cmd.OutOrStdout(), "🚀 Content Locator API: http://localhost:%d/api/report\n", port)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		return err
	case <-sigChan:
		fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
		if err := srv.Stop(); err != nil {
			return err
		}
		return <-errCh
	}
}
