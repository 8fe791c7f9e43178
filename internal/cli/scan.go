package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n0roo/content-locator/internal/content"
	"github.com/n0roo/content-locator/internal/db"
	"github.com/n0roo/content-locator/internal/render"
	"github.com/n0roo/content-locator/internal/report"
)

var (
	scanBucket    string
	scanCorpus    string
	scanCollapsed bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "사용처 리포트 출력",
	Long: `문서를 스캔해 여섯 개 항목의 사용처 리포트를 출력합니다.

예시:
  locator scan                          # 전체 리포트
  locator scan --bucket shortcodes      # 한 항목만
  locator scan --corpus site.yaml       # DB 없이 YAML 코퍼스 스캔
  locator scan --json                   # JSON 출력`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&scanBucket, "bucket", "b", "", "출력할 항목 ("+bucketList()+")")
	scanCmd.Flags().StringVar(&scanCorpus, "corpus", "", "YAML 코퍼스 파일 (DB 대신 사용)")
	scanCmd.Flags().BoolVar(&scanCollapsed, "collapsed", false, "항목별 합계만 출력")
}

func bucketList() string {
	names := make([]string, 0, len(report.BucketNames))
	for _, n := range report.BucketNames {
		names = append(names, string(n))
	}
	return strings.Join(names, ", ")
}

// reportSource wires a build to a corpus file or the database
type reportSource struct {
	sources report.Sources
	store   *db.Store // nil for corpus files
	dbType  db.DBType
	close   func() error
}

func (ws *workspace) openSource(corpusFile string) (*reportSource, error) {
	if corpusFile != "" {
		c, err := content.LoadCorpus(corpusFile)
		if err != nil {
			return nil, err
		}
		m := content.NewMemoryStore(c)
		return &reportSource{
			sources: report.Sources{Documents: m, Titles: m, Fields: m},
			close:   func() error { return nil },
		}, nil
	}

	if !fileExists(ws.dbPath) && !db.IsDuckDB(db.GetDuckDBPath(ws.dbPath)) {
		return nil, fmt.Errorf("DB가 없습니다: %s\n'locator import <corpus.yaml>'로 먼저 가져오거나 --corpus를 사용하세요", ws.dbPath)
	}

	database, typ, err := ws.openDB()
	if err != nil {
		return nil, err
	}
	store := db.NewStore(database)
	return &reportSource{
		sources: report.Sources{Documents: store, Titles: store, Fields: store},
		store:   store,
		dbType:  typ,
		close:   database.Close,
	}, nil
}

func (ws *workspace) newBuilder(src report.Sources) (*report.Builder, error) {
	opts, err := ws.cfg.ReportOptions()
	if err != nil {
		return nil, err
	}
	return report.NewBuilder(src, opts, logger), nil
}

func runScan(cmd *cobra.Command, args []string) error {
	bucket := report.BucketName(scanBucket)
	if bucket != "" && !bucket.Valid() {
		return fmt.Errorf("알 수 없는 항목: %s (사용 가능: %s)", scanBucket, bucketList())
	}

	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	src, err := ws.openSource(scanCorpus)
	if err != nil {
		return err
	}
	defer src.close()

	b, err := ws.newBuilder(src.sources)
	if err != nil {
		return err
	}
	rep := b.Build(cmd.Context())
	rep.AttachLinks(ws.cfg.Site.URL)

	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if bucket != "" {
			return enc.Encode(rep.Bucket(bucket))
		}
		return enc.Encode(rep)
	}

	return render.Write(out, rep, render.Options{Bucket: bucket, Collapsed: scanCollapsed})
}
