package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/n0roo/content-locator/internal/content"
	"github.com/n0roo/content-locator/internal/db"
)

var importReplace bool

var importCmd = &cobra.Command{
	Use:   "import <corpus.yaml>",
	Short: "코퍼스 가져오기",
	Long: `YAML 코퍼스(문서, 필드 그룹, 필드 값)를 DB에 저장합니다.

같은 ID의 문서와 같은 키의 필드는 덮어쓰고, 필드 값은 뒤에 추가됩니다.
--replace는 기존 데이터를 모두 지운 뒤 가져옵니다.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "기존 데이터 삭제 후 가져오기")
}

func runImport(cmd *cobra.Command, args []string) error {
	corpus, err := content.LoadCorpus(args[0])
	if err != nil {
		return err
	}

	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	database, typ, err := ws.openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	result, err := db.NewStore(database).Import(cmd.Context(), corpus, importReplace)
	if err != nil {
		return fmt.Errorf("가져오기 실패: %w", err)
	}
	logger.Info("corpus imported",
		zap.String("file", args[0]),
		zap.Int("documents", result.Documents),
		zap.Int("values", result.Values))

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(result)
	}

	fmt.Fprintf(out, "✅ 가져오기 완료 (%s, %s)\n", database.Path(), typ)
	fmt.Fprintf(out, "   문서:      %d\n", result.Documents)
	fmt.Fprintf(out, "   필드 그룹: %d\n", result.FieldGroups)
	fmt.Fprintf(out, "   필드:      %d\n", result.Fields)
	fmt.Fprintf(out, "   필드 값:   %d\n", result.Values)
	return nil
}
