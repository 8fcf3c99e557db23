package cmd

import (
	"log/slog"

	"github.com/sela-zcodex/ai-creative-tools/internal/config"
	"github.com/sela-zcodex/ai-creative-tools/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	gradeThreshold int
	gradeEnhance   bool
)

// gradeCmd は、ディレクトリ内の画像をストックフォト審査風に一括採点するのだ。
// 採点は並列、タグ付けは逐次で実行され、最後にメタデータCSVを書き出すのだ。
var gradeCmd = &cobra.Command{
	Use:   "grade <dir>",
	Short: "ディレクトリ内の画像を一括採点してメタデータCSVを出力するのだ。",
	Long: `指定ディレクトリの画像をまとめて採点し、採用確率・フィードバック・
却下理由を付けるのだ。スコアが閾値以上の画像には販売用のタイトルと
キーワードも生成して、最後に image_metadata.csv へ書き出すのだよ。`,
	Example: "  ai-creative-tools grade ./photos --threshold 50",
	Args:    cobra.ExactArgs(1),
	RunE:    gradeCommand,
}

func init() {
	gradeCmd.Flags().IntVar(&gradeThreshold, "threshold", config.DefaultScoreThreshold, "タグ付け対象とする採点スコアの下限なのだ。")
	gradeCmd.Flags().BoolVar(&gradeEnhance, "enhance", false, "閾値未満の画像を補正して再採点するのだ。")
}

func gradeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := args[0]

	cfg := config.LoadConfig()
	cfg.Options = opts
	cfg.ScoreThreshold = gradeThreshold

	slog.Info("一括採点パイプラインを起動するのだ！", "dir", dir, "threshold", gradeThreshold, "enhance", gradeEnhance)

	if err := pipeline.ExecuteGrade(ctx, cfg, dir, gradeEnhance); err != nil {
		reportError(err)
		return err
	}
	return nil
}
