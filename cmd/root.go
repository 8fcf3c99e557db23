package cmd

import (
	"log/slog"

	"github.com/sela-zcodex/ai-creative-tools/internal/config"
	"github.com/sela-zcodex/ai-creative-tools/pkg/apperr"

	clibase "github.com/shouni/go-cli-base"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// opts は addAppFlags で各フラグに紐付けられる実行時パラメータなのだ。
var opts config.RunOptions

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "成果物の保存先ディレクトリ（ローカル or gs://...）なのだ。")

	// --- 画像生成固有設定 ---
	imageCmd.Flags().IntVarP(&opts.ImageCount, "count", "n", config.DefaultImageCount, "生成する画像の枚数なのだ。上限を超えた分は自動で分割されるのだ。")
	imageCmd.Flags().StringVar(&opts.AspectRatio, "aspect-ratio", config.DefaultAspectRatio, "画像のアスペクト比（1:1, 16:9, 9:16 など）なのだ。")

	// --- ビデオ生成固有設定 ---
	videoCmd.Flags().StringVarP(&opts.ConditioningImage, "image", "i", "", "ビデオ生成の条件付けに使う画像のパスなのだ。")

	// --- 実行制御 ---
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "外部リクエストのタイムアウトなのだ。")
}

// preRunAppE は、コマンド実行前の共通処理なのだ。.env があれば読み込むのだ。
// APIキーの有無はここでは強制しないのだ（configure コマンドはキーなしで動くのだ）。
func preRunAppE(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	return nil
}

// reportError は、APIエラーをユーザー向けの通知へ分類して表示するのだ。
// 回復アクション（設定画面を開く、課金ページを開く）があれば案内するのだ。
func reportError(err error) {
	cls := apperr.Classify(err)
	attrs := []any{"kind", cls.Kind.String(), "message", cls.PanelMessage}
	if cls.Notice.Action.Kind != apperr.ActionNone {
		attrs = append(attrs, "action", cls.Notice.Action.Label)
	}
	slog.Error("エラーが発生したのだ", attrs...)
	if cls.Notice.Message != "" {
		slog.Info(cls.Notice.Message)
	}
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"ai-creative-tools",
		addAppFlags,
		preRunAppE,
		configureCmd,
		imageCmd,
		videoCmd,
		gradeCmd,
		movieCmd,
		crawlerCmd,
		asmrCmd,
		textCmd,
		veoCmd,
	)
}
