package cmd

import (
	"log/slog"

	"github.com/sela-zcodex/ai-creative-tools/internal/config"
	"github.com/sela-zcodex/ai-creative-tools/internal/pipeline"

	"github.com/spf13/cobra"
)

// imageCmd は、プロンプトから画像を一括生成するサブコマンドなのだ。
// --count がプロバイダの1回あたり上限を超えた場合は自動でサブバッチに
// 分割して順に実行するのだ。Ctrl+C でバッチの区切りに安全に停止するのだよ。
var imageCmd = &cobra.Command{
	Use:   "image <prompt>",
	Short: "プロンプトから画像を一括生成して保存するのだ。",
	Long: `指定された枚数の画像を生成するのだ。枚数が多い場合はプロバイダの
上限ごとに分割して順次リクエストし、進捗をログに出すのだ。
途中で Ctrl+C を押すと、実行中のサブバッチが終わった区切りで停止して、
そこまでに取得できた画像だけを保存するのだよ。`,
	Example: "  ai-creative-tools image \"a cat surfing a wave\" -n 20 --aspect-ratio 16:9",
	Args:    cobra.ExactArgs(1),
	RunE:    imageCommand,
}

func imageCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	prompt := args[0]

	// 1. 環境変数と保存済み資格情報から基本設定をロード
	cfg := config.LoadConfig()

	// 2. コマンドライン引数の値を反映
	cfg.Options = opts

	slog.Info("画像の一括生成を開始するのだ！",
		"count", opts.ImageCount,
		"aspect_ratio", opts.AspectRatio)

	// 3. パイプライン実行
	if err := pipeline.ExecuteImageBatch(ctx, cfg, prompt); err != nil {
		reportError(err)
		return err
	}
	return nil
}
