package cmd

import (
	"log/slog"

	"github.com/sela-zcodex/ai-creative-tools/internal/config"
	"github.com/sela-zcodex/ai-creative-tools/internal/pipeline"

	"github.com/spf13/cobra"
)

// videoCmd は、ビデオ生成ジョブを投入して完了までポーリングするのだ。
// ジョブは数分かかることがあるから、待っている間はステータスメッセージを
// 巡回表示するのだよ。
var videoCmd = &cobra.Command{
	Use:   "video <prompt>",
	Short: "プロンプトからビデオを生成して保存するのだ。",
	Long: `ビデオ生成ジョブをプロバイダに投入し、完了するまで一定間隔で
ポーリングするのだ。--image で条件付け画像を渡すと、その画像を起点に
したビデオを生成できるのだよ。Ctrl+C でポーリングだけを安全に中断できるのだ。`,
	Example: "  ai-creative-tools video \"drone shot over a neon city\" -i seed.png",
	Args:    cobra.ExactArgs(1),
	RunE:    videoCommand,
}

func videoCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	prompt := args[0]

	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("ビデオ生成ジョブを投入するのだ！", "conditioning_image", opts.ConditioningImage)

	if err := pipeline.ExecuteVideo(ctx, cfg, prompt); err != nil {
		reportError(err)
		return err
	}
	return nil
}
