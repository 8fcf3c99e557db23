package cmd

import (
	"fmt"
	"log/slog"

	"github.com/sela-zcodex/ai-creative-tools/internal/config"
	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"

	"github.com/spf13/cobra"
)

// configureCmd は、Gemini APIキーを検証して保存するのだ。
// 保存されたキーは以降のすべてのコマンドで自動的に使われるのだよ。
var configureCmd = &cobra.Command{
	Use:   "configure <api-key>",
	Short: "Gemini APIキーを検証して保存するのだ。",
	Long: `渡されたAPIキーでクライアントを初期化してみて、問題なければ
ユーザー設定ディレクトリに保存するのだ。環境変数 GEMINI_API_KEY が
設定されている場合はそちらが優先されるのだよ。`,
	Args: cobra.ExactArgs(1),
	RunE: configureCommand,
}

func configureCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	apiKey := args[0]

	// キーの形式が通るかだけ先に確認するのだ
	gw := gateway.New(gateway.Options{})
	if err := gw.Configure(ctx, apiKey); err != nil {
		reportError(err)
		return fmt.Errorf("APIキーの検証に失敗したのだ: %w", err)
	}

	if err := config.SaveCredential(apiKey); err != nil {
		return err
	}

	slog.Info("APIキーを保存したのだ！これで生成コマンドが使えるのだよ")
	return nil
}
