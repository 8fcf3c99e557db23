package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sela-zcodex/ai-creative-tools/examples"
	"github.com/sela-zcodex/ai-creative-tools/internal/builder"
	"github.com/sela-zcodex/ai-creative-tools/internal/config"
	"github.com/sela-zcodex/ai-creative-tools/pkg/veoprompt"

	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/spf13/cobra"
)

var (
	veoSceneFile string
	veoTranslate bool
	veoAsJSON    bool
)

// veoCmd は、構造化されたシーン定義（人物・セリフ・環境）から
// テキスト・ビデオモデル向けのプロンプト文を合成するのだ。
var veoCmd = &cobra.Command{
	Use:   "veo",
	Short: "シーン定義JSONからビデオ生成用プロンプトを合成するのだ。",
	Long: `人物・セリフ・環境を記述したJSONファイルを読み込み、自然文の
英語プロンプトへ合成するのだ。--translate を付けるとクメール語訳も
一緒に出力するのだよ。合成自体はローカルで完結するのだ。`,
	Example: "  ai-creative-tools veo -f scene.json --translate",
	RunE:    veoCommand,
}

func init() {
	veoCmd.Flags().StringVarP(&veoSceneFile, "file", "f", "", "シーン定義JSONのパスなのだ。省略時は同梱のサンプルを使うのだ。")
	veoCmd.Flags().BoolVar(&veoTranslate, "translate", false, "合成したプロンプトをクメール語へ翻訳するのだ。")
	veoCmd.Flags().BoolVar(&veoAsJSON, "json", false, "自然文ではなくJSON形式のプロンプトを出力するのだ。")
}

func veoCommand(cmd *cobra.Command, args []string) error {
	scene, err := loadVeoScene(cmd.Context())
	if err != nil {
		return err
	}

	if veoAsJSON {
		out, err := scene.JSON()
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	english := scene.Compose()
	fmt.Println(english)

	if !veoTranslate || english == "" {
		return nil
	}

	cfg := config.LoadConfig()
	cfg.Options = opts
	appCtx, err := builder.NewAppContext(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	khmer, err := builder.BuildTextRunner(appCtx).Translate(cmd.Context(), english, "Khmer")
	if err != nil {
		reportError(err)
		return err
	}
	slog.Info("クメール語訳なのだ")
	fmt.Println(khmer)
	return nil
}

func loadVeoScene(ctx context.Context) (veoprompt.Scene, error) {
	if veoSceneFile == "" {
		return examples.SampleScene()
	}

	// gs:// のパスもローカルパスも同じ経路で読むのだ
	factory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return veoprompt.Scene{}, fmt.Errorf("リモートIOファクトリの初期化に失敗したのだ: %w", err)
	}
	scene, err := examples.LoadScene(ctx, factory, veoSceneFile)
	if err != nil {
		return veoprompt.Scene{}, fmt.Errorf("シーン定義 '%s' の読み込みに失敗したのだ: %w", veoSceneFile, err)
	}
	return scene, nil
}
