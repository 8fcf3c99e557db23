package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sela-zcodex/ai-creative-tools/internal/builder"
	"github.com/sela-zcodex/ai-creative-tools/internal/config"
	"github.com/sela-zcodex/ai-creative-tools/internal/pipeline"
	"github.com/sela-zcodex/ai-creative-tools/pkg/studio"

	"github.com/spf13/cobra"
)

var (
	crawlerProject  string
	crawlerConcept  string
	crawlerVehicles []string
	crawlerShotType string
	crawlerEnhance  bool
)

// crawlerCmd はRCクローラースタジオなのだ。車両の見た目を固定したまま、
// 8秒のショットを連ねた「旅」のショットリストを組み立てるのだよ。
var crawlerCmd = &cobra.Command{
	Use:   "crawler",
	Short: "RCクローラースタジオ：車両一貫性つきのショットリストを生成するのだ。",
	Long: `コンセプトと車両定義から、テキスト・ビデオモデル向けの8秒ショットを
3〜5本生成するのだ。車両のモデル・色・改造は全ショットで固定され、
環境だけが旅の進行に合わせて変わるのだ。extend と append は同時には
実行できないのだよ。`,
}

var crawlerNewCmd = &cobra.Command{
	Use:   "new",
	Short: "コンセプトと車両定義から新しいプロジェクトを生成するのだ。",
	Example: `  ai-creative-tools crawler new --concept "mountain expedition" \
    --crawler "Bronco|Ford Bronco|red|37-inch mud tires"`,
	RunE: crawlerNewCommand,
}

var crawlerExtendCmd = &cobra.Command{
	Use:   "extend <scene-id>",
	Short: "指定したショットをより詳細に書き直すのだ。",
	Args:  cobra.ExactArgs(1),
	RunE:  crawlerExtendCommand,
}

var crawlerAppendCmd = &cobra.Command{
	Use:   "append",
	Short: "旅の続きとなる新しいショットを1本追加するのだ。",
	RunE:  crawlerAppendCommand,
}

func init() {
	crawlerCmd.PersistentFlags().StringVarP(&crawlerProject, "project", "p", "", "プロジェクトJSONのパスなのだ。省略時は projects/crawler.json なのだ。")
	crawlerNewCmd.Flags().StringVar(&crawlerConcept, "concept", "", "ビデオのコンセプトなのだ。")
	crawlerNewCmd.Flags().StringArrayVar(&crawlerVehicles, "crawler", nil, "車両定義（name|model|color|modifications）なのだ。複数指定できるのだ。")
	crawlerNewCmd.Flags().BoolVar(&crawlerEnhance, "enhance-concept", false, "生成前にコンセプトをAIで映画的に強化するのだ。")
	crawlerAppendCmd.Flags().StringVar(&crawlerShotType, "shot-type", string(studio.ShotAny), "次のショットの種類（Any / Establishing Shot / Action Shot / Detail Shot / Hero Shot）なのだ。")
	crawlerCmd.AddCommand(crawlerNewCmd, crawlerExtendCmd, crawlerAppendCmd)
}

func crawlerProjectPath(cfg *config.Config) string {
	if crawlerProject != "" {
		return crawlerProject
	}
	return filepath.Join(cfg.ProjectDir, "crawler.json")
}

func crawlerEngine(cmd *cobra.Command) (*studio.Engine[studio.RCCrawlerConcept, studio.RCCrawlerScene], *builder.AppContext, string, error) {
	cfg := config.LoadConfig()
	cfg.Options = opts

	appCtx, err := builder.NewAppContext(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, "", err
	}

	engine := builder.BuildRCCrawlerEngine(appCtx)
	projectPath := crawlerProjectPath(cfg)
	if err := pipeline.LoadProject(projectPath, engine); err != nil {
		return nil, nil, "", err
	}
	return engine, appCtx, projectPath, nil
}

// parseCrawler は "name|model|color|modifications" 形式の車両定義を解析するのだ。
func parseCrawler(s string) (studio.RCCrawler, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 4 {
		return studio.RCCrawler{}, fmt.Errorf("車両定義 '%s' の形式が違うのだ（name|model|color|modifications）", s)
	}
	return studio.RCCrawler{
		Name:          strings.TrimSpace(parts[0]),
		Model:         strings.TrimSpace(parts[1]),
		Color:         strings.TrimSpace(parts[2]),
		Modifications: strings.TrimSpace(parts[3]),
	}, nil
}

func crawlerNewCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if crawlerConcept == "" {
		return fmt.Errorf("--concept は必須なのだ")
	}
	if len(crawlerVehicles) == 0 {
		return fmt.Errorf("車両定義（--crawler）を最低1つ指定してほしいのだ")
	}

	vehicles := make([]studio.RCCrawler, 0, len(crawlerVehicles))
	for _, raw := range crawlerVehicles {
		v, err := parseCrawler(raw)
		if err != nil {
			return err
		}
		vehicles = append(vehicles, v)
	}

	engine, appCtx, projectPath, err := crawlerEngine(cmd)
	if err != nil {
		return err
	}

	concept := crawlerConcept
	if crawlerEnhance {
		source := studio.NewRCCrawlerSource(appCtx.Gateway)
		enhanced, err := source.EnhanceConcept(ctx, concept)
		if err != nil {
			reportError(err)
			return err
		}
		slog.Info("コンセプトを強化したのだ", "concept", enhanced)
		concept = enhanced
	}

	scenes, err := engine.Generate(ctx, studio.RCCrawlerConcept{
		Concept:  concept,
		Crawlers: vehicles,
	})
	if err != nil {
		reportError(err)
		return err
	}

	slog.Info("ショットリストが完成したのだ！", "shots", len(scenes), "vehicles", len(vehicles))
	return pipeline.SaveProject(projectPath, engine)
}

func crawlerExtendCommand(cmd *cobra.Command, args []string) error {
	engine, _, projectPath, err := crawlerEngine(cmd)
	if err != nil {
		return err
	}

	changed, err := engine.Extend(cmd.Context(), args[0])
	if err != nil {
		reportError(err)
		return err
	}
	if !changed {
		slog.Info("対象ショットが見つからないか、別の操作が進行中のため何もしなかったのだ", "scene_id", args[0])
		return nil
	}

	slog.Info("ショットを拡張したのだ！", "scene_id", args[0])
	return pipeline.SaveProject(projectPath, engine)
}

func crawlerAppendCommand(cmd *cobra.Command, args []string) error {
	engine, _, projectPath, err := crawlerEngine(cmd)
	if err != nil {
		return err
	}

	scene, err := engine.AppendNext(cmd.Context(), crawlerShotType)
	if err != nil {
		reportError(err)
		return err
	}
	if scene == nil {
		slog.Info("プロジェクトが未生成か、別の操作が進行中のため何もしなかったのだ")
		return nil
	}

	slog.Info("新しいショットを追加したのだ！", "scene_number", scene.Number, "shot_type", crawlerShotType)
	return pipeline.SaveProject(projectPath, engine)
}
