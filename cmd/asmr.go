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
	asmrProject    string
	asmrConcept    string
	asmrTriggers   []string
	asmrSetting    string
	asmrCharacters []string
)

// asmrCmd はASMRスタジオなのだ。音の描写を主役にした台本を
// タイムスタンプ付きのシーンで組み立てるのだよ。
var asmrCmd = &cobra.Command{
	Use:   "asmr",
	Short: "ASMRスタジオ：音を主役にしたタイムスタンプ付き台本を生成するのだ。",
	Long: `コンセプト・トリガー・セッティングから、リラックスできるASMR動画の
台本を3〜5シーンで生成するのだ。各シーンには時間帯・動作・音・映像の
描写が付くのだよ。extend と append は同時には実行できないのだ。`,
}

var asmrNewCmd = &cobra.Command{
	Use:   "new",
	Short: "コンセプトとトリガーから新しい台本を生成するのだ。",
	Example: `  ai-creative-tools asmr new --concept "cozy bookstore at night" \
    --trigger tapping --trigger "page turning" --setting "small wooden bookstore"`,
	RunE: asmrNewCommand,
}

var asmrExtendCmd = &cobra.Command{
	Use:   "extend <scene-id>",
	Short: "指定したシーンをより没入感のある描写に書き直すのだ。",
	Args:  cobra.ExactArgs(1),
	RunE:  asmrExtendCommand,
}

var asmrAppendCmd = &cobra.Command{
	Use:   "append",
	Short: "続きとなる新しいシーンを1つ追加するのだ。",
	RunE:  asmrAppendCommand,
}

func init() {
	asmrCmd.PersistentFlags().StringVarP(&asmrProject, "project", "p", "", "プロジェクトJSONのパスなのだ。省略時は projects/asmr.json なのだ。")
	asmrNewCmd.Flags().StringVar(&asmrConcept, "concept", "", "動画のコンセプトなのだ。")
	asmrNewCmd.Flags().StringArrayVar(&asmrTriggers, "trigger", nil, "主役にするASMRトリガーなのだ。複数指定できるのだ。")
	asmrNewCmd.Flags().StringVar(&asmrSetting, "setting", "", "シーンの舞台なのだ。")
	asmrNewCmd.Flags().StringArrayVar(&asmrCharacters, "character", nil, "演者の定義（name|description）なのだ。省略可能なのだ。")
	asmrCmd.AddCommand(asmrNewCmd, asmrExtendCmd, asmrAppendCmd)
}

func asmrProjectPath(cfg *config.Config) string {
	if asmrProject != "" {
		return asmrProject
	}
	return filepath.Join(cfg.ProjectDir, "asmr.json")
}

func asmrEngine(cmd *cobra.Command) (*studio.Engine[studio.ASMRConcept, studio.ASMRScene], *builder.AppContext, string, error) {
	cfg := config.LoadConfig()
	cfg.Options = opts

	appCtx, err := builder.NewAppContext(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, "", err
	}

	engine := builder.BuildASMREngine(appCtx)
	projectPath := asmrProjectPath(cfg)
	if err := pipeline.LoadProject(projectPath, engine); err != nil {
		return nil, nil, "", err
	}
	return engine, appCtx, projectPath, nil
}

func asmrNewCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if asmrConcept == "" {
		return fmt.Errorf("--concept は必須なのだ")
	}
	if len(asmrTriggers) == 0 {
		return fmt.Errorf("トリガー（--trigger）を最低1つ指定してほしいのだ")
	}

	characters := make([]studio.ASMRCharacter, 0, len(asmrCharacters))
	for _, raw := range asmrCharacters {
		parts := strings.SplitN(raw, "|", 2)
		if len(parts) != 2 {
			return fmt.Errorf("演者定義 '%s' の形式が違うのだ（name|description）", raw)
		}
		characters = append(characters, studio.ASMRCharacter{
			Name:        strings.TrimSpace(parts[0]),
			Description: strings.TrimSpace(parts[1]),
		})
	}

	engine, _, projectPath, err := asmrEngine(cmd)
	if err != nil {
		return err
	}

	scenes, err := engine.Generate(ctx, studio.ASMRConcept{
		Concept:    asmrConcept,
		Triggers:   asmrTriggers,
		Setting:    asmrSetting,
		Characters: characters,
	})
	if err != nil {
		reportError(err)
		return err
	}

	slog.Info("ASMR台本が完成したのだ！", "scenes", len(scenes))
	return pipeline.SaveProject(projectPath, engine)
}

func asmrExtendCommand(cmd *cobra.Command, args []string) error {
	engine, _, projectPath, err := asmrEngine(cmd)
	if err != nil {
		return err
	}

	changed, err := engine.Extend(cmd.Context(), args[0])
	if err != nil {
		reportError(err)
		return err
	}
	if !changed {
		slog.Info("対象シーンが見つからないか、別の操作が進行中のため何もしなかったのだ", "scene_id", args[0])
		return nil
	}

	slog.Info("シーンを拡張したのだ！", "scene_id", args[0])
	return pipeline.SaveProject(projectPath, engine)
}

func asmrAppendCommand(cmd *cobra.Command, args []string) error {
	engine, _, projectPath, err := asmrEngine(cmd)
	if err != nil {
		return err
	}

	scene, err := engine.AppendNext(cmd.Context(), "")
	if err != nil {
		reportError(err)
		return err
	}
	if scene == nil {
		slog.Info("プロジェクトが未生成か、別の操作が進行中のため何もしなかったのだ")
		return nil
	}

	slog.Info("新しいシーンを追加したのだ！", "scene_number", scene.Number, "timestamp", scene.Payload.Timestamp)
	return pipeline.SaveProject(projectPath, engine)
}
