package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sela-zcodex/ai-creative-tools/internal/builder"
	"github.com/sela-zcodex/ai-creative-tools/internal/config"
	"github.com/sela-zcodex/ai-creative-tools/internal/pipeline"
	"github.com/sela-zcodex/ai-creative-tools/pkg/studio"

	"github.com/spf13/cobra"
)

var (
	movieProject string
	movieTitle   string
	movieGenre   string
)

// movieCmd は映画スタジオなのだ。タイトルとジャンルから物語と登場人物を
// 組み立てて、シーンごとの台本を生成・拡張・追加できるのだよ。
var movieCmd = &cobra.Command{
	Use:   "movie",
	Short: "映画スタジオ：物語からシーン台本を生成・拡張するのだ。",
	Long: `タイトルとジャンルからあらすじ・登場人物・本編の物語を生成し、
それを5〜7の主要シーンへ分解するのだ。生成されたプロジェクトはJSONに
保存され、シーンの拡張（extend）や続きの追加（append）を何度でも
続きから実行できるのだよ。拡張と追加は同時には実行できないのだ。`,
}

var movieNewCmd = &cobra.Command{
	Use:   "new",
	Short: "タイトルとジャンルから新しい映画プロジェクトを生成するのだ。",
	Example: "  ai-creative-tools movie new --title \"The Last Lighthouse\" --genre Sci-Fi",
	RunE:  movieNewCommand,
}

var movieExtendCmd = &cobra.Command{
	Use:   "extend <scene-id>",
	Short: "指定したシーンをより詳細に書き直すのだ。",
	Args:  cobra.ExactArgs(1),
	RunE:  movieExtendCommand,
}

var movieAppendCmd = &cobra.Command{
	Use:   "append",
	Short: "物語の続きとなる新しいシーンを1つ追加するのだ。",
	RunE:  movieAppendCommand,
}

var movieShowCmd = &cobra.Command{
	Use:   "show",
	Short: "プロジェクトの現在のシーン一覧を表示するのだ。",
	RunE:  movieShowCommand,
}

func init() {
	movieCmd.PersistentFlags().StringVarP(&movieProject, "project", "p", "", "プロジェクトJSONのパスなのだ。省略時は projects/movie.json なのだ。")
	movieNewCmd.Flags().StringVar(&movieTitle, "title", "", "映画のタイトルなのだ。")
	movieNewCmd.Flags().StringVar(&movieGenre, "genre", "", "映画のジャンルなのだ。")
	movieCmd.AddCommand(movieNewCmd, movieExtendCmd, movieAppendCmd, movieShowCmd)
}

func movieProjectPath(cfg *config.Config) string {
	if movieProject != "" {
		return movieProject
	}
	return filepath.Join(cfg.ProjectDir, "movie.json")
}

// movieEngine は設定からエンジンを構築し、プロジェクトを復元するのだ。
func movieEngine(cmd *cobra.Command) (*studio.Engine[studio.MovieConcept, studio.MovieScene], *builder.AppContext, string, error) {
	cfg := config.LoadConfig()
	cfg.Options = opts

	appCtx, err := builder.NewAppContext(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, "", err
	}

	engine := builder.BuildMovieEngine(appCtx)
	projectPath := movieProjectPath(cfg)
	if err := pipeline.LoadProject(projectPath, engine); err != nil {
		return nil, nil, "", err
	}
	return engine, appCtx, projectPath, nil
}

func movieNewCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if movieTitle == "" || movieGenre == "" {
		return fmt.Errorf("--title と --genre は必須なのだ")
	}

	engine, appCtx, projectPath, err := movieEngine(cmd)
	if err != nil {
		return err
	}

	slog.Info("物語の組み立てを開始するのだ！", "title", movieTitle, "genre", movieGenre)

	source := studio.NewMovieSource(appCtx.Gateway)
	concept, err := source.BuildConcept(ctx, movieTitle, movieGenre)
	if err != nil {
		reportError(err)
		return err
	}
	slog.Info("あらすじと登場人物ができたのだ", "characters", len(concept.Characters))

	scenes, err := engine.Generate(ctx, concept)
	if err != nil {
		reportError(err)
		return err
	}
	slog.Info("シーン台本が完成したのだ！", "scenes", len(scenes))

	return pipeline.SaveProject(projectPath, engine)
}

func movieExtendCommand(cmd *cobra.Command, args []string) error {
	engine, _, projectPath, err := movieEngine(cmd)
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

func movieAppendCommand(cmd *cobra.Command, args []string) error {
	engine, _, projectPath, err := movieEngine(cmd)
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

	slog.Info("新しいシーンを追加したのだ！", "scene_number", scene.Number, "scene_id", scene.ID)
	return pipeline.SaveProject(projectPath, engine)
}

func movieShowCommand(cmd *cobra.Command, args []string) error {
	engine, _, _, err := movieEngine(cmd)
	if err != nil {
		return err
	}

	scenes := engine.Scenes()
	if len(scenes) == 0 {
		slog.Info("シーンがまだないのだ。movie new で生成するのだ")
		return nil
	}
	for _, s := range scenes {
		fmt.Printf("Scene %d [%s]\n  %s\n", s.Number, s.ID, s.Payload.SceneAction)
	}
	return nil
}
