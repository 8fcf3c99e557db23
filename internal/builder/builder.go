package builder

import (
	"log/slog"

	"github.com/sela-zcodex/ai-creative-tools/pkg/grader"
	"github.com/sela-zcodex/ai-creative-tools/pkg/runner"
	"github.com/sela-zcodex/ai-creative-tools/pkg/studio"
)

// BuildImageBatchRunner はバッチ画像生成を担当する Runner を構築します。
func BuildImageBatchRunner(appCtx *AppContext) *runner.ImageBatchRunner {
	return runner.NewImageBatchRunner(appCtx.Gateway)
}

// BuildVideoRunner はビデオ生成ジョブのポーリングを担当する Runner を構築します。
func BuildVideoRunner(appCtx *AppContext) *runner.VideoRunner {
	if appCtx.Config.PollInterval > 0 {
		return runner.NewVideoRunnerWithIntervals(appCtx.Gateway, appCtx.Config.PollInterval, appCtx.Config.PollInterval)
	}
	return runner.NewVideoRunner(appCtx.Gateway)
}

// BuildTextRunner はプロンプト強化・翻訳・校正を担当する Runner を構築します。
func BuildTextRunner(appCtx *AppContext) *runner.TextRunner {
	return runner.NewTextRunner(appCtx.Gateway)
}

// BuildGrader は採点・タグ付けのオーケストレーターを構築します。
func BuildGrader(appCtx *AppContext) *grader.Grader {
	g := grader.New(appCtx.Gateway, slog.Default())
	if appCtx.Config.ScoreThreshold > 0 {
		g.Threshold = appCtx.Config.ScoreThreshold
	}
	return g
}

// BuildMovieEngine は映画スタジオのエンジンを構築します。
func BuildMovieEngine(appCtx *AppContext) *studio.Engine[studio.MovieConcept, studio.MovieScene] {
	return studio.NewMovieEngine(appCtx.Gateway)
}

// BuildRCCrawlerEngine はRCクローラースタジオのエンジンを構築します。
func BuildRCCrawlerEngine(appCtx *AppContext) *studio.Engine[studio.RCCrawlerConcept, studio.RCCrawlerScene] {
	return studio.NewRCCrawlerEngine(appCtx.Gateway)
}

// BuildASMREngine はASMRスタジオのエンジンを構築します。
func BuildASMREngine(appCtx *AppContext) *studio.Engine[studio.ASMRConcept, studio.ASMRScene] {
	return studio.NewASMREngine(appCtx.Gateway)
}
