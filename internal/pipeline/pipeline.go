package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"

	"github.com/sela-zcodex/ai-creative-tools/internal/builder"
	"github.com/sela-zcodex/ai-creative-tools/internal/config"
	"github.com/sela-zcodex/ai-creative-tools/pkg/apperr"
	"github.com/sela-zcodex/ai-creative-tools/pkg/grader"
	"github.com/sela-zcodex/ai-creative-tools/pkg/job"
	"github.com/sela-zcodex/ai-creative-tools/pkg/runner"
)

// ExecuteImageBatch は、プロンプトから画像を一括生成して保存するのだ。
// 途中で SIGINT を受けた場合はサブバッチの区切りで安全に停止し、
// 取得済みの画像はそのまま保存するのだ。
func ExecuteImageBatch(ctx context.Context, cfg *config.Config, prompt string) error {
	appCtx, err := builder.NewAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	imageRunner := builder.BuildImageBatchRunner(appCtx)

	tok := job.NewToken()
	stop := watchInterrupt(tok)
	defer stop()

	result, runErr := imageRunner.Run(ctx, prompt, imageRunnerOptions(cfg), tok, func(p job.Progress) {
		slog.Info("進捗なのだ", "completed", p.Completed, "total", p.Total, "batch", p.Batch, "total_batches", p.TotalBatches)
	})

	// 失敗・キャンセルでも部分結果は保存するのだ
	outDir := outputDir(cfg)
	for _, img := range result.Images {
		outPath := path.Join(outDir, img.Filename)
		if werr := appCtx.Writer.Write(ctx, outPath, bytes.NewReader(img.Data), "image/png"); werr != nil {
			return fmt.Errorf("画像の保存に失敗したのだ: %w", werr)
		}
		slog.Info("画像を保存したのだ", "path", outPath)
	}

	if runErr != nil {
		reportJobEnd(job.StatusFailed, runErr)
		return runErr
	}
	if result.Cancelled {
		slog.Info("キャンセルされたのだ。取得済みの画像だけ保存したのだ", "saved", len(result.Images))
		return nil
	}

	reportJobEnd(job.StatusSucceeded, nil)
	slog.Info("画像の一括生成が完了したのだ！", "count", len(result.Images))
	return nil
}

// ExecuteVideo は、ビデオ生成ジョブを投入して完了までポーリングし、
// 成果物を保存するのだ。--image で条件付け画像を渡せるのだ。
func ExecuteVideo(ctx context.Context, cfg *config.Config, prompt string) error {
	appCtx, err := builder.NewAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	var conditioning []byte
	if imgPath := cfg.Options.ConditioningImage; imgPath != "" {
		rc, err := appCtx.Reader.Open(ctx, imgPath)
		if err != nil {
			return fmt.Errorf("条件付け画像 '%s' の読み込みに失敗したのだ: %w", imgPath, err)
		}
		conditioning, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("条件付け画像の読み込みに失敗したのだ: %w", err)
		}
	}

	videoRunner := builder.BuildVideoRunner(appCtx)

	tok := job.NewToken()
	stop := watchInterrupt(tok)
	defer stop()

	result, err := videoRunner.Run(ctx, prompt, conditioning, tok, func(message string) {
		slog.Info(message)
	})
	if err != nil {
		reportJobEnd(job.StatusFailed, err)
		return err
	}
	if result.Cancelled {
		slog.Info("ポーリングを中断したのだ。サーバー側のジョブは続いている可能性があるのだ")
		return nil
	}

	outPath := path.Join(outputDir(cfg), result.Video.Filename)
	if err := appCtx.Writer.Write(ctx, outPath, bytes.NewReader(result.Video.Data), "video/mp4"); err != nil {
		return fmt.Errorf("ビデオの保存に失敗したのだ: %w", err)
	}

	reportJobEnd(job.StatusSucceeded, nil)
	slog.Info("ビデオ生成が完了したのだ！", "path", outPath)
	return nil
}

// ExecuteGrade は、ディレクトリ内の画像をまとめて採点し、合格した画像へ
// タイトルとキーワードを付与して、メタデータCSVを書き出すのだ。
// enhance を立てると、閾値未満で却下理由の付いた画像を補正して再採点し、
// 補正版の画像も出力ディレクトリへ保存するのだ。
func ExecuteGrade(ctx context.Context, cfg *config.Config, dir string, enhance bool) error {
	appCtx, err := builder.NewAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	g := builder.BuildGrader(appCtx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("ディレクトリ '%s' の読み込みに失敗したのだ: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("画像 '%s' の読み込みに失敗したのだ: %w", entry.Name(), err)
		}
		g.Add(entry.Name(), data)
	}

	if len(g.Images()) == 0 {
		return fmt.Errorf("採点対象の画像が '%s' に見つからないのだ", dir)
	}

	slog.Info("一括採点を開始するのだ", "count", len(g.Images()))
	if err := g.GradeAll(ctx); err != nil {
		slog.Warn("一部の画像の採点に失敗したのだ", "error", err)
	}

	if enhance {
		enhanceRejected(ctx, g)
	}

	if err := g.TagAllEligible(ctx); err != nil {
		slog.Warn("一部の画像のタグ生成に失敗したのだ", "error", err)
	}

	for _, img := range g.Images() {
		attrs := []any{"filename", img.Filename, "status", img.Status.String()}
		if img.Score != nil {
			attrs = append(attrs, "score", *img.Score)
		}
		slog.Info("採点結果なのだ", attrs...)
	}

	if enhance {
		outDir := outputDir(cfg)
		for _, img := range g.Images() {
			if !strings.HasPrefix(img.Filename, "enhanced_") {
				continue
			}
			outPath := path.Join(outDir, img.Filename)
			if err := appCtx.Writer.Write(ctx, outPath, bytes.NewReader(img.Data), imageMIME(img.Filename)); err != nil {
				return fmt.Errorf("補正画像の保存に失敗したのだ: %w", err)
			}
			slog.Info("補正画像を保存したのだ", "path", outPath)
		}
	}

	csv := g.ExportCSV()
	if csv == "" {
		slog.Info("エクスポート対象のメタデータがなかったのだ")
		return nil
	}

	outPath := path.Join(outputDir(cfg), grader.CSVFilename)
	if err := appCtx.Writer.Write(ctx, outPath, strings.NewReader(csv), "text/csv"); err != nil {
		return fmt.Errorf("CSVの保存に失敗したのだ: %w", err)
	}
	slog.Info("メタデータCSVを書き出したのだ！", "path", outPath)
	return nil
}

// reportJobEnd は、ジョブの終了状態を分類結果つきでログに残すのだ。
func reportJobEnd(status job.Status, err error) {
	state := job.State{Status: status}
	if err != nil {
		cls := apperr.Classify(err)
		state.Failure = &cls
	}

	attrs := []any{"status", state.Status.String()}
	if state.Failure != nil {
		attrs = append(attrs, "kind", state.Failure.Kind.String())
	}
	slog.Info("ジョブが終了したのだ", attrs...)
}

// watchInterrupt は SIGINT を監視してキャンセルトークンを立てるのだ。
// 戻り値の stop で監視を解除するのだ。
func watchInterrupt(tok *job.Token) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			slog.Info("割り込みを受けたのだ。安全な区切りで停止するのだ...")
			tok.Cancel()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func outputDir(cfg *config.Config) string {
	if cfg.Options.OutputDir != "" {
		return cfg.Options.OutputDir
	}
	return cfg.OutputDir
}

func imageRunnerOptions(cfg *config.Config) runner.ImageOptions {
	count := cfg.Options.ImageCount
	if count < 1 {
		count = config.DefaultImageCount
	}
	aspect := cfg.Options.AspectRatio
	if aspect == "" {
		aspect = config.DefaultAspectRatio
	}
	return runner.ImageOptions{Count: count, AspectRatio: aspect}
}

// enhanceRejected は、閾値未満で却下理由の付いた画像を補正して再採点するのだ。
// 補正された画像は未採点に戻るため、もう一度 GradeAll を回すのだ。
func enhanceRejected(ctx context.Context, g *grader.Grader) {
	enhanced := 0
	for _, img := range g.Images() {
		if img.Status != grader.StatusGraded || img.Score == nil || *img.Score >= g.Threshold || len(img.RejectionReasons) == 0 {
			continue
		}
		if err := g.EnhanceOne(ctx, img.ID, img.RejectionReasons); err != nil {
			slog.Warn("画像の補正に失敗したのだ", "filename", img.Filename, "error", err)
			continue
		}
		enhanced++
	}
	if enhanced == 0 {
		return
	}

	slog.Info("補正した画像を再採点するのだ", "count", enhanced)
	if err := g.GradeAll(ctx); err != nil {
		slog.Warn("一部の補正画像の再採点に失敗したのだ", "error", err)
	}
}

func imageMIME(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return true
	}
	return false
}
