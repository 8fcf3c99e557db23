// Package runner は、生成AIゲートウェイを駆動する各オーケストレータ
// （バッチ画像生成・ビデオ生成・テキスト変換）を提供します。
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"
	"github.com/sela-zcodex/ai-creative-tools/pkg/job"
)

// ImageOptions は画像生成リクエストの設定です。Count はプロバイダ上限を
// 超えても構いません（ランナー側でサブバッチに分割します）。
type ImageOptions struct {
	Count       int
	AspectRatio string
}

// GeneratedImage は生成された1枚の画像と決定的に導出されたファイル名です。
type GeneratedImage struct {
	Data     []byte
	Prompt   string
	Filename string
}

// ImageBatchResult はバッチ画像生成の結果です。キャンセル時・失敗時も
// 取得済みの画像は Images にそのまま残ります。
type ImageBatchResult struct {
	Images    []GeneratedImage
	Cancelled bool
}

// ProgressFunc はサブバッチ完了ごとの進捗通知です。nil 可。
type ProgressFunc func(job.Progress)

// ImageBatchRunner は、プロバイダの1回あたり枚数上限を超える画像
// リクエストをサブバッチへ分割し、順番に実行するオーケストレータです。
type ImageBatchRunner struct {
	gw gateway.Gateway
}

// NewImageBatchRunner は ImageBatchRunner を生成します。
func NewImageBatchRunner(gw gateway.Gateway) *ImageBatchRunner {
	return &ImageBatchRunner{gw: gw}
}

// Run はバッチ画像生成を実行します。
//
// 上限以下なら1回の呼び出しで完了します。超える場合は ceil(count/上限)
// 個のサブバッチを厳密に逐次実行し、各バッチの前でキャンセルフラグを
// 確認します。キャンセルはエラーではなく、取得済み画像を保持したまま
// Cancelled=true で早期リターンします。いずれかのバッチが失敗した場合は
// 残りを中断し、そこまでの画像を保持したままエラーを返します。
func (r *ImageBatchRunner) Run(ctx context.Context, prompt string, opts ImageOptions, tok *job.Token, onProgress ProgressFunc) (ImageBatchResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return ImageBatchResult{}, fmt.Errorf("プロンプトが空です")
	}
	if opts.Count < 1 {
		return ImageBatchResult{}, fmt.Errorf("画像枚数 %d が不正です", opts.Count)
	}

	total := opts.Count
	totalBatches := (total + gateway.MaxImagesPerCall - 1) / gateway.MaxImagesPerCall

	var result ImageBatchResult
	for i := 0; i < totalBatches; i++ {
		// キャンセルはサブバッチ境界でのみ観測します（呼び出し中は中断不可）。
		if tok.Cancelled() {
			slog.Info("画像生成をキャンセルしました", "completed", len(result.Images), "total", total)
			result.Cancelled = true
			return result, nil
		}

		countInBatch := min(gateway.MaxImagesPerCall, total-i*gateway.MaxImagesPerCall)
		if onProgress != nil {
			onProgress(job.Progress{
				Completed:    i * gateway.MaxImagesPerCall,
				Total:        total,
				Batch:        i + 1,
				TotalBatches: totalBatches,
			})
		}

		images, err := r.gw.GenerateImages(ctx, prompt, gateway.ImageConfig{
			Count:       countInBatch,
			AspectRatio: opts.AspectRatio,
		})
		if err != nil {
			return result, fmt.Errorf("バッチ %d/%d の画像生成に失敗しました: %w", i+1, totalBatches, err)
		}

		for idx, data := range images {
			globalIndex := i*gateway.MaxImagesPerCall + idx + 1
			result.Images = append(result.Images, GeneratedImage{
				Data:     data,
				Prompt:   prompt,
				Filename: fmt.Sprintf("%s_%d.png", promptStem(prompt), globalIndex),
			})
		}
		slog.Info("サブバッチが完了しました", "batch", i+1, "total_batches", totalBatches, "images", len(result.Images))
	}

	return result, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// promptStem はプロンプト文字列からファイル名の語幹を導出します。
// 先頭20文字に切り詰めて空白の連続をアンダースコアに置き換えます。
func promptStem(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > 20 {
		runes = runes[:20]
	}
	return whitespaceRe.ReplaceAllString(string(runes), "_")
}
