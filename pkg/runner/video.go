package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"
	"github.com/sela-zcodex/ai-creative-tools/pkg/job"
)

// DefaultPollInterval はビデオジョブのポーリング間隔です。
const DefaultPollInterval = 5 * time.Second

// DefaultStatusInterval はステータスメッセージのローテーション間隔です。
// 実際のポーリングとは独立した、純粋に表示用の周期です。
const DefaultStatusInterval = 5 * time.Second

// StatusMessages は、ポーリング中に順番に表示する固定メッセージです。
var StatusMessages = []string{
	"Warming up the creative engines...",
	"Gathering pixels and photons...",
	"Directing the digital actors...",
	"Rendering the first few frames...",
	"This can take a few minutes, good things come to those who wait!",
	"Applying cinematic color grading...",
	"Composing the perfect shot...",
	"Almost there, the masterpiece is nearly complete...",
}

// GeneratedVideo は取得済みのビデオ成果物です。
type GeneratedVideo struct {
	Data     []byte
	Prompt   string
	Filename string
}

// VideoResult はビデオ生成の結果です。Cancelled=true の場合、クライアント側の
// 観測を止めただけで、サーバー側のジョブは続行している可能性があります。
type VideoResult struct {
	Video     *GeneratedVideo
	Cancelled bool
}

// StatusFunc は表示用ステータスメッセージの通知です。nil 可。
type StatusFunc func(message string)

// VideoRunner は、ビデオ生成ジョブを投入し完了までポーリングする
// オーケストレータです。ポーリングに最大回数の上限はなく、プロバイダが
// 終端状態を報告することに依存します。
type VideoRunner struct {
	gw             gateway.Gateway
	pollInterval   time.Duration
	statusInterval time.Duration
}

// NewVideoRunner は既定の間隔で VideoRunner を生成します。
func NewVideoRunner(gw gateway.Gateway) *VideoRunner {
	return &VideoRunner{
		gw:             gw,
		pollInterval:   DefaultPollInterval,
		statusInterval: DefaultStatusInterval,
	}
}

// NewVideoRunnerWithIntervals は間隔を指定して VideoRunner を生成します。
func NewVideoRunnerWithIntervals(gw gateway.Gateway, poll, status time.Duration) *VideoRunner {
	return &VideoRunner{gw: gw, pollInterval: poll, statusInterval: status}
}

// Run はビデオ生成を実行します。conditioning が nil でなければ条件付け
// 画像として添付します。キャンセルは各ポーリング境界でのみ観測します。
func (r *VideoRunner) Run(ctx context.Context, prompt string, conditioning []byte, tok *job.Token, onStatus StatusFunc) (VideoResult, error) {
	op, err := r.gw.StartVideo(ctx, prompt, conditioning)
	if err != nil {
		return VideoResult{}, fmt.Errorf("ビデオジョブの開始に失敗しました: %w", err)
	}
	slog.Info("ビデオ生成ジョブを投入しました", "operation", op.Name)

	stopStatus := r.startStatusRotation(onStatus)
	defer stopStatus()

	for !op.Done {
		if tok.Cancelled() {
			// 投入済みのサーバー側ジョブは中断できないため、観測だけを止めます。
			slog.Info("ビデオのポーリングをキャンセルしました", "operation", op.Name)
			return VideoResult{Cancelled: true}, nil
		}

		select {
		case <-ctx.Done():
			return VideoResult{}, ctx.Err()
		case <-time.After(r.pollInterval):
		}

		op, err = r.gw.PollVideo(ctx, op)
		if err != nil {
			return VideoResult{}, fmt.Errorf("ビデオジョブのポーリングに失敗しました: %w", err)
		}
	}

	// 完了したのに成果物のURIが無い場合は終端の失敗として扱います。
	if op.ResultURI == "" {
		return VideoResult{}, fmt.Errorf("ビデオ生成は完了しましたが成果物がありません: %w", gateway.ErrNoResult)
	}

	data, err := r.gw.FetchBytes(ctx, op.ResultURI)
	if err != nil {
		return VideoResult{}, fmt.Errorf("ビデオの取得に失敗しました: %w", err)
	}

	slog.Info("ビデオ生成が完了しました", "operation", op.Name, "bytes", len(data))
	return VideoResult{
		Video: &GeneratedVideo{
			Data:     data,
			Prompt:   prompt,
			Filename: promptStem(prompt) + ".mp4",
		},
	}, nil
}

// startStatusRotation は表示用メッセージを固定周期で回す goroutine を
// 起動し、停止用の関数を返します。onStatus が nil なら何もしません。
func (r *VideoRunner) startStatusRotation(onStatus StatusFunc) func() {
	if onStatus == nil {
		return func() {}
	}

	onStatus(StatusMessages[0])
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(r.statusInterval)
		defer ticker.Stop()
		index := 1
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				onStatus(StatusMessages[index%len(StatusMessages)])
				index++
			}
		}
	}()
	return func() { close(done) }
}
