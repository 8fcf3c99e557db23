// Package job は、ユーザーが起動した1回の生成リクエストの
// ライフサイクル状態と協調キャンセルのトークンを定義します。
package job

import (
	"sync/atomic"

	"github.com/sela-zcodex/ai-creative-tools/pkg/apperr"
)

// Status は生成ジョブの状態です。ポーリング中とエラーの同時成立の
// ような不正な組み合わせは、単一のタグ付き状態にすることで表現
// 不能にしています。
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPolling
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPolling:
		return "polling"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Progress はバッチ処理の進捗です。Completed/Total は画像単位、
// Batch/TotalBatches はサブバッチ単位のカウントです。
type Progress struct {
	Completed    int
	Total        int
	Batch        int
	TotalBatches int
}

// State はジョブの現在状態のスナップショットです。所有する
// ランナーだけが更新し、コールバック経由で購読側に公開されます。
type State struct {
	Status   Status
	Progress *Progress
	Failure  *apperr.Classification
}

// Token は協調キャンセルのトークンです。キャンセルは安全点
// （バッチ境界、ポーリング境界）でのみ観測され、処理中の呼び出しを
// 強制中断することはありません。
type Token struct {
	cancelled atomic.Bool
}

// NewToken は未キャンセル状態のトークンを返します。
func NewToken() *Token {
	return &Token{}
}

// Cancel はキャンセルを要求します。何度呼んでも安全です。
func (t *Token) Cancel() {
	if t == nil {
		return
	}
	t.cancelled.Store(true)
}

// Cancelled はキャンセルが要求済みかを返します。nil トークンは
// 「キャンセル不可」を意味し、常に false です。
func (t *Token) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}
