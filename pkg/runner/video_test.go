package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"
	"github.com/sela-zcodex/ai-creative-tools/pkg/job"
)

// newTestVideoRunner はテストが待たされないように間隔を縮めるのだ。
func newTestVideoRunner(gw gateway.Gateway) *VideoRunner {
	return NewVideoRunnerWithIntervals(gw, time.Millisecond, time.Hour)
}

func TestVideoRunner_Run(t *testing.T) {
	t.Run("完了までポーリングして成果物を1回だけ取得するのだ", func(t *testing.T) {
		polls := 0
		fetches := 0
		gw := &fakeGateway{
			startVideoFn: func(ctx context.Context, prompt string, conditioning []byte) (gateway.Operation, error) {
				return gateway.Operation{Name: "op-1"}, nil
			},
			pollVideoFn: func(ctx context.Context, op gateway.Operation) (gateway.Operation, error) {
				polls++
				if polls < 2 {
					return gateway.Operation{Name: op.Name}, nil
				}
				return gateway.Operation{Name: op.Name, Done: true, ResultURI: "https://example.com/video"}, nil
			},
			fetchBytesFn: func(ctx context.Context, uri string) ([]byte, error) {
				fetches++
				if uri != "https://example.com/video" {
					t.Errorf("取得先URIが違うのだ: %s", uri)
				}
				return []byte("mp4"), nil
			},
		}

		r := newTestVideoRunner(gw)
		result, err := r.Run(context.Background(), "drone shot", nil, nil, nil)
		if err != nil {
			t.Fatalf("失敗しないはずなのだ: %v", err)
		}
		if polls != 2 {
			t.Errorf("ポーリング回数が違うのだ: %d", polls)
		}
		if fetches != 1 {
			t.Errorf("取得回数が違うのだ: %d", fetches)
		}
		if result.Video == nil || string(result.Video.Data) != "mp4" {
			t.Fatalf("成果物が違うのだ: %+v", result.Video)
		}
		if result.Video.Filename != "drone_shot.mp4" {
			t.Errorf("ファイル名が違うのだ: %s", result.Video.Filename)
		}
	})

	t.Run("完了したのにURIが無い場合は取得せずに失敗するのだ", func(t *testing.T) {
		fetches := 0
		gw := &fakeGateway{
			startVideoFn: func(ctx context.Context, prompt string, conditioning []byte) (gateway.Operation, error) {
				return gateway.Operation{Name: "op-2", Done: true}, nil
			},
			fetchBytesFn: func(ctx context.Context, uri string) ([]byte, error) {
				fetches++
				return nil, nil
			},
		}

		r := newTestVideoRunner(gw)
		_, err := r.Run(context.Background(), "empty", nil, nil, nil)
		if !errors.Is(err, gateway.ErrNoResult) {
			t.Fatalf("ErrNoResult が包まれているはずなのだ: %v", err)
		}
		if fetches != 0 {
			t.Errorf("取得が呼ばれてしまったのだ: %d", fetches)
		}
	})

	t.Run("キャンセルはポーリング境界で観測されて正常終了するのだ", func(t *testing.T) {
		tok := job.NewToken()
		gw := &fakeGateway{
			startVideoFn: func(ctx context.Context, prompt string, conditioning []byte) (gateway.Operation, error) {
				tok.Cancel()
				return gateway.Operation{Name: "op-3"}, nil
			},
			pollVideoFn: func(ctx context.Context, op gateway.Operation) (gateway.Operation, error) {
				t.Error("キャンセル後にポーリングされたのだ")
				return op, nil
			},
		}

		r := newTestVideoRunner(gw)
		result, err := r.Run(context.Background(), "cancelled", nil, tok, nil)
		if err != nil {
			t.Fatalf("キャンセルはエラーではないのだ: %v", err)
		}
		if !result.Cancelled {
			t.Error("Cancelled が立っていないのだ")
		}
	})

	t.Run("ジョブの投入失敗はそのまま返すのだ", func(t *testing.T) {
		boom := errors.New("boom")
		gw := &fakeGateway{
			startVideoFn: func(ctx context.Context, prompt string, conditioning []byte) (gateway.Operation, error) {
				return gateway.Operation{}, boom
			},
		}

		r := newTestVideoRunner(gw)
		if _, err := r.Run(context.Background(), "fail", nil, nil, nil); !errors.Is(err, boom) {
			t.Fatalf("元のエラーが包まれていないのだ: %v", err)
		}
	})

	t.Run("最初のステータスメッセージが即時に通知されるのだ", func(t *testing.T) {
		gw := &fakeGateway{
			startVideoFn: func(ctx context.Context, prompt string, conditioning []byte) (gateway.Operation, error) {
				return gateway.Operation{Name: "op-4", Done: true, ResultURI: "u"}, nil
			},
			fetchBytesFn: func(ctx context.Context, uri string) ([]byte, error) {
				return []byte("x"), nil
			},
		}

		var messages []string
		r := newTestVideoRunner(gw)
		if _, err := r.Run(context.Background(), "status", nil, nil, func(m string) {
			messages = append(messages, m)
		}); err != nil {
			t.Fatalf("失敗しないはずなのだ: %v", err)
		}

		if len(messages) == 0 || messages[0] != StatusMessages[0] {
			t.Errorf("最初のメッセージが違うのだ: %v", messages)
		}
	})
}
