package runner

import (
	"context"

	"google.golang.org/genai"

	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"
)

// fakeGateway はテスト用の Gateway 実装なのだ。必要な関数だけ
// 差し替えて使うのだ。
type fakeGateway struct {
	generateImagesFn func(ctx context.Context, prompt string, cfg gateway.ImageConfig) ([][]byte, error)
	startVideoFn     func(ctx context.Context, prompt string, conditioning []byte) (gateway.Operation, error)
	pollVideoFn      func(ctx context.Context, op gateway.Operation) (gateway.Operation, error)
	fetchBytesFn     func(ctx context.Context, uri string) ([]byte, error)
	generateTextFn   func(ctx context.Context, prompt, systemInstruction string) (string, error)
}

func (f *fakeGateway) GenerateImages(ctx context.Context, prompt string, cfg gateway.ImageConfig) ([][]byte, error) {
	return f.generateImagesFn(ctx, prompt, cfg)
}

func (f *fakeGateway) StartVideo(ctx context.Context, prompt string, conditioning []byte) (gateway.Operation, error) {
	return f.startVideoFn(ctx, prompt, conditioning)
}

func (f *fakeGateway) PollVideo(ctx context.Context, op gateway.Operation) (gateway.Operation, error) {
	return f.pollVideoFn(ctx, op)
}

func (f *fakeGateway) FetchBytes(ctx context.Context, uri string) ([]byte, error) {
	return f.fetchBytesFn(ctx, uri)
}

func (f *fakeGateway) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any) error {
	return nil
}

func (f *fakeGateway) AnalyzeImage(ctx context.Context, image []byte, prompt string, schema *genai.Schema, out any) error {
	return nil
}

func (f *fakeGateway) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	return f.generateTextFn(ctx, prompt, systemInstruction)
}

func (f *fakeGateway) EditImage(ctx context.Context, image []byte, instruction string) ([]byte, error) {
	return nil, nil
}
