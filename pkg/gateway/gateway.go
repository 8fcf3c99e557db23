package gateway

import (
	"context"

	"google.golang.org/genai"
)

// ImageConfig は1回の画像生成呼び出しの設定です。
// Count はプロバイダの上限（MaxImagesPerCall）以下でなければなりません。
type ImageConfig struct {
	Count       int
	AspectRatio string
}

// MaxImagesPerCall は、プロバイダが1回の呼び出しで受け付ける画像枚数の上限です。
// これは外部の固定制約であり、超過分の分割は呼び出し側（ランナー）の責務です。
const MaxImagesPerCall = 8

// Operation は、長時間実行されるビデオ生成ジョブを表す不透明ハンドルです。
// Name を使って完了までポーリングし、Done になった時点で ResultURI が
// 成果物の取得先を指します（空の場合は成果物なし）。
type Operation struct {
	Name      string
	Done      bool
	ResultURI string
}

// Gateway は、リモート生成AIプロバイダへの抽象境界です。
// 上位のオーケストレーション層はすべてこのインターフェース越しに通信し、
// リトライやジョブ状態の管理は一切ここでは行いません。
type Gateway interface {
	// GenerateImages は最大 MaxImagesPerCall 枚の画像を一括生成します。
	GenerateImages(ctx context.Context, prompt string, cfg ImageConfig) ([][]byte, error)

	// StartVideo はビデオ生成ジョブを投入し、ポーリング用のハンドルを返します。
	// conditioning が nil でなければ条件付け画像（PNG）として添付します。
	StartVideo(ctx context.Context, prompt string, conditioning []byte) (Operation, error)

	// PollVideo はハンドルの最新状態を1回だけ取得します。
	PollVideo(ctx context.Context, op Operation) (Operation, error)

	// FetchBytes は URI から成果物の生バイトを取得します。資格情報は実装側が付与します。
	FetchBytes(ctx context.Context, uri string) ([]byte, error)

	// GenerateStructured はスキーマ制約付きのJSON生成を行い、out にデコードします。
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any) error

	// AnalyzeImage は画像と指示文を入力としたスキーマ制約付きのJSON生成です。
	// 採点やタグ付けのようなマルチモーダル解析に使用します。
	AnalyzeImage(ctx context.Context, image []byte, prompt string, schema *genai.Schema, out any) error

	// GenerateText は単発のテキスト生成を行います。systemInstruction は空でも構いません。
	GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error)

	// EditImage は画像と指示文を渡し、編集済み画像のバイト列を返します。
	EditImage(ctx context.Context, image []byte, instruction string) ([]byte, error)
}
