package builder

import (
	"context"
	"fmt"

	"github.com/sela-zcodex/ai-creative-tools/internal/config"
	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"

	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config  *config.Config       // Configは、環境変数と保存済み資格情報から読み込まれたグローバルな設定です。
	Options config.RunOptions    // Optionsは、コマンドラインから渡された実行時の設定です（枚数、出力先など）。
	Gateway *gateway.Client      // Gatewayは、生成AIプロバイダとの通信に使う共通クライアントです。
	Reader  remoteio.InputReader // Readerは、条件付け画像や入力データの読み込みに使用する入力元です。
	Writer  remoteio.OutputWriter // Writerは、生成された成果物を保存するための出力先です。
}

// NewAppContext は AppContext を組み立てて返す。APIキーが設定済みなら
// この時点で Gateway も設定するのだ。未設定のまま生成操作を呼ぶと
// gateway.ErrNotConfigured になる。
func NewAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	gw := gateway.New(gateway.Options{})
	if cfg.GeminiAPIKey != "" {
		if err := gw.Configure(ctx, cfg.GeminiAPIKey); err != nil {
			return nil, fmt.Errorf("Gatewayの初期化に失敗したのだ: %w", err)
		}
	}

	factory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("リモートIOファクトリの初期化に失敗したのだ: %w", err)
	}
	reader, err := factory.NewInputReader()
	if err != nil {
		return nil, fmt.Errorf("InputReaderの取得に失敗したのだ: %w", err)
	}
	writer, err := factory.NewOutputWriter()
	if err != nil {
		return nil, fmt.Errorf("OutputWriterの取得に失敗したのだ: %w", err)
	}

	return &AppContext{
		Config:  cfg,
		Options: cfg.Options,
		Gateway: gw,
		Reader:  reader,
		Writer:  writer,
	}, nil
}
