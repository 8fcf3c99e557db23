package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultPollInterval   = 5 * time.Second
	DefaultAspectRatio    = "1:1"
	DefaultImageCount     = 1
	DefaultScoreThreshold = 50
	DefaultHTTPTimeout    = 180 * time.Second
	DefaultOutputDir      = "output"
	DefaultProjectDir     = "projects" // スタジオのプロジェクトJSONの保存先なのだ
)

// Config はアプリケーション全体の環境設定（APIキーや出力先）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey   string
	OutputDir      string
	ProjectDir     string
	PollInterval   time.Duration
	ScoreThreshold int

	Options RunOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
// APIキーは環境変数を優先し、未設定なら保存済みの資格情報を使うのだ。
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:   envutil.GetEnv("GEMINI_API_KEY", ""),
		OutputDir:      envutil.GetEnv("OUTPUT_DIR", DefaultOutputDir),
		ProjectDir:     envutil.GetEnv("PROJECT_DIR", DefaultProjectDir),
		PollInterval:   DefaultPollInterval,
		ScoreThreshold: DefaultScoreThreshold,
	}
	if cfg.GeminiAPIKey == "" {
		if key, err := LoadCredential(); err == nil {
			cfg.GeminiAPIKey = key
		}
	}
	return cfg
}

// RunOptions は CLI フラグから渡される実行時のパラメータなのだ。
type RunOptions struct {
	// 画像生成関連
	ImageCount  int    // --count
	AspectRatio string // --aspect-ratio

	// ビデオ生成関連
	ConditioningImage string // --image: 条件付け画像のパス

	// スタジオ関連
	ProjectFile string // --project: プロジェクトJSONのパス

	// 実行制御
	HTTPTimeout time.Duration // --http-timeout
	OutputDir   string        // --output-dir
}
