package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

// 各操作が使用するモデルの定義です。
const (
	imageModel     = "imagen-4.0-generate-001"
	videoModel     = "veo-2.0-generate-001"
	textModel      = "gemini-2.5-flash"
	imageEditModel = "gemini-2.5-flash-image-preview"
)

const defaultTemperature = float32(0.2)

// Client は google.golang.org/genai に束縛された Gateway 実装です。
// 資格情報は Configure で明示的に差し替えます。暗黙のグローバル状態は
// 持たず、Configure 前の生成呼び出しは ErrNotConfigured で失敗します。
type Client struct {
	mu         sync.RWMutex
	ai         *genai.Client
	apiKey     string
	httpClient *http.Client
	fetchCache fetchCache
}

// Options は Client の構築パラメータです。
type Options struct {
	// HTTPClient は FetchBytes で使用するクライアントです。nil の場合は
	// タイムアウト付きのデフォルトを生成します。
	HTTPClient *http.Client
	// FetchCacheTTL は取得済みバイト列のキャッシュ保持時間です。
	// 0 の場合はデフォルト（30分）を使用します。
	FetchCacheTTL time.Duration
}

// New は未設定状態の Client を生成します。生成機能を使う前に
// Configure で資格情報を与える必要があります。
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(defaultFetchTimeout)
	}

	ttl := opts.FetchCacheTTL
	if ttl <= 0 {
		ttl = defaultFetchCacheTTL
	}

	return &Client{
		httpClient: httpClient,
		fetchCache: newFetchCache(ttl),
	}
}

// Configure は資格情報を受け取り、配下の genai クライアントを再構築します。
// ユーザーが設定を更新した場合もこの関数で丸ごと置き換えます。
func (c *Client) Configure(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("api key is empty")
	}

	ai, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("genaiクライアントの初期化に失敗しました: %w", err)
	}

	c.mu.Lock()
	c.ai = ai
	c.apiKey = apiKey
	c.mu.Unlock()
	return nil
}

// Configured は資格情報が設定済みかを返します。
func (c *Client) Configured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ai != nil
}

func (c *Client) client() (*genai.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ai == nil {
		return nil, ErrNotConfigured
	}
	return c.ai, nil
}

// GenerateImages は Imagen による一括画像生成です。
func (c *Client) GenerateImages(ctx context.Context, prompt string, cfg ImageConfig) ([][]byte, error) {
	ai, err := c.client()
	if err != nil {
		return nil, err
	}
	if cfg.Count < 1 || cfg.Count > MaxImagesPerCall {
		return nil, fmt.Errorf("画像枚数 %d は 1〜%d の範囲外です", cfg.Count, MaxImagesPerCall)
	}

	resp, err := ai.Models.GenerateImages(ctx, imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(cfg.Count),
		OutputMIMEType: "image/png",
		AspectRatio:    cfg.AspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("画像生成に失敗しました: %w", err)
	}

	images := make([][]byte, 0, len(resp.GeneratedImages))
	for _, gi := range resp.GeneratedImages {
		if gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		images = append(images, gi.Image.ImageBytes)
	}
	if len(images) == 0 {
		return nil, ErrNoResult
	}
	return images, nil
}

// StartVideo は Veo のビデオ生成ジョブを投入します。
func (c *Client) StartVideo(ctx context.Context, prompt string, conditioning []byte) (Operation, error) {
	ai, err := c.client()
	if err != nil {
		return Operation{}, err
	}

	var image *genai.Image
	if len(conditioning) > 0 {
		image = &genai.Image{ImageBytes: conditioning, MIMEType: "image/png"}
	}

	op, err := ai.Models.GenerateVideos(ctx, videoModel, prompt, image, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
	})
	if err != nil {
		return Operation{}, fmt.Errorf("ビデオ生成ジョブの投入に失敗しました: %w", err)
	}
	return toOperation(op), nil
}

// PollVideo はジョブの最新状態を1回取得します。
func (c *Client) PollVideo(ctx context.Context, op Operation) (Operation, error) {
	ai, err := c.client()
	if err != nil {
		return Operation{}, err
	}

	updated, err := ai.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: op.Name}, nil)
	if err != nil {
		return Operation{}, fmt.Errorf("ビデオジョブのポーリングに失敗しました: %w", err)
	}
	return toOperation(updated), nil
}

func toOperation(op *genai.GenerateVideosOperation) Operation {
	out := Operation{Name: op.Name, Done: op.Done}
	if op.Response != nil && len(op.Response.GeneratedVideos) > 0 {
		if v := op.Response.GeneratedVideos[0].Video; v != nil {
			out.ResultURI = v.URI
		}
	}
	return out
}

// GenerateStructured はレスポンススキーマ制約付きのJSON生成です。
// 応答がスキーマ通りにデコードできない場合は ShapeMismatchError を返します。
func (c *Client) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any) error {
	ai, err := c.client()
	if err != nil {
		return err
	}

	resp, err := ai.Models.GenerateContent(ctx, textModel, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(defaultTemperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return fmt.Errorf("構造化生成に失敗しました: %w", err)
	}

	raw := trimJSONFence(resp.Text())
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &ShapeMismatchError{Err: err}
	}
	return nil
}

// AnalyzeImage は画像と指示文によるスキーマ制約付きのJSON生成です。
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, prompt string, schema *genai.Schema, out any) error {
	ai, err := c.client()
	if err != nil {
		return err
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: image}},
			{Text: prompt},
		},
	}}

	resp, err := ai.Models.GenerateContent(ctx, textModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return fmt.Errorf("画像解析に失敗しました: %w", err)
	}

	raw := trimJSONFence(resp.Text())
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &ShapeMismatchError{Err: err}
	}
	return nil
}

// GenerateText は単発のテキスト生成です。
func (c *Client) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	ai, err := c.client()
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	resp, err := ai.Models.GenerateContent(ctx, textModel, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("テキスト生成に失敗しました: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// EditImage は画像と指示文を渡して編集済み画像を受け取ります。
// 応答に画像パートが含まれない場合は ErrNoResult を返します。
func (c *Client) EditImage(ctx context.Context, image []byte, instruction string) ([]byte, error) {
	ai, err := c.client()
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: image}},
			{Text: instruction},
		},
	}}

	resp, err := ai.Models.GenerateContent(ctx, imageEditModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return nil, fmt.Errorf("画像編集に失敗しました: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, ErrNoResult
}
