package grader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"
)

const (
	// DefaultScoreThreshold はタグ付け対象となる採点スコアの下限です。
	DefaultScoreThreshold = 50

	// defaultGradeConcurrency は並列採点の同時実行数の上限です。
	defaultGradeConcurrency = 4

	// defaultTagRate はタグ付け呼び出しの秒間レートです。逐次実行に
	// 加えて呼び出し間隔を空け、クォータの消費を平準化します。
	defaultTagRate = rate.Limit(1)
)

var gradingSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"acceptanceProbability": {
			Type:        genai.TypeInteger,
			Description: "The probability (0-100) that this image would be accepted by a major stock photography agency.",
		},
		"feedback": {
			Type:        genai.TypeString,
			Description: "A brief, constructive feedback explaining the rationale behind the acceptance probability.",
		},
		"rejectionReasons": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: `A list of specific, common rejection reasons if the probability is low (e.g., "Poor Lighting", "Out of Focus", "Visible Noise"). Can be empty if the image is good.`,
		},
	},
	Required: []string{"acceptanceProbability", "feedback", "rejectionReasons"},
}

var taggingSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title": {
			Type:        genai.TypeString,
			Description: "A short, descriptive, and commercially viable title for the image (under 100 characters).",
		},
		"keywords": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of 10-15 relevant keywords, ordered by importance, for stock photography sites.",
		},
	},
	Required: []string{"title", "keywords"},
}

const gradingPrompt = "Act as an expert stock photography reviewer. Analyze this image based on technical quality (focus, noise, lighting) and commercial viability. Provide a probability of acceptance for a major stock photo site like Adobe Stock or Getty Images. Also provide concise feedback and a list of specific rejection reasons if the image is likely to be rejected."

const taggingPrompt = "Generate a commercially viable title and a list of relevant keywords for this stock photo. The title should be descriptive and concise. The keywords should be relevant and useful for search."

const enhancementPromptBase = "Act as a professional photo editor. Enhance this image for professional stock photography. Improve overall resolution, color balance, and details to make it look high-quality and commercially appealing. Do not add or remove any objects from the scene."

// Grader はストック写真の採点・補正・タグ付けのオーケストレーターです。
// 採点は並列、タグ付けは逐次で実行します。補正された画像は未採点状態に
// 戻り、次回の採点で再評価されます。
type Grader struct {
	gw       gateway.Gateway
	logger   *slog.Logger
	limiter  *rate.Limiter
	parallel int

	// Threshold はタグ付け対象のスコア下限です。
	Threshold int

	mu     sync.Mutex
	images []*Image
}

// New は Grader を生成します。logger が nil の場合は slog.Default() を使います。
func New(gw gateway.Gateway, logger *slog.Logger) *Grader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grader{
		gw:        gw,
		logger:    logger,
		limiter:   rate.NewLimiter(defaultTagRate, 1),
		parallel:  defaultGradeConcurrency,
		Threshold: DefaultScoreThreshold,
	}
}

// Add は画像をコレクションに追加し、採番されたIDを返します。
func (g *Grader) Add(filename string, data []byte) string {
	img := &Image{
		ID:       uuid.NewString(),
		Filename: filename,
		Data:     data,
		Status:   StatusPending,
	}
	g.mu.Lock()
	g.images = append(g.images, img)
	g.mu.Unlock()
	return img.ID
}

// Images は現在のコレクションのスナップショットを返します。
func (g *Grader) Images() []Image {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Image, 0, len(g.images))
	for _, img := range g.images {
		out = append(out, *img)
	}
	return out
}

// ClearAll はコレクションを空にします。
func (g *Grader) ClearAll() {
	g.mu.Lock()
	g.images = nil
	g.mu.Unlock()
}

func (g *Grader) find(id string) *Image {
	for _, img := range g.images {
		if img.ID == id {
			return img
		}
	}
	return nil
}

// GradeAll は未採点（Pending）の画像をすべて並列に採点します。
// 個々の失敗はその画像を Error にするだけで他の画像の採点は継続し、
// 全画像が確定してから失敗をまとめて返します。
func (g *Grader) GradeAll(ctx context.Context) error {
	g.mu.Lock()
	targets := make([]*Image, 0, len(g.images))
	for _, img := range g.images {
		if img.Status == StatusPending && len(img.Data) > 0 {
			img.Status = StatusGrading
			targets = append(targets, img)
		}
	}
	g.mu.Unlock()

	if len(targets) == 0 {
		return nil
	}

	var (
		errMu sync.Mutex
		errs  []error
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallel)
	for _, img := range targets {
		eg.Go(func() error {
			var out struct {
				AcceptanceProbability int      `json:"acceptanceProbability"`
				Feedback              string   `json:"feedback"`
				RejectionReasons      []string `json:"rejectionReasons"`
			}
			err := g.gw.AnalyzeImage(ctx, img.Data, gradingPrompt, gradingSchema, &out)

			g.mu.Lock()
			defer g.mu.Unlock()
			if err != nil {
				img.Status = StatusError
				g.logger.Warn("画像の採点に失敗しました", "filename", img.Filename, "error", err)
				errMu.Lock()
				errs = append(errs, fmt.Errorf("%s の採点に失敗しました: %w", img.Filename, err))
				errMu.Unlock()
				return nil
			}
			score := out.AcceptanceProbability
			img.Score = &score
			img.Feedback = out.Feedback
			img.RejectionReasons = out.RejectionReasons
			img.Status = StatusGraded
			return nil
		})
	}
	_ = eg.Wait()

	return errors.Join(errs...)
}

// EnhanceOne は指摘された却下理由の修正を指示して画像を補正します。
// 成功した画像は採点結果とメタデータがすべて消去され、未採点に戻ります。
// 却下理由が空の場合や画像が見つからない場合は何もしません。
func (g *Grader) EnhanceOne(ctx context.Context, id string, reasonsToFix []string) error {
	if len(reasonsToFix) == 0 {
		return nil
	}

	g.mu.Lock()
	img := g.find(id)
	if img == nil || len(img.Data) == 0 {
		g.mu.Unlock()
		return nil
	}
	img.Status = StatusEnhancing
	data := img.Data
	g.mu.Unlock()

	prompt := enhancementPromptBase + fmt.Sprintf(" Specifically, focus on correcting the following issues: %s.", strings.Join(reasonsToFix, ", "))

	enhanced, err := g.gw.EditImage(ctx, data, prompt)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		img.Status = StatusError
		return fmt.Errorf("%s の補正に失敗しました: %w", img.Filename, err)
	}

	img.Data = enhanced
	img.Filename = "enhanced_" + img.Filename
	img.Status = StatusPending
	img.Score = nil
	img.Feedback = ""
	img.RejectionReasons = nil
	img.Title = ""
	img.Keywords = nil
	g.logger.Info("画像を補正しました。再採点の対象になります", "filename", img.Filename)
	return nil
}

// TagAllEligible は採点済みでスコアが閾値以上、かつタイトル未生成の
// 画像へ逐次タイトルとキーワードを付与します。個々の失敗はその画像を
// Error にするだけで残りの処理は継続します。
func (g *Grader) TagAllEligible(ctx context.Context) error {
	g.mu.Lock()
	targets := make([]*Image, 0, len(g.images))
	for _, img := range g.images {
		if g.eligibleForTagging(img) {
			targets = append(targets, img)
		}
	}
	g.mu.Unlock()

	if len(targets) == 0 {
		return nil
	}
	g.logger.Info("メタデータ生成を開始します", "count", len(targets))

	var errs []error
	for _, img := range targets {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		g.mu.Lock()
		img.Status = StatusTagging
		data := img.Data
		g.mu.Unlock()

		var out struct {
			Title    string   `json:"title"`
			Keywords []string `json:"keywords"`
		}
		err := g.gw.AnalyzeImage(ctx, data, taggingPrompt, taggingSchema, &out)

		g.mu.Lock()
		if err != nil {
			img.Status = StatusError
			g.logger.Warn("タグ生成に失敗しました", "filename", img.Filename, "error", err)
			errs = append(errs, fmt.Errorf("%s のタグ生成に失敗しました: %w", img.Filename, err))
		} else {
			img.Title = out.Title
			img.Keywords = out.Keywords
			img.Status = StatusGraded
		}
		g.mu.Unlock()
	}

	return errors.Join(errs...)
}

func (g *Grader) eligibleForTagging(img *Image) bool {
	return img.Status == StatusGraded &&
		img.Score != nil && *img.Score >= g.Threshold &&
		img.Title == "" &&
		len(img.Data) > 0
}
