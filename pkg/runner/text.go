package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"
)

// Voice は音声候補の1件です。IsLocal=false はクラウド音声を意味し、
// 言語とスタイルが合うなら優先されます。
type Voice struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	IsLocal bool   `json:"isLocal"`
}

// TextRunner は単発のテキスト変換（プロンプト拡張・翻訳・校正・
// 音声選定）を行うオーケストレータです。状態は持ちません。
type TextRunner struct {
	gw gateway.Gateway
}

// NewTextRunner は TextRunner を生成します。
func NewTextRunner(gw gateway.Gateway) *TextRunner {
	return &TextRunner{gw: gw}
}

// EnhancePrompt は素朴なユーザープロンプトを画像生成向けの
// 詳細なプロンプトに書き直します。
func (r *TextRunner) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	const system = "You are a creative assistant that rewrites simple user prompts into vivid, detailed, and professional prompts for an AI image generator. Do not add any preamble or explanation, just output the enhanced prompt text directly."
	contents := fmt.Sprintf(`Rewrite and expand this simple user prompt into a highly detailed and descriptive prompt for an AI image generator. Make it cinematic, visually rich, and full of evocative details. User prompt: %q`, prompt)

	out, err := r.gw.GenerateText(ctx, contents, system)
	if err != nil {
		return "", fmt.Errorf("プロンプト拡張に失敗しました: %w", err)
	}
	return out, nil
}

// Translate はテキストを指定言語へ翻訳します。
func (r *TextRunner) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	const system = "You are a professional translator. You will be given text and a target language. Translate the text accurately to the target language. Do not add any preamble, explanation, or quotation marks. Output only the translated text directly."
	contents := fmt.Sprintf("Translate the following text to %s: %q", targetLanguage, text)

	out, err := r.gw.GenerateText(ctx, contents, system)
	if err != nil {
		return "", fmt.Errorf("翻訳に失敗しました: %w", err)
	}
	return out, nil
}

// Correct はテキストのスペルと文法を修正します。
func (r *TextRunner) Correct(ctx context.Context, text string) (string, error) {
	const system = "You are a professional editor. You will be given text to correct for spelling and grammar. Only output the corrected text. Do not add any preamble, explanation, or quotation marks."
	contents := fmt.Sprintf("Correct the spelling and grammar of the following text: %q", text)

	out, err := r.gw.GenerateText(ctx, contents, system)
	if err != nil {
		return "", fmt.Errorf("校正に失敗しました: %w", err)
	}
	return out, nil
}

// SuggestVoice はテキストの読み上げに最適な音声を候補リストから選ばせます。
// 返り値の available は、AIが返した名前が候補に実在するかを示します。
func (r *TextRunner) SuggestVoice(ctx context.Context, text string, voices []Voice) (name string, available bool, err error) {
	if len(voices) == 0 {
		return "", false, fmt.Errorf("音声候補が空です")
	}

	voiceList, err := json.Marshal(voices)
	if err != nil {
		return "", false, fmt.Errorf("音声候補のエンコードに失敗しました: %w", err)
	}

	prompt := fmt.Sprintf(`You are an expert voice casting director. Your task is to select the best voice for reading the provided text aloud from a given list of voices.

Voices marked with "isLocal: false" are high-quality, cloud-based voices and should be strongly preferred if their language and style fit the text.

Text to be read:
%q

Available voices:
%s

Based on the text and the available voices, which voice is the best fit? Respond with ONLY the exact "name" of the chosen voice from the list provided. Do not add any explanation or punctuation.`, text, voiceList)

	out, err := r.gw.GenerateText(ctx, prompt, "")
	if err != nil {
		return "", false, fmt.Errorf("音声選定に失敗しました: %w", err)
	}

	chosen := strings.TrimSpace(out)
	for _, v := range voices {
		if v.Name == chosen {
			return chosen, true, nil
		}
	}
	return chosen, false, nil
}
