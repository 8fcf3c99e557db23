package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sela-zcodex/ai-creative-tools/internal/builder"
	"github.com/sela-zcodex/ai-creative-tools/internal/config"
	"github.com/sela-zcodex/ai-creative-tools/pkg/runner"

	"github.com/spf13/cobra"
)

var (
	textTargetLanguage string
	textVoices         []string
)

// textCmd はテキストユーティリティなのだ。プロンプトの強化・翻訳・校正を
// まとめて提供するのだよ。結果は標準出力にそのまま出すのだ。
var textCmd = &cobra.Command{
	Use:   "text",
	Short: "プロンプト強化・翻訳・校正のテキストユーティリティなのだ。",
}

var textEnhanceCmd = &cobra.Command{
	Use:   "enhance <prompt>",
	Short: "シンプルなプロンプトを画像生成向けの詳細な表現へ書き直すのだ。",
	Args:  cobra.ExactArgs(1),
	RunE:  textCommandFor((*runner.TextRunner).EnhancePrompt),
}

var textCorrectCmd = &cobra.Command{
	Use:   "correct <text>",
	Short: "スペルと文法を校正するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE:  textCommandFor((*runner.TextRunner).Correct),
}

var textTranslateCmd = &cobra.Command{
	Use:   "translate <text>",
	Short: "テキストを指定言語へ翻訳するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := buildTextRunner(cmd)
		if err != nil {
			return err
		}
		out, err := tr.Translate(cmd.Context(), args[0], textTargetLanguage)
		if err != nil {
			reportError(err)
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var textSuggestVoiceCmd = &cobra.Command{
	Use:   "suggest-voice <text>",
	Short: "テキストの読み上げに最適な音声を候補から選ばせるのだ。",
	Example: `  ai-creative-tools text suggest-voice "ជំរាបសួរ" \
    --voice "Google Khmer|km-KH|cloud" --voice "Local Khmer|km-KH|local"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		voices, err := parseVoices(textVoices)
		if err != nil {
			return err
		}

		tr, err := buildTextRunner(cmd)
		if err != nil {
			return err
		}
		name, available, err := tr.SuggestVoice(cmd.Context(), args[0], voices)
		if err != nil {
			reportError(err)
			return err
		}
		if !available {
			slog.Warn("AIが候補にない音声名を返したのだ", "name", name)
		}
		fmt.Println(name)
		return nil
	},
}

func init() {
	textTranslateCmd.Flags().StringVarP(&textTargetLanguage, "to", "t", "Khmer", "翻訳先の言語なのだ。")
	textSuggestVoiceCmd.Flags().StringArrayVar(&textVoices, "voice", nil, `音声候補なのだ（"name|lang|local か cloud" 形式、繰り返し可）。`)
	_ = textSuggestVoiceCmd.MarkFlagRequired("voice")
	textCmd.AddCommand(textEnhanceCmd, textCorrectCmd, textTranslateCmd, textSuggestVoiceCmd)
}

// parseVoices は "name|lang|local" 形式の候補指定を Voice に変換するのだ。
func parseVoices(specs []string) ([]runner.Voice, error) {
	voices := make([]runner.Voice, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, "|")
		if len(parts) < 2 {
			return nil, fmt.Errorf("音声候補 '%s' の形式が違うのだ（name|lang|local か cloud）", spec)
		}
		v := runner.Voice{Name: parts[0], Lang: parts[1]}
		if len(parts) > 2 {
			v.IsLocal = parts[2] == "local"
		}
		voices = append(voices, v)
	}
	return voices, nil
}

func buildTextRunner(cmd *cobra.Command) (*runner.TextRunner, error) {
	cfg := config.LoadConfig()
	cfg.Options = opts

	appCtx, err := builder.NewAppContext(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return builder.BuildTextRunner(appCtx), nil
}

// textCommandFor は、単一テキストを受けて単一テキストを返す操作を
// RunE に変換する共通化ヘルパーなのだ。
func textCommandFor(op func(*runner.TextRunner, context.Context, string) (string, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		tr, err := buildTextRunner(cmd)
		if err != nil {
			return err
		}
		out, err := op(tr, cmd.Context(), args[0])
		if err != nil {
			reportError(err)
			return err
		}
		fmt.Println(out)
		return nil
	}
}
