package runner

import (
	"context"
	"strings"
	"testing"
)

func TestTextRunner_SuggestVoice(t *testing.T) {
	voices := []Voice{
		{Name: "Google US English", Lang: "en-US", IsLocal: false},
		{Name: "Local Voice", Lang: "en-US", IsLocal: true},
	}

	t.Run("候補に実在する名前は available=true なのだ", func(t *testing.T) {
		gw := &fakeGateway{
			generateTextFn: func(ctx context.Context, prompt, system string) (string, error) {
				if !strings.Contains(prompt, "Google US English") {
					t.Error("候補リストがプロンプトに含まれていないのだ")
				}
				return "Google US English", nil
			},
		}

		name, available, err := NewTextRunner(gw).SuggestVoice(context.Background(), "hello", voices)
		if err != nil {
			t.Fatalf("失敗しないはずなのだ: %v", err)
		}
		if !available || name != "Google US English" {
			t.Errorf("選定結果が違うのだ: name=%q available=%v", name, available)
		}
	})

	t.Run("候補に無い名前は available=false なのだ", func(t *testing.T) {
		gw := &fakeGateway{
			generateTextFn: func(ctx context.Context, prompt, system string) (string, error) {
				return "Imaginary Voice", nil
			},
		}

		name, available, err := NewTextRunner(gw).SuggestVoice(context.Background(), "hello", voices)
		if err != nil {
			t.Fatalf("失敗しないはずなのだ: %v", err)
		}
		if available {
			t.Errorf("実在しない音声が available になったのだ: %q", name)
		}
	})

	t.Run("候補が空ならエラーなのだ", func(t *testing.T) {
		if _, _, err := NewTextRunner(&fakeGateway{}).SuggestVoice(context.Background(), "hello", nil); err == nil {
			t.Error("エラーになるはずなのだ")
		}
	})
}

func TestTextRunner_Translate(t *testing.T) {
	t.Run("対象言語がプロンプトに埋め込まれるのだ", func(t *testing.T) {
		gw := &fakeGateway{
			generateTextFn: func(ctx context.Context, prompt, system string) (string, error) {
				if !strings.Contains(prompt, "Khmer") {
					t.Errorf("対象言語が含まれていないのだ: %s", prompt)
				}
				return "សួស្តី", nil
			},
		}

		out, err := NewTextRunner(gw).Translate(context.Background(), "hello", "Khmer")
		if err != nil {
			t.Fatalf("失敗しないはずなのだ: %v", err)
		}
		if out != "សួស្តី" {
			t.Errorf("翻訳結果が違うのだ: %q", out)
		}
	})
}
