package veoprompt

import (
	"strings"
	"testing"
)

func TestScene_Compose(t *testing.T) {
	t.Run("環境・人物・セリフ・撮影条件の順で合成されるのだ", func(t *testing.T) {
		scene := Scene{
			Characters: []Character{
				{
					ID:          "c1",
					Name:        "Dara",
					Description: "a tall man",
					Outfit:      "a red jacket",
					Hairstyle:   "short black hair",
					Action:      "walking through the market",
				},
			},
			Dialogues: []Dialogue{
				{ID: "d1", CharacterID: "c1", Dialogue: "Follow me."},
			},
			Environment: Environment{
				Description:   "A busy night market in Phnom Penh.",
				Lighting:      "neon",
				CameraAngle:   "low angle",
				ShootingStyle: "cinematic",
			},
		}

		got := scene.Compose()
		want := `A busy night market in Phnom Penh. a tall man wearing a red jacket with short black hair. The character is walking through the market. Dara says: "Follow me." The scene's lighting is neon, camera angle is low angle, shot in a cinematic style.`
		if got != want {
			t.Errorf("合成結果が違うのだ:\n got %q\nwant %q", got, want)
		}
	})

	t.Run("空フィールドは既定の表現で補われるのだ", func(t *testing.T) {
		scene := Scene{
			Characters: []Character{
				{ID: "c1", Age: "25", Race: "Khmer", Gender: "woman"},
			},
		}

		got := scene.Compose()
		want := "25-year-old Khmer woman wearing clothes with hair."
		if got != want {
			t.Errorf("既定表現が違うのだ:\n got %q\nwant %q", got, want)
		}
	})

	t.Run("存在しない人物IDのセリフは無視されるのだ", func(t *testing.T) {
		scene := Scene{
			Characters: []Character{
				{ID: "c1", Name: "Dara", Description: "a man"},
			},
			Dialogues: []Dialogue{
				{ID: "d1", CharacterID: "ghost", Dialogue: "You cannot hear me."},
			},
		}

		got := scene.Compose()
		if strings.Contains(got, "You cannot hear me") {
			t.Errorf("無効なセリフが合成されたのだ: %q", got)
		}
	})

	t.Run("名前のない人物はIDの先頭で呼ばれるのだ", func(t *testing.T) {
		scene := Scene{
			Characters: []Character{
				{ID: "abcdef-123", Description: "a stranger"},
			},
			Dialogues: []Dialogue{
				{ID: "d1", CharacterID: "abcdef-123", Dialogue: "Hello."},
			},
		}

		got := scene.Compose()
		if !strings.Contains(got, `Character abcd says: "Hello."`) {
			t.Errorf("代替名が違うのだ: %q", got)
		}
	})

	t.Run("空のシーンは空文字列なのだ", func(t *testing.T) {
		if got := (Scene{}).Compose(); got != "" {
			t.Errorf("空ではないのだ: %q", got)
		}
	})
}

func TestScene_JSON(t *testing.T) {
	scene := Scene{
		Characters:  []Character{{ID: "c1", Name: "Dara"}},
		Environment: Environment{Description: "A market."},
	}
	got, err := scene.JSON()
	if err != nil {
		t.Fatalf("JSON化に失敗したのだ: %v", err)
	}
	if !strings.Contains(got, `"cameraAngle"`) {
		t.Errorf("キャメルケースのキーが含まれていないのだ: %q", got)
	}
	if !strings.Contains(got, "\n  ") {
		t.Errorf("インデントされていないのだ: %q", got)
	}
}
