package grader

import (
	"strings"
	"testing"
)

// addExported はエクスポート対象になる採点・タグ付け済みの画像を登録するのだ。
func addExported(g *Grader, img Image) {
	g.mu.Lock()
	defer g.mu.Unlock()
	copied := img
	g.images = append(g.images, &copied)
}

func intPtr(n int) *int { return &n }

func TestGrader_ExportCSV(t *testing.T) {
	t.Run("テキストは常に引用符付きでスコアだけ裸の数値なのだ", func(t *testing.T) {
		g := newTestGrader(&fakeGateway{})
		addExported(g, Image{
			Filename: "cat.png",
			Title:    "A Cat",
			Keywords: []string{"cat", "pet"},
			Score:    intPtr(82),
			Feedback: "sharp focus",
			Status:   StatusGraded,
		})

		got := g.ExportCSV()
		lines := strings.Split(got, "\n")
		if len(lines) != 2 {
			t.Fatalf("行数が違うのだ: %q", got)
		}
		if lines[0] != "Filename,Title,Keywords,AcceptanceProbability,Feedback,RejectionReasons" {
			t.Errorf("ヘッダが違うのだ: %q", lines[0])
		}
		want := `"cat.png","A Cat","cat, pet",82,"sharp focus",""`
		if lines[1] != want {
			t.Errorf("行が違うのだ:\n got %q\nwant %q", lines[1], want)
		}
	})

	t.Run("引用符を含むフィールドは二重化されるのだ", func(t *testing.T) {
		g := newTestGrader(&fakeGateway{})
		addExported(g, Image{
			Filename: "quote.png",
			Title:    `He said "hi"`,
			Keywords: []string{"a", "b"},
			Score:    intPtr(70),
			Status:   StatusGraded,
		})

		got := g.ExportCSV()
		if !strings.Contains(got, `"He said ""hi"""`) {
			t.Errorf("引用符が二重化されていないのだ: %q", got)
		}
		if !strings.Contains(got, `"a, b"`) {
			t.Errorf("リストが引用符付きで結合されていないのだ: %q", got)
		}
	})

	t.Run("スコア未設定は空セルになるのだ", func(t *testing.T) {
		g := newTestGrader(&fakeGateway{})
		addExported(g, Image{
			Filename: "nostore.png",
			Title:    "Untitled Work",
			Keywords: []string{"misc"},
			Status:   StatusGraded,
		})

		got := g.ExportCSV()
		want := `"nostore.png","Untitled Work","misc",,"",""`
		if lines := strings.Split(got, "\n"); len(lines) != 2 || lines[1] != want {
			t.Errorf("行が違うのだ:\n got %q\nwant %q", got, want)
		}
	})

	t.Run("タイトルかキーワードが欠けた画像は出力されないのだ", func(t *testing.T) {
		g := newTestGrader(&fakeGateway{})
		addExported(g, Image{Filename: "untitled.png", Keywords: []string{"k"}, Status: StatusGraded})
		addExported(g, Image{Filename: "nokeys.png", Title: "Title", Status: StatusGraded})
		addExported(g, Image{
			Filename: "ok.png",
			Title:    "Keeper",
			Keywords: []string{"k"},
			Score:    intPtr(60),
			Status:   StatusGraded,
		})

		got := g.ExportCSV()
		if strings.Contains(got, "untitled.png") || strings.Contains(got, "nokeys.png") {
			t.Errorf("対象外の画像が出力されたのだ: %q", got)
		}
		if !strings.Contains(got, "ok.png") {
			t.Errorf("対象の画像が出力されていないのだ: %q", got)
		}
	})

	t.Run("対象が1枚もなければ空文字列なのだ", func(t *testing.T) {
		g := newTestGrader(&fakeGateway{})
		g.Add("pending.png", []byte{1})
		if got := g.ExportCSV(); got != "" {
			t.Errorf("空ではないのだ: %q", got)
		}
	})
}
