package studio

import (
	"context"
	"errors"
	"testing"
)

// testPayload はテスト用の最小のシーン内容なのだ。
type testPayload struct {
	Number int    `json:"scene_number"`
	Text   string `json:"text"`
}

func (p testPayload) Num() int { return p.Number }

// fakeSource は各操作を関数フィールドで差し替えられる Source なのだ。
type fakeSource struct {
	generateFn func(ctx context.Context, concept string) ([]testPayload, error)
	extendFn   func(ctx context.Context, concept string, scenes []Scene[testPayload], target Scene[testPayload]) (testPayload, error)
	nextFn     func(ctx context.Context, concept string, scenes []Scene[testPayload], nextNumber int, hint string) (testPayload, error)
}

func (f *fakeSource) GenerateScript(ctx context.Context, concept string) ([]testPayload, error) {
	return f.generateFn(ctx, concept)
}

func (f *fakeSource) ExtendScene(ctx context.Context, concept string, scenes []Scene[testPayload], target Scene[testPayload]) (testPayload, error) {
	return f.extendFn(ctx, concept, scenes, target)
}

func (f *fakeSource) NextScene(ctx context.Context, concept string, scenes []Scene[testPayload], nextNumber int, hint string) (testPayload, error) {
	return f.nextFn(ctx, concept, scenes, nextNumber, hint)
}

func newReadyEngine(t *testing.T, source *fakeSource, payloads ...testPayload) *Engine[string, testPayload] {
	t.Helper()
	engine := NewEngine[string, testPayload](source)
	source.generateFn = func(ctx context.Context, concept string) ([]testPayload, error) {
		return payloads, nil
	}
	if _, err := engine.Generate(context.Background(), "concept"); err != nil {
		t.Fatalf("初期生成に失敗したのだ: %v", err)
	}
	return engine
}

func TestEngine_Generate(t *testing.T) {
	t.Run("各シーンに一意のIDと応答の番号が付くのだ", func(t *testing.T) {
		source := &fakeSource{}
		engine := newReadyEngine(t, source,
			testPayload{Number: 1, Text: "open"},
			testPayload{Number: 2, Text: "middle"},
			testPayload{Number: 3, Text: "end"},
		)

		scenes := engine.Scenes()
		if len(scenes) != 3 {
			t.Fatalf("シーン数が違うのだ: %d", len(scenes))
		}
		seen := map[string]bool{}
		for i, s := range scenes {
			if s.ID == "" || seen[s.ID] {
				t.Errorf("IDが空か重複しているのだ: %q", s.ID)
			}
			seen[s.ID] = true
			if s.Number != i+1 {
				t.Errorf("番号が違うのだ: %d", s.Number)
			}
		}
		if engine.Status() != StatusReady {
			t.Errorf("Ready になっていないのだ: %v", engine.Status())
		}
	})

	t.Run("失敗したらシーンを空にして Empty に戻るのだ", func(t *testing.T) {
		source := &fakeSource{
			generateFn: func(ctx context.Context, concept string) ([]testPayload, error) {
				return nil, errors.New("boom")
			},
		}
		engine := NewEngine[string, testPayload](source)

		if _, err := engine.Generate(context.Background(), "concept"); err == nil {
			t.Fatal("エラーになるはずなのだ")
		}
		if engine.Status() != StatusEmpty {
			t.Errorf("Empty に戻っていないのだ: %v", engine.Status())
		}
		if len(engine.Scenes()) != 0 {
			t.Error("シーンが残っているのだ")
		}
	})
}

func TestEngine_Extend(t *testing.T) {
	t.Run("対象シーンだけがID・番号・位置を保って置き換わるのだ", func(t *testing.T) {
		source := &fakeSource{}
		engine := newReadyEngine(t, source,
			testPayload{Number: 1, Text: "a"},
			testPayload{Number: 2, Text: "b"},
			testPayload{Number: 3, Text: "c"},
		)
		before := engine.Scenes()

		source.extendFn = func(ctx context.Context, concept string, scenes []Scene[testPayload], target Scene[testPayload]) (testPayload, error) {
			return testPayload{Number: target.Number, Text: target.Payload.Text + "-extended"}, nil
		}

		changed, err := engine.Extend(context.Background(), before[1].ID)
		if err != nil {
			t.Fatalf("失敗しないはずなのだ: %v", err)
		}
		if !changed {
			t.Fatal("changed が false なのだ")
		}

		after := engine.Scenes()
		if after[1].ID != before[1].ID || after[1].Number != before[1].Number {
			t.Error("IDか番号が変わってしまったのだ")
		}
		if after[1].Payload.Text != "b-extended" {
			t.Errorf("内容が置き換わっていないのだ: %q", after[1].Payload.Text)
		}
		if after[0].Payload.Text != "a" || after[2].Payload.Text != "c" {
			t.Error("他のシーンが変わってしまったのだ")
		}
	})

	t.Run("存在しないIDは呼び出しなしの no-op なのだ", func(t *testing.T) {
		source := &fakeSource{
			extendFn: func(ctx context.Context, concept string, scenes []Scene[testPayload], target Scene[testPayload]) (testPayload, error) {
				t.Error("呼ばれてはいけないのだ")
				return testPayload{}, nil
			},
		}
		engine := newReadyEngine(t, source, testPayload{Number: 1, Text: "a"})

		changed, err := engine.Extend(context.Background(), "no-such-id")
		if err != nil {
			t.Fatalf("エラーではないのだ: %v", err)
		}
		if changed {
			t.Error("changed が true なのだ")
		}
	})

	t.Run("失敗してもシーン列は保持されるのだ", func(t *testing.T) {
		source := &fakeSource{}
		engine := newReadyEngine(t, source, testPayload{Number: 1, Text: "a"})
		id := engine.Scenes()[0].ID

		source.extendFn = func(ctx context.Context, concept string, scenes []Scene[testPayload], target Scene[testPayload]) (testPayload, error) {
			return testPayload{}, errors.New("boom")
		}

		if _, err := engine.Extend(context.Background(), id); err == nil {
			t.Fatal("エラーになるはずなのだ")
		}
		if got := engine.Scenes(); len(got) != 1 || got[0].Payload.Text != "a" {
			t.Errorf("シーンが失われたのだ: %+v", got)
		}

		// フラグが解除されていて再試行できるのだ
		source.extendFn = func(ctx context.Context, concept string, scenes []Scene[testPayload], target Scene[testPayload]) (testPayload, error) {
			return testPayload{Number: 1, Text: "a2"}, nil
		}
		changed, err := engine.Extend(context.Background(), id)
		if err != nil || !changed {
			t.Fatalf("再試行できないのだ: changed=%v err=%v", changed, err)
		}
	})
}

func TestEngine_AppendNext(t *testing.T) {
	t.Run("番号は既存の最大+1なのだ", func(t *testing.T) {
		source := &fakeSource{}
		engine := newReadyEngine(t, source,
			testPayload{Number: 2, Text: "a"},
			testPayload{Number: 5, Text: "b"},
		)

		source.nextFn = func(ctx context.Context, concept string, scenes []Scene[testPayload], nextNumber int, hint string) (testPayload, error) {
			if nextNumber != 6 {
				t.Errorf("次の番号が違うのだ: %d", nextNumber)
			}
			return testPayload{Number: nextNumber, Text: "new"}, nil
		}

		scene, err := engine.AppendNext(context.Background(), "")
		if err != nil {
			t.Fatalf("失敗しないはずなのだ: %v", err)
		}
		if scene == nil || scene.Number != 6 {
			t.Fatalf("追加結果が違うのだ: %+v", scene)
		}
		if got := engine.Scenes(); len(got) != 3 || got[2].ID != scene.ID {
			t.Errorf("末尾に追加されていないのだ: %+v", got)
		}
	})

	t.Run("未生成のプロジェクトでは no-op なのだ", func(t *testing.T) {
		source := &fakeSource{
			nextFn: func(ctx context.Context, concept string, scenes []Scene[testPayload], nextNumber int, hint string) (testPayload, error) {
				t.Error("呼ばれてはいけないのだ")
				return testPayload{}, nil
			},
		}
		engine := NewEngine[string, testPayload](source)

		scene, err := engine.AppendNext(context.Background(), "")
		if err != nil {
			t.Fatalf("エラーではないのだ: %v", err)
		}
		if scene != nil {
			t.Errorf("no-op のはずなのだ: %+v", scene)
		}
	})

	t.Run("ヒントはそのまま Source に渡るのだ", func(t *testing.T) {
		source := &fakeSource{}
		engine := newReadyEngine(t, source, testPayload{Number: 1, Text: "a"})

		source.nextFn = func(ctx context.Context, concept string, scenes []Scene[testPayload], nextNumber int, hint string) (testPayload, error) {
			if hint != "Hero Shot" {
				t.Errorf("ヒントが渡っていないのだ: %q", hint)
			}
			return testPayload{Number: nextNumber, Text: "hero"}, nil
		}

		if _, err := engine.AppendNext(context.Background(), "Hero Shot"); err != nil {
			t.Fatalf("失敗しないはずなのだ: %v", err)
		}
	})
}

func TestEngine_MutualExclusion(t *testing.T) {
	t.Run("拡張中の追加は呼び出しなしの no-op なのだ", func(t *testing.T) {
		source := &fakeSource{}
		engine := newReadyEngine(t, source, testPayload{Number: 1, Text: "a"})
		id := engine.Scenes()[0].ID

		started := make(chan struct{})
		release := make(chan struct{})
		source.extendFn = func(ctx context.Context, concept string, scenes []Scene[testPayload], target Scene[testPayload]) (testPayload, error) {
			close(started)
			<-release
			return testPayload{Number: 1, Text: "a2"}, nil
		}
		source.nextFn = func(ctx context.Context, concept string, scenes []Scene[testPayload], nextNumber int, hint string) (testPayload, error) {
			t.Error("排他が効いていないのだ")
			return testPayload{}, nil
		}

		extendDone := make(chan error, 1)
		go func() {
			_, err := engine.Extend(context.Background(), id)
			extendDone <- err
		}()

		<-started
		scene, err := engine.AppendNext(context.Background(), "")
		if err != nil {
			t.Fatalf("no-op はエラーではないのだ: %v", err)
		}
		if scene != nil {
			t.Errorf("拡張中に追加できてしまったのだ: %+v", scene)
		}

		close(release)
		if err := <-extendDone; err != nil {
			t.Fatalf("拡張が失敗したのだ: %v", err)
		}

		// 拡張が終われば追加できるのだ
		source.nextFn = func(ctx context.Context, concept string, scenes []Scene[testPayload], nextNumber int, hint string) (testPayload, error) {
			return testPayload{Number: nextNumber, Text: "new"}, nil
		}
		scene, err = engine.AppendNext(context.Background(), "")
		if err != nil || scene == nil {
			t.Fatalf("解放後に追加できないのだ: scene=%+v err=%v", scene, err)
		}
	})

	t.Run("追加中の拡張は呼び出しなしの no-op なのだ", func(t *testing.T) {
		source := &fakeSource{}
		engine := newReadyEngine(t, source, testPayload{Number: 1, Text: "a"})
		id := engine.Scenes()[0].ID

		started := make(chan struct{})
		release := make(chan struct{})
		source.nextFn = func(ctx context.Context, concept string, scenes []Scene[testPayload], nextNumber int, hint string) (testPayload, error) {
			close(started)
			<-release
			return testPayload{Number: nextNumber, Text: "new"}, nil
		}
		source.extendFn = func(ctx context.Context, concept string, scenes []Scene[testPayload], target Scene[testPayload]) (testPayload, error) {
			t.Error("排他が効いていないのだ")
			return testPayload{}, nil
		}

		appendDone := make(chan error, 1)
		go func() {
			_, err := engine.AppendNext(context.Background(), "")
			appendDone <- err
		}()

		<-started
		changed, err := engine.Extend(context.Background(), id)
		if err != nil {
			t.Fatalf("no-op はエラーではないのだ: %v", err)
		}
		if changed {
			t.Error("追加中に拡張できてしまったのだ")
		}

		close(release)
		if err := <-appendDone; err != nil {
			t.Fatalf("追加が失敗したのだ: %v", err)
		}
	})
}

func TestEngine_Restore(t *testing.T) {
	t.Run("シーンがあれば Ready として復元されるのだ", func(t *testing.T) {
		engine := NewEngine[string, testPayload](&fakeSource{})
		engine.Restore("saved", []Scene[testPayload]{
			{ID: "id-1", Number: 1, Payload: testPayload{Number: 1, Text: "a"}},
		})

		if engine.Status() != StatusReady {
			t.Errorf("Ready になっていないのだ: %v", engine.Status())
		}
		concept, ok := engine.Concept()
		if !ok || concept != "saved" {
			t.Errorf("コンセプトが復元されていないのだ: %q", concept)
		}
	})

	t.Run("空のシーン列は Empty のままなのだ", func(t *testing.T) {
		engine := NewEngine[string, testPayload](&fakeSource{})
		engine.Restore("saved", nil)
		if engine.Status() != StatusEmpty {
			t.Errorf("Empty ではないのだ: %v", engine.Status())
		}
	})
}
