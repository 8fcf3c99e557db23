package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sela-zcodex/ai-creative-tools/pkg/studio"
)

// projectFile はスタジオのプロジェクト状態をJSONで永続化するための
// 入れ物なのだ。CLIは1回の実行ごとにプロセスが終わるから、拡張や
// 追加のたびにここへ保存して続きから再開できるようにするのだ。
type projectFile[C any, P studio.Numbered] struct {
	Concept C                 `json:"concept"`
	Scenes  []studio.Scene[P] `json:"scenes"`
}

// LoadProject はプロジェクトJSONを読み込み、エンジンに状態を復元するのだ。
// ファイルが存在しない場合は何もしないのだ（新規プロジェクト扱い）。
func LoadProject[C any, P studio.Numbered](path string, engine *studio.Engine[C, P]) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("プロジェクト '%s' の読み込みに失敗したのだ: %w", path, err)
	}

	var pf projectFile[C, P]
	if err := json.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("プロジェクト '%s' の解析に失敗したのだ: %w", path, err)
	}

	engine.Restore(pf.Concept, pf.Scenes)
	return nil
}

// SaveProject はエンジンの現在状態をプロジェクトJSONへ保存するのだ。
func SaveProject[C any, P studio.Numbered](path string, engine *studio.Engine[C, P]) error {
	concept, ok := engine.Concept()
	if !ok {
		return fmt.Errorf("保存できる状態がないのだ")
	}

	pf := projectFile[C, P]{
		Concept: concept,
		Scenes:  engine.Scenes(),
	}
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("プロジェクトのエンコードに失敗したのだ: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("プロジェクトディレクトリの作成に失敗したのだ: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("プロジェクト '%s' の保存に失敗したのだ: %w", path, err)
	}
	return nil
}
