// Package studio は、複数ステップの「シーン台本」生成パイプラインを
// 提供します。1つの汎用エンジンを Movie / RC Crawler / ASMR の
// 3スタジオがそれぞれのコンセプト型・シーン型で具現化します。
package studio

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Status はプロジェクトの状態です。
type Status int

const (
	StatusEmpty Status = iota
	StatusGenerating
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusGenerating:
		return "generating"
	case StatusReady:
		return "ready"
	default:
		return "empty"
	}
}

// Numbered は、生成されたシーンペイロードが自身のシーン番号を
// 報告できることを要求する制約です。
type Numbered interface {
	Num() int
}

// Scene は台本を構成する1シーンです。ID は作成時に割り当てられる
// 安定した不透明な識別子で、再利用されません。Number は作成時に
// 単調増加で割り当てられる表示順で、ID とは独立です。
type Scene[P Numbered] struct {
	ID      string `json:"id"`
	Number  int    `json:"scene_number"`
	Payload P      `json:"payload"`
}

// Source は、各スタジオ固有のプロンプト構築とゲートウェイ呼び出しを
// 担う差し替え点です。エンジンは状態遷移と排他だけを受け持ちます。
type Source[C any, P Numbered] interface {
	// GenerateScript はコンセプトから初期台本（シーン列）を生成します。
	GenerateScript(ctx context.Context, concept C) ([]P, error)

	// ExtendScene は対象シーンをより詳細に書き直したペイロードを返します。
	// 維持すべきフィールド（シーン番号など）のマージは実装側の責務です。
	ExtendScene(ctx context.Context, concept C, scenes []Scene[P], target Scene[P]) (P, error)

	// NextScene は既存シーン列に続く新しい1シーンを生成します。
	// hint はスタジオ固有の指示（ショットタイプ等）で、空でも構いません。
	NextScene(ctx context.Context, concept C, scenes []Scene[P], nextNumber int, hint string) (P, error)
}

// Engine は1プロジェクト分の台本状態を管理するステートマシンです。
//
// Extend と AppendNext はプロジェクト全体で相互排他です。フラグの
// 確認と確保はロック下の単一ステップで行うため、非同期処理の開始後に
// 別の変異操作が割り込むことはありません。
type Engine[C any, P Numbered] struct {
	source Source[C, P]

	mu          sync.Mutex
	concept     C
	hasConcept  bool
	scenes      []Scene[P]
	status      Status
	extendingID string
	appending   bool
}

// NewEngine は空のプロジェクトを持つエンジンを生成します。
func NewEngine[C any, P Numbered](source Source[C, P]) *Engine[C, P] {
	return &Engine[C, P]{source: source}
}

// Status は現在のプロジェクト状態を返します。
func (e *Engine[C, P]) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Concept は現在のコンセプトを返します。
func (e *Engine[C, P]) Concept() (C, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.concept, e.hasConcept
}

// Scenes は現在のシーン列のスナップショットを返します。
func (e *Engine[C, P]) Scenes() []Scene[P] {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Scene[P], len(e.scenes))
	copy(out, e.scenes)
	return out
}

// Restore は永続化されたプロジェクト状態を読み戻します。
// シーンが1つでもあれば Ready として扱います。
func (e *Engine[C, P]) Restore(concept C, scenes []Scene[P]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.concept = concept
	e.hasConcept = true
	e.scenes = append([]Scene[P](nil), scenes...)
	if len(e.scenes) > 0 {
		e.status = StatusReady
	} else {
		e.status = StatusEmpty
	}
}

// Generate はコンセプトから初期台本を生成し、既存のシーン列を
// 置き換えます。各シーンには新しい識別子を割り当て、番号は応答に
// 含まれるものを採用します。失敗時はシーンを空にして Empty へ戻します。
func (e *Engine[C, P]) Generate(ctx context.Context, concept C) ([]Scene[P], error) {
	e.mu.Lock()
	if e.extendingID != "" || e.appending {
		e.mu.Unlock()
		return nil, fmt.Errorf("別のシーン操作が進行中です")
	}
	e.concept = concept
	e.hasConcept = true
	e.scenes = nil
	e.status = StatusGenerating
	e.mu.Unlock()

	payloads, err := e.source.GenerateScript(ctx, concept)
	if err != nil {
		e.mu.Lock()
		e.scenes = nil
		e.status = StatusEmpty
		e.mu.Unlock()
		return nil, fmt.Errorf("台本の生成に失敗しました: %w", err)
	}

	scenes := make([]Scene[P], len(payloads))
	for i, p := range payloads {
		scenes[i] = Scene[P]{
			ID:      uuid.NewString(),
			Number:  p.Num(),
			Payload: p,
		}
	}

	e.mu.Lock()
	e.scenes = scenes
	e.status = StatusReady
	e.mu.Unlock()
	return e.Scenes(), nil
}

// Extend は指定シーンをより詳細な内容で置き換えます。
//
// 別の Extend または AppendNext が進行中の場合、およびシーンが見つから
// ない場合は何もせず changed=false を返します（エラーではありません）。
// 置き換えは同一 ID・同一番号・同一位置のペイロード差し替えのみで、
// 他のシーンには影響しません。失敗時は進行中フラグだけを解除し、
// 既存のシーン列はそのまま保持されます。
func (e *Engine[C, P]) Extend(ctx context.Context, sceneID string) (changed bool, err error) {
	e.mu.Lock()
	if e.status != StatusReady || e.extendingID != "" || e.appending {
		e.mu.Unlock()
		return false, nil
	}
	index := -1
	for i, s := range e.scenes {
		if s.ID == sceneID {
			index = i
			break
		}
	}
	if index < 0 {
		e.mu.Unlock()
		return false, nil
	}
	target := e.scenes[index]
	concept := e.concept
	snapshot := make([]Scene[P], len(e.scenes))
	copy(snapshot, e.scenes)
	e.extendingID = sceneID
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.extendingID = ""
		e.mu.Unlock()
	}()

	payload, err := e.source.ExtendScene(ctx, concept, snapshot, target)
	if err != nil {
		return false, fmt.Errorf("シーン %d の拡張に失敗しました: %w", target.Number, err)
	}

	e.mu.Lock()
	for i := range e.scenes {
		if e.scenes[i].ID == sceneID {
			e.scenes[i].Payload = payload
			break
		}
	}
	e.mu.Unlock()
	return true, nil
}

// AppendNext は末尾に続く新しい1シーンを生成して追加します。
// 排他条件は Extend と共通で、進行中なら何もしません。新しいシーンの
// 番号は既存の最大番号+1（空なら1）で、既存シーンは一切変更しません。
func (e *Engine[C, P]) AppendNext(ctx context.Context, hint string) (*Scene[P], error) {
	e.mu.Lock()
	if e.status != StatusReady || e.extendingID != "" || e.appending {
		e.mu.Unlock()
		return nil, nil
	}
	concept := e.concept
	snapshot := make([]Scene[P], len(e.scenes))
	copy(snapshot, e.scenes)
	nextNumber := 1
	for _, s := range e.scenes {
		if s.Number >= nextNumber {
			nextNumber = s.Number + 1
		}
	}
	e.appending = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.appending = false
		e.mu.Unlock()
	}()

	payload, err := e.source.NextScene(ctx, concept, snapshot, nextNumber, hint)
	if err != nil {
		return nil, fmt.Errorf("次のシーンの生成に失敗しました: %w", err)
	}

	scene := Scene[P]{
		ID:      uuid.NewString(),
		Number:  nextNumber,
		Payload: payload,
	}

	e.mu.Lock()
	e.scenes = append(e.scenes, scene)
	e.mu.Unlock()
	return &scene, nil
}
