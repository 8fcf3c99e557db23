package gateway

import (
	"errors"
	"fmt"
)

// ErrNotConfigured は、Configure 前に生成APIを呼び出した場合のエラーです。
var ErrNotConfigured = errors.New("api client not initialized")

// ErrNoResult は、呼び出し自体は成功したが利用可能な成果物が含まれて
// いなかった場合のエラーです（URIなしで完了したビデオ、画像パートを
// 返さなかった画像編集など）。リトライしても回復しない終端状態です。
var ErrNoResult = errors.New("no usable result in response")

// ShapeMismatchError は、プロバイダの応答が期待したJSON構造と
// 一致しなかったことを表します。
type ShapeMismatchError struct {
	Err error
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("response did not match expected schema: %v", e.Err)
}

func (e *ShapeMismatchError) Unwrap() error { return e.Err }

// NetworkError は、トランスポート層での取得失敗（HTTPエラー等）を表します。
type NetworkError struct {
	URI    string
	Status string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("fetch %s failed: %s", e.URI, e.Status)
	}
	return fmt.Sprintf("fetch %s failed: %v", e.URI, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
