// Package apperr は、プロバイダ由来の失敗をユーザー向けの表示と
// 回復アクションに写像する分類器です。I/Oは一切行いません。
package apperr

import (
	"errors"
	"strings"

	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"
)

// Kind は分類された失敗の種別です。
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredential
	KindQuotaExceeded
	KindNotConfigured
)

// String は Kind のログ表示用の名前を返します。
func (k Kind) String() string {
	switch k {
	case KindInvalidCredential:
		return "invalid_credential"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindNotConfigured:
		return "not_configured"
	default:
		return "unknown"
	}
}

// ActionKind は通知に添える単一の回復アクションの種別です。
// 実際の画面遷移やURLオープンは呼び出し側（UI層）の責務です。
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionOpenSettings
	ActionOpenBilling
)

// Action は通知に表示する回復アクションです。
type Action struct {
	Label string
	Kind  ActionKind
}

// Notice は短い通知メッセージと任意の回復アクションです。
type Notice struct {
	Message string
	Action  Action
}

// Classification は分類結果です。PanelMessage は生成パネルに残す
// 詳細メッセージ、Notice は自動で消える短い通知に使います。
type Classification struct {
	Kind         Kind
	PanelMessage string
	Notice       Notice
}

const defaultPanelMessage = "An unexpected error occurred. Please try again."

// Classify は失敗を固定の種別へ写像します。判定は小文字化した
// エラーメッセージに対する部分一致で、優先順位順に評価します。
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: KindUnknown, PanelMessage: defaultPanelMessage}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "api key not valid"),
		strings.Contains(msg, "api_key_invalid"),
		strings.Contains(msg, "invalid api key"):
		return Classification{
			Kind:         KindInvalidCredential,
			PanelMessage: "The provided API key is invalid or has expired. Please check your key in the settings.",
			Notice: Notice{
				Message: "Your Gemini API key is invalid.",
				Action:  Action{Label: "Open Settings", Kind: ActionOpenSettings},
			},
		}

	case strings.Contains(msg, "quota"),
		strings.Contains(msg, "resource_exhausted"),
		strings.Contains(msg, "resource exhausted"):
		return Classification{
			Kind:         KindQuotaExceeded,
			PanelMessage: "You have exceeded your current quota. Please check your plan and billing details.",
			Notice: Notice{
				Message: "API quota exceeded. Please check your plan and billing details.",
				Action:  Action{Label: "Get started", Kind: ActionOpenBilling},
			},
		}

	case errors.Is(err, gateway.ErrNotConfigured),
		strings.Contains(msg, "client not initialized"):
		return Classification{
			Kind:         KindNotConfigured,
			PanelMessage: "Please set your Gemini API key in the settings to start generating.",
			Notice: Notice{
				Message: "Please set your API key to continue.",
				Action:  Action{Label: "Open Settings", Kind: ActionOpenSettings},
			},
		}
	}

	// 分類不能な場合は生のメッセージをそのままパネルに出します。
	return Classification{
		Kind:         KindUnknown,
		PanelMessage: err.Error(),
		Notice:       Notice{Message: err.Error()},
	}
}
