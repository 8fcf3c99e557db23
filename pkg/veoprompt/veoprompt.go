// Package veoprompt は、構造化されたシーン定義からテキスト・ビデオ
// モデル向けのプロンプト文を合成します。合成自体は純粋な文字列処理で、
// 外部APIは使用しません。
package veoprompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Character はシーンに登場する人物の定義です。
type Character struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Race        string `json:"race"`
	Gender      string `json:"gender"`
	Age         string `json:"age"`
	Outfit      string `json:"outfit"`
	Hairstyle   string `json:"hairstyle"`
	Voice       string `json:"voice"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// Dialogue は人物IDに紐づくセリフです。
type Dialogue struct {
	ID          string `json:"id"`
	CharacterID string `json:"characterId"`
	Dialogue    string `json:"dialogue"`
}

// Environment はシーンの環境と撮影条件です。
type Environment struct {
	Description   string `json:"description"`
	Lighting      string `json:"lighting"`
	CameraAngle   string `json:"cameraAngle"`
	ShootingStyle string `json:"shootingStyle"`
}

// Scene はプロンプト合成の入力一式です。
type Scene struct {
	Characters  []Character `json:"characters"`
	Dialogues   []Dialogue  `json:"dialogues"`
	Environment Environment `json:"environment"`
}

// Compose は自然文のプロンプトを合成します。空のフィールドは
// 既定の表現で補い、存在しない人物IDを参照するセリフは無視します。
func (s Scene) Compose() string {
	var parts []string

	if s.Environment.Description != "" {
		parts = append(parts, s.Environment.Description)
	}

	for _, c := range s.Characters {
		desc := c.Description
		if desc == "" {
			desc = fmt.Sprintf("%s-year-old %s %s", c.Age, c.Race, c.Gender)
		}
		outfit := c.Outfit
		if outfit == "" {
			outfit = "clothes"
		}
		hairstyle := c.Hairstyle
		if hairstyle == "" {
			hairstyle = "hair"
		}
		charDesc := fmt.Sprintf("%s wearing %s with %s.", desc, outfit, hairstyle)
		if c.Action != "" {
			charDesc += fmt.Sprintf(" The character is %s.", c.Action)
		}
		parts = append(parts, charDesc)
	}

	for _, d := range s.Dialogues {
		c, ok := s.findCharacter(d.CharacterID)
		if !ok {
			continue
		}
		name := c.Name
		if name == "" {
			name = "Character " + shortID(c.ID)
		}
		parts = append(parts, fmt.Sprintf("%s says: %q", name, d.Dialogue))
	}

	var sceneDetails []string
	if s.Environment.Lighting != "" {
		sceneDetails = append(sceneDetails, "lighting is "+s.Environment.Lighting)
	}
	if s.Environment.CameraAngle != "" {
		sceneDetails = append(sceneDetails, "camera angle is "+s.Environment.CameraAngle)
	}
	if s.Environment.ShootingStyle != "" {
		sceneDetails = append(sceneDetails, "shot in a "+s.Environment.ShootingStyle+" style")
	}
	if len(sceneDetails) > 0 {
		parts = append(parts, fmt.Sprintf("The scene's %s.", strings.Join(sceneDetails, ", ")))
	}

	return strings.Join(parts, " ")
}

// JSON はシーン定義をインデント付きJSONで返します。
func (s Scene) JSON() (string, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("シーン定義のJSON化に失敗しました: %w", err)
	}
	return string(b), nil
}

func (s Scene) findCharacter(id string) (Character, bool) {
	for _, c := range s.Characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}

func shortID(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[:4]
}
