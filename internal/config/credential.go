package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// 資格情報の保存先の定義なのだ。ユーザー設定ディレクトリ配下に置くのだ。
const (
	credentialDirName  = "ai-creative-tools"
	credentialFileName = "credential.json"
)

type credentialFile struct {
	GeminiAPIKey string `json:"gemini_api_key"`
}

func credentialPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("ユーザー設定ディレクトリの取得に失敗したのだ: %w", err)
	}
	return filepath.Join(base, credentialDirName, credentialFileName), nil
}

// SaveCredential はAPIキーを設定ファイルへ保存するのだ。
// ファイルのパーミッションは所有者のみ読み書き可能に絞るのだ。
func SaveCredential(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("APIキーが空なのだ")
	}

	path, err := credentialPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("設定ディレクトリの作成に失敗したのだ: %w", err)
	}

	data, err := json.MarshalIndent(credentialFile{GeminiAPIKey: apiKey}, "", "  ")
	if err != nil {
		return fmt.Errorf("資格情報のエンコードに失敗したのだ: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("資格情報の保存に失敗したのだ: %w", err)
	}
	return nil
}

// LoadCredential は保存済みのAPIキーを読み込むのだ。未保存ならエラーを返すのだ。
func LoadCredential() (string, error) {
	path, err := credentialPath()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("資格情報の読み込みに失敗したのだ: %w", err)
	}

	var cred credentialFile
	if err := json.Unmarshal(data, &cred); err != nil {
		return "", fmt.Errorf("資格情報の解析に失敗したのだ: %w", err)
	}
	if cred.GeminiAPIKey == "" {
		return "", fmt.Errorf("保存されたAPIキーが空なのだ")
	}
	return cred.GeminiAPIKey, nil
}
