package grader

import (
	"strconv"
	"strings"
)

// CSVFilename はエクスポートファイルの既定名です。
const CSVFilename = "image_metadata.csv"

var csvHeader = []string{"Filename", "Title", "Keywords", "AcceptanceProbability", "Feedback", "RejectionReasons"}

// quoteField はテキストフィールドを常に二重引用符で囲みます。
// フィールド内の引用符は二重化されます。
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportCSV はタイトルとキーワードが揃った画像をCSVへ書き出します。
// テキストフィールドは内容に関わらず常に引用符付き、スコアだけが
// 裸の数値です。対象が1枚もなければ空文字列を返します。
func (g *Grader) ExportCSV() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var rows []string
	for _, img := range g.images {
		if img.Title == "" || len(img.Keywords) == 0 {
			continue
		}
		score := ""
		if img.Score != nil {
			score = strconv.Itoa(*img.Score)
		}
		fields := []string{
			quoteField(img.Filename),
			quoteField(img.Title),
			quoteField(strings.Join(img.Keywords, ", ")),
			score,
			quoteField(img.Feedback),
			quoteField(strings.Join(img.RejectionReasons, ", ")),
		}
		rows = append(rows, strings.Join(fields, ","))
	}

	if len(rows) == 0 {
		return ""
	}
	return strings.Join(append([]string{strings.Join(csvHeader, ",")}, rows...), "\n")
}
