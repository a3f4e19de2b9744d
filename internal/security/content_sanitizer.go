// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は管理画面から入力されたツアー・動画のテキストをサニタイズし、
// 公開ページへのXSS混入を防ぐ。bluemondayライブラリの許可リストベースのポリシーを使用する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は入力テキストのサニタイズ機能のインターフェースを定義する。
type ContentSanitizerService interface {
	// SanitizeText は全てのタグを除去した平文を返す。
	// タイトル・所在地など、HTMLとして描画しないフィールドに使用する。
	// 前後の空白は除去される。
	SanitizeText(raw string) string

	// SanitizeHTML は許可タグ（p, br, ul, ol, li, strong, em）のみを残したHTMLを返す。
	// 説明文など、整形済みテキストとして描画するフィールドに使用する。
	// script, iframe, style, a, imgタグおよびon*イベント属性は除去される。
	SanitizeHTML(raw string) string
}

// maxTextPasses はSanitizeTextが結果の安定を待つ最大反復回数。
const maxTextPasses = 5

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフなため、複数のゴルーチンから共有できる。
type contentSanitizer struct {
	strict *bluemonday.Policy
	rich   *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
func NewContentSanitizer() *contentSanitizer {
	// 説明文用のポリシー:
	// リンクと画像は許可しない（画像URLは専用フィールドで受け付ける）
	rich := bluemonday.NewPolicy()
	rich.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em",
	)

	return &contentSanitizer{
		strict: bluemonday.StrictPolicy(),
		rich:   rich,
	}
}

// SanitizeText は全てのタグを除去した平文を返す。
// StrictPolicyがエスケープした文字実体参照は元の文字に戻す。
// 戻した結果に新たなタグが現れなくなるまで繰り返し、
// maxTextPasses回で安定しない場合はエスケープしたままの文字列を返す。
func (s *contentSanitizer) SanitizeText(raw string) string {
	out := raw
	for i := 0; i < maxTextPasses; i++ {
		next := html.UnescapeString(s.strict.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	return strings.TrimSpace(s.strict.Sanitize(out))
}

// SanitizeHTML は許可タグのみを残したHTMLを返す。
func (s *contentSanitizer) SanitizeHTML(raw string) string {
	return strings.TrimSpace(s.rich.Sanitize(raw))
}
