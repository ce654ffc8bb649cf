// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はブログ記事本文とコメント本文のHTMLをサニタイズし、
// XSS攻撃などのセキュリティリスクから閲覧者を保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させる。
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はHTMLコンテンツのサニタイズ機能のインターフェースを定義する。
// 記事・コメントの保存前に使用される。保存時にサニタイズするため、
// 読み出しパスでは再サニタイズを行わない。
type ContentSanitizerService interface {
	// SanitizePost は記事本文をサニタイズして安全なHTMLを返す。
	// 執筆用の許可タグ（h1〜h4, p, br, a, ul, ol, li, blockquote, pre, code,
	// strong, em, img）のみを通過させ、script, iframe, styleタグおよび
	// on*イベント属性を除去する。
	// imgタグのsrc属性はhttpsスキームのみ許可される。
	// aタグにはtarget="_blank"とrel="noopener noreferrer"が自動付与される。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizePost(rawHTML string) string

	// SanitizeComment はコメント本文をサニタイズして安全なHTMLを返す。
	// コメントは未認証で投稿できるため記事より厳しいポリシーを適用し、
	// インライン装飾（strong, em, code）と改行のみを許可する。
	// リンクと画像は許可しない。
	SanitizeComment(rawHTML string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// 記事用・コメント用の2つのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	postPolicy    *bluemonday.Policy
	commentPolicy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 初期化時にbluemondayのカスタムポリシーを2つ構築する。
//
// 記事用ポリシー:
//   - 許可タグ: h1, h2, h3, h4, p, br, a, ul, ol, li, blockquote, pre, code, strong, em, img
//   - 禁止タグ: script, iframe, style および全てのon*イベント属性
//   - imgのsrc属性: httpsスキームのみ許可
//   - aタグ: target="_blank" と rel="noopener noreferrer" を自動付与
//
// コメント用ポリシー:
//   - 許可タグ: p, br, strong, em, code のみ
//   - リンク・画像は不許可
func NewContentSanitizer() *contentSanitizer {
	post := bluemonday.NewPolicy()

	// 執筆用の許可タグ。見出しは記事の構造化に必要なのでh1〜h4を許可する。
	// script, iframe, style等は許可リストに含めないことで自動的に除去される。
	// on*イベント属性はbluemondayのデフォルトで許可されないため除去される。
	post.AllowElements(
		"h1", "h2", "h3", "h4",
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	// aタグの設定:
	// - href属性を許可
	// - 相対URLは不許可
	// - target="_blank"を全リンクに強制付与
	// - rel="noreferrer noopener"を強制付与
	post.AllowAttrs("href").OnElements("a")
	post.AllowRelativeURLs(false)
	post.AddTargetBlankToFullyQualifiedLinks(true)
	post.RequireNoReferrerOnLinks(true)

	// imgタグの設定:
	// - src属性はhttpsスキームのみ許可（http, javascript, data等は拒否）
	// - alt属性を許可（アクセシビリティ確保）
	post.AllowAttrs("src").OnElements("img")
	post.AllowAttrs("alt").OnElements("img")
	post.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	// コメントは未認証投稿なので最小限の装飾のみ。
	comment := bluemonday.NewPolicy()
	comment.AllowElements("p", "br", "strong", "em", "code")

	return &contentSanitizer{
		postPolicy:    post,
		commentPolicy: comment,
	}
}

// SanitizePost は記事本文をサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) SanitizePost(rawHTML string) string {
	return s.postPolicy.Sanitize(rawHTML)
}

// SanitizeComment はコメント本文をサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) SanitizeComment(rawHTML string) string {
	return s.commentPolicy.Sanitize(rawHTML)
}
