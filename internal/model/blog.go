package model

import "time"

// BlogStatus はブログ記事の公開状態を表す。
type BlogStatus string

const (
	// BlogStatusDraft は下書き状態を示す。
	BlogStatusDraft BlogStatus = "draft"
	// BlogStatusPublished は公開状態を示す。
	BlogStatusPublished BlogStatus = "published"
)

// IsValid はステータス値が定義済みのものか判定する。
func (s BlogStatus) IsValid() bool {
	return s == BlogStatusDraft || s == BlogStatusPublished
}

// Blog はブログ記事を表す。
// CoverImagePathはローカルディスクに保存されたカバー画像の相対URL（例: /uploads/blog/xxx.png）。
// 画像なしの場合は空文字列。
type Blog struct {
	ID             string
	AuthorID       string
	Title          string
	Content        string
	CoverImagePath string
	Status         BlogStatus
	LikeCount      int
	DislikeCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BlogWithAuthor はブログ記事と著者名を結合した読み取り用モデル。
// 一覧・詳細APIのレスポンス生成に使用する。
type BlogWithAuthor struct {
	Blog
	AuthorFirstName string
	AuthorLastName  string
}

// ReactionKind はリアクションの種別を表す。
type ReactionKind string

const (
	// ReactionLike はlikeカウンターへのインクリメントを示す。
	ReactionLike ReactionKind = "like"
	// ReactionDislike はdislikeカウンターへのインクリメントを示す。
	ReactionDislike ReactionKind = "dislike"
)

// ReactionCounts はlike/dislikeカウンターの現在値を表す。
// ストア層のアトミックなインクリメントの戻り値として使用する。
type ReactionCounts struct {
	Likes    int
	Dislikes int
}
