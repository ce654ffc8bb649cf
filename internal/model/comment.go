package model

import "time"

// Comment はブログ記事へのコメントを表す。
// コメントは未認証で投稿できるため、名前とメールは投稿者の自己申告値であり
// Userレコードとの関連は持たない。
type Comment struct {
	ID        string
	BlogID    string
	Name      string
	Email     string
	Content   string
	CreatedAt time.Time
}
