// Package model はドメインモデルを定義する。
package model

import "time"

// Role は認証済みアイデンティティの種別を表す。
type Role string

const (
	// RoleUser は一般ユーザーを示す。
	RoleUser Role = "user"
	// RoleAdmin は管理者を示す。
	RoleAdmin Role = "admin"
)

// User はブログの執筆ユーザーを表す。
// PasswordHashはbcryptハッシュであり、APIレスポンスには決して含めない。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Admin は管理者を表す。Userと同じ形状だが別テーブルで管理される。
// 昇格（promote）はUserのレコードをAdminにコピーするだけで、元のUserは残る。
type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity はトークン検証後にリクエストコンテキストへ注入される認証済みアイデンティティ。
// Emailはユーザートークンのみに含まれる（管理者トークンはIDのみ）。
type Identity struct {
	Role  Role
	ID    string
	Email string
}
