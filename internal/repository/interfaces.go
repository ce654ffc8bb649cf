// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/blogman/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意制約違反を表すセンチネルエラー。
// サービス層でAPIErrorに変換する。
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// ListAll は全ユーザーを登録日時の降順で返す。
	ListAll(ctx context.Context) ([]*model.User, error)

	// DeleteWithDependents はユーザーと依存レコード（執筆ブログ、そのブログへの全コメント）を
	// 単一トランザクションで削除する。途中で失敗した場合は全てロールバックされる。
	// 削除されたブログのカバー画像パスを返し、ファイルの掃除は呼び出し側が行う。
	DeleteWithDependents(ctx context.Context, id string) ([]string, error)
}

// AdminRepository は管理者データの永続化インターフェース。
type AdminRepository interface {
	// Create は管理者を作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, admin *model.Admin) error

	// FindByEmail は指定メールアドレスの管理者を取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
}

// BlogRepository はブログ記事データの永続化インターフェース。
type BlogRepository interface {
	// Create は記事を作成する。
	Create(ctx context.Context, blog *model.Blog) error

	// FindByID は指定IDの記事を著者名付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.BlogWithAuthor, error)

	// ListAll は全記事を著者名付き・作成日時の降順で返す。
	ListAll(ctx context.Context) ([]*model.BlogWithAuthor, error)

	// ListByAuthor は指定著者の記事を作成日時の降順で返す。
	ListByAuthor(ctx context.Context, authorID string) ([]*model.BlogWithAuthor, error)

	// Update は記事のtitle/content/status/cover_image_path/updated_atを上書きする。
	// like/dislikeカウンターはIncrementReaction以外では変更しない。
	Update(ctx context.Context, blog *model.Blog) error

	// DeleteByID は指定IDの記事を削除する。コメントはFKカスケードで削除される。
	// 記事が存在しない場合はfalseを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)

	// IncrementReaction はlikeまたはdislikeカウンターを単一UPDATE文で
	// アトミックにインクリメントし、更新後の両カウンターを返す。
	// read-modify-writeを行わないため、並行リクエストでも更新は失われない。
	// 記事が存在しない場合はnilを返す。
	IncrementReaction(ctx context.Context, id string, reaction model.ReactionKind) (*model.ReactionCounts, error)
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// Create はコメントを作成する。
	Create(ctx context.Context, comment *model.Comment) error

	// ListByBlog は指定記事のコメントを作成日時の降順で返す。
	ListByBlog(ctx context.Context, blogID string) ([]*model.Comment, error)

	// DeleteByIDAndBlog は記事IDでスコープしたコメント削除を行う。
	// 組み合わせに一致するコメントがない場合はfalseを返す。
	DeleteByIDAndBlog(ctx context.Context, commentID, blogID string) (bool, error)
}
