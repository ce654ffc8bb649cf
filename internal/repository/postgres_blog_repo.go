package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/blogman/internal/model"
)

// PostgresBlogRepo はPostgreSQLを使用したブログ記事リポジトリ。
type PostgresBlogRepo struct {
	db *sql.DB
}

// NewPostgresBlogRepo はPostgresBlogRepoを生成する。
func NewPostgresBlogRepo(db *sql.DB) *PostgresBlogRepo {
	return &PostgresBlogRepo{db: db}
}

// blogSelectColumns は著者名JOIN付きの記事取得で共通のSELECT句。
const blogSelectColumns = `
	b.id, b.author_id, b.title, b.content, b.cover_image_path, b.status,
	b.like_count, b.dislike_count, b.created_at, b.updated_at,
	u.first_name, u.last_name`

// scanBlogWithAuthor は1行分の記事+著者名をスキャンする。
func scanBlogWithAuthor(scan func(dest ...any) error) (*model.BlogWithAuthor, error) {
	blog := &model.BlogWithAuthor{}
	var coverImage sql.NullString
	err := scan(
		&blog.ID, &blog.AuthorID, &blog.Title, &blog.Content, &coverImage, &blog.Status,
		&blog.LikeCount, &blog.DislikeCount, &blog.CreatedAt, &blog.UpdatedAt,
		&blog.AuthorFirstName, &blog.AuthorLastName,
	)
	if err != nil {
		return nil, err
	}
	if coverImage.Valid {
		blog.CoverImagePath = coverImage.String
	}
	return blog, nil
}

// Create は記事を作成する。
func (r *PostgresBlogRepo) Create(ctx context.Context, blog *model.Blog) error {
	coverImage := sql.NullString{String: blog.CoverImagePath, Valid: blog.CoverImagePath != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blogs (id, author_id, title, content, cover_image_path, status,
		                    like_count, dislike_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		blog.ID, blog.AuthorID, blog.Title, blog.Content, coverImage, blog.Status,
		blog.LikeCount, blog.DislikeCount, blog.CreatedAt, blog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert blog: %w", err)
	}
	return nil
}

// FindByID は指定IDの記事を著者名付きで取得する。見つからない場合はnilを返す。
func (r *PostgresBlogRepo) FindByID(ctx context.Context, id string) (*model.BlogWithAuthor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+blogSelectColumns+`
		 FROM blogs b JOIN users u ON u.id = b.author_id
		 WHERE b.id = $1`,
		id,
	)
	blog, err := scanBlogWithAuthor(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find blog by ID: %w", err)
	}
	return blog, nil
}

// ListAll は全記事を著者名付き・作成日時の降順で返す。
func (r *PostgresBlogRepo) ListAll(ctx context.Context) ([]*model.BlogWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+blogSelectColumns+`
		 FROM blogs b JOIN users u ON u.id = b.author_id
		 ORDER BY b.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	defer rows.Close()

	return collectBlogs(rows)
}

// ListByAuthor は指定著者の記事を作成日時の降順で返す。
func (r *PostgresBlogRepo) ListByAuthor(ctx context.Context, authorID string) ([]*model.BlogWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+blogSelectColumns+`
		 FROM blogs b JOIN users u ON u.id = b.author_id
		 WHERE b.author_id = $1
		 ORDER BY b.created_at DESC`,
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs by author: %w", err)
	}
	defer rows.Close()

	return collectBlogs(rows)
}

// collectBlogs はクエリ結果の全行をスキャンして返す。
func collectBlogs(rows *sql.Rows) ([]*model.BlogWithAuthor, error) {
	var blogs []*model.BlogWithAuthor
	for rows.Next() {
		blog, err := scanBlogWithAuthor(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog: %w", err)
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate blogs: %w", err)
	}
	return blogs, nil
}

// Update は記事のtitle/content/status/cover_image_path/updated_atを上書きする。
// like/dislikeカウンターはこのメソッドでは変更しない。
func (r *PostgresBlogRepo) Update(ctx context.Context, blog *model.Blog) error {
	coverImage := sql.NullString{String: blog.CoverImagePath, Valid: blog.CoverImagePath != ""}
	_, err := r.db.ExecContext(ctx,
		`UPDATE blogs
		 SET title = $2, content = $3, status = $4, cover_image_path = $5, updated_at = $6
		 WHERE id = $1`,
		blog.ID, blog.Title, blog.Content, blog.Status, coverImage, blog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update blog: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの記事を削除する。コメントはFKカスケードで削除される。
// 記事が存在しない場合はfalseを返す。
func (r *PostgresBlogRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM blogs WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete blog: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// IncrementReaction はlikeまたはdislikeカウンターを単一UPDATE文でアトミックに
// インクリメントし、更新後の両カウンターを返す。記事が存在しない場合はnilを返す。
func (r *PostgresBlogRepo) IncrementReaction(ctx context.Context, id string, reaction model.ReactionKind) (*model.ReactionCounts, error) {
	column := "like_count"
	if reaction == model.ReactionDislike {
		column = "dislike_count"
	}

	counts := &model.ReactionCounts{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE blogs SET `+column+` = `+column+` + 1
		 WHERE id = $1
		 RETURNING like_count, dislike_count`,
		id,
	).Scan(&counts.Likes, &counts.Dislikes)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment %s: %w", column, err)
	}
	return counts, nil
}

// compile-time interface check
var _ BlogRepository = (*PostgresBlogRepo)(nil)
