package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/blogman/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// Create はコメントを作成する。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, blog_id, name, email, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		comment.ID, comment.BlogID, comment.Name, comment.Email, comment.Content, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// ListByBlog は指定記事のコメントを作成日時の降順で返す。
func (r *PostgresCommentRepo) ListByBlog(ctx context.Context, blogID string) ([]*model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, blog_id, name, email, content, created_at
		 FROM comments WHERE blog_id = $1
		 ORDER BY created_at DESC`,
		blogID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		comment := &model.Comment{}
		if err := rows.Scan(&comment.ID, &comment.BlogID, &comment.Name, &comment.Email, &comment.Content, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}

// DeleteByIDAndBlog は記事IDでスコープしたコメント削除を行う。
// 組み合わせに一致するコメントがない場合はfalseを返す。
func (r *PostgresCommentRepo) DeleteByIDAndBlog(ctx context.Context, commentID, blogID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1 AND blog_id = $2`,
		commentID, blogID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete comment: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
