package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/blogman/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

// isUniqueViolation はエラーが一意制約違反かどうか判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// ListAll は全ユーザーを登録日時の降順で返す。
func (r *PostgresUserRepo) ListAll(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		 FROM users ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// DeleteWithDependents はユーザーと依存レコードを単一トランザクションで削除する。
// 削除順序: 執筆ブログへの全コメント → 執筆ブログ → ユーザー本体。
// いずれかの段階で失敗した場合は全体がロールバックされ、部分削除状態は残らない。
// 戻り値は削除されたブログのカバー画像パス（設定されていたもののみ）。
// ファイルの掃除はコミット後に呼び出し側が行う。
func (r *PostgresUserRepo) DeleteWithDependents(ctx context.Context, id string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. 執筆ブログへの全コメントを削除
	_, err = tx.ExecContext(ctx,
		`DELETE FROM comments WHERE blog_id IN (SELECT id FROM blogs WHERE author_id = $1)`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete comments: %w", err)
	}

	// 2. 執筆ブログを削除し、掃除対象のカバー画像パスを回収する
	rows, err := tx.QueryContext(ctx,
		`DELETE FROM blogs WHERE author_id = $1 RETURNING cover_image_path`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete blogs: %w", err)
	}
	var coverPaths []string
	for rows.Next() {
		var coverPath string
		if err := rows.Scan(&coverPath); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cover image path: %w", err)
		}
		if coverPath != "" {
			coverPaths = append(coverPaths, coverPath)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate deleted blogs: %w", err)
	}
	rows.Close()

	// 3. ユーザー本体を削除
	result, err := tx.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("user not found: %s", id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return coverPaths, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
