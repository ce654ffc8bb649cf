package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/blogman/internal/model"
)

// PostgresAdminRepo はPostgreSQLを使用した管理者リポジトリ。
type PostgresAdminRepo struct {
	db *sql.DB
}

// NewPostgresAdminRepo はPostgresAdminRepoを生成する。
func NewPostgresAdminRepo(db *sql.DB) *PostgresAdminRepo {
	return &PostgresAdminRepo{db: db}
}

// Create は管理者を作成する。メールアドレス重複時はErrDuplicateEmailを返す。
func (r *PostgresAdminRepo) Create(ctx context.Context, admin *model.Admin) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, password_hash, first_name, last_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		admin.ID, admin.Email, admin.PasswordHash, admin.FirstName, admin.LastName, admin.CreatedAt, admin.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert admin: %w", err)
	}
	return nil
}

// FindByEmail は指定メールアドレスの管理者を取得する。見つからない場合はnilを返す。
func (r *PostgresAdminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	admin := &model.Admin{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		 FROM admins WHERE email = $1`,
		email,
	).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.FirstName, &admin.LastName, &admin.CreatedAt, &admin.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find admin by email: %w", err)
	}

	return admin, nil
}

// compile-time interface check
var _ AdminRepository = (*PostgresAdminRepo)(nil)
