// Package admin は管理者専用の運用機能を提供する。
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// CoverRemover はカスケード削除で不要になったカバー画像を片付ける。
type CoverRemover interface {
	Remove(publicPath string) error
}

// AdminService はユーザー管理のサービス。
type AdminService struct {
	userRepo  repository.UserRepository
	adminRepo repository.AdminRepository
	covers    CoverRemover
}

// NewAdminService はAdminServiceの新しいインスタンスを生成する。
// coversはnilでもよい（カバー画像の掃除をスキップする）。
func NewAdminService(
	userRepo repository.UserRepository,
	adminRepo repository.AdminRepository,
	covers CoverRemover,
) *AdminService {
	return &AdminService{
		userRepo:  userRepo,
		adminRepo: adminRepo,
		covers:    covers,
	}
}

// ListUsers は全ユーザーを登録日時の降順で返す。
func (s *AdminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// PromoteUser はメールアドレスで指定したユーザーを管理者に昇格する。
// ユーザーのレコード（パスワードハッシュを含む）を管理者テーブルへコピーし、
// 元のユーザーは削除しない。昇格後も同じ認証情報でユーザーとしてサインインできる。
// 既に同じメールアドレスの管理者が存在する場合はEMAIL_TAKENを返す。
func (s *AdminService) PromoteUser(ctx context.Context, email string) (*model.Admin, error) {
	if email == "" {
		return nil, model.NewInvalidInputError("メールアドレスを指定してください")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	now := time.Now()
	admin := &model.Admin{
		ID:           uuid.New().String(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailTakenError(email)
		}
		return nil, fmt.Errorf("管理者の作成に失敗しました: %w", err)
	}

	slog.Info("user promoted to admin",
		slog.String("user_id", user.ID),
		slog.String("admin_id", admin.ID),
	)

	return admin, nil
}

// DeleteUser はユーザーをカスケード削除する。
// ユーザーの執筆記事と、それらの記事への全コメントが同一トランザクションで削除され、
// 途中で失敗した場合は何も削除されない。
// 削除された記事のカバー画像はコミット確定後にベストエフォートで片付ける。
// ユーザーが存在しない場合はUSER_NOT_FOUNDを返す。
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	coverPaths, err := s.userRepo.DeleteWithDependents(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	if s.covers != nil {
		for _, coverPath := range coverPaths {
			if err := s.covers.Remove(coverPath); err != nil {
				slog.Warn("failed to remove cover image of deleted user's post",
					slog.String("path", coverPath),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	slog.Info("user deleted with dependents",
		slog.String("user_id", userID),
		slog.Int("cover_images_removed", len(coverPaths)),
	)
	return nil
}
