// Package user はユーザー自身のプロフィール参照機能を提供する。
package user

import (
	"context"
	"fmt"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// UserService はユーザーのプロフィールと執筆記事のサービス。
type UserService struct {
	userRepo repository.UserRepository
	blogRepo repository.BlogRepository
}

// NewUserService はUserServiceの新しいインスタンスを生成する。
func NewUserService(
	userRepo repository.UserRepository,
	blogRepo repository.BlogRepository,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		blogRepo: blogRepo,
	}
}

// Profile はプロフィール取得の戻り値。
type Profile struct {
	User  *model.User
	Blogs []*model.BlogWithAuthor
}

// GetProfile はユーザー本人のプロフィールと執筆記事の一覧を返す。
// トークンは発行後に削除されたユーザーのものでも検証を通過するため、
// ここでストア上の存在を確認し、不在ならUSER_NOT_FOUNDを返す。
func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	blogs, err := s.blogRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("執筆記事の取得に失敗しました: %w", err)
	}

	return &Profile{User: user, Blogs: blogs}, nil
}

// BlogsByEmail はメールアドレスで指定したユーザーの執筆記事の一覧を返す。
// ユーザーが存在しない場合はUSER_NOT_FOUNDを返す。
func (s *UserService) BlogsByEmail(ctx context.Context, email string) ([]*model.BlogWithAuthor, error) {
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

	blogs, err := s.blogRepo.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("執筆記事の取得に失敗しました: %w", err)
	}
	return blogs, nil
}
