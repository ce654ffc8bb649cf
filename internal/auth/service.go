package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// SignupRecorder はサインアップ件数のメトリクス記録インターフェース。
type SignupRecorder interface {
	RecordSignup(role string)
}

// Service はユーザー・管理者のサインアップとサインインを提供する。
type Service struct {
	userRepo         repository.UserRepository
	adminRepo        repository.AdminRepository
	tokens           *TokenService
	adminSignupToken string
	metrics          SignupRecorder
}

// NewService はServiceを生成する。
// adminSignupTokenは設定から注入された管理者登録用の共有トークン。
// metricsはnilでもよい（記録をスキップする）。
func NewService(
	userRepo repository.UserRepository,
	adminRepo repository.AdminRepository,
	tokens *TokenService,
	adminSignupToken string,
	metrics SignupRecorder,
) *Service {
	return &Service{
		userRepo:         userRepo,
		adminRepo:        adminRepo,
		tokens:           tokens,
		adminSignupToken: adminSignupToken,
		metrics:          metrics,
	}
}

// SignupUser は新規ユーザーを登録する。
// バリデーション → ハッシュ化 → 保存の順で行い、メールアドレス重複は
// ストアの一意制約違反をEMAIL_TAKENエラーに変換して返す。
func (s *Service) SignupUser(ctx context.Context, in SignupInput) (*model.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailTakenError(in.Email)
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("user signed up",
		slog.String("user_id", user.ID),
	)
	if s.metrics != nil {
		s.metrics.RecordSignup(string(model.RoleUser))
	}

	return user, nil
}

// SigninUser はメールアドレスとパスワードでユーザーを認証し、トークンを発行する。
// アカウント不在とパスワード不一致はメッセージで区別されるが、どちらも401になる。
func (s *Service) SigninUser(ctx context.Context, email, password string) (string, *model.User, error) {
	if email == "" || password == "" {
		return "", nil, model.NewInvalidInputError("メールアドレスとパスワードは必須です")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return "", nil, model.NewNoAccountError()
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", nil, model.NewIncorrectPasswordError()
	}

	token, err := s.tokens.Issue(model.Identity{
		Role:  model.RoleUser,
		ID:    user.ID,
		Email: user.Email,
	})
	if err != nil {
		return "", nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("user signed in",
		slog.String("user_id", user.ID),
	)

	return token, user, nil
}

// SignupAdmin は新規管理者を登録する。
// 共有トークンの照合を他のどのバリデーションよりも先に行い、
// 不一致の場合は入力検証をせずに401相当のエラーを返す。
func (s *Service) SignupAdmin(ctx context.Context, in SignupInput, specialToken string) (*model.Admin, error) {
	if subtle.ConstantTimeCompare([]byte(specialToken), []byte(s.adminSignupToken)) != 1 {
		return nil, model.NewInvalidAdminTokenError()
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin := &model.Admin{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailTakenError(in.Email)
		}
		return nil, fmt.Errorf("管理者の作成に失敗しました: %w", err)
	}

	slog.Info("admin signed up",
		slog.String("admin_id", admin.ID),
	)
	if s.metrics != nil {
		s.metrics.RecordSignup(string(model.RoleAdmin))
	}

	return admin, nil
}

// SigninAdmin はメールアドレスとパスワードで管理者を認証し、トークンを発行する。
// ユーザーのサインインと異なり、アカウント不在とパスワード不一致は
// 区別せず単一メッセージを返す。
func (s *Service) SigninAdmin(ctx context.Context, email, password string) (string, *model.Admin, error) {
	if email == "" || password == "" {
		return "", nil, model.NewInvalidInputError("メールアドレスとパスワードは必須です")
	}

	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("管理者の取得に失敗しました: %w", err)
	}
	if admin == nil {
		return "", nil, model.NewInvalidCredentialsError()
	}

	if !VerifyPassword(password, admin.PasswordHash) {
		return "", nil, model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(model.Identity{
		Role: model.RoleAdmin,
		ID:   admin.ID,
	})
	if err != nil {
		return "", nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("admin signed in",
		slog.String("admin_id", admin.ID),
	)

	return token, admin, nil
}
