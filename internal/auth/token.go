package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/blogman/internal/model"
)

// Claims はトークンに埋め込むクレームセット。
// Emailはユーザートークンのみに設定される。
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// TokenService はHS256署名のステートレスなトークン発行・検証を提供する。
// ユーザーと管理者で署名鍵を分ける。トークンはどこにも永続化されず、
// 発行後にユーザーが削除されても有効期限までは検証を通過する。
type TokenService struct {
	userSecret  []byte
	adminSecret []byte
	userTTL     time.Duration
}

// NewTokenService はTokenServiceを生成する。
// いずれかの署名鍵が空の場合は設定エラーを返す（起動時に致命的エラーとして扱う）。
func NewTokenService(userSecret, adminSecret string, userTTL time.Duration) (*TokenService, error) {
	if userSecret == "" || adminSecret == "" {
		return nil, fmt.Errorf("token signing secrets must not be empty")
	}
	return &TokenService{
		userSecret:  []byte(userSecret),
		adminSecret: []byte(adminSecret),
		userTTL:     userTTL,
	}, nil
}

// Issue はアイデンティティに対する署名済みトークンを発行する。
// ユーザートークンはuserTTL（既定24時間）で失効する。
// 管理者トークンには有効期限を設定しない（既存システムの観測挙動を維持）。
func (s *TokenService) Issue(identity model.Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  identity.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Email: identity.Email,
		Role:  string(identity.Role),
	}

	if identity.Role == model.RoleUser {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.userTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretFor(identity.Role))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークン文字列を要求ロールの鍵で検証し、アイデンティティを返す。
// 署名不正・期限切れ・ロール不一致はすべてエラーになる。
// 検証はステートレスで、ストアへの存在確認は行わない。
func (s *TokenService) Verify(tokenString string, role model.Role) (*model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretFor(role), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Role != string(role) {
		return nil, fmt.Errorf("token role mismatch: got %q, want %q", claims.Role, role)
	}

	return &model.Identity{
		Role:  role,
		ID:    claims.Subject,
		Email: claims.Email,
	}, nil
}

// secretFor はロールに対応する署名鍵を返す。
func (s *TokenService) secretFor(role model.Role) []byte {
	if role == model.RoleAdmin {
		return s.adminSecret
	}
	return s.userSecret
}
