package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/blogman/internal/model"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("user-secret", "admin-secret", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}
	return ts
}

// TestNewTokenService_EmptySecret は署名鍵未設定が構築エラーになることを検証する。
func TestNewTokenService_EmptySecret(t *testing.T) {
	if _, err := NewTokenService("", "admin-secret", time.Hour); err == nil {
		t.Error("expected error for empty user secret")
	}
	if _, err := NewTokenService("user-secret", "", time.Hour); err == nil {
		t.Error("expected error for empty admin secret")
	}
}

// TestTokenService_IssueAndVerify_User はユーザートークンの発行・検証の往復を検証する。
func TestTokenService_IssueAndVerify_User(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(model.Identity{
		Role:  model.RoleUser,
		ID:    "user-1",
		Email: "a@x.com",
	})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	identity, err := ts.Verify(token, model.RoleUser)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if identity.ID != "user-1" {
		t.Errorf("ID = %q, want %q", identity.ID, "user-1")
	}
	if identity.Email != "a@x.com" {
		t.Errorf("Email = %q, want %q", identity.Email, "a@x.com")
	}
	if identity.Role != model.RoleUser {
		t.Errorf("Role = %q, want %q", identity.Role, model.RoleUser)
	}
}

// TestTokenService_UserTokenRejectedOnAdminRoute はユーザートークンが
// 管理者ロールの検証を通らないことを検証する（鍵とロールの両方で分離）。
func TestTokenService_UserTokenRejectedOnAdminRoute(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(model.Identity{Role: model.RoleUser, ID: "user-1"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := ts.Verify(token, model.RoleAdmin); err == nil {
		t.Error("user token should not verify as an admin token")
	}
}

// TestTokenService_UserTokenHasExpiry はユーザートークンに24時間の有効期限が
// 設定されることを検証する。
func TestTokenService_UserTokenHasExpiry(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(model.Identity{Role: model.RoleUser, ID: "user-1"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte("user-secret"), nil
	})
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}

	if claims.ExpiresAt == nil {
		t.Fatal("user token should carry an expiry")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 23*time.Hour || ttl > 25*time.Hour {
		t.Errorf("user token TTL = %v, want ~24h", ttl)
	}
}

// TestTokenService_AdminTokenHasNoExpiry は管理者トークンに有効期限が
// 設定されないこと（既存挙動の維持）を検証する。
func TestTokenService_AdminTokenHasNoExpiry(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(model.Identity{Role: model.RoleAdmin, ID: "admin-1"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte("admin-secret"), nil
	})
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}

	if claims.ExpiresAt != nil {
		t.Errorf("admin token should not carry an expiry, got %v", claims.ExpiresAt.Time)
	}
}

// TestTokenService_ExpiredTokenRejected は期限切れトークンの検証が失敗することを検証する。
func TestTokenService_ExpiredTokenRejected(t *testing.T) {
	ts, err := NewTokenService("user-secret", "admin-secret", -time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}

	token, err := ts.Issue(model.Identity{Role: model.RoleUser, ID: "user-1"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := ts.Verify(token, model.RoleUser); err == nil {
		t.Error("expired token should be rejected")
	}
}

// TestTokenService_TamperedTokenRejected は改ざんトークンの検証が失敗することを検証する。
func TestTokenService_TamperedTokenRejected(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(model.Identity{Role: model.RoleUser, ID: "user-1"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	tampered := token + "x"
	if _, err := ts.Verify(tampered, model.RoleUser); err == nil {
		t.Error("tampered token should be rejected")
	}
}
