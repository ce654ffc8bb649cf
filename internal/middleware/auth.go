// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/blogman/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに認証済みアイデンティティを格納するためのキー。
var identityContextKey = contextKey("identity")

// TokenVerifier はトークン検証に必要なインターフェース。
// auth.TokenServiceの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string, role model.Role) (*model.Identity, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを要求ロールの鍵で
// 検証するミドルウェアを返す。検証を通過したアイデンティティは
// リクエストコンテキストに注入される。
//
// 検証の仕組みはロールによらず同一だが、失敗時のレスポンスはロールごとに異なる:
// ユーザー向けルートは401 UNAUTHENTICATED、管理者向けルートは403 NOT_SIGNED_INを返す。
// ユーザートークンを管理者ルートに提示しても署名鍵とロールクレームの両方で拒否される。
func NewAuthMiddleware(verifier TokenVerifier, role model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取得
			token := extractBearerToken(r)
			if token == "" {
				writeAuthFailure(w, role)
				return
			}

			// 2. 要求ロールの鍵でトークンを検証
			identity, err := verifier.Verify(token, role)
			if err != nil {
				slog.Warn("token verification failed",
					slog.String("role", string(role)),
					slog.String("error", err.Error()),
				)
				writeAuthFailure(w, role)
				return
			}

			// 3. 認証済みアイデンティティをコンテキストに注入
			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// ヘッダー欠落・形式不正の場合は空文字列を返す。
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// writeAuthFailure はロールに応じた認証失敗レスポンスを書き込む。
func writeAuthFailure(w http.ResponseWriter, role model.Role) {
	if role == model.RoleAdmin {
		WriteErrorResponse(w, http.StatusForbidden, model.NewNotSignedInError())
		return
	}
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
}

// IdentityFromContext はリクエストコンテキストから認証済みアイデンティティを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (*model.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok || identity == nil {
		return nil, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

// ContextWithIdentity はコンテキストにアイデンティティを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
