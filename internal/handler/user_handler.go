package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// GetProfile はユーザー本人のプロフィールと執筆記事を返す。
	GetProfile(ctx context.Context, userID string) (*user.Profile, error)
	// BlogsByEmail はメールアドレスで指定したユーザーの執筆記事を返す。
	BlogsByEmail(ctx context.Context, email string) ([]*model.BlogWithAuthor, error)
}

// UserHandler はユーザープロフィールのHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// profileResponse はプロフィール取得のAPIレスポンス。
type profileResponse struct {
	User  userResponse   `json:"user"`
	Blogs []blogResponse `json:"blogs"`
}

// GetProfile はユーザー本人のプロフィール取得を処理する。
// GET /user/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	profile, err := h.service.GetProfile(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		User:  toUserResponse(profile.User),
		Blogs: toBlogWithAuthorResponses(profile.Blogs),
	})
}

// GetBlogsByEmail はメールアドレス指定の執筆記事一覧を処理する。
// GET /user/blog?email=
func (h *UserHandler) GetBlogsByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	blogs, err := h.service.BlogsByEmail(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBlogWithAuthorResponses(blogs))
}
