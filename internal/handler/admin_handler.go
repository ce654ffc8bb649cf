package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogman/internal/model"
)

// AdminServiceInterface は管理者ハンドラーが必要とするサービスインターフェース。
type AdminServiceInterface interface {
	// ListUsers は全ユーザーを登録日時の降順で返す。
	ListUsers(ctx context.Context) ([]*model.User, error)
	// PromoteUser はメールアドレスで指定したユーザーを管理者に昇格する。
	PromoteUser(ctx context.Context, email string) (*model.Admin, error)
	// DeleteUser はユーザーを執筆記事・コメントごとカスケード削除する。
	DeleteUser(ctx context.Context, userID string) error
}

// PostForceDeleter は管理者による記事の強制削除インターフェース。
// blog.BlogServiceを直接参照せず、最小限のインターフェースとして定義する。
type PostForceDeleter interface {
	// ForceDelete は著者チェックなしで記事を削除する。
	ForceDelete(ctx context.Context, postID string) error
}

// AdminHandler は管理者専用機能のHTTPハンドラー。
type AdminHandler struct {
	service     AdminServiceInterface
	postDeleter PostForceDeleter
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(service AdminServiceInterface, postDeleter PostForceDeleter) *AdminHandler {
	return &AdminHandler{
		service:     service,
		postDeleter: postDeleter,
	}
}

// promoteUserRequest はユーザー昇格リクエストのボディ。
type promoteUserRequest struct {
	Email string `json:"email"`
}

// ListUsers は全ユーザー一覧の取得を処理する。
// GET /admin/finduser/profile
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resps := make([]userResponse, 0, len(users))
	for _, u := range users {
		resps = append(resps, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resps)
}

// PromoteUser はユーザーの管理者昇格を処理する。
// PUT /admin/update/profile
func (h *AdminHandler) PromoteUser(w http.ResponseWriter, r *http.Request) {
	var req promoteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	admin, err := h.service.PromoteUser(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAdminResponse(admin))
}

// DeleteUser はユーザーのカスケード削除を処理する。
// DELETE /admin/users/{userID}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "ユーザーと関連データを削除しました。"})
}

// ForceDeletePost は管理者による記事の強制削除を処理する。
// DELETE /admin/posts/{postID}
// 著者チェックは行わない。
func (h *AdminHandler) ForceDeletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	if err := h.postDeleter.ForceDelete(r.Context(), postID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "記事を削除しました。"})
}
