package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/blogman/internal/auth"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// SignupUser は新規ユーザーを登録する。
	SignupUser(ctx context.Context, in auth.SignupInput) (*model.User, error)
	// SigninUser はユーザーを認証し、トークンを発行する。
	SigninUser(ctx context.Context, email, password string) (string, *model.User, error)
	// SignupAdmin は共有トークンを照合した上で新規管理者を登録する。
	SignupAdmin(ctx context.Context, in auth.SignupInput, specialToken string) (*model.Admin, error)
	// SigninAdmin は管理者を認証し、トークンを発行する。
	SigninAdmin(ctx context.Context, email, password string) (string, *model.Admin, error)
}

// AuthHandler はサインアップ・サインインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// signinRequest はサインインリクエストのボディ。
type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// adminSignupRequest は管理者サインアップリクエストのボディ。
// 共通のサインアップ項目に加えて、設定から注入された共有トークンを要求する。
type adminSignupRequest struct {
	auth.SignupInput
	AdminToken string `json:"adminToken"`
}

// userResponse はユーザーの公開プロフィール。パスワードハッシュは含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}

// adminResponse は管理者の公開プロフィール。パスワードハッシュは含めない。
type adminResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAdminResponse(admin *model.Admin) adminResponse {
	return adminResponse{
		ID:        admin.ID,
		Email:     admin.Email,
		FirstName: admin.FirstName,
		LastName:  admin.LastName,
		CreatedAt: admin.CreatedAt,
	}
}

// userSigninResponse はユーザーサインイン成功時のレスポンス。
type userSigninResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// adminSigninResponse は管理者サインイン成功時のレスポンス。
type adminSigninResponse struct {
	Token string        `json:"token"`
	Admin adminResponse `json:"admin"`
}

// messageResponse は操作完了の確認メッセージ。
type messageResponse struct {
	Message string `json:"message"`
}

// UserSignup はユーザーサインアップを処理する。
// POST /user/signup
func (h *AuthHandler) UserSignup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, err := h.service.SignupUser(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// UserSignin はユーザーサインインを処理する。
// POST /user/signin
func (h *AuthHandler) UserSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	token, user, err := h.service.SigninUser(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userSigninResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

// UserSignout はユーザーサインアウトを処理する。
// POST /user/signout
// トークンはステートレスなのでサーバー側の状態は持たない。
// クライアントにトークンの破棄を促す確認応答のみを返す。
func (h *AuthHandler) UserSignout(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.IdentityFromContext(r.Context()); err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "サインアウトしました。トークンを破棄してください。",
	})
}

// AdminSignup は管理者サインアップを処理する。
// POST /admin/signup
func (h *AuthHandler) AdminSignup(w http.ResponseWriter, r *http.Request) {
	var req adminSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	admin, err := h.service.SignupAdmin(r.Context(), req.SignupInput, req.AdminToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAdminResponse(admin))
}

// AdminSignin は管理者サインインを処理する。
// POST /admin/signin
func (h *AuthHandler) AdminSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	token, admin, err := h.service.SigninAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, adminSigninResponse{
		Token: token,
		Admin: toAdminResponse(admin),
	})
}
