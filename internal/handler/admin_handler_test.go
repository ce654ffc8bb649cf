package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/blogman/internal/model"
)

// mockAdminHandlerService はAdminServiceInterfaceのモック実装。
type mockAdminHandlerService struct {
	listUsersFn   func(ctx context.Context) ([]*model.User, error)
	promoteUserFn func(ctx context.Context, email string) (*model.Admin, error)
	deleteUserFn  func(ctx context.Context, userID string) error
}

func (m *mockAdminHandlerService) ListUsers(ctx context.Context) ([]*model.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, nil
}

func (m *mockAdminHandlerService) PromoteUser(ctx context.Context, email string) (*model.Admin, error) {
	if m.promoteUserFn != nil {
		return m.promoteUserFn(ctx, email)
	}
	return nil, nil
}

func (m *mockAdminHandlerService) DeleteUser(ctx context.Context, userID string) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, userID)
	}
	return nil
}

// mockPostForceDeleter はPostForceDeleterのモック実装。
type mockPostForceDeleter struct {
	forceDeleteFn func(ctx context.Context, postID string) error
}

func (m *mockPostForceDeleter) ForceDelete(ctx context.Context, postID string) error {
	if m.forceDeleteFn != nil {
		return m.forceDeleteFn(ctx, postID)
	}
	return nil
}

// --- GET /admin/finduser/profile テスト ---

func TestAdminHandler_ListUsers_PublicProjection(t *testing.T) {
	svc := &mockAdminHandlerService{
		listUsersFn: func(ctx context.Context) ([]*model.User, error) {
			return []*model.User{testUser()}, nil
		},
	}
	h := NewAdminHandler(svc, &mockPostForceDeleter{})

	req := httptest.NewRequest(http.MethodGet, "/admin/finduser/profile", nil)
	req = withIdentity(req, model.RoleAdmin, "admin-1")
	w := httptest.NewRecorder()

	h.ListUsers(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	// ハッシュがレスポンスに漏れないこと
	if bytes.Contains(w.Body.Bytes(), []byte("secret-hash")) {
		t.Error("user list should not contain password hashes")
	}
}

// --- PUT /admin/update/profile テスト ---

func TestAdminHandler_PromoteUser_Success(t *testing.T) {
	svc := &mockAdminHandlerService{
		promoteUserFn: func(ctx context.Context, email string) (*model.Admin, error) {
			if email != "taro@example.com" {
				t.Errorf("email = %q, want %q", email, "taro@example.com")
			}
			return &model.Admin{ID: "admin-2", Email: email}, nil
		},
	}
	h := NewAdminHandler(svc, &mockPostForceDeleter{})

	body := `{"email":"taro@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/admin/update/profile", bytes.NewBufferString(body))
	req = withIdentity(req, model.RoleAdmin, "admin-1")
	w := httptest.NewRecorder()

	h.PromoteUser(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	result := decodeBody(t, w)
	if result["id"] != "admin-2" {
		t.Errorf("id = %v, want %q", result["id"], "admin-2")
	}
}

func TestAdminHandler_PromoteUser_UserNotFound(t *testing.T) {
	svc := &mockAdminHandlerService{
		promoteUserFn: func(ctx context.Context, email string) (*model.Admin, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	h := NewAdminHandler(svc, &mockPostForceDeleter{})

	body := `{"email":"nobody@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/admin/update/profile", bytes.NewBufferString(body))
	req = withIdentity(req, model.RoleAdmin, "admin-1")
	w := httptest.NewRecorder()

	h.PromoteUser(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAdminHandler_PromoteUser_AlreadyAdmin(t *testing.T) {
	svc := &mockAdminHandlerService{
		promoteUserFn: func(ctx context.Context, email string) (*model.Admin, error) {
			return nil, model.NewEmailTakenError(email)
		},
	}
	h := NewAdminHandler(svc, &mockPostForceDeleter{})

	body := `{"email":"taro@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/admin/update/profile", bytes.NewBufferString(body))
	req = withIdentity(req, model.RoleAdmin, "admin-1")
	w := httptest.NewRecorder()

	h.PromoteUser(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

// --- DELETE /admin/users/{userID} テスト ---

func TestAdminHandler_DeleteUser_Success(t *testing.T) {
	deleted := false
	svc := &mockAdminHandlerService{
		deleteUserFn: func(ctx context.Context, userID string) error {
			deleted = true
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return nil
		},
	}
	h := NewAdminHandler(svc, &mockPostForceDeleter{})

	req := httptest.NewRequest(http.MethodDelete, "/admin/users/user-1", nil)
	req = withIdentity(req, model.RoleAdmin, "admin-1")
	req = withChiURLParam(req, "userID", "user-1")
	w := httptest.NewRecorder()

	h.DeleteUser(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !deleted {
		t.Error("cascading delete should be called")
	}
}

func TestAdminHandler_DeleteUser_NotFound(t *testing.T) {
	svc := &mockAdminHandlerService{
		deleteUserFn: func(ctx context.Context, userID string) error {
			return model.NewUserNotFoundError()
		},
	}
	h := NewAdminHandler(svc, &mockPostForceDeleter{})

	req := httptest.NewRequest(http.MethodDelete, "/admin/users/missing", nil)
	req = withIdentity(req, model.RoleAdmin, "admin-1")
	req = withChiURLParam(req, "userID", "missing")
	w := httptest.NewRecorder()

	h.DeleteUser(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- DELETE /admin/posts/{postID} テスト ---

func TestAdminHandler_ForceDeletePost_Success(t *testing.T) {
	deleted := false
	deleter := &mockPostForceDeleter{
		forceDeleteFn: func(ctx context.Context, postID string) error {
			deleted = true
			if postID != "post-1" {
				t.Errorf("postID = %q, want %q", postID, "post-1")
			}
			return nil
		},
	}
	h := NewAdminHandler(&mockAdminHandlerService{}, deleter)

	req := httptest.NewRequest(http.MethodDelete, "/admin/posts/post-1", nil)
	req = withIdentity(req, model.RoleAdmin, "admin-1")
	req = withChiURLParam(req, "postID", "post-1")
	w := httptest.NewRecorder()

	h.ForceDeletePost(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !deleted {
		t.Error("force delete should be called")
	}
}

func TestAdminHandler_ForceDeletePost_NotFound(t *testing.T) {
	deleter := &mockPostForceDeleter{
		forceDeleteFn: func(ctx context.Context, postID string) error {
			return model.NewPostNotFoundError(postID)
		},
	}
	h := NewAdminHandler(&mockAdminHandlerService{}, deleter)

	req := httptest.NewRequest(http.MethodDelete, "/admin/posts/missing", nil)
	req = withIdentity(req, model.RoleAdmin, "admin-1")
	req = withChiURLParam(req, "postID", "missing")
	w := httptest.NewRecorder()

	h.ForceDeletePost(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
