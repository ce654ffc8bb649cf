package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/blogman/internal/blog"
	"github.com/hitoshi/blogman/internal/model"
)

// --- モック定義 ---

// mockBlogHandlerService はBlogServiceInterfaceのモック実装。
type mockBlogHandlerService struct {
	createFn       func(ctx context.Context, authorID string, in blog.CreateInput) (*model.Blog, error)
	getFn          func(ctx context.Context, postID string) (*model.BlogWithAuthor, error)
	listAllFn      func(ctx context.Context) ([]*model.BlogWithAuthor, error)
	listByAuthorFn func(ctx context.Context, authorID string) ([]*model.BlogWithAuthor, error)
	updateFn       func(ctx context.Context, authorID, postID string, in blog.UpdateInput) (*model.Blog, error)
	deleteFn       func(ctx context.Context, authorID, postID string) error
	reactFn        func(ctx context.Context, postID string, kind model.ReactionKind) (*model.ReactionCounts, error)
}

func (m *mockBlogHandlerService) Create(ctx context.Context, authorID string, in blog.CreateInput) (*model.Blog, error) {
	if m.createFn != nil {
		return m.createFn(ctx, authorID, in)
	}
	return nil, nil
}

func (m *mockBlogHandlerService) Get(ctx context.Context, postID string) (*model.BlogWithAuthor, error) {
	if m.getFn != nil {
		return m.getFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockBlogHandlerService) ListAll(ctx context.Context) ([]*model.BlogWithAuthor, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockBlogHandlerService) ListByAuthor(ctx context.Context, authorID string) ([]*model.BlogWithAuthor, error) {
	if m.listByAuthorFn != nil {
		return m.listByAuthorFn(ctx, authorID)
	}
	return nil, nil
}

func (m *mockBlogHandlerService) Update(ctx context.Context, authorID, postID string, in blog.UpdateInput) (*model.Blog, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, authorID, postID, in)
	}
	return nil, nil
}

func (m *mockBlogHandlerService) Delete(ctx context.Context, authorID, postID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, authorID, postID)
	}
	return nil
}

func (m *mockBlogHandlerService) React(ctx context.Context, postID string, kind model.ReactionKind) (*model.ReactionCounts, error) {
	if m.reactFn != nil {
		return m.reactFn(ctx, postID, kind)
	}
	return nil, nil
}

// mockCoverStorer はCoverStorerのモック実装。
type mockCoverStorer struct {
	saveFn func(originalName string, r io.Reader) (string, error)
}

func (m *mockCoverStorer) Save(originalName string, r io.Reader) (string, error) {
	if m.saveFn != nil {
		return m.saveFn(originalName, r)
	}
	return "", nil
}

// mockCoverFetcher はCoverFetcherのモック実装。
type mockCoverFetcher struct {
	fetchAndStoreFn func(ctx context.Context, rawURL string) (string, error)
}

func (m *mockCoverFetcher) FetchAndStore(ctx context.Context, rawURL string) (string, error) {
	if m.fetchAndStoreFn != nil {
		return m.fetchAndStoreFn(ctx, rawURL)
	}
	return "", nil
}

// --- テストヘルパー ---

// multipartBody はmultipart/form-dataのリクエストボディを組み立てるヘルパー。
// filesはフィールド名→(ファイル名, 内容)のマップ。
func multipartBody(t *testing.T, fields map[string]string, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("failed to write field %s: %v", name, err)
		}
	}
	for name, file := range files {
		fw, err := mw.CreateFormFile(name, file[0])
		if err != nil {
			t.Fatalf("failed to create form file %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(file[1])); err != nil {
			t.Fatalf("failed to write form file %s: %v", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func testBlogWithAuthor() *model.BlogWithAuthor {
	return &model.BlogWithAuthor{
		Blog: model.Blog{
			ID:       "post-1",
			AuthorID: "user-1",
			Title:    "Goのエラーハンドリング",
			Content:  "<p>本文</p>",
			Status:   model.BlogStatusPublished,
		},
		AuthorFirstName: "Taro",
		AuthorLastName:  "Yamada",
	}
}

// --- POST /blog/posts テスト ---

func TestBlogHandler_CreatePost_Success(t *testing.T) {
	svc := &mockBlogHandlerService{
		createFn: func(ctx context.Context, authorID string, in blog.CreateInput) (*model.Blog, error) {
			if authorID != "user-1" {
				t.Errorf("authorID = %q, want %q", authorID, "user-1")
			}
			if in.Title != "Goのエラーハンドリング" {
				t.Errorf("title = %q, want %q", in.Title, "Goのエラーハンドリング")
			}
			if in.Status != model.BlogStatusPublished {
				t.Errorf("status = %q, want %q", in.Status, model.BlogStatusPublished)
			}
			return &model.Blog{ID: "post-1", AuthorID: authorID}, nil
		},
		getFn: func(ctx context.Context, postID string) (*model.BlogWithAuthor, error) {
			return testBlogWithAuthor(), nil
		},
	}
	h := NewBlogHandler(svc, &mockCoverStorer{}, &mockCoverFetcher{})

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Goのエラーハンドリング",
		"content": "<p>本文</p>",
		"status":  "published",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/blog/posts", body)
	req.Header.Set("Content-Type", contentType)
	req = withIdentity(req, model.RoleUser, "user-1")
	w := httptest.NewRecorder()

	h.CreatePost(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	result := decodeBody(t, w)
	if result["authorFirstName"] != "Taro" {
		t.Errorf("authorFirstName = %v, want %q", result["authorFirstName"], "Taro")
	}
}

func TestBlogHandler_CreatePost_WithCoverFile(t *testing.T) {
	saved := false
	covers := &mockCoverStorer{
		saveFn: func(originalName string, r io.Reader) (string, error) {
			saved = true
			if originalName != "cover.png" {
				t.Errorf("originalName = %q, want %q", originalName, "cover.png")
			}
			return "/uploads/blog/abc.png", nil
		},
	}
	svc := &mockBlogHandlerService{
		createFn: func(ctx context.Context, authorID string, in blog.CreateInput) (*model.Blog, error) {
			if in.CoverImagePath != "/uploads/blog/abc.png" {
				t.Errorf("coverImagePath = %q, want %q", in.CoverImagePath, "/uploads/blog/abc.png")
			}
			return &model.Blog{ID: "post-1"}, nil
		},
		getFn: func(ctx context.Context, postID string) (*model.BlogWithAuthor, error) {
			return testBlogWithAuthor(), nil
		},
	}
	h := NewBlogHandler(svc, covers, &mockCoverFetcher{})

	body, contentType := multipartBody(t,
		map[string]string{"title": "t", "content": "c"},
		map[string][2]string{"coverImage": {"cover.png", "fake-png-bytes"}},
	)
	req := httptest.NewRequest(http.MethodPost, "/blog/posts", body)
	req.Header.Set("Content-Type", contentType)
	req = withIdentity(req, model.RoleUser, "user-1")
	w := httptest.NewRecorder()

	h.CreatePost(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if !saved {
		t.Error("cover image should be saved through the storer")
	}
}

func TestBlogHandler_CreatePost_WithCoverURL(t *testing.T) {
	fetched := false
	fetcher := &mockCoverFetcher{
		fetchAndStoreFn: func(ctx context.Context, rawURL string) (string, error) {
			fetched = true
			if rawURL != "https://images.example.com/cover.jpg" {
				t.Errorf("rawURL = %q, want %q", rawURL, "https://images.example.com/cover.jpg")
			}
			return "/uploads/blog/def.jpg", nil
		},
	}
	svc := &mockBlogHandlerService{
		createFn: func(ctx context.Context, authorID string, in blog.CreateInput) (*model.Blog, error) {
			if in.CoverImagePath != "/uploads/blog/def.jpg" {
				t.Errorf("coverImagePath = %q, want %q", in.CoverImagePath, "/uploads/blog/def.jpg")
			}
			return &model.Blog{ID: "post-1"}, nil
		},
		getFn: func(ctx context.Context, postID string) (*model.BlogWithAuthor, error) {
			return testBlogWithAuthor(), nil
		},
	}
	h := NewBlogHandler(svc, &mockCoverStorer{}, fetcher)

	body, contentType := multipartBody(t, map[string]string{
		"title":         "t",
		"content":       "c",
		"coverImageURL": "https://images.example.com/cover.jpg",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/blog/posts", body)
	req.Header.Set("Content-Type", contentType)
	req = withIdentity(req, model.RoleUser, "user-1")
	w := httptest.NewRecorder()

	h.CreatePost(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if !fetched {
		t.Error("cover image should be fetched through the fetcher")
	}
}

func TestBlogHandler_CreatePost_SSRFBlocked(t *testing.T) {
	fetcher := &mockCoverFetcher{
		fetchAndStoreFn: func(ctx context.Context, rawURL string) (string, error) {
			return "", model.NewSSRFBlockedError()
		},
	}
	svc := &mockBlogHandlerService{
		createFn: func(ctx context.Context, authorID string, in blog.CreateInput) (*model.Blog, error) {
			t.Error("Create should not be called when the cover fetch is blocked")
			return nil, nil
		},
	}
	h := NewBlogHandler(svc, &mockCoverStorer{}, fetcher)

	body, contentType := multipartBody(t, map[string]string{
		"title":         "t",
		"content":       "c",
		"coverImageURL": "http://169.254.169.254/latest/meta-data",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/blog/posts", body)
	req.Header.Set("Content-Type", contentType)
	req = withIdentity(req, model.RoleUser, "user-1")
	w := httptest.NewRecorder()

	h.CreatePost(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestBlogHandler_CreatePost_NotMultipart(t *testing.T) {
	h := NewBlogHandler(&mockBlogHandlerService{}, &mockCoverStorer{}, &mockCoverFetcher{})

	req := httptest.NewRequest(http.MethodPost, "/blog/posts", strings.NewReader(`{"title":"t"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withIdentity(req, model.RoleUser, "user-1")
	w := httptest.NewRecorder()

	h.CreatePost(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- GET /blog/{postID} テスト ---

func TestBlogHandler_GetPost_NotFound(t *testing.T) {
	svc := &mockBlogHandlerService{
		getFn: func(ctx context.Context, postID string) (*model.BlogWithAuthor, error) {
			return nil, model.NewPostNotFoundError(postID)
		},
	}
	h := NewBlogHandler(svc, &mockCoverStorer{}, &mockCoverFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/blog/missing", nil)
	req = withChiURLParam(req, "postID", "missing")
	w := httptest.NewRecorder()

	h.GetPost(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- GET /blog/all テスト ---

func TestBlogHandler_ListAll_ReturnsPosts(t *testing.T) {
	svc := &mockBlogHandlerService{
		listAllFn: func(ctx context.Context) ([]*model.BlogWithAuthor, error) {
			return []*model.BlogWithAuthor{testBlogWithAuthor()}, nil
		},
	}
	h := NewBlogHandler(svc, &mockCoverStorer{}, &mockCoverFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/blog/all", nil)
	w := httptest.NewRecorder()

	h.ListAll(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Goのエラーハンドリング") {
		t.Error("response should contain the post title")
	}
}

// --- PUT /blog/{postID} テスト ---

func TestBlogHandler_UpdatePost_PartialFields(t *testing.T) {
	svc := &mockBlogHandlerService{
		updateFn: func(ctx context.Context, authorID, postID string, in blog.UpdateInput) (*model.Blog, error) {
			if in.Title == nil || *in.Title != "新タイトル" {
				t.Errorf("title pointer = %v, want 新タイトル", in.Title)
			}
			if in.Content != nil {
				t.Error("content should not be updated when absent from the form")
			}
			if in.Status != nil {
				t.Error("status should not be updated when absent from the form")
			}
			return &model.Blog{ID: postID, AuthorID: authorID, Title: *in.Title}, nil
		},
	}
	h := NewBlogHandler(svc, &mockCoverStorer{}, &mockCoverFetcher{})

	body, contentType := multipartBody(t, map[string]string{"title": "新タイトル"}, nil)
	req := httptest.NewRequest(http.MethodPut, "/blog/post-1", body)
	req.Header.Set("Content-Type", contentType)
	req = withIdentity(req, model.RoleUser, "user-1")
	req = withChiURLParam(req, "postID", "post-1")
	w := httptest.NewRecorder()

	h.UpdatePost(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestBlogHandler_UpdatePost_NotAuthor(t *testing.T) {
	svc := &mockBlogHandlerService{
		updateFn: func(ctx context.Context, authorID, postID string, in blog.UpdateInput) (*model.Blog, error) {
			return nil, model.NewNotPostAuthorError()
		},
	}
	h := NewBlogHandler(svc, &mockCoverStorer{}, &mockCoverFetcher{})

	body, contentType := multipartBody(t, map[string]string{"title": "乗っ取り"}, nil)
	req := httptest.NewRequest(http.MethodPut, "/blog/post-1", body)
	req.Header.Set("Content-Type", contentType)
	req = withIdentity(req, model.RoleUser, "user-2")
	req = withChiURLParam(req, "postID", "post-1")
	w := httptest.NewRecorder()

	h.UpdatePost(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// --- DELETE /blog/{postID} テスト ---

func TestBlogHandler_DeletePost_Success(t *testing.T) {
	deleted := false
	svc := &mockBlogHandlerService{
		deleteFn: func(ctx context.Context, authorID, postID string) error {
			deleted = true
			if authorID != "user-1" || postID != "post-1" {
				t.Errorf("delete called with (%q, %q)", authorID, postID)
			}
			return nil
		},
	}
	h := NewBlogHandler(svc, &mockCoverStorer{}, &mockCoverFetcher{})

	req := httptest.NewRequest(http.MethodDelete, "/blog/post-1", nil)
	req = withIdentity(req, model.RoleUser, "user-1")
	req = withChiURLParam(req, "postID", "post-1")
	w := httptest.NewRecorder()

	h.DeletePost(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !deleted {
		t.Error("delete should be called")
	}
}

// --- POST /blog/{postID}/like, /dislike テスト ---

func TestBlogHandler_React_ReturnsBothCounters(t *testing.T) {
	svc := &mockBlogHandlerService{
		reactFn: func(ctx context.Context, postID string, kind model.ReactionKind) (*model.ReactionCounts, error) {
			if kind != model.ReactionLike {
				t.Errorf("kind = %q, want %q", kind, model.ReactionLike)
			}
			return &model.ReactionCounts{Likes: 5, Dislikes: 2}, nil
		},
	}
	h := NewBlogHandler(svc, &mockCoverStorer{}, &mockCoverFetcher{})

	req := httptest.NewRequest(http.MethodPost, "/blog/post-1/like", nil)
	req = withChiURLParam(req, "postID", "post-1")
	w := httptest.NewRecorder()

	h.React(model.ReactionLike)(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	result := decodeBody(t, w)
	if result["likes"] != float64(5) {
		t.Errorf("likes = %v, want 5", result["likes"])
	}
	if result["dislikes"] != float64(2) {
		t.Errorf("dislikes = %v, want 2", result["dislikes"])
	}
}

func TestBlogHandler_React_PostNotFound(t *testing.T) {
	svc := &mockBlogHandlerService{
		reactFn: func(ctx context.Context, postID string, kind model.ReactionKind) (*model.ReactionCounts, error) {
			return nil, model.NewPostNotFoundError(postID)
		},
	}
	h := NewBlogHandler(svc, &mockCoverStorer{}, &mockCoverFetcher{})

	req := httptest.NewRequest(http.MethodPost, "/blog/missing/dislike", nil)
	req = withChiURLParam(req, "postID", "missing")
	w := httptest.NewRecorder()

	h.React(model.ReactionDislike)(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
