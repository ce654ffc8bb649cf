package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogman/internal/blog"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
)

// multipart解析時にメモリへ保持する最大サイズ。超過分は一時ファイルに落ちる。
const maxMultipartMemory = 10 << 20

// BlogServiceInterface はブログハンドラーが必要とするサービスインターフェース。
type BlogServiceInterface interface {
	// Create は新しい記事を作成する。
	Create(ctx context.Context, authorID string, in blog.CreateInput) (*model.Blog, error)
	// Get は記事を著者名付きで取得する。
	Get(ctx context.Context, postID string) (*model.BlogWithAuthor, error)
	// ListAll は全記事を作成日時の降順で返す。
	ListAll(ctx context.Context) ([]*model.BlogWithAuthor, error)
	// ListByAuthor は指定著者の記事を作成日時の降順で返す。
	ListByAuthor(ctx context.Context, authorID string) ([]*model.BlogWithAuthor, error)
	// Update は記事を部分更新する。
	Update(ctx context.Context, authorID, postID string, in blog.UpdateInput) (*model.Blog, error)
	// Delete は著者本人の記事を削除する。
	Delete(ctx context.Context, authorID, postID string) error
	// React はlike/dislikeカウンターをインクリメントする。
	React(ctx context.Context, postID string, kind model.ReactionKind) (*model.ReactionCounts, error)
}

// CoverStorer はアップロードされたカバー画像をローカルディスクに保存する。
// media.Storeを直接参照せず、最小限のインターフェースとして定義する。
type CoverStorer interface {
	// Save は画像を保存し、公開パスを返す。
	Save(originalName string, r io.Reader) (string, error)
}

// CoverFetcher はURL指定のカバー画像をSSRFガード経由で取得・保存する。
type CoverFetcher interface {
	// FetchAndStore は画像を取得して保存し、公開パスを返す。
	FetchAndStore(ctx context.Context, rawURL string) (string, error)
}

// BlogHandler はブログ記事管理のHTTPハンドラー。
type BlogHandler struct {
	service BlogServiceInterface
	covers  CoverStorer
	fetcher CoverFetcher
}

// NewBlogHandler はBlogHandlerを生成する。
func NewBlogHandler(service BlogServiceInterface, covers CoverStorer, fetcher CoverFetcher) *BlogHandler {
	return &BlogHandler{
		service: service,
		covers:  covers,
		fetcher: fetcher,
	}
}

// blogResponse はブログ記事のAPIレスポンス。
type blogResponse struct {
	ID              string    `json:"id"`
	AuthorID        string    `json:"authorId"`
	AuthorFirstName string    `json:"authorFirstName,omitempty"`
	AuthorLastName  string    `json:"authorLastName,omitempty"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	CoverImagePath  string    `json:"coverImagePath,omitempty"`
	Status          string    `json:"status"`
	LikeCount       int       `json:"likeCount"`
	DislikeCount    int       `json:"dislikeCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toBlogResponse(b *model.Blog) blogResponse {
	return blogResponse{
		ID:             b.ID,
		AuthorID:       b.AuthorID,
		Title:          b.Title,
		Content:        b.Content,
		CoverImagePath: b.CoverImagePath,
		Status:         string(b.Status),
		LikeCount:      b.LikeCount,
		DislikeCount:   b.DislikeCount,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func toBlogWithAuthorResponse(b *model.BlogWithAuthor) blogResponse {
	resp := toBlogResponse(&b.Blog)
	resp.AuthorFirstName = b.AuthorFirstName
	resp.AuthorLastName = b.AuthorLastName
	return resp
}

func toBlogWithAuthorResponses(blogs []*model.BlogWithAuthor) []blogResponse {
	resps := make([]blogResponse, 0, len(blogs))
	for _, b := range blogs {
		resps = append(resps, toBlogWithAuthorResponse(b))
	}
	return resps
}

// reactionResponse はリアクション後のカウンター値。
type reactionResponse struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// resolveCoverImage はmultipartフォームからカバー画像を解決して保存し、
// 公開パスを返す。coverImageファイルが優先され、なければcoverImageURLを
// SSRFガード経由で取得する。どちらも指定されていない場合は空文字列を返す。
func (h *BlogHandler) resolveCoverImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("coverImage")
	if err == nil {
		defer file.Close()
		return h.covers.Save(header.Filename, file)
	}
	if !errors.Is(err, http.ErrMissingFile) {
		return "", model.NewInvalidImageError("カバー画像の読み取りに失敗しました")
	}

	if rawURL := r.FormValue("coverImageURL"); rawURL != "" {
		return h.fetcher.FetchAndStore(r.Context(), rawURL)
	}

	return "", nil
}

// CreatePost は記事作成を処理する。
// POST /blog/posts
func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("multipart/form-data形式でリクエストしてください"))
		return
	}

	coverPath, err := h.resolveCoverImage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), identity.ID, blog.CreateInput{
		Title:          r.FormValue("title"),
		Content:        r.FormValue("content"),
		Status:         model.BlogStatus(r.FormValue("status")),
		CoverImagePath: coverPath,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 著者名を結合した形で返すため作成後に読み直す
	withAuthor, err := h.service.Get(r.Context(), created.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBlogWithAuthorResponse(withAuthor))
}

// ListAll は全記事の一覧を処理する。
// GET /blog/all
func (h *BlogHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.service.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBlogWithAuthorResponses(blogs))
}

// ListMine は自分の記事の一覧を処理する。
// GET /blog/posts
func (h *BlogHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	blogs, err := h.service.ListByAuthor(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBlogWithAuthorResponses(blogs))
}

// GetPost は記事詳細の取得を処理する。
// GET /blog/{postID}
func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	b, err := h.service.Get(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBlogWithAuthorResponse(b))
}

// UpdatePost は記事の部分更新を処理する。
// PUT /blog/{postID}
// multipartフォームに含まれるフィールドのみ更新する。
func (h *BlogHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}
	postID := chi.URLParam(r, "postID")

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("multipart/form-data形式でリクエストしてください"))
		return
	}

	in := blog.UpdateInput{
		Title:   formValuePtr(r, "title"),
		Content: formValuePtr(r, "content"),
	}
	if s := formValuePtr(r, "status"); s != nil {
		status := model.BlogStatus(*s)
		in.Status = &status
	}

	coverPath, err := h.resolveCoverImage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if coverPath != "" {
		in.CoverImagePath = &coverPath
	}

	updated, err := h.service.Update(r.Context(), identity.ID, postID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBlogResponse(updated))
}

// DeletePost は記事削除を処理する。
// DELETE /blog/{postID}
func (h *BlogHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}
	postID := chi.URLParam(r, "postID")

	if err := h.service.Delete(r.Context(), identity.ID, postID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "記事を削除しました。"})
}

// React はlike/dislikeリアクションを処理するハンドラーを返す。
// POST /blog/{postID}/like, POST /blog/{postID}/dislike
func (h *BlogHandler) React(kind model.ReactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := chi.URLParam(r, "postID")

		counts, err := h.service.React(r.Context(), postID, kind)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, reactionResponse{
			Likes:    counts.Likes,
			Dislikes: counts.Dislikes,
		})
	}
}

// formValuePtr はmultipartフォームにフィールドが存在する場合のみ値への
// ポインタを返す。存在しないフィールドは部分更新の対象外を意味する。
func formValuePtr(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
