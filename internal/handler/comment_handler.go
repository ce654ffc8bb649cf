package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogman/internal/comment"
	"github.com/hitoshi/blogman/internal/model"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	// Add は記事にコメントを投稿する。
	Add(ctx context.Context, postID string, in comment.AddInput) (*model.Comment, error)
	// ListByPost は記事のコメントを作成日時の降順で返す。
	ListByPost(ctx context.Context, postID string) ([]*model.Comment, error)
	// Delete は記事IDでスコープしてコメントを削除する。
	Delete(ctx context.Context, postID, commentID string) error
}

// CommentHandler はコメント機能のHTTPハンドラー。
type CommentHandler struct {
	service CommentServiceInterface
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// commentResponse はコメントのAPIレスポンス。
type commentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCommentResponse(c *model.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		PostID:    c.BlogID,
		Name:      c.Name,
		Email:     c.Email,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

// AddComment はコメント投稿を処理する。
// POST /posts/{postID}/comments
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	var req comment.AddInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	created, err := h.service.Add(r.Context(), postID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCommentResponse(created))
}

// ListComments はコメント一覧の取得を処理する。
// GET /posts/{postID}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	comments, err := h.service.ListByPost(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resps := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		resps = append(resps, toCommentResponse(c))
	}
	writeJSON(w, http.StatusOK, resps)
}

// DeleteComment はコメント削除を処理する。
// DELETE /posts/{postID}/comments/{commentID}
// 記事IDとコメントIDの組み合わせが一致しない場合は404になる。
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	commentID := chi.URLParam(r, "commentID")

	if err := h.service.Delete(r.Context(), postID, commentID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "コメントを削除しました。"})
}
