// Package comment は記事へのコメント機能を提供する。
// コメントは未認証で投稿でき、投稿者は名前とメールアドレスを名乗るだけでよい。
package comment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/security"
)

// CommentRecorder はコメント投稿件数のメトリクス記録インターフェース。
type CommentRecorder interface {
	RecordCommentCreated()
}

// CommentService はコメントの投稿・取得・削除のサービス。
type CommentService struct {
	commentRepo repository.CommentRepository
	blogRepo    repository.BlogRepository
	sanitizer   security.ContentSanitizerService
	metrics     CommentRecorder
}

// NewCommentService はCommentServiceの新しいインスタンスを生成する。
// metricsはnilでもよい（記録をスキップする）。
func NewCommentService(
	commentRepo repository.CommentRepository,
	blogRepo repository.BlogRepository,
	sanitizer security.ContentSanitizerService,
	metrics CommentRecorder,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		blogRepo:    blogRepo,
		sanitizer:   sanitizer,
		metrics:     metrics,
	}
}

// AddInput はコメント投稿の入力。
type AddInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Content string `json:"content"`
}

// validate はコメント投稿入力を検証する。
func (in AddInput) validate() error {
	err := validation.Errors{
		"name": validation.Validate(in.Name,
			validation.Required.Error("名前は必須です"),
			validation.Length(1, 100).Error("名前は100文字以内にしてください"),
		),
		"email": validation.Validate(in.Email,
			validation.Required.Error("メールアドレスは必須です"),
			is.Email.Error("メールアドレスの形式が正しくありません"),
		),
		"content": validation.Validate(in.Content,
			validation.Required.Error("コメント本文は必須です"),
			validation.Length(1, 2000).Error("コメントは2000文字以内にしてください"),
		),
	}.Filter()
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validation.Errors); ok {
		fields := make(map[string]string, len(verrs))
		for name, ferr := range verrs {
			fields[name] = ferr.Error()
		}
		return model.NewValidationError(fields)
	}
	return model.NewValidationError(map[string]string{"request": err.Error()})
}

// Add は記事にコメントを投稿する。
// 記事の存在を先に確認し、存在しない場合はPOST_NOT_FOUNDを返す。
// 本文は保存前にコメント用ポリシーでサニタイズされる。
func (s *CommentService) Add(ctx context.Context, postID string, in AddInput) (*model.Comment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	blog, err := s.blogRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if blog == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	comment := &model.Comment{
		ID:        uuid.New().String(),
		BlogID:    postID,
		Name:      in.Name,
		Email:     in.Email,
		Content:   s.sanitizer.SanitizeComment(in.Content),
		CreatedAt: time.Now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}

	slog.Info("comment added",
		slog.String("comment_id", comment.ID),
		slog.String("post_id", postID),
	)
	if s.metrics != nil {
		s.metrics.RecordCommentCreated()
	}

	return comment, nil
}

// ListByPost は記事のコメントを作成日時の降順で返す。
// 記事が存在しない場合はPOST_NOT_FOUNDを返す。
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	blog, err := s.blogRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if blog == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	comments, err := s.commentRepo.ListByBlog(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	return comments, nil
}

// Delete は記事IDでスコープしてコメントを削除する。
// 記事IDとコメントIDの組み合わせに一致するコメントがない場合は
// COMMENT_NOT_FOUNDを返す（別記事のコメントIDを指定しても削除できない）。
func (s *CommentService) Delete(ctx context.Context, postID, commentID string) error {
	deleted, err := s.commentRepo.DeleteByIDAndBlog(ctx, commentID, postID)
	if err != nil {
		return fmt.Errorf("コメントの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewCommentNotFoundError()
	}

	slog.Info("comment deleted",
		slog.String("comment_id", commentID),
		slog.String("post_id", postID),
	)
	return nil
}
