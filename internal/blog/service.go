// Package blog はブログ記事の管理機能を提供する。
package blog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/security"
)

// CoverRemover は差し替え・削除時に不要になったカバー画像を片付ける。
type CoverRemover interface {
	Remove(publicPath string) error
}

// ActivityRecorder は記事作成・リアクションのメトリクス記録インターフェース。
type ActivityRecorder interface {
	RecordPostCreated()
	RecordReaction(kind string)
}

// BlogService はブログ記事のCRUDとリアクションのサービス。
type BlogService struct {
	blogRepo  repository.BlogRepository
	sanitizer security.ContentSanitizerService
	covers    CoverRemover
	metrics   ActivityRecorder
}

// NewBlogService はBlogServiceの新しいインスタンスを生成する。
// coversとmetricsはnilでもよい（それぞれ画像の掃除・メトリクス記録をスキップする）。
func NewBlogService(
	blogRepo repository.BlogRepository,
	sanitizer security.ContentSanitizerService,
	covers CoverRemover,
	metrics ActivityRecorder,
) *BlogService {
	return &BlogService{
		blogRepo:  blogRepo,
		sanitizer: sanitizer,
		covers:    covers,
		metrics:   metrics,
	}
}

// CreateInput は記事作成の入力。
// CoverImagePathはハンドラ層で保存済みのカバー画像の公開パス（任意）。
type CreateInput struct {
	Title          string
	Content        string
	Status         model.BlogStatus
	CoverImagePath string
}

// validateCreate は記事作成入力を検証する。
func validateCreate(in CreateInput) error {
	err := validation.Errors{
		"title": validation.Validate(in.Title,
			validation.Required.Error("タイトルは必須です"),
			validation.Length(1, 200).Error("タイトルは200文字以内にしてください"),
		),
		"content": validation.Validate(in.Content,
			validation.Required.Error("本文は必須です"),
		),
	}.Filter()
	if err != nil {
		if verrs, ok := err.(validation.Errors); ok {
			fields := make(map[string]string, len(verrs))
			for name, ferr := range verrs {
				fields[name] = ferr.Error()
			}
			return model.NewValidationError(fields)
		}
		return model.NewValidationError(map[string]string{"request": err.Error()})
	}
	if in.Status != "" && !in.Status.IsValid() {
		return model.NewValidationError(map[string]string{
			"status": fmt.Sprintf("ステータスは draft または published を指定してください: %s", in.Status),
		})
	}
	return nil
}

// Create は新しい記事を作成する。
// 本文は保存前にサニタイズされる。ステータス未指定時はdraftになる。
func (s *BlogService) Create(ctx context.Context, authorID string, in CreateInput) (*model.Blog, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = model.BlogStatusDraft
	}

	now := time.Now()
	blog := &model.Blog{
		ID:             uuid.New().String(),
		AuthorID:       authorID,
		Title:          in.Title,
		Content:        s.sanitizer.SanitizePost(in.Content),
		CoverImagePath: in.CoverImagePath,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, fmt.Errorf("記事の作成に失敗しました: %w", err)
	}

	slog.Info("blog post created",
		slog.String("post_id", blog.ID),
		slog.String("author_id", authorID),
		slog.String("status", string(status)),
	)
	if s.metrics != nil {
		s.metrics.RecordPostCreated()
	}

	return blog, nil
}

// Get は記事を著者名付きで取得する。
func (s *BlogService) Get(ctx context.Context, postID string) (*model.BlogWithAuthor, error) {
	blog, err := s.blogRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if blog == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	return blog, nil
}

// ListAll は全記事を著者名付き・作成日時の降順で返す。
func (s *BlogService) ListAll(ctx context.Context) ([]*model.BlogWithAuthor, error) {
	blogs, err := s.blogRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	return blogs, nil
}

// ListByAuthor は指定著者の記事を作成日時の降順で返す。
func (s *BlogService) ListByAuthor(ctx context.Context, authorID string) ([]*model.BlogWithAuthor, error) {
	blogs, err := s.blogRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	return blogs, nil
}

// UpdateInput は記事更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title          *string
	Content        *string
	Status         *model.BlogStatus
	CoverImagePath *string
}

// Update は記事を部分更新する。
// 著者本人のみ更新でき、他人の記事への更新はNOT_POST_AUTHORになる。
// like/dislikeカウンターはこの経路では変更されない。
func (s *BlogService) Update(ctx context.Context, authorID, postID string, in UpdateInput) (*model.Blog, error) {
	existing, err := s.blogRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if existing == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	if existing.AuthorID != authorID {
		return nil, model.NewNotPostAuthorError()
	}

	blog := existing.Blog

	if in.Title != nil {
		if *in.Title == "" {
			return nil, model.NewValidationError(map[string]string{"title": "タイトルは必須です"})
		}
		blog.Title = *in.Title
	}
	if in.Content != nil {
		if *in.Content == "" {
			return nil, model.NewValidationError(map[string]string{"content": "本文は必須です"})
		}
		blog.Content = s.sanitizer.SanitizePost(*in.Content)
	}
	if in.Status != nil {
		if !in.Status.IsValid() {
			return nil, model.NewValidationError(map[string]string{
				"status": fmt.Sprintf("ステータスは draft または published を指定してください: %s", *in.Status),
			})
		}
		blog.Status = *in.Status
	}

	oldCover := ""
	if in.CoverImagePath != nil {
		if blog.CoverImagePath != "" && blog.CoverImagePath != *in.CoverImagePath {
			oldCover = blog.CoverImagePath
		}
		blog.CoverImagePath = *in.CoverImagePath
	}

	blog.UpdatedAt = time.Now()

	if err := s.blogRepo.Update(ctx, &blog); err != nil {
		return nil, fmt.Errorf("記事の更新に失敗しました: %w", err)
	}

	// 更新が確定してから旧カバー画像を片付ける。
	if oldCover != "" && s.covers != nil {
		if err := s.covers.Remove(oldCover); err != nil {
			slog.Warn("failed to remove replaced cover image",
				slog.String("path", oldCover),
				slog.String("error", err.Error()),
			)
		}
	}

	slog.Info("blog post updated",
		slog.String("post_id", blog.ID),
		slog.String("author_id", authorID),
	)

	return &blog, nil
}

// Delete は記事を削除する。コメントはストア側のカスケードで削除される。
// 著者本人のみ削除でき、他人の記事への削除はNOT_POST_AUTHORになる。
func (s *BlogService) Delete(ctx context.Context, authorID, postID string) error {
	existing, err := s.blogRepo.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if existing == nil {
		return model.NewPostNotFoundError(postID)
	}
	if existing.AuthorID != authorID {
		return model.NewNotPostAuthorError()
	}

	return s.deletePost(ctx, &existing.Blog)
}

// ForceDelete は著者チェックなしで記事を削除する。管理者専用の経路。
func (s *BlogService) ForceDelete(ctx context.Context, postID string) error {
	existing, err := s.blogRepo.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if existing == nil {
		return model.NewPostNotFoundError(postID)
	}

	return s.deletePost(ctx, &existing.Blog)
}

func (s *BlogService) deletePost(ctx context.Context, blog *model.Blog) error {
	deleted, err := s.blogRepo.DeleteByID(ctx, blog.ID)
	if err != nil {
		return fmt.Errorf("記事の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewPostNotFoundError(blog.ID)
	}

	if blog.CoverImagePath != "" && s.covers != nil {
		if err := s.covers.Remove(blog.CoverImagePath); err != nil {
			slog.Warn("failed to remove cover image of deleted post",
				slog.String("path", blog.CoverImagePath),
				slog.String("error", err.Error()),
			)
		}
	}

	slog.Info("blog post deleted",
		slog.String("post_id", blog.ID),
	)
	return nil
}

// React はlikeまたはdislikeカウンターをインクリメントし、更新後の両カウンターを返す。
// インクリメントはストア層の単一UPDATE文で行われるため、並行リクエストでも
// 更新が失われることはない。認証は不要で、同一閲覧者が何度でも押せる。
func (s *BlogService) React(ctx context.Context, postID string, kind model.ReactionKind) (*model.ReactionCounts, error) {
	if kind != model.ReactionLike && kind != model.ReactionDislike {
		return nil, model.NewInvalidInputError(fmt.Sprintf("不明なリアクション種別です: %s", kind))
	}

	counts, err := s.blogRepo.IncrementReaction(ctx, postID, kind)
	if err != nil {
		return nil, fmt.Errorf("リアクションの記録に失敗しました: %w", err)
	}
	if counts == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	if s.metrics != nil {
		s.metrics.RecordReaction(string(kind))
	}

	return counts, nil
}
