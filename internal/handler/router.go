package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface

	// ユーザー
	UserService UserServiceInterface

	// 管理者
	AdminService     AdminServiceInterface
	PostForceDeleter PostForceDeleter

	// ブログ
	BlogService  BlogServiceInterface
	CoverStorer  CoverStorer
	CoverFetcher CoverFetcher

	// コメント
	CommentService CommentServiceInterface

	// プラットフォーム
	DB             Pinger
	MetricsHandler http.Handler
	UploadsDir     string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// 認証ミドルウェアは必要なルートグループにのみ適用する:
//
//	/user/*（signup/signin除く）と /blog/posts はユーザートークン必須
//	/admin/*（signup/signin除く）は管理者トークン必須
//	記事閲覧・リアクション・コメントは未認証で利用できる
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	// 未定義ルートもchiのデフォルト（text/plain）ではなく統一エラーフォーマットで返す
	r.NotFound(writeRouteNotFound)
	r.MethodNotAllowed(writeMethodNotAllowed)

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	adminHandler := NewAdminHandler(deps.AdminService, deps.PostForceDeleter)
	blogHandler := NewBlogHandler(deps.BlogService, deps.CoverStorer, deps.CoverFetcher)
	commentHandler := NewCommentHandler(deps.CommentService)

	userAuth := middleware.NewAuthMiddleware(deps.TokenVerifier, model.RoleUser)
	adminAuth := middleware.NewAuthMiddleware(deps.TokenVerifier, model.RoleAdmin)
	generalLimit := deps.RateLimiter.GeneralMiddleware()
	postCreateLimit := deps.RateLimiter.PostCreationMiddleware()

	// --- 認証不要のルート ---

	r.Group(func(r chi.Router) {
		r.Use(generalLimit)

		// サインアップ・サインイン
		r.Post("/user/signup", authHandler.UserSignup)
		r.Post("/user/signin", authHandler.UserSignin)
		r.Post("/admin/signup", authHandler.AdminSignup)
		r.Post("/admin/signin", authHandler.AdminSignin)

		// 記事の閲覧とリアクション
		r.Get("/blog/all", blogHandler.ListAll)
		r.Get("/blog/{postID}", blogHandler.GetPost)
		r.Post("/blog/{postID}/like", blogHandler.React(model.ReactionLike))
		r.Post("/blog/{postID}/dislike", blogHandler.React(model.ReactionDislike))

		// コメント
		r.Route("/posts/{postID}/comments", func(r chi.Router) {
			r.Post("/", commentHandler.AddComment)
			r.Get("/", commentHandler.ListComments)
			r.Delete("/{commentID}", commentHandler.DeleteComment)
		})
	})

	// --- ユーザートークンが必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(userAuth)
		r.Use(generalLimit)

		r.Post("/user/signout", authHandler.UserSignout)
		r.Get("/user/profile", userHandler.GetProfile)
		r.Get("/user/blog", userHandler.GetBlogsByEmail)

		// POST /blog/posts - 記事作成（作成専用レート制限を追加）
		r.With(postCreateLimit).Post("/blog/posts", blogHandler.CreatePost)
		r.Get("/blog/posts", blogHandler.ListMine)
		r.Put("/blog/{postID}", blogHandler.UpdatePost)
		r.Delete("/blog/{postID}", blogHandler.DeletePost)
	})

	// --- 管理者トークンが必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(adminAuth)
		r.Use(generalLimit)

		r.Get("/admin/finduser/profile", adminHandler.ListUsers)
		r.Put("/admin/update/profile", adminHandler.PromoteUser)
		r.Delete("/admin/users/{userID}", adminHandler.DeleteUser)
		r.Delete("/admin/posts/{postID}", adminHandler.ForceDeletePost)
	})

	// --- プラットフォーム ---

	r.Get("/health", NewHealthHandler(deps.DB))
	r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)

	// 保存済みカバー画像の静的配信
	fileServer := http.StripPrefix("/uploads/blog/", http.FileServer(http.Dir(deps.UploadsDir)))
	r.Get("/uploads/blog/*", fileServer.ServeHTTP)

	return r
}
