// Package app はアプリケーションの起動とワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/blogman/internal/admin"
	"github.com/hitoshi/blogman/internal/auth"
	"github.com/hitoshi/blogman/internal/blog"
	"github.com/hitoshi/blogman/internal/comment"
	"github.com/hitoshi/blogman/internal/config"
	"github.com/hitoshi/blogman/internal/database"
	"github.com/hitoshi/blogman/internal/handler"
	"github.com/hitoshi/blogman/internal/logger"
	"github.com/hitoshi/blogman/internal/media"
	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/security"
	"github.com/hitoshi/blogman/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	adminRepo := repository.NewPostgresAdminRepo(db)
	blogRepo := repository.NewPostgresBlogRepo(db)
	commentRepo := repository.NewPostgresCommentRepo(db)

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	// 5. カバー画像の保存・取得の初期化
	coverStore, err := media.NewStore(cfg.UploadDir, cfg.UploadMaxSize)
	if err != nil {
		return fmt.Errorf("failed to prepare upload directory: %w", err)
	}
	coverFetcher := media.NewFetcher(ssrfGuard, coverStore, cfg.FetchTimeout, cfg.FetchMaxSize)

	// 6. ドメインサービスの初期化
	tokens, err := auth.NewTokenService(cfg.JWTUserSecret, cfg.JWTAdminSecret, cfg.UserTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	authService := auth.NewService(userRepo, adminRepo, tokens, cfg.AdminSignupToken, collector)
	blogService := blog.NewBlogService(blogRepo, sanitizer, coverStore, collector)
	commentService := comment.NewCommentService(commentRepo, blogRepo, sanitizer, collector)
	userService := user.NewUserService(userRepo, blogRepo)
	adminService := admin.NewAdminService(userRepo, adminRepo, coverStore)

	// 7. レートリミッターの構築
	// configのレートはreq/min単位なのでreq/secに変換する
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.PostCreateRate = rate.Limit(float64(cfg.RateLimitPostReg) / 60.0)
	rateLimiterCfg.PostCreateBurst = cfg.RateLimitPostReg
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 8. ルーターの構築
	deps := &handler.RouterDeps{
		TokenVerifier:     tokens,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		AuthService: authService,
		UserService: userService,

		AdminService:     adminService,
		PostForceDeleter: blogService,

		BlogService:  blogService,
		CoverStorer:  coverStore,
		CoverFetcher: coverFetcher,

		CommentService: commentService,

		DB:             db,
		MetricsHandler: metrics.Handler(registry),
		UploadsDir:     coverStore.Dir(),
	}
	router := handler.NewRouter(deps)

	// 9. 共通ミドルウェアの適用
	// SecurityHeaders → Recovery → Logging → Metrics → ルーター の順に通る
	var h http.Handler = router
	h = metrics.NewHTTPMiddleware(collector)(h)
	h = middleware.NewLoggingMiddleware(slog.Default())(h)
	h = middleware.NewRecoveryMiddleware()(h)
	h = middleware.NewSecurityHeadersMiddleware()(h)

	// 10. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
