package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API全般のレート（req/sec）。120/60 = 2 req/sec
	GeneralBurst    int           // API全般のバーストサイズ
	PostCreateRate  rate.Limit    // 記事作成のレート（req/sec）。10/60
	PostCreateBurst int           // 記事作成のバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// API全般 120 req/min、記事作成 10 req/min。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0), // 2 req/sec
		GeneralBurst:    120,
		PostCreateRate:  rate.Limit(10.0 / 60.0), // ~0.167 req/sec
		PostCreateBurst: 10,
		CleanupInterval: 5 * time.Minute,
	}
}

// keyedLimiter は制限キーごとのレートリミッターとアクセス時刻を保持する。
type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter はリクエスト元ごとのレート制限を管理する。
// 認証済みリクエストはアイデンティティIDで、未認証リクエスト
// （記事閲覧・コメント投稿・リアクション）はクライアントIPでキーする。
// API全般のレート制限と記事作成のレート制限の2種類を提供する。
type RateLimiter struct {
	config RateLimiterConfig

	generalMu       sync.RWMutex
	generalLimiters map[string]*keyedLimiter

	postCreateMu       sync.RWMutex
	postCreateLimiters map[string]*keyedLimiter

	stopCh chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:             config,
		generalLimiters:    make(map[string]*keyedLimiter),
		postCreateLimiters: make(map[string]*keyedLimiter),
		stopCh:             make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// limitKey はリクエストのレート制限キーを返す。
// 認証済みならアイデンティティID、未認証ならクライアントIP。
func limitKey(r *http.Request) string {
	if identity, err := IdentityFromContext(r.Context()); err == nil {
		return string(identity.Role) + ":" + identity.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limitKey(r)
			limiter := rl.getOrCreateGeneralLimiter(key)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.GeneralRate)
				slog.Warn("rate limit exceeded",
					slog.String("key", key),
					slog.String("limit_type", "general"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PostCreationMiddleware は記事作成専用のレート制限ミドルウェアを返す。
// API全般のレート制限とは独立に動作する。
// 認証ミドルウェアの後に配置し、アイデンティティIDでキーする。
func (rl *RateLimiter) PostCreationMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limitKey(r)
			limiter := rl.getOrCreatePostCreateLimiter(key)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.PostCreateRate)
				slog.Warn("rate limit exceeded",
					slog.String("key", key),
					slog.String("limit_type", "post_creation"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は現在管理されているAPI全般リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) GeneralLimiterCount() int {
	rl.generalMu.RLock()
	defer rl.generalMu.RUnlock()
	return len(rl.generalLimiters)
}

// PostCreateLimiterCount は現在管理されている記事作成リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) PostCreateLimiterCount() int {
	rl.postCreateMu.RLock()
	defer rl.postCreateMu.RUnlock()
	return len(rl.postCreateLimiters)
}

// getOrCreateGeneralLimiter はキーのAPI全般リミッターを取得または作成する。
func (rl *RateLimiter) getOrCreateGeneralLimiter(key string) *rate.Limiter {
	rl.generalMu.RLock()
	kl, exists := rl.generalLimiters[key]
	rl.generalMu.RUnlock()

	if exists {
		rl.generalMu.Lock()
		kl.lastAccess = time.Now()
		rl.generalMu.Unlock()
		return kl.limiter
	}

	rl.generalMu.Lock()
	defer rl.generalMu.Unlock()

	// ダブルチェック
	if kl, exists := rl.generalLimiters[key]; exists {
		kl.lastAccess = time.Now()
		return kl.limiter
	}

	limiter := rate.NewLimiter(rl.config.GeneralRate, rl.config.GeneralBurst)
	rl.generalLimiters[key] = &keyedLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// getOrCreatePostCreateLimiter はキーの記事作成リミッターを取得または作成する。
func (rl *RateLimiter) getOrCreatePostCreateLimiter(key string) *rate.Limiter {
	rl.postCreateMu.RLock()
	kl, exists := rl.postCreateLimiters[key]
	rl.postCreateMu.RUnlock()

	if exists {
		rl.postCreateMu.Lock()
		kl.lastAccess = time.Now()
		rl.postCreateMu.Unlock()
		return kl.limiter
	}

	rl.postCreateMu.Lock()
	defer rl.postCreateMu.Unlock()

	// ダブルチェック
	if kl, exists := rl.postCreateLimiters[key]; exists {
		kl.lastAccess = time.Now()
		return kl.limiter
	}

	limiter := rate.NewLimiter(rl.config.PostCreateRate, rl.config.PostCreateBurst)
	rl.postCreateLimiters[key] = &keyedLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2

	now := time.Now()

	rl.generalMu.Lock()
	for key, kl := range rl.generalLimiters {
		if now.Sub(kl.lastAccess) > ttl {
			delete(rl.generalLimiters, key)
		}
	}
	rl.generalMu.Unlock()

	rl.postCreateMu.Lock()
	for key, kl := range rl.postCreateLimiters {
		if now.Sub(kl.lastAccess) > ttl {
			delete(rl.postCreateLimiters, key)
		}
	}
	rl.postCreateMu.Unlock()
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	// Retry-Afterの算出: 1トークンが補充されるまでの秒数
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(map[string]string{
		"code":     "rate_limit_exceeded",
		"message":  "Too many requests. Please try again later.",
		"category": "system",
		"action":   "Please wait and retry after the specified time.",
	})
}
