package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/security"
)

// contentTypeExtensions はレスポンスのContent-Typeから保存用拡張子への対応表。
var contentTypeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Fetcher はURL指定のカバー画像をSSRF防止付きで取得し、Storeに保存する。
type Fetcher struct {
	guard   security.SSRFGuardService
	store   *Store
	client  *http.Client
	maxSize int64
}

// NewFetcher はFetcherを生成する。
// HTTPクライアントはguardが生成するSSRF防止付きクライアントを使用する。
func NewFetcher(guard security.SSRFGuardService, store *Store, timeout time.Duration, maxSize int64) *Fetcher {
	return &Fetcher{
		guard:   guard,
		store:   store,
		client:  guard.NewSafeClient(timeout, maxSize),
		maxSize: maxSize,
	}
}

// FetchAndStore は指定URLから画像を取得して保存し、Web公開用の相対パスを返す。
// 1. URLの形式とスキームを検証する（不正ならINVALID_URL）
// 2. SSRFガードの静的検証を行う（拒否ならSSRF_BLOCKED）
// 3. SSRF防止付きクライアントで取得する（DNS解決後のIPもDialerで検証される）
// 4. Content-Typeから拡張子を決定し、Storeに保存する
func (f *Fetcher) FetchAndStore(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", model.NewInvalidURLError(rawURL)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", model.NewInvalidURLError(fmt.Sprintf("スキーム %s は使用できません", scheme))
	}

	if err := f.guard.ValidateURL(rawURL); err != nil {
		slog.Warn("cover image URL blocked",
			slog.String("url", rawURL),
			slog.String("reason", err.Error()),
		)
		return "", model.NewSSRFBlockedError()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", model.NewInvalidURLError(rawURL)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// DNS再バインディング等でDialerが接続を拒否した場合もここに到達する。
		return "", model.NewFetchFailedError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", model.NewFetchFailedError(fmt.Sprintf("ステータスコード %d が返されました", resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	ext, ok := contentTypeExtensions[strings.TrimSpace(strings.ToLower(contentType))]
	if !ok {
		return "", model.NewInvalidImageError(fmt.Sprintf("対応していないContent-Typeです: %s", contentType))
	}

	publicPath, err := f.store.Save("remote"+ext, io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return "", err
	}

	slog.Info("cover image fetched",
		slog.String("url", rawURL),
		slog.String("path", publicPath),
	)

	return publicPath, nil
}
