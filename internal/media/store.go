// Package media はカバー画像の保存と取得を提供する。
//
// アップロードされた画像はローカルディスクに保存され、
// 記事にはWeb公開用の相対パス（/uploads/blog/<ファイル名>）が記録される。
package media

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/blogman/internal/model"
)

// publicPathPrefix は保存済み画像のWeb公開パスのプレフィックス。
const publicPathPrefix = "/uploads/blog"

// allowedExtensions はカバー画像として受け付ける拡張子。
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store はカバー画像のローカルディスク保存を提供する。
type Store struct {
	dir     string
	maxSize int64
}

// NewStore はStoreを生成し、保存先ディレクトリを作成する。
func NewStore(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("アップロードディレクトリの作成に失敗しました: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// Save は画像データを保存し、Web公開用の相対パスを返す。
// 元のファイル名は拡張子の判定のみに使用し、保存名には
// 衝突しないランダムなファイル名を生成する。
// 拡張子が許可リスト外、またはサイズ超過の場合はINVALID_IMAGEエラーを返す。
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", model.NewInvalidImageError(fmt.Sprintf("対応していない拡張子です: %s", ext))
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("画像ファイルの作成に失敗しました: %w", err)
	}
	defer f.Close()

	// maxSize+1まで読み、超過を検出する。
	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("画像ファイルの書き込みに失敗しました: %w", err)
	}
	if written > s.maxSize {
		os.Remove(dst)
		return "", model.NewInvalidImageError(fmt.Sprintf("サイズ上限（%dバイト）を超えています", s.maxSize))
	}
	if written == 0 {
		os.Remove(dst)
		return "", model.NewInvalidImageError("画像データが空です")
	}

	slog.Info("cover image saved",
		slog.String("file", name),
		slog.Int64("bytes", written),
	)

	return path.Join(publicPathPrefix, name), nil
}

// Remove は公開パスで指定された保存済み画像を削除する。
// 記事の削除・カバー差し替え時のクリーンアップに使用する。
// パストラバーサルを防ぐため、公開プレフィックス配下のファイル名のみ受け付ける。
// ファイルが既に存在しない場合はエラーにしない。
func (s *Store) Remove(publicPath string) error {
	if !strings.HasPrefix(publicPath, publicPathPrefix+"/") {
		return model.NewInvalidInputError("画像パスの形式が正しくありません")
	}

	name := path.Base(publicPath)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return model.NewInvalidInputError("画像パスの形式が正しくありません")
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("画像ファイルの削除に失敗しました: %w", err)
	}
	return nil
}

// Dir は保存先ディレクトリを返す。静的ファイル配信のルートとして使用する。
func (s *Store) Dir() string {
	return s.dir
}
