package media

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hitoshi/blogman/internal/model"
)

func newTestStore(t *testing.T, maxSize int64) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), maxSize)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	return store
}

// TestStore_Save_OK は画像が保存され、公開パスが返ることを検証する。
func TestStore_Save_OK(t *testing.T) {
	store := newTestStore(t, 1024)

	data := []byte("fake-jpeg-bytes")
	publicPath, err := store.Save("cover.jpg", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if !strings.HasPrefix(publicPath, "/uploads/blog/") {
		t.Errorf("public path = %q, want prefix /uploads/blog/", publicPath)
	}
	if !strings.HasSuffix(publicPath, ".jpg") {
		t.Errorf("public path = %q, want .jpg suffix", publicPath)
	}
	if strings.Contains(publicPath, "cover") {
		t.Errorf("public path = %q, should use a generated name, not the original", publicPath)
	}

	// 実ファイルが保存先に存在し、内容が一致すること。
	name := filepath.Base(publicPath)
	saved, err := os.ReadFile(filepath.Join(store.Dir(), name))
	if err != nil {
		t.Fatalf("saved file should exist: %v", err)
	}
	if !bytes.Equal(saved, data) {
		t.Error("saved file content should match the input")
	}
}

// TestStore_Save_UniqueNames は同名ファイルを2回保存しても衝突しないことを検証する。
func TestStore_Save_UniqueNames(t *testing.T) {
	store := newTestStore(t, 1024)

	first, err := store.Save("cover.png", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	second, err := store.Save("cover.png", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if first == second {
		t.Errorf("two saves of the same original name should get distinct paths, both %q", first)
	}
}

// TestStore_Save_DisallowedExtension は許可リスト外の拡張子がINVALID_IMAGEに
// なることを検証する。
func TestStore_Save_DisallowedExtension(t *testing.T) {
	store := newTestStore(t, 1024)

	for _, name := range []string{"payload.exe", "page.html", "noext", "shell.php", "cover.svg"} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Save(name, strings.NewReader("data"))
			if err == nil {
				t.Fatalf("Save(%q) should have returned error", name)
			}
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidImage {
				t.Errorf("expected INVALID_IMAGE error, got %v", err)
			}
		})
	}
}

// TestStore_Save_CaseInsensitiveExtension は大文字拡張子も受け付けることを検証する。
func TestStore_Save_CaseInsensitiveExtension(t *testing.T) {
	store := newTestStore(t, 1024)

	if _, err := store.Save("COVER.JPG", strings.NewReader("data")); err != nil {
		t.Errorf("Save should accept uppercase extensions, got: %v", err)
	}
}

// TestStore_Save_TooLarge はサイズ上限超過がINVALID_IMAGEになり、
// 部分ファイルが残らないことを検証する。
func TestStore_Save_TooLarge(t *testing.T) {
	store := newTestStore(t, 10)

	_, err := store.Save("cover.jpg", strings.NewReader("this content exceeds ten bytes"))
	if err == nil {
		t.Fatal("Save should have returned error for oversized input")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidImage {
		t.Errorf("expected INVALID_IMAGE error, got %v", err)
	}

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("failed to read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("partial file should be removed, found %d entries", len(entries))
	}
}

// TestStore_Save_Empty は空データがINVALID_IMAGEになることを検証する。
func TestStore_Save_Empty(t *testing.T) {
	store := newTestStore(t, 1024)

	_, err := store.Save("cover.jpg", strings.NewReader(""))
	if err == nil {
		t.Fatal("Save should have returned error for empty input")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidImage {
		t.Errorf("expected INVALID_IMAGE error, got %v", err)
	}
}

// TestStore_Remove_OK は保存済み画像の削除を検証する。
func TestStore_Remove_OK(t *testing.T) {
	store := newTestStore(t, 1024)

	publicPath, err := store.Save("cover.jpg", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := store.Remove(publicPath); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}

	name := filepath.Base(publicPath)
	if _, err := os.Stat(filepath.Join(store.Dir(), name)); !os.IsNotExist(err) {
		t.Error("file should be removed")
	}
}

// TestStore_Remove_MissingFile は存在しないファイルの削除がエラーにならないことを検証する。
func TestStore_Remove_MissingFile(t *testing.T) {
	store := newTestStore(t, 1024)

	if err := store.Remove("/uploads/blog/nonexistent.jpg"); err != nil {
		t.Errorf("Remove of a missing file should not error, got: %v", err)
	}
}

// TestStore_Remove_RejectsTraversal はパストラバーサルを含むパスが拒否されることを検証する。
func TestStore_Remove_RejectsTraversal(t *testing.T) {
	store := newTestStore(t, 1024)

	for _, p := range []string{
		"/etc/passwd",
		"../secret.jpg",
		"/uploads/other/file.jpg",
		"",
	} {
		t.Run(p, func(t *testing.T) {
			if err := store.Remove(p); err == nil {
				t.Errorf("Remove(%q) should have returned error", p)
			}
		})
	}
}
