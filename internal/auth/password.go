// Package auth はパスワードハッシュ、トークン発行・検証、サインアップ/サインインの
// ビジネスロジックを提供する。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/blogman/internal/model"
)

// bcryptCost はパスワードハッシュのコストファクター。
const bcryptCost = 10

// HashPassword は平文パスワードのソルト付きbcryptハッシュを生成する。
// 空文字列はInvalidInputエラーになる。最小長・文字種のポリシー検証は
// ハッシャーの責務ではなく、呼び出し前のバリデーション層で行うこと。
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", model.NewInvalidInputError("パスワードが空です")
	}

	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// VerifyPassword は平文パスワードとハッシュの一致を検証する。
// 比較はbcryptに委譲され、タイミング攻撃に対して安全。
// 不一致の場合はエラーではなくfalseを返す。
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
