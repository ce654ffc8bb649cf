package auth

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/hitoshi/blogman/internal/model"
)

// SignupInput はユーザー・管理者共通のサインアップ入力。
type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

var (
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	hasDigit  = regexp.MustCompile(`[0-9]`)
)

// Validate はサインアップ入力を検証する。
// パスワードポリシー: 6文字以上、英字1文字以上、数字1文字以上。
// 失敗したフィールドすべてをFieldsに列挙したバリデーションエラーを返す。
func (in SignupInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Email,
			validation.Required.Error("メールアドレスは必須です"),
			is.Email.Error("メールアドレスの形式が正しくありません"),
		),
		validation.Field(&in.Password,
			validation.Required.Error("パスワードは必須です"),
			validation.Length(6, 0).Error("パスワードは6文字以上にしてください"),
			validation.Match(hasLetter).Error("パスワードには英字を1文字以上含めてください"),
			validation.Match(hasDigit).Error("パスワードには数字を1文字以上含めてください"),
		),
		validation.Field(&in.FirstName,
			validation.Required.Error("名は必須です"),
			validation.Length(2, 0).Error("名は2文字以上にしてください"),
		),
		validation.Field(&in.LastName,
			validation.Required.Error("姓は必須です"),
			validation.Length(2, 0).Error("姓は2文字以上にしてください"),
		),
	)
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
