package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// Fieldsはバリデーションエラー時のみ設定され、フィールド名→エラーメッセージを保持する。
type APIError struct {
	Code     string            // エラーコード
	Message  string            // エラーメッセージ
	Category string            // カテゴリ: auth, validation, blog, comment, system
	Action   string            // ユーザー向け対処方法
	Fields   map[string]string // フィールド別のバリデーションエラー
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeEmailTaken        = "EMAIL_TAKEN"
	ErrCodeNoAccount         = "NO_ACCOUNT"
	ErrCodeIncorrectPassword = "INCORRECT_PASSWORD"
	ErrCodeInvalidCreds      = "INVALID_CREDENTIALS"
	ErrCodeInvalidAdminToken = "INVALID_ADMIN_TOKEN"
	ErrCodeUnauthenticated   = "UNAUTHENTICATED"
	ErrCodeNotSignedIn       = "NOT_SIGNED_IN"
	ErrCodeNotPostAuthor     = "NOT_POST_AUTHOR"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodePostNotFound      = "POST_NOT_FOUND"
	ErrCodeCommentNotFound   = "COMMENT_NOT_FOUND"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeInvalidImage      = "INVALID_IMAGE"
	ErrCodeInvalidURL        = "INVALID_URL"
	ErrCodeSSRFBlocked       = "SSRF_BLOCKED"
	ErrCodeFetchFailed       = "FETCH_FAILED"
)

// NewValidationError はフィールド別メッセージ付きのバリデーションエラーを生成する。
func NewValidationError(fields map[string]string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "入力内容に誤りがあります。",
		Category: "validation",
		Action:   "各フィールドのエラーメッセージを確認して修正してください。",
		Fields:   fields,
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "validation",
		Action:   "別のメールアドレスで登録するか、サインインしてください。",
	}
}

// NewNoAccountError は未登録メールアドレスでのサインインエラーを生成する。
func NewNoAccountError() *APIError {
	return &APIError{
		Code:     ErrCodeNoAccount,
		Message:  "このメールアドレスのアカウントが見つかりません。",
		Category: "auth",
		Action:   "メールアドレスを確認するか、新規登録してください。",
	}
}

// NewIncorrectPasswordError はパスワード不一致エラーを生成する。
// NO_ACCOUNTとはメッセージで区別されるが、ステータスコードは同じ401になる。
func NewIncorrectPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeIncorrectPassword,
		Message:  "パスワードが正しくありません。",
		Category: "auth",
		Action:   "パスワードを確認して再度お試しください。",
	}
}

// NewInvalidCredentialsError は管理者サインイン失敗エラーを生成する。
// 管理者向けにはアカウント有無を区別せず単一メッセージを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCreds,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewInvalidAdminTokenError は管理者登録用の共有トークン不一致エラーを生成する。
func NewInvalidAdminTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAdminToken,
		Message:  "管理者登録トークンが正しくありません。",
		Category: "auth",
		Action:   "正しい登録トークンを指定してください。",
	}
}

// NewUnauthenticatedError はユーザー向けルートのトークン欠落・不正エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "トークンがありません。先にサインインしてください。",
		Category: "auth",
		Action:   "サインインしてから再度お試しください。",
	}
}

// NewNotSignedInError は管理者向けルートのトークン欠落・不正エラーを生成する。
func NewNotSignedInError() *APIError {
	return &APIError{
		Code:     ErrCodeNotSignedIn,
		Message:  "管理者としてサインインしていません。",
		Category: "auth",
		Action:   "管理者アカウントでサインインしてください。",
	}
}

// NewNotPostAuthorError は記事の著者以外による変更操作のエラーを生成する。
func NewNotPostAuthorError() *APIError {
	return &APIError{
		Code:     ErrCodeNotPostAuthor,
		Message:  "この記事を変更する権限がありません。",
		Category: "auth",
		Action:   "自分が作成した記事のみ編集・削除できます。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ユーザーIDまたはメールアドレスを確認してください。",
	}
}

// NewPostNotFoundError は記事が見つからない場合のエラーを生成する。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", postID),
		Category: "blog",
		Action:   "記事IDを確認してください。",
	}
}

// NewCommentNotFoundError はコメントが見つからない場合のエラーを生成する。
func NewCommentNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeCommentNotFound,
		Message:  "指定されたコメントが見つかりません。",
		Category: "comment",
		Action:   "コメントIDと記事IDの組み合わせを確認してください。",
	}
}

// NewInvalidInputError はリクエスト形式の不備エラーを生成する。
func NewInvalidInputError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト形式を確認してください。",
	}
}

// NewInvalidImageError はカバー画像の形式・サイズ不備エラーを生成する。
func NewInvalidImageError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImage,
		Message:  fmt.Sprintf("カバー画像が不正です: %s", reason),
		Category: "validation",
		Action:   "jpg/png/gif/webp形式の画像をサイズ上限内でアップロードしてください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "http:// または https:// で始まる正しいURLを入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトの画像URLを指定してください。",
	}
}

// NewFetchFailedError はカバー画像の取得失敗エラーを生成する。
func NewFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("画像URLの取得に失敗しました: %s", reason),
		Category: "blog",
		Action:   "URLが正しいか確認し、しばらく待ってから再度お試しください。",
	}
}
