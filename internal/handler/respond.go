// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogman/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
// Fieldsはバリデーションエラー時のみ設定される。
type apiErrorResponse struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Category string            `json:"category"`
	Action   string            `json:"action"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
		Fields:   apiErr.Fields,
	})
}

// writeInvalidRequestBody はリクエストボディ解析失敗の400レスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しい形式でリクエストしてください。",
	})
}

// writeRouteNotFound は未定義ルートへのリクエストに対する404レスポンスを書き込む。
func writeRouteNotFound(w http.ResponseWriter, r *http.Request) {
	writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
		Code:     "ROUTE_NOT_FOUND",
		Message:  "指定されたパスは存在しません。",
		Category: "not_found",
		Action:   "リクエストのパスを確認してください。",
	})
}

// writeMethodNotAllowed は定義済みルートへの未対応メソッドに対する405レスポンスを書き込む。
func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeAPIErrorResponse(w, http.StatusMethodNotAllowed, &model.APIError{
		Code:     "METHOD_NOT_ALLOWED",
		Message:  "このパスでは指定されたHTTPメソッドを利用できません。",
		Category: "validation",
		Action:   "リクエストのHTTPメソッドを確認してください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// ユーザー向けサインインの2つの失敗コードはメッセージは異なるがどちらも401になる。
// 管理者ルートのNOT_SIGNED_INのみ403で、他の認証系は401。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidInput,
		model.ErrCodeInvalidURL, model.ErrCodeInvalidImage:
		return http.StatusBadRequest
	case model.ErrCodeNoAccount, model.ErrCodeIncorrectPassword,
		model.ErrCodeInvalidCreds, model.ErrCodeInvalidAdminToken,
		model.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeNotSignedIn, model.ErrCodeNotPostAuthor, model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound, model.ErrCodePostNotFound, model.ErrCodeCommentNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
