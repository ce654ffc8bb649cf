package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestCORSMiddleware_Headers はCORSヘッダーが付与されることを検証する。
func TestCORSMiddleware_Headers(t *testing.T) {
	handler := NewCORSMiddleware("http://localhost:5173")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/blog/all", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q, want %q", got, "http://localhost:5173")
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Errorf("Allow-Headers = %q, want to include Authorization", got)
	}
}

// TestCORSMiddleware_Preflight はOPTIONSプリフライトが204で応答され、
// 後続ハンドラに到達しないことを検証する。
func TestCORSMiddleware_Preflight(t *testing.T) {
	reached := false
	handler := NewCORSMiddleware("http://localhost:5173")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/blog/add", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if reached {
		t.Error("preflight request should not reach the next handler")
	}
}

// TestSecurityHeadersMiddleware はセキュリティヘッダーの付与を検証する。
func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := NewSecurityHeadersMiddleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
}

// TestRecoveryMiddleware はpanicが500レスポンスに変換されることを検証する。
func TestRecoveryMiddleware(t *testing.T) {
	handler := NewRecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
