package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger はヘルスチェックが必要とするデータベース疎通確認のインターフェース。
// *sql.DBがそのまま満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// healthResponse はヘルスチェックのAPIレスポンス。
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// NewHealthHandler はデータベースの疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{
				Status:   "unhealthy",
				Database: "unreachable",
			})
			return
		}

		writeJSON(w, http.StatusOK, healthResponse{
			Status:   "ok",
			Database: "ok",
		})
	}
}
