// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordSignup(role string)
	RecordPostCreated()
	RecordCommentCreated()
	RecordReaction(kind string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	signups         *prometheus.CounterVec
	postsCreated    prometheus.Counter
	commentsCreated prometheus.Counter
	reactions       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blogman_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogman_signup_total",
			Help: "ロール別のサインアップ合計数",
		}, []string{"role"}),
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blogman_posts_created_total",
			Help: "作成されたブログ記事の合計数",
		}),
		commentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blogman_comments_created_total",
			Help: "投稿されたコメントの合計数",
		}),
		reactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogman_reactions_total",
			Help: "種別ごとのリアクション合計数",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.signups,
		c.postsCreated,
		c.commentsCreated,
		c.reactions,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordSignup はロール別のサインアップを記録する。
func (c *Collector) RecordSignup(role string) {
	c.signups.WithLabelValues(role).Inc()
}

// RecordPostCreated は記事作成を記録する。
func (c *Collector) RecordPostCreated() {
	c.postsCreated.Inc()
}

// RecordCommentCreated はコメント投稿を記録する。
func (c *Collector) RecordCommentCreated() {
	c.commentsCreated.Inc()
}

// RecordReaction は種別ごとのリアクションを記録する。
func (c *Collector) RecordReaction(kind string) {
	c.reactions.WithLabelValues(kind).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NewHTTPMiddleware はレスポンスのステータスコードとレイテンシを記録する
// HTTPミドルウェアを返す。
func NewHTTPMiddleware(collector MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			collector.RecordHTTPStatus(rec.statusCode)
			collector.RecordRequestLatency(time.Since(start))
		})
	}
}

// statusWriter はステータスコードを捕捉するResponseWriterラッパー。
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.written {
		sw.statusCode = code
		sw.written = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.statusCode = http.StatusOK
		sw.written = true
	}
	return sw.ResponseWriter.Write(b)
}
