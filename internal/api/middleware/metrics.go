package middleware

import (
	"net/http"
	"sync/atomic"
)

// MetricsCollector counts requests, client errors and server errors.
type MetricsCollector struct {
	requestCount *atomic.Int64
	errorCount   *atomic.Int64
	quotaCount   *atomic.Int64
}

func NewMetricsCollector(requestCount, errorCount, quotaCount *atomic.Int64) *MetricsCollector {
	return &MetricsCollector{
		requestCount: requestCount,
		errorCount:   errorCount,
		quotaCount:   quotaCount,
	}
}

// Middleware counts every request and every 4xx/5xx response. 429s are also
// counted separately; they cover both rate limiting and model quota.
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.requestCount.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		if rw.statusCode >= 400 {
			mc.errorCount.Add(1)
		}
		if rw.statusCode == http.StatusTooManyRequests && mc.quotaCount != nil {
			mc.quotaCount.Add(1)
		}
	})
}
