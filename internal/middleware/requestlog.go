package middleware

import (
	"net/http"
	"time"

	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLog escribe una línea por request y alimenta las métricas HTTP.
// Va después de chimw.RequestID: deja en el contexto un logger con el
// request_id para que los handlers lo recuperen con logger.FromContext.
func RequestLog(log logger.Logger, m *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLog := logger.WithRequestID(log, chimw.GetReqID(r.Context()))
			if reqLog != nil {
				r = r.WithContext(logger.WithContext(r.Context(), reqLog))
			}

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			// el patrón solo está completo después de rutear
			route := ""
			if rc := chi.RouteContext(r.Context()); rc != nil {
				route = rc.RoutePattern()
			}

			elapsed := time.Since(start)
			m.ObserveHTTP(r.Method, route, status, elapsed)

			if reqLog == nil {
				return
			}
			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"route":       route,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": elapsed.Milliseconds(),
			}
			if status >= http.StatusInternalServerError {
				reqLog.Warn("http request", fields)
				return
			}
			reqLog.Info("http request", fields)
		})
	}
}
