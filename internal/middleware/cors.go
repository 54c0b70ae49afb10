package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Content-Type", "Authorization", "X-Request-Id"}
)

// CORS permite los orígenes configurados; "*" (o lista vacía) permite todos.
// Los preflight se responden con 204 sin llegar al handler.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowed = []string{"*"}
			break
		}
		if o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	handler := cors.Handler(cors.Options{
		AllowedOrigins:     allowed,
		AllowedMethods:     corsMethods,
		AllowedHeaders:     corsHeaders,
		MaxAge:             600,
		OptionsPassthrough: true,
	})

	return func(next http.Handler) http.Handler {
		return handler(endPreflight(next))
	}
}

// endPreflight corta el preflight (ya con cabeceras CORS) con 204.
func endPreflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
