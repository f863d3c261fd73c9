package security

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

// CORSConfig lists the origins allowed to read the API. "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAgeSeconds  int
}

// NewCORS builds a read-only CORS policy: GET and OPTIONS, no credentials.
// X-Request-ID and X-Total-Count are exposed to browser clients.
func NewCORS(config CORSConfig) func(http.Handler) http.Handler {
	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	maxAge := config.MaxAgeSeconds
	if maxAge <= 0 {
		maxAge = 600
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Total-Count", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           maxAge,
	})
	return c.Handler
}

// AllowsAnyOrigin reports whether origins contains the wildcard.
func AllowsAnyOrigin(origins []string) bool {
	return slices.Contains(origins, "*")
}
