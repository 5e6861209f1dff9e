package i18n

import "net/http"

// Middleware injects a localizer into every request context. The request's
// Accept-Language header wins over the catalog's default language.
func (c *Catalog) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := c.Context(r.Context(), r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
