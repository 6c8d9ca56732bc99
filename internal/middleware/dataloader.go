package middleware

import (
	"context"
	"net/http"

	"github.com/rpattn/fishql/internal/referential"
)

type ctxKey string

const referentialLoaderKey ctxKey = "referentialLoader"

// DataLoaderMiddleware attaches a fresh referential loader to each request,
// so batches never mix lookups from different requests.
func DataLoaderMiddleware(newLoader func() *referential.Loader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithReferentialLoader(r.Context(), newLoader())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithReferentialLoader stores loader in ctx.
func WithReferentialLoader(ctx context.Context, loader *referential.Loader) context.Context {
	return context.WithValue(ctx, referentialLoaderKey, loader)
}

// ReferentialLoaderFromContext retrieves the loader from context
func ReferentialLoaderFromContext(ctx context.Context) *referential.Loader {
	if l, ok := ctx.Value(referentialLoaderKey).(*referential.Loader); ok {
		return l
	}
	return nil
}
