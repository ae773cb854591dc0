// Package httpscope gives every HTTP request its own child container.
//
// The request container holds "request", "response" and "context" values on
// top of the application container, so request-bound factories can be
// registered with piquouze.PerContainer and share one value per request.
package httpscope

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dozm/piquouze"
)

type contextKey struct{}

const (
	RequestName  = "request"
	ResponseName = "response"
	ContextName  = "context"
)

// Middleware creates a child of c for each request.
func Middleware(c *piquouze.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := c.CreateChild()
			ctx := context.WithValue(r.Context(), contextKey{}, scope)
			r = r.WithContext(ctx)

			_ = scope.RegisterValue(RequestName, r)
			_ = scope.RegisterValue(ResponseName, w)
			_ = scope.RegisterValue(ContextName, ctx)

			next.ServeHTTP(w, r)
		})
	}
}

// FromRequest returns the request container installed by Middleware.
func FromRequest(r *http.Request) (*piquouze.Container, bool) {
	c, ok := r.Context().Value(contextKey{}).(*piquouze.Container)
	return c, ok
}

// Handler injects target for each request and calls it. Route parameters
// are available as dependencies named after their keys.
func Handler(target any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := FromRequest(r)
		if !ok {
			http.Error(w, "no request container", http.StatusInternalServerError)
			return
		}

		if _, err := call(c, target, r); err != nil {
			c.Logger().Error("request injection failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

func call(c *piquouze.Container, target any, r *http.Request) (any, error) {
	f, err := c.Inject(target, URLParams(r))
	if err != nil {
		return nil, errors.Wrap(err, "injecting handler")
	}
	return f()
}

// URLParams returns the chi route parameters of r.
func URLParams(r *http.Request) map[string]any {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}

	params := make(map[string]any, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}
