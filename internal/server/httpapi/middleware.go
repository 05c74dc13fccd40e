package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/procman/internal/common"
	"github.com/dmitrijs2005/procman/internal/server/auth"
)

// HandlerFunc is an http handler that reports failures as errors; the error
// middleware turns them into JSON responses.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

type ctxKey string

const userIDKey ctxKey = "userID"

// userIDFromContext returns the authenticated user id placed there by
// authMiddleware.
func userIDFromContext(ctx context.Context) (int64, error) {
	id, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return 0, common.ErrorUnauthorized
	}
	return id, nil
}

func (a *API) errorMiddleware(next HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			a.writeError(w, err)
		}
	}
}

func (a *API) loggingMiddleware(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		start := time.Now()

		err := next(w, r)

		status := http.StatusOK
		if err != nil {
			status = statusFromError(err)
		}
		a.logger.Info(r.Context(), "request completed",
			"method", r.Method, "path", r.URL.Path, "status", status, "duration", time.Since(start))

		return err
	}
}

// authMiddleware requires an "Authorization: Bearer <token>" header, verifies
// the token and stores its subject (the user id) in the request context.
func (a *API) authMiddleware(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return common.ErrorUnauthorized
		}

		subject, err := auth.GetSubjectFromToken(token, a.secret)
		if err != nil {
			return err
		}

		userID, err := strconv.ParseInt(subject, 10, 64)
		if err != nil {
			return common.ErrInvalidToken
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		return next(w, r.WithContext(ctx))
	}
}

// wrap applies the middleware chain for public endpoints.
func (a *API) wrap(h HandlerFunc) http.HandlerFunc {
	return a.errorMiddleware(a.loggingMiddleware(h))
}

// protected applies the middleware chain plus bearer authentication.
func (a *API) protected(h HandlerFunc) http.HandlerFunc {
	return a.errorMiddleware(a.loggingMiddleware(a.authMiddleware(h)))
}
