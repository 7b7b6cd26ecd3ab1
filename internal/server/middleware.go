package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/observability"
)

type ctxKey int

const indexKey ctxKey = iota

// observe logs each request and reports it to the server hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		observability.Server().OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.Server().OnResponse(ctx, r.Method, r.URL.Path, status, dur)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur,
			"id", middleware.GetReqID(ctx))
	})
}

// itemIndex resolves the {index} URL parameter to an existing item.
func (s *Server) itemIndex(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "index")
		i, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "item index must be an integer, got %q", raw))
			return
		}
		if _, err := s.project.Item(i); err != nil {
			s.writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), indexKey, i)))
	})
}

func indexFrom(ctx context.Context) int {
	i, _ := ctx.Value(indexKey).(int)
	return i
}
