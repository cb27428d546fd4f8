package http

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/logger"
	"github.com/google/uuid"
)

// withRequestID tags the request context with the caller's X-Request-ID or
// a fresh one, and echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(constants.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// withRecovery converts a panic into the structured 500 response.
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorCtx(r.Context(), "handler panic", "panic", rec, "stack", string(debug.Stack()))
				writeInternalError(w, fmt.Sprint(rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withFormCORS answers preflight requests and rejects every method but POST
// before the handler sees the body.
func withFormCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set(constants.HeaderAllowOrigin, constants.CORSAllowOrigin)
		switch r.Method {
		case constants.HTTPMethodOPTIONS:
			h.Set(constants.HeaderAllowMethods, constants.CORSAllowMethods)
			h.Set(constants.HeaderAllowHeaders, constants.CORSAllowHeaders)
			w.WriteHeader(http.StatusOK)
		case constants.HTTPMethodPOST:
			next.ServeHTTP(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, constants.ResponseMethodNotAllowed)
		}
	})
}

// formEndpoint stacks the middleware every public form route runs behind.
func formEndpoint(h http.HandlerFunc) http.Handler {
	return withRequestID(withRecovery(withFormCORS(h)))
}
