package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	logpkg "github.com/benvon/todo-chat/internal/logger"
	"github.com/benvon/todo-chat/internal/request"
	"go.uber.org/zap"
)

// maxErrorMessageLength matches the limit the chat handlers apply to client-facing messages
const maxErrorMessageLength = 200

// ErrorResponse is the error envelope shared with the chat API
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
	RequestID string `json:"request_id,omitempty"`
}

// recoveryWriter records whether the wrapped handler already started its response
type recoveryWriter struct {
	http.ResponseWriter
	started bool
}

func (rw *recoveryWriter) WriteHeader(code int) {
	rw.started = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recoveryWriter) Write(b []byte) (int, error) {
	rw.started = true
	return rw.ResponseWriter.Write(b)
}

func (rw *recoveryWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// ErrorHandler recovers panics from the handler chain. A panic before the response
// started becomes a 500 error envelope; after that the connection is aborted.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &recoveryWriter{ResponseWriter: w}
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}
				// Panic value stays server-side
				logger.Error("panic_recovered",
					zap.Any("error", err),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("method", r.Method),
					zap.String("request_id", request.RequestIDFromContext(r.Context())),
					zap.Bool("response_started", rw.started),
					zap.Stack("stack"),
				)
				if rw.started {
					panic(http.ErrAbortHandler)
				}
				respondErrorJSON(w, r, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred", logger)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

// respondErrorJSON sends an error envelope. The request ID comes from the context, then
// from the response header Logging sets, then from the inbound header.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, status int, errorType, message string, logger *zap.Logger) {
	requestID := request.RequestIDFromContext(r.Context())
	if requestID == "" {
		requestID = w.Header().Get(request.RequestIDHeader)
	}
	if requestID == "" {
		requestID = logpkg.SanitizeString(r.Header.Get(request.RequestIDHeader), 128)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Success:   false,
		Error:     errorType,
		Message:   logpkg.SanitizeString(message, maxErrorMessageLength),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
		RequestID: requestID,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
			zap.String("path", r.URL.Path),
		)
	}
}
