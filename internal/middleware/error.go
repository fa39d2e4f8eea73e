package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/culinario/backend/internal/apperrors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// NewErrorResponse builds the response body for err. Errors that are not
// an *apperrors.AppError are reported as internal errors without detail.
func NewErrorResponse(err error) (int, ErrorResponse) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternal(err)
	}
	resp := ErrorResponse{
		Error:  appErr.Message,
		Code:   string(appErr.Code),
		Fields: appErr.Fields,
	}
	if appErr.Code != apperrors.CodeInternal {
		resp.Details = appErr.Details
	}
	return appErr.StatusCode(), resp
}

// Errors renders the last error a handler attached with c.Error as JSON.
func Errors(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, resp := NewErrorResponse(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Int("status", status),
				zap.Error(err))
		}
		c.AbortWithStatusJSON(status, resp)
	}
}

// Recovery turns a panic into a 500 JSON response
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "Internal Server Error",
					Code:  string(apperrors.CodeInternal),
				})
			}
		}()
		c.Next()
	}
}

// responseRecorder holds back plain-text error bodies so they can be
// rewritten as JSON
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	capture    bool
	body       bytes.Buffer
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	ct := r.Header().Get("Content-Type")
	if statusCode >= 400 && !strings.HasPrefix(ct, "application/json") {
		r.capture = true
		return
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.statusCode == 0 {
		r.WriteHeader(http.StatusOK)
	}
	if r.capture {
		return r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

// ErrorHandler wraps handlers outside gin (404s for unknown routes, plain
// http.Error calls) so every error leaves as JSON
func ErrorHandler(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w}
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered", zap.Any("panic", err), zap.String("path", r.URL.Path))
				writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			if rec.capture {
				writeJSONError(w, rec.statusCode, strings.TrimSpace(rec.body.String()))
			}
		}()

		next.ServeHTTP(rec, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Del("Content-Length")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
