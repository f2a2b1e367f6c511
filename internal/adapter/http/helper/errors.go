package helper

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todoservice/internal/adapter/http/validation"
	"todoservice/internal/adapter/i18n"
	"todoservice/internal/adapter/logger"
	"todoservice/internal/core/domain"
)

const (
	LanguageKey = "language"
	BodyKey     = "request_body"

	maxLoggedBody = 2048
	redacted      = "[REDACTED]"
)

var sensitiveKeys = []string{"password", "token", "secret", "authorization", "api_key", "apikey"}

// Responder writes localized error envelopes and logs every failure before
// the response goes out.
type Responder struct {
	Logger     *logger.LokiLogger
	Translator *i18n.Translator
	Production bool
}

func NewResponder(logger *logger.LokiLogger, translator *i18n.Translator, production bool) *Responder {
	return &Responder{
		Logger:     logger,
		Translator: translator,
		Production: production,
	}
}

func Language(c *gin.Context) string {
	if lang := c.GetString(LanguageKey); lang != "" {
		return lang
	}
	return i18n.LanguageEnglish
}

func (r *Responder) Message(c *gin.Context, messageID string, data map[string]any) string {
	return r.Translator.Message(Language(c), messageID, data)
}

func (r *Responder) Plural(c *gin.Context, messageID string, count int) string {
	return r.Translator.Plural(Language(c), messageID, count)
}

func (r *Responder) SendValidationError(c *gin.Context, err *validation.Error) {
	r.logFailure(c, http.StatusBadRequest, CodeValidation, err)
	SendError(c, http.StatusBadRequest, CodeValidation, r.Message(c, CodeValidation, nil), err.Violations)
}

// SendServiceError maps domain and adapter errors onto the error taxonomy.
func (r *Responder) SendServiceError(c *gin.Context, err error) {
	if validationErr, ok := validation.AsError(err); ok {
		r.SendValidationError(c, validationErr)
		return
	}

	status, code := http.StatusInternalServerError, CodeInternal

	switch {
	case errors.Is(err, domain.ErrTodoNotFound):
		status, code = http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrDuplicateKey):
		status, code = http.StatusBadRequest, CodeDuplicateEntry
	case errors.Is(err, domain.ErrStoreUnavailable):
		status, code = http.StatusServiceUnavailable, CodeServiceUnavailable
	}

	r.logFailure(c, status, code, err)

	if code == CodeInternal {
		SendError(c, status, code, r.Message(c, code, nil), r.internalDetails(err, nil))
		return
	}

	SendError(c, status, code, r.Message(c, code, nil))
}

// SendPanic answers a recovered panic with a generic INTERNAL_ERROR.
func (r *Responder) SendPanic(c *gin.Context, recovered any) {
	err, ok := recovered.(error)
	if !ok {
		err = errors.New(toString(recovered))
	}

	stack := debug.Stack()
	r.logFailure(c, http.StatusInternalServerError, CodeInternal, err, zap.ByteString("stack", stack))
	SendError(c, http.StatusInternalServerError, CodeInternal, r.Message(c, CodeInternal, nil), r.internalDetails(err, stack))
}

// SendUnavailable answers a failed dependency check with 503. The report
// goes out as details.
func (r *Responder) SendUnavailable(c *gin.Context, err error, details any) {
	r.logFailure(c, http.StatusServiceUnavailable, CodeServiceUnavailable, err)
	SendError(c, http.StatusServiceUnavailable, CodeServiceUnavailable, r.Message(c, CodeServiceUnavailable, nil), details)
}

func (r *Responder) SendRouteNotFound(c *gin.Context) {
	message := r.Message(c, CodeRouteNotFound, map[string]any{
		"Method": c.Request.Method,
		"Path":   c.Request.URL.Path,
	})

	r.logFailure(c, http.StatusNotFound, CodeRouteNotFound, errors.New(message))
	SendError(c, http.StatusNotFound, CodeRouteNotFound, message)
}

func (r *Responder) SendRateLimited(c *gin.Context) {
	SendError(c, http.StatusTooManyRequests, CodeRateLimitExceeded, r.Message(c, CodeRateLimitExceeded, nil))
}

// internalDetails is nil in production so the caller only sees the generic
// message.
func (r *Responder) internalDetails(err error, stack []byte) any {
	if r.Production {
		return nil
	}

	if stack == nil {
		stack = debug.Stack()
	}

	return gin.H{
		"error": err.Error(),
		"stack": strings.Split(strings.TrimSpace(string(stack)), "\n"),
	}
}

func (r *Responder) logFailure(c *gin.Context, status int, code string, err error, extra ...zap.Field) {
	if r.Logger == nil {
		return
	}

	fields := append([]zap.Field{
		zap.String("code", code),
		zap.Int("status", status),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("remote_addr", c.ClientIP()),
		zap.String("request_id", c.GetString("request_id")),
		zap.String("query", SanitizeQuery(c.Request.URL.Query())),
		zap.String("body", SanitizeBody(c.GetString(BodyKey))),
		zap.Error(err),
	}, extra...)

	if status >= http.StatusInternalServerError {
		r.Logger.Error(c.Request.Context(), "Request failed", fields...)
		return
	}

	r.Logger.Warn(c.Request.Context(), "Request rejected", fields...)
}

// SanitizeBody redacts credential-like keys of a JSON object and caps the
// length of what gets logged.
func SanitizeBody(body string) string {
	if body == "" {
		return ""
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err == nil {
		for key := range fields {
			if isSensitive(key) {
				fields[key] = redacted
			}
		}

		if encoded, err := json.Marshal(fields); err == nil {
			body = string(encoded)
		}
	}

	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody] + "...(truncated)"
	}

	return body
}

func SanitizeQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}

	clean := url.Values{}
	for key, vals := range values {
		if isSensitive(key) {
			clean.Set(key, redacted)
			continue
		}
		clean[key] = vals
	}

	return clean.Encode()
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(key, sensitive) {
			return true
		}
	}
	return false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return "panic"
	}
	return string(encoded)
}
