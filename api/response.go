package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/logging"
)

// Response 是所有接口统一的响应结构。
type Response struct {
	Status   string    `json:"status"`
	Data     any       `json:"data,omitempty"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata 是响应元信息。
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError 是错误详情。
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	resp.Metadata = Metadata{Timestamp: time.Now().UTC(), RequestID: logging.RequestIDFromContext(r.Context())}
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("write response")
	}
}

func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	respondJSON(w, r, http.StatusOK, &Response{Status: "success", Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, &Response{Status: "error", Error: &APIError{Code: code, Message: message}})
}

// respondDomainError 把领域错误映射为 HTTP 状态码。
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, core.ErrorCodeInternalError
	if de := core.GetDomainError(err); de != nil {
		code = de.Code
		switch de.Code {
		case core.ErrorCodeInvalidInput:
			status = http.StatusBadRequest
		case core.ErrorCodeNotFound:
			status = http.StatusNotFound
		case core.ErrorCodeUnavailable:
			status = http.StatusServiceUnavailable
		case core.ErrorCodeDataLoad:
			status = http.StatusUnprocessableEntity
		case core.ErrorCodeNotSupported:
			status = http.StatusNotImplemented
		}
	} else if errors.Is(err, r.Context().Err()) && r.Context().Err() != nil {
		status, code = http.StatusRequestTimeout, "CANCELED"
	}
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", sanitizeLogValue(r.URL.Path)).Msg("request failed")
	}
	respondError(w, r, status, code, err.Error())
}

// sanitizeLogValue 替换控制字符，防止日志注入。
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
