package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPLogger logs requests and responses of the identification client
type HTTPLogger struct {
	logger      *Logger
	maxBodySize int
}

// NewHTTPLogger creates a new HTTP logger
func NewHTTPLogger(logger *Logger) *HTTPLogger {
	return &HTTPLogger{
		logger:      logger,
		maxBodySize: 10000, // 10KB
	}
}

// SetMaxBodySize sets the maximum body size to log (in bytes)
func (h *HTTPLogger) SetMaxBodySize(size int) {
	h.maxBodySize = size
}

// LogRequest logs an HTTP request. Multipart bodies carry image bytes and
// are logged by size only.
func (h *HTTPLogger) LogRequest(req *http.Request, body []byte) {
	fields := Fields{
		"method":  req.Method,
		"url":     req.URL.String(),
		"headers": redactHeaders(req.Header),
	}

	if len(body) > 0 {
		fields["body_size"] = len(body)
		if !isMultipart(req.Header.Get("Content-Type")) {
			fields["body"] = h.bodyField(body, true)
		}
	} else if req.ContentLength > 0 {
		fields["body_size"] = req.ContentLength
	}

	h.logger.Debug("HTTP Request", fields)
}

// LogResponse logs an HTTP response
func (h *HTTPLogger) LogResponse(resp *http.Response, body []byte, duration time.Duration) {
	fields := Fields{
		"status":      resp.StatusCode,
		"status_text": resp.Status,
		"duration_ms": duration.Milliseconds(),
		"headers":     redactHeaders(resp.Header),
	}

	if len(body) > 0 {
		fields["body"] = h.bodyField(body, false)
		fields["body_size"] = len(body)
	}

	h.logger.Debug("HTTP Response", fields)
}

// LogError logs a transport failure
func (h *HTTPLogger) LogError(err error, req *http.Request) {
	h.logger.Error("HTTP Error", err, Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	})
}

// bodyField returns parsed JSON when possible so it nests in JSON logs.
// History payloads hold base64 thumbnails, so long strings are shortened.
func (h *HTTPLogger) bodyField(body []byte, redact bool) interface{} {
	if json.Valid(body) {
		var parsed interface{}
		if err := json.Unmarshal(body, &parsed); err == nil {
			if redact {
				parsed = redactSensitiveFields(parsed)
			}
			return shortenStrings(parsed, 200)
		}
	}
	return truncateBody(body, h.maxBodySize)
}

// RoundTripperWrapper wraps an http.RoundTripper with logging
type RoundTripperWrapper struct {
	wrapped http.RoundTripper
	logger  *HTTPLogger
	logBody bool
}

// NewLoggingRoundTripper creates a new logging round tripper
func NewLoggingRoundTripper(wrapped http.RoundTripper, logger *HTTPLogger, logBody bool) *RoundTripperWrapper {
	if wrapped == nil {
		wrapped = http.DefaultTransport
	}
	return &RoundTripperWrapper{
		wrapped: wrapped,
		logger:  logger,
		logBody: logBody,
	}
}

// RoundTrip implements http.RoundTripper
func (rt *RoundTripperWrapper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var reqBody []byte
	if rt.logBody && req.Body != nil && !isMultipart(req.Header.Get("Content-Type")) {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(reqBody))
	}
	rt.logger.LogRequest(req, reqBody)

	resp, err := rt.wrapped.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		rt.logger.LogError(err, req)
		return nil, err
	}

	if rt.logBody {
		respBody, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewBuffer(respBody))
		rt.logger.LogResponse(resp, respBody, duration)
	} else {
		rt.logger.LogResponse(resp, nil, duration)
	}

	return resp, nil
}

// Helper functions

func isMultipart(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "multipart/")
}

func redactHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		if isSensitiveHeader(k) {
			headers[k] = "[REDACTED]"
		} else if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	return headers
}

func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "api-key", "x-api-key", "x-auth-token", "cookie", "set-cookie":
		return true
	}
	return false
}

func truncateBody(body []byte, maxSize int) string {
	if len(body) <= maxSize {
		return string(body)
	}
	return string(body[:maxSize]) + "...[truncated]"
}

func redactSensitiveFields(data interface{}) interface{} {
	sensitiveKeys := []string{"api_key", "apikey", "api-key", "password", "secret", "token", "authorization", "auth"}

	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for k, val := range v {
			keyLower := strings.ToLower(k)
			sensitive := false
			for _, s := range sensitiveKeys {
				if strings.Contains(keyLower, s) {
					sensitive = true
					break
				}
			}
			if sensitive {
				result[k] = "[REDACTED]"
			} else {
				result[k] = redactSensitiveFields(val)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = redactSensitiveFields(item)
		}
		return result
	default:
		return data
	}
}

func shortenStrings(data interface{}, max int) interface{} {
	switch v := data.(type) {
	case string:
		if len(v) > max {
			return v[:max] + "...[truncated]"
		}
		return v
	case map[string]interface{}:
		for k, val := range v {
			v[k] = shortenStrings(val, max)
		}
		return v
	case []interface{}:
		for i, item := range v {
			v[i] = shortenStrings(item, max)
		}
		return v
	default:
		return data
	}
}
