package logging

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsSensitiveHeader(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"Authorization", true},
		{"Api-Key", true},
		{"X-API-KEY", true},
		{"Cookie", true},
		{"Content-Type", false},
		{"User-Agent", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := isSensitiveHeader(tt.header); got != tt.want {
				t.Errorf("isSensitiveHeader(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestTruncateBody(t *testing.T) {
	if got := truncateBody([]byte("hello"), 100); got != "hello" {
		t.Errorf("truncateBody() = %q, want %q", got, "hello")
	}
	if got := truncateBody([]byte(strings.Repeat("a", 200)), 50); !strings.HasSuffix(got, "...[truncated]") {
		t.Errorf("truncateBody() = %q, want truncated suffix", got)
	}
}

func TestRedactSensitiveFields(t *testing.T) {
	input := map[string]interface{}{
		"plant_name": "Aloe Vera",
		"api_key":    "key123",
		"data": map[string]interface{}{
			"token":    "token123",
			"question": "Is it toxic?",
		},
	}

	result := redactSensitiveFields(input).(map[string]interface{})

	if result["plant_name"] != "Aloe Vera" {
		t.Error("plant_name should not be redacted")
	}
	if result["api_key"] != "[REDACTED]" {
		t.Error("api_key should be redacted")
	}
	nested := result["data"].(map[string]interface{})
	if nested["token"] != "[REDACTED]" {
		t.Error("nested token should be redacted")
	}
	if nested["question"] != "Is it toxic?" {
		t.Error("nested question should not be redacted")
	}
}

func TestShortenStrings(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{"imageBase64": "data:image/png;base64," + strings.Repeat("A", 500)},
	}
	out := shortenStrings(input, 50).([]interface{})
	got := out[0].(map[string]interface{})["imageBase64"].(string)
	if len(got) > 50+len("...[truncated]") {
		t.Errorf("long string not shortened: len=%d", len(got))
	}
}

func TestRoundTripper_MultipartBodyNotLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The handler must still see the full upload.
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"suggestions":[]}`)
	}))
	defer server.Close()

	var logBuf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Format: FormatText, Output: &logBuf})
	client := &http.Client{Transport: NewLoggingRoundTripper(nil, NewHTTPLogger(logger), true)}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("image", "leaf.jpg")
	_, _ = part.Write([]byte("SECRET-IMAGE-BYTES"))
	_ = mw.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/identify", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer abc")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	respBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, respBody)
	}
	if string(respBody) != `{"suggestions":[]}` {
		t.Errorf("response body was not restored: %q", respBody)
	}

	logs := logBuf.String()
	if strings.Contains(logs, "SECRET-IMAGE-BYTES") {
		t.Error("multipart body should not be logged")
	}
	if strings.Contains(logs, "Bearer abc") {
		t.Error("Authorization header should be redacted")
	}
	if !strings.Contains(logs, "HTTP Response") {
		t.Error("response should be logged")
	}
}
