package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/quocvuong92/leafify/internal/config"
	"github.com/quocvuong92/leafify/internal/constants"
	"github.com/quocvuong92/leafify/internal/logging"
)

// ImageField is the multipart field name the service reads the photo from
const ImageField = "image"

// Identifier defines the remote operations the orchestrator depends on.
// This interface enables dependency injection and easier testing.
type Identifier interface {
	// Identify uploads one image and returns the decoded result
	Identify(ctx context.Context, filename string, image []byte) (*IdentificationResult, error)

	// Chat asks a follow-up question about an identified plant
	Chat(ctx context.Context, plantName, question string) (string, error)
}

// Ensure Client implements Identifier
var _ Identifier = (*Client)(nil)

// Client talks to the identification service over HTTP
type Client struct {
	httpClient    *http.Client
	identifyURL   string
	chatURL       string
	token         string
	sessionCookie string
	retry         RetryPolicy
	logger        *logging.FieldLogger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy replaces the chat retry policy
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.retry = p }
}

// WithLogger sets the logger used for retry and failure messages
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) { c.logger = logger.Component("api") }
}

// NewClient creates a client for the configured endpoint. In debug mode
// every request and response is logged through the logging round-tripper.
func NewClient(cfg *config.Config, opts ...ClientOption) *Client {
	transport := http.DefaultTransport

	if cfg.Debug {
		logger := logging.New(logging.Options{
			Level:  logging.LevelDebug,
			Format: logging.ParseFormat(cfg.LogFormat),
		})
		transport = logging.NewLoggingRoundTripper(http.DefaultTransport, logging.NewHTTPLogger(logger), true)
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   constants.DefaultAPITimeout,
			Transport: transport,
		},
		identifyURL:   cfg.IdentifyURL(),
		chatURL:       cfg.ChatURL(),
		token:         cfg.APIToken,
		sessionCookie: cfg.SessionCookie,
		retry:         DefaultRetryPolicy,
		logger:        logging.Nop().Component("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identify sends the raw image bytes as the single multipart field "image".
// It is never retried: one user action issues exactly one request.
func (c *Client) Identify(ctx context.Context, filename string, image []byte) (*IdentificationResult, error) {
	if filename == "" {
		filename = "upload"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(ImageField, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.identifyURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp identifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Error != "" {
		return nil, &ApplicationError{Message: resp.Error}
	}

	result := resp.IdentificationResult
	return &result, nil
}

// Chat asks the service a question in the context of plantName. Transient
// server failures are retried with backoff.
func (c *Client) Chat(ctx context.Context, plantName, question string) (string, error) {
	jsonData, err := json.Marshal(ChatRequest{Question: question, PlantName: plantName})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	return WithRetry(ctx, c.retry, c.logger, func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		c.authorize(req)

		body, err := c.do(req)
		if err != nil {
			return "", err
		}

		var resp ChatResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}
		if resp.Error != "" {
			return "", &ApplicationError{Message: resp.Error}
		}
		return resp.Answer, nil
	})
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.sessionCookie != "" {
		req.Header.Set("Cookie", c.sessionCookie)
	}
}

// do performs the round-trip and returns the body of a 2xx response.
// Anything else becomes a *TransportError; an error field in a non-2xx
// body does not change that.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("request cancelled: %w", ctxErr)
		}
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
		}
	}
	return body, nil
}

// statusText returns the reason phrase of resp, e.g. "NOT FOUND" for
// "404 NOT FOUND", falling back to the standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
