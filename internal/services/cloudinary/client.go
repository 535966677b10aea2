// Package cloudinary uploads the finished video to the Cloudinary host and
// returns its public URL.
package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"chalkboard/internal/config"
)

const defaultHTTPTimeout = 60 * time.Second

// Client wraps Cloudinary's signed video upload endpoint.
type Client struct {
	cfg        config.Cloudinary
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base (useful for tests).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.cfg.BaseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithClock overrides the timestamp source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a Cloudinary client.
func NewClient(cfg config.Cloudinary, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Configured reports whether all credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.CloudName != "" && c.cfg.APIKey != "" && c.cfg.APISecret != ""
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload pushes the file as a video resource under publicID and returns the
// secure URL reported by the host.
func (c *Client) Upload(ctx context.Context, path, publicID string) (string, error) {
	if !c.Configured() {
		return "", errors.New("cloudinary upload: credentials required")
	}
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return "", errors.New("cloudinary upload: public id required")
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: open file: %w", err)
	}
	defer file.Close()

	timestamp := strconv.FormatInt(c.now().UTC().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
		"overwrite": "true",
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("cloudinary upload: write field: %w", err)
		}
	}
	if err := writer.WriteField("api_key", c.cfg.APIKey); err != nil {
		return "", fmt.Errorf("cloudinary upload: write field: %w", err)
	}
	if err := writer.WriteField("signature", signParams(params, c.cfg.APISecret)); err != nil {
		return "", fmt.Errorf("cloudinary upload: write field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("cloudinary upload: copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("cloudinary upload: finalize form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/video/upload", c.cfg.BaseURL, c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: request failed: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("cloudinary upload: http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	var parsed uploadResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("cloudinary upload: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("cloudinary upload: api error: %s", strings.TrimSpace(parsed.Error.Message))
	}
	url := strings.TrimSpace(parsed.SecureURL)
	if url == "" {
		return "", errors.New("cloudinary upload: response missing secure_url")
	}
	return url, nil
}

// signParams produces the request signature: the sorted key=value pairs
// joined with '&', concatenated with the API secret, SHA-1 hashed.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
