// Package elevenlabs wraps the ElevenLabs text-to-speech API. The synthesized
// narration is written straight into the request workspace.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"chalkboard/internal/config"
)

const defaultHTTPTimeout = 60 * time.Second

// Client wraps the ElevenLabs text-to-speech endpoint.
type Client struct {
	cfg        config.ElevenLabs
	httpClient *http.Client
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

// NewClient constructs an ElevenLabs client.
func NewClient(cfg config.ElevenLabs, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// voiceSettings carries the narration voice tuning used for every request.
type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

func defaultVoiceSettings() voiceSettings {
	return voiceSettings{
		Stability:       0.75,
		SimilarityBoost: 0.75,
		Style:           0.5,
		UseSpeakerBoost: true,
	}
}

// Synthesize converts the narration text to speech and writes the audio to
// outPath.
func (c *Client) Synthesize(ctx context.Context, text, outPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("elevenlabs synthesize: text required")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return errors.New("elevenlabs synthesize: api key required")
	}
	outPath = strings.TrimSpace(outPath)
	if outPath == "" {
		return errors.New("elevenlabs synthesize: output path required")
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "/v1/text-to-speech/", c.cfg.VoiceID)
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: build url: %w", err)
	}
	encoded, err := json.Marshal(synthesisRequest{
		Text:          text,
		ModelID:       c.cfg.ModelID,
		VoiceSettings: defaultVoiceSettings(),
	})
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("elevenlabs synthesize: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: create output: %w", err)
	}
	defer out.Close()
	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: write audio: %w", err)
	}
	if written == 0 {
		return errors.New("elevenlabs synthesize: empty audio response")
	}
	return nil
}
