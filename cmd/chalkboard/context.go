package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chalkboard/internal/config"
)

type commandContext struct {
	serverFlag *string
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	httpClient *http.Client
}

func newCommandContext(serverFlag, configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
		// Generation is synchronous on the daemon side and can take minutes.
		httpClient: &http.Client{Timeout: 15 * time.Minute},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) baseURL() string {
	if c.serverFlag != nil && strings.TrimSpace(*c.serverFlag) != "" {
		return normalizeServer(*c.serverFlag)
	}
	if cfg, err := c.ensureConfig(); err == nil && strings.TrimSpace(cfg.APIBind) != "" {
		return normalizeServer(cfg.APIBind)
	}
	return "http://127.0.0.1:7519"
}

func normalizeServer(value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return strings.TrimRight(value, "/")
	}
	return "http://" + strings.TrimRight(value, "/")
}

func (c *commandContext) token() string {
	if cfg, err := c.ensureConfig(); err == nil {
		return strings.TrimSpace(cfg.APIToken)
	}
	return ""
}

// apiError is a non-2xx response from the daemon.
type apiError struct {
	Status  int
	Message string
	Stage   string
}

func (e *apiError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("daemon error (stage %s): %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("daemon error: %s", e.Message)
}

func (c *commandContext) get(path string, out any) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *commandContext) post(path string, payload, out any) error {
	return c.do(http.MethodPost, path, payload, out)
}

func (c *commandContext) do(method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapDialError(err, c.baseURL())
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		var failure struct {
			Error string `json:"error"`
			Stage string `json:"stage"`
		}
		if json.Unmarshal(data, &failure) == nil && failure.Error != "" {
			return &apiError{Status: resp.StatusCode, Message: failure.Error, Stage: failure.Stage}
		}
		return &apiError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func wrapDialError(err error, server string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon at %s: connection refused; start the daemon with `chalkboardd`", server)
	}
	return fmt.Errorf("connect to daemon at %s: %w", server, err)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
