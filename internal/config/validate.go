package config

import (
	"errors"
	"fmt"
	"strings"
)

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

var validRenderQualities = map[string]struct{}{
	"l": {},
	"m": {},
	"h": {},
	"k": {},
}

// Validate checks structural configuration. Credential presence is reported
// separately through the readiness surface, not treated as a startup error,
// so the daemon can come up and report what is missing.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.DataDir) == "" {
		problems = append(problems, "data_dir is required")
	}
	if strings.TrimSpace(c.WorkDir) == "" {
		problems = append(problems, "work_dir is required")
	}
	if strings.TrimSpace(c.APIBind) == "" {
		problems = append(problems, "api_bind is required")
	}
	if _, ok := validLogFormats[c.Logging.LogFormat]; c.Logging.LogFormat != "" && !ok {
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console, json)", c.Logging.LogFormat))
	}
	if _, ok := validRenderQualities[c.Render.Quality]; c.Render.Quality != "" && !ok {
		problems = append(problems, fmt.Sprintf("render.quality %q is not supported (l, m, h, k)", c.Render.Quality))
	}
	for _, timeout := range []struct {
		name  string
		value int
	}{
		{"gemini.timeout_seconds", c.Gemini.TimeoutSeconds},
		{"elevenlabs.timeout_seconds", c.ElevenLabs.TimeoutSeconds},
		{"cloudinary.timeout_seconds", c.Cloudinary.TimeoutSeconds},
		{"render.timeout_seconds", c.Render.TimeoutSeconds},
		{"media.mux_timeout_seconds", c.Media.MuxTimeoutSeconds},
		{"pipeline.content_timeout_seconds", c.Pipeline.ContentTimeoutSeconds},
		{"pipeline.script_timeout_seconds", c.Pipeline.ScriptTimeoutSeconds},
		{"pipeline.program_timeout_seconds", c.Pipeline.ProgramTimeoutSeconds},
		{"pipeline.speech_timeout_seconds", c.Pipeline.SpeechTimeoutSeconds},
		{"pipeline.publish_timeout_seconds", c.Pipeline.PublishTimeoutSeconds},
	} {
		if timeout.value < 0 {
			problems = append(problems, fmt.Sprintf("%s must not be negative", timeout.name))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}

// MissingCredentials lists collaborators whose credentials are not configured.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Gemini.APIKey == "" {
		missing = append(missing, "gemini")
	}
	if c.ElevenLabs.APIKey == "" {
		missing = append(missing, "elevenlabs")
	}
	if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
		missing = append(missing, "cloudinary")
	}
	return missing
}
