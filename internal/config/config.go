package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	WorkDir  string `toml:"work_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Logging contains configuration for log output.
type Logging struct {
	LogFormat string `toml:"format"`
	LogLevel  string `toml:"level"`
}

// Gemini contains connection settings for the text and program generator.
type Gemini struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ElevenLabs contains connection settings for speech synthesis.
type ElevenLabs struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	VoiceID        string `toml:"voice_id"`
	ModelID        string `toml:"model_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Cloudinary contains settings for the video host uploads.
type Cloudinary struct {
	CloudName      string `toml:"cloud_name"`
	APIKey         string `toml:"api_key"`
	APISecret      string `toml:"api_secret"`
	Folder         string `toml:"folder"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Render contains settings for the animation renderer.
type Render struct {
	ManimBinary    string `toml:"manim_binary"`
	Quality        string `toml:"quality"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Media contains settings for probing and muxing.
type Media struct {
	FFmpegBinary      string `toml:"ffmpeg_binary"`
	FFprobeBinary     string `toml:"ffprobe_binary"`
	MuxTimeoutSeconds int    `toml:"mux_timeout_seconds"`
	ProbeTimeout      int    `toml:"probe_timeout_seconds"`
}

// Pipeline contains per-stage timeout configuration.
type Pipeline struct {
	ContentTimeoutSeconds int `toml:"content_timeout_seconds"`
	ScriptTimeoutSeconds  int `toml:"script_timeout_seconds"`
	ProgramTimeoutSeconds int `toml:"program_timeout_seconds"`
	SpeechTimeoutSeconds  int `toml:"speech_timeout_seconds"`
	PublishTimeoutSeconds int `toml:"publish_timeout_seconds"`
}

// Config is the process-wide configuration, constructed once at startup and
// passed by reference. There is no ambient global state.
type Config struct {
	Paths
	Logging    Logging    `toml:"logging"`
	Gemini     Gemini     `toml:"gemini"`
	ElevenLabs ElevenLabs `toml:"elevenlabs"`
	Cloudinary Cloudinary `toml:"cloudinary"`
	Render     Render     `toml:"render"`
	Media      Media      `toml:"media"`
	Pipeline   Pipeline   `toml:"pipeline"`
}

// DefaultConfigPath returns the canonical config file location.
func DefaultConfigPath() string {
	return expandHome("~/.config/chalkboard/config.toml")
}

// Load reads configuration from path (or the default location when empty),
// merges repository defaults, applies the environment overlay, and validates
// the result. The resolved path is returned alongside the config.
func Load(path string) (*Config, string, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = DefaultConfigPath()
	}
	resolved = expandHome(resolved)

	cfg := Default()
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, resolved, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Missing file is fine; defaults plus environment may be enough.
	default:
		return nil, resolved, fmt.Errorf("read config %s: %w", resolved, err)
	}

	applyEnvOverlay(&cfg)
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, resolved, err
	}
	return &cfg, resolved, nil
}

// applyEnvOverlay fills credentials from the environment. A .env file in the
// working directory is honored the way the original deployment expects.
func applyEnvOverlay(cfg *Config) {
	_ = godotenv.Load()

	overlay := func(target *string, key string) {
		if strings.TrimSpace(*target) != "" {
			return
		}
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			*target = value
		}
	}
	overlay(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	overlay(&cfg.ElevenLabs.APIKey, "ELEVENLABS_API_KEY")
	overlay(&cfg.Cloudinary.CloudName, "CLOUDINARY_CLOUD_NAME")
	overlay(&cfg.Cloudinary.APIKey, "CLOUDINARY_API_KEY")
	overlay(&cfg.Cloudinary.APISecret, "CLOUDINARY_API_SECRET")
	overlay(&cfg.APIToken, "CHALKBOARD_API_TOKEN")
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.LogDir, c.WorkDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the annotated sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	path = expandHome(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}
