package config

import "strings"

// normalize expands home-relative paths and trims whitespace so downstream
// code never needs to repeat the cleanup.
func (c *Config) normalize() {
	c.DataDir = expandHome(strings.TrimSpace(c.DataDir))
	c.LogDir = expandHome(strings.TrimSpace(c.LogDir))
	c.WorkDir = expandHome(strings.TrimSpace(c.WorkDir))
	c.APIBind = strings.TrimSpace(c.APIBind)
	c.APIToken = strings.TrimSpace(c.APIToken)

	c.Logging.LogFormat = strings.ToLower(strings.TrimSpace(c.Logging.LogFormat))
	c.Logging.LogLevel = strings.ToLower(strings.TrimSpace(c.Logging.LogLevel))

	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	c.Gemini.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gemini.BaseURL), "/")
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)

	c.ElevenLabs.APIKey = strings.TrimSpace(c.ElevenLabs.APIKey)
	c.ElevenLabs.BaseURL = strings.TrimRight(strings.TrimSpace(c.ElevenLabs.BaseURL), "/")
	c.ElevenLabs.VoiceID = strings.TrimSpace(c.ElevenLabs.VoiceID)
	c.ElevenLabs.ModelID = strings.TrimSpace(c.ElevenLabs.ModelID)

	c.Cloudinary.CloudName = strings.TrimSpace(c.Cloudinary.CloudName)
	c.Cloudinary.APIKey = strings.TrimSpace(c.Cloudinary.APIKey)
	c.Cloudinary.APISecret = strings.TrimSpace(c.Cloudinary.APISecret)
	c.Cloudinary.Folder = strings.Trim(strings.TrimSpace(c.Cloudinary.Folder), "/")
	c.Cloudinary.BaseURL = strings.TrimRight(strings.TrimSpace(c.Cloudinary.BaseURL), "/")

	c.Render.ManimBinary = strings.TrimSpace(c.Render.ManimBinary)
	c.Render.Quality = strings.TrimSpace(c.Render.Quality)

	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
}
