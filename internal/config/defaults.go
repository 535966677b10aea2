package config

const (
	defaultDataDir = "~/.local/share/chalkboard"
	defaultLogDir  = "~/.local/share/chalkboard/logs"
	defaultWorkDir = "~/.local/share/chalkboard/work"
	defaultAPIBind = "127.0.0.1:7519"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultGeminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultGeminiModel          = "gemini-1.5-flash-002"
	defaultGeminiTimeoutSeconds = 30

	defaultElevenLabsBaseURL        = "https://api.elevenlabs.io"
	defaultElevenLabsVoiceID        = "21m00Tcm4TlvDq8ikWAM"
	defaultElevenLabsModelID        = "eleven_multilingual_v2"
	defaultElevenLabsTimeoutSeconds = 60

	defaultCloudinaryBaseURL        = "https://api.cloudinary.com/v1_1"
	defaultCloudinaryFolder         = "educational_videos"
	defaultCloudinaryTimeoutSeconds = 60

	defaultManimBinary          = "manim"
	defaultRenderQuality        = "m"
	defaultRenderTimeoutSeconds = 180

	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultMuxTimeoutSeconds = 60
	defaultProbeTimeout      = 30

	defaultContentTimeoutSeconds = 30
	defaultScriptTimeoutSeconds  = 30
	defaultProgramTimeoutSeconds = 30
	defaultSpeechTimeoutSeconds  = 60
	defaultPublishTimeoutSeconds = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			WorkDir: defaultWorkDir,
			APIBind: defaultAPIBind,
		},
		Logging: Logging{
			LogFormat: defaultLogFormat,
			LogLevel:  defaultLogLevel,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeoutSeconds,
		},
		ElevenLabs: ElevenLabs{
			BaseURL:        defaultElevenLabsBaseURL,
			VoiceID:        defaultElevenLabsVoiceID,
			ModelID:        defaultElevenLabsModelID,
			TimeoutSeconds: defaultElevenLabsTimeoutSeconds,
		},
		Cloudinary: Cloudinary{
			BaseURL:        defaultCloudinaryBaseURL,
			Folder:         defaultCloudinaryFolder,
			TimeoutSeconds: defaultCloudinaryTimeoutSeconds,
		},
		Render: Render{
			ManimBinary:    defaultManimBinary,
			Quality:        defaultRenderQuality,
			TimeoutSeconds: defaultRenderTimeoutSeconds,
		},
		Media: Media{
			FFmpegBinary:      defaultFFmpegBinary,
			FFprobeBinary:     defaultFFprobeBinary,
			MuxTimeoutSeconds: defaultMuxTimeoutSeconds,
			ProbeTimeout:      defaultProbeTimeout,
		},
		Pipeline: Pipeline{
			ContentTimeoutSeconds: defaultContentTimeoutSeconds,
			ScriptTimeoutSeconds:  defaultScriptTimeoutSeconds,
			ProgramTimeoutSeconds: defaultProgramTimeoutSeconds,
			SpeechTimeoutSeconds:  defaultSpeechTimeoutSeconds,
			PublishTimeoutSeconds: defaultPublishTimeoutSeconds,
		},
	}
}
