// Package ffprobe wraps the ffprobe binary for media inspection. The pipeline
// uses it as the duration probe feeding the audio/video sync plan.
package ffprobe
