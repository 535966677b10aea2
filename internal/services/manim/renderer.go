// Package manim shells out to the Manim CLI to render the generated
// animation program. The program text is an opaque contract: chalkboard never
// parses it, only the renderer's exit status and produced artifact matter.
package manim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"chalkboard/internal/config"
	"chalkboard/internal/services"
)

// SceneName is the class every generated program must define; the prompt and
// the fallback template both guarantee it.
const SceneName = "TopicScene"

// qualityDirs maps the manim quality flag to the output resolution directory.
var qualityDirs = map[string]string{
	"l": "480p15",
	"m": "720p30",
	"h": "1080p60",
	"k": "2160p60",
}

// Renderer invokes the manim binary.
type Renderer struct {
	binary  string
	quality string
}

// NewRenderer constructs a renderer from configuration.
func NewRenderer(cfg config.Render) *Renderer {
	binary := strings.TrimSpace(cfg.ManimBinary)
	if binary == "" {
		binary = "manim"
	}
	quality := strings.TrimSpace(cfg.Quality)
	if _, ok := qualityDirs[quality]; !ok {
		quality = "m"
	}
	return &Renderer{binary: binary, quality: quality}
}

// Render executes manim against the program file and copies the produced
// scene video to outPath. The media tree is written next to the program file,
// inside the request workspace, so teardown removes it with everything else.
func (r *Renderer) Render(ctx context.Context, programPath, outPath string) error {
	programPath = strings.TrimSpace(programPath)
	if programPath == "" {
		return errors.New("manim render: program path required")
	}
	mediaDir := filepath.Join(filepath.Dir(programPath), "media")

	cmd := exec.CommandContext(ctx, r.binary,
		"-q"+r.quality,
		"--format", "mp4",
		"--media_dir", mediaDir,
		programPath,
		SceneName,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "manim",
			strings.TrimSpace(string(output)), err)
	}

	produced, err := r.locateOutput(mediaDir, programPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "locate output", "", err)
	}
	if err := copyFile(produced, outPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "copy output", "", err)
	}
	return nil
}

// locateOutput finds the rendered scene file. The expected location follows
// manim's media layout; a recursive search covers version differences.
func (r *Renderer) locateOutput(mediaDir, programPath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(programPath), filepath.Ext(programPath))
	expected := filepath.Join(mediaDir, "videos", base, qualityDirs[r.quality], SceneName+".mp4")
	if _, err := os.Stat(expected); err == nil {
		return expected, nil
	}

	var found string
	walkErr := filepath.WalkDir(mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == SceneName+".mp4" {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return "", fmt.Errorf("scan media dir: %w", walkErr)
	}
	if found == "" {
		return "", fmt.Errorf("rendered scene %s.mp4 not found under %s", SceneName, mediaDir)
	}
	return found, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
