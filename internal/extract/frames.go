// Package extract reduces video assets to still-frame sequences for
// visual analysis. Requires ffmpeg and ffprobe on PATH.
package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zerify/zerify/internal/zerify"
)

// FFmpeg extracts frames by invoking ffmpeg/ffprobe.
type FFmpeg struct {
	// WorkDir holds temp files; defaults to the system temp dir.
	WorkDir string
}

// Frames extracts count JPEG frames evenly spaced across the video's
// duration. It fails when the duration cannot be determined (live or
// unbounded streams). Frames are returned in timestamp order.
func (f *FFmpeg) Frames(ctx context.Context, video *zerify.MediaAsset, count int) ([]zerify.MediaAsset, error) {
	if video == nil || len(video.Data) == 0 {
		return nil, fmt.Errorf("no video data")
	}
	if count <= 0 {
		count = 5
	}

	workDir := f.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	dir, err := os.MkdirTemp(workDir, "zerify-frames-")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, uuid.NewString()+extensionFor(video))
	if err := os.WriteFile(src, video.Data, 0o600); err != nil {
		return nil, fmt.Errorf("write video: %w", err)
	}

	duration, err := probeDuration(ctx, src)
	if err != nil {
		return nil, err
	}

	// One single-frame grab per timestamp; seeks are independent so the
	// grabs run concurrently and are reassembled in order afterwards.
	interval := duration / float64(count)
	frames := make([]zerify.MediaAsset, count)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			offset := float64(i) * interval
			out := filepath.Join(dir, fmt.Sprintf("frame-%03d.jpg", i))
			cmd := exec.CommandContext(gctx, "ffmpeg",
				"-ss", strconv.FormatFloat(offset, 'f', 3, 64),
				"-i", src,
				"-frames:v", "1",
				"-q:v", "3",
				"-y", out,
			)
			if output, err := cmd.CombinedOutput(); err != nil {
				return fmt.Errorf("ffmpeg frame %d: %w: %s", i, err, strings.TrimSpace(string(output)))
			}
			data, err := os.ReadFile(out)
			if err != nil {
				return fmt.Errorf("read frame %d: %w", i, err)
			}
			frames[i] = zerify.MediaAsset{
				Name:     fmt.Sprintf("%s frame %d", video.Name, i+1),
				MIMEType: "image/jpeg",
				Data:     data,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}

// probeDuration returns the container duration in seconds, rejecting
// streams without one.
func probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	raw := strings.TrimSpace(string(out))
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("cannot extract frames from a live or unbounded stream")
	}
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil || duration <= 0 {
		return 0, fmt.Errorf("cannot extract frames from a live or unbounded stream")
	}
	return duration, nil
}

func extensionFor(video *zerify.MediaAsset) string {
	if ext := filepath.Ext(video.Name); ext != "" {
		return ext
	}
	switch video.MIMEType {
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	default:
		return ".mp4"
	}
}
