package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// jsRuntime is the JavaScript runtime yt-dlp is told to use for players that
// gate streams behind script challenges.
const jsRuntime = "deno"

// DownloadRequest carries everything one download invocation needs.
type DownloadRequest struct {
	URL               string
	CookieSource      string
	Expression        string
	Container         string
	SubtitleLanguages string
	EmbedSubtitles    bool
	EmbedMetadata     bool
	WorkspacePath     string
	Overwrite         bool
	ExtraArgs         []string
}

// Client defines the downloader behaviour the orchestrator consumes.
type Client interface {
	Dump(ctx context.Context, url, cookieSource string) ([]byte, error)
	Download(ctx context.Context, req DownloadRequest) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithOutput redirects the downloader's progress output (used in tests).
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *CLI) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// CLI wraps the yt-dlp command-line downloader.
type CLI struct {
	binary string
	stdout io.Writer
	stderr io.Writer
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "yt-dlp", stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Dump runs the metadata-only mode and returns the raw single-JSON dump.
// Nothing is downloaded.
func (c *CLI) Dump(ctx context.Context, url, cookieSource string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("url required")
	}

	args := []string{"--no-warnings", "--skip-download", "--dump-single-json"}
	if cookieSource != "" {
		args = append(args, "--cookies-from-browser", cookieSource)
	}
	args = append(args, url)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp metadata dump failed: %w: %s", err, firstLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Download launches yt-dlp with the resolved selection expression, streaming
// its progress output through. All artifacts are redirected into the
// workspace. A non-zero exit is returned as an error; the caller decides
// whether that aborts the run.
func (c *CLI) Download(ctx context.Context, req DownloadRequest) error {
	if strings.TrimSpace(req.URL) == "" {
		return errors.New("url required")
	}
	if strings.TrimSpace(req.WorkspacePath) == "" {
		return errors.New("workspace path required")
	}

	cmd := commandContext(ctx, c.binary, buildArgs(req)...) //nolint:gosec
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("yt-dlp download: %w", err)
	}
	return nil
}

// buildArgs assembles the argument list in a fixed order: credentials,
// runtime, selection, container, embedding flags, path redirection, overwrite,
// pass-through extras, and finally the URL.
func buildArgs(req DownloadRequest) []string {
	var args []string
	if req.CookieSource != "" {
		args = append(args, "--cookies-from-browser", req.CookieSource)
	}
	args = append(args, "--js-runtimes", jsRuntime)
	if expr := strings.TrimSpace(req.Expression); expr != "" {
		args = append(args, "-f", expr)
	}
	if container := strings.TrimSpace(req.Container); container != "" {
		args = append(args, "--remux-video", container, "--merge-output-format", container)
	}
	if req.EmbedSubtitles {
		args = append(args, "--embed-subs")
		if langs := strings.TrimSpace(req.SubtitleLanguages); langs != "" {
			args = append(args, "--sub-langs", langs)
		}
	}
	if req.EmbedMetadata {
		args = append(args, "--embed-metadata")
	}
	args = append(args,
		"--paths", "home:"+req.WorkspacePath,
		"--paths", "temp:"+req.WorkspacePath,
	)
	if req.Overwrite {
		args = append(args, "--force-overwrites")
	}
	args = append(args, req.ExtraArgs...)
	args = append(args, req.URL)
	return args
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

var _ Client = (*CLI)(nil)
