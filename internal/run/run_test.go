package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubeget/internal/config"
	"tubeget/internal/logging"
	"tubeget/internal/scoring"
	"tubeget/internal/services"
	"tubeget/internal/services/ytdlp"
)

const sampleDump = `{
  "title": "My Song (Official Video)",
  "release_date": "20191113",
  "formats": [
    {"format_id": "140", "ext": "m4a", "vcodec": "none", "acodec": "mp4a.40.2", "abr": 129.5},
    {"format_id": "247", "ext": "webm", "vcodec": "vp9", "acodec": "none", "height": 720, "width": 1280, "vbr": 800, "fps": 25},
    {"format_id": "616", "format_note": "Premium", "ext": "mp4", "vcodec": "vp09.00.40.08", "acodec": "none", "height": 1080, "width": 1920, "vbr": 1656, "fps": 25}
  ]
}`

type stubClient struct {
	dumpData    []byte
	dumpErr     error
	downloadErr error
	produce     []string
	dumpCalls   int
	downloads   int
	lastReq     ytdlp.DownloadRequest
}

func (s *stubClient) Dump(ctx context.Context, url, cookieSource string) ([]byte, error) {
	s.dumpCalls++
	if s.dumpErr != nil {
		return nil, s.dumpErr
	}
	return s.dumpData, nil
}

func (s *stubClient) Download(ctx context.Context, req ytdlp.DownloadRequest) error {
	s.downloads++
	s.lastReq = req
	for _, name := range s.produce {
		path := filepath.Join(req.WorkspacePath, name)
		if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
			return err
		}
	}
	return s.downloadErr
}

type stubView struct {
	shown      int
	shownCount int
	input      string
	inputErr   error
}

func (v *stubView) ShowCatalog(title string, scored []scoring.ScoredStream) {
	v.shown++
	v.shownCount = len(scored)
}

func (v *stubView) PromptSelection() (string, error) {
	return v.input, v.inputErr
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		OutputDirectory:   t.TempDir(),
		DefaultFormat:     "bestvideo*+bestaudio/best",
		OutputFormat:      "mkv",
		SubtitleLanguages: "en.*",
		EmbedSubtitles:    true,
		EmbedMetadata:     true,
		CleanFilenames:    true,
		AddReleaseYear:    true,
		PhrasesToRemove:   []string{`(?i)\(official\s+(?:music\s+)?video\)`},
	}
}

func TestExecuteRejectsInvalidReference(t *testing.T) {
	client := &stubClient{}
	o := New(testConfig(t), client, nil, logging.NewNop())

	_, err := o.Execute(context.Background(), Options{Reference: "invalid", WorkspaceDir: t.TempDir()})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if client.dumpCalls != 0 || client.downloads != 0 {
		t.Fatal("invalid reference must not reach the downloader")
	}
}

func TestExecuteListOnlyRendersWithoutDownloading(t *testing.T) {
	client := &stubClient{dumpData: []byte(sampleDump)}
	view := &stubView{}
	o := New(testConfig(t), client, view, logging.NewNop())

	result, err := o.Execute(context.Background(), Options{
		Reference:    "dQw4w9WgXcQ",
		ListOnly:     true,
		WorkspaceDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if view.shown != 1 || view.shownCount != 3 {
		t.Fatalf("expected catalog shown once with 3 streams, got %d/%d", view.shown, view.shownCount)
	}
	if client.downloads != 0 {
		t.Fatal("list-only run must not download")
	}
	if result.Title != "My Song (Official Video)" {
		t.Fatalf("unexpected title %q", result.Title)
	}
}

func TestExecuteAutomaticRunDeliversCleanedFile(t *testing.T) {
	client := &stubClient{
		dumpData: []byte(sampleDump),
		produce:  []string{"My Song (Official Video) [dQw4w9WgXcQ].mkv"},
	}
	cfg := testConfig(t)
	o := New(cfg, client, nil, logging.NewNop())
	workspaceBase := t.TempDir()

	result, err := o.Execute(context.Background(), Options{
		Reference:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		WorkspaceDir: workspaceBase,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if client.lastReq.Expression != "616+bestaudio" {
		t.Fatalf("expected premium stream selected, got %q", client.lastReq.Expression)
	}
	if client.lastReq.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("unexpected url %q", client.lastReq.URL)
	}

	if len(result.Delivered) != 1 {
		t.Fatalf("expected one delivered file, got %v", result.Delivered)
	}
	want := filepath.Join(cfg.OutputDirectory, "My Song (2019).mkv")
	if result.Delivered[0] != want {
		t.Fatalf("delivered path = %q, want %q", result.Delivered[0], want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("delivered file missing: %v", err)
	}

	entries, err := os.ReadDir(workspaceBase)
	if err != nil {
		t.Fatalf("read workspace base: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("workspace not removed: %v", entries)
	}
}

func TestExecuteFallsBackWhenCatalogUnavailable(t *testing.T) {
	cfg := testConfig(t)
	client := &stubClient{
		dumpErr: errors.New("network down"),
		produce: []string{"video.mkv"},
	}
	o := New(cfg, client, nil, logging.NewNop())

	result, err := o.Execute(context.Background(), Options{
		Reference:    "dQw4w9WgXcQ",
		WorkspaceDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("catalog failure must not abort the run: %v", err)
	}
	if client.lastReq.Expression != cfg.DefaultFormat {
		t.Fatalf("expected fallback expression, got %q", client.lastReq.Expression)
	}
	if len(result.Delivered) != 1 {
		t.Fatalf("expected delivery despite missing catalog, got %v", result.Delivered)
	}
}

func TestExecuteListOnlyDegradesWithoutCatalog(t *testing.T) {
	client := &stubClient{dumpErr: errors.New("network down")}
	view := &stubView{}
	o := New(testConfig(t), client, view, logging.NewNop())

	_, err := o.Execute(context.Background(), Options{
		Reference:    "dQw4w9WgXcQ",
		ListOnly:     true,
		WorkspaceDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("missing catalog must not fail a listing: %v", err)
	}
	if view.shown != 1 || view.shownCount != 0 {
		t.Fatalf("expected an empty listing rendered, got %d/%d", view.shown, view.shownCount)
	}
	if client.downloads != 0 {
		t.Fatal("list-only run must not download")
	}
}

func TestExecuteChooseDegradesWithoutCatalog(t *testing.T) {
	cfg := testConfig(t)
	client := &stubClient{dumpErr: errors.New("network down"), produce: []string{"video.mkv"}}
	view := &stubView{input: "616"}
	o := New(cfg, client, view, logging.NewNop())

	_, err := o.Execute(context.Background(), Options{
		Reference:    "dQw4w9WgXcQ",
		Choose:       true,
		WorkspaceDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("missing catalog must not fail an interactive run: %v", err)
	}
	if view.shown != 0 {
		t.Fatal("nothing to show, the prompt must be skipped")
	}
	if client.lastReq.Expression != cfg.DefaultFormat {
		t.Fatalf("expected fallback expression, got %q", client.lastReq.Expression)
	}
}

func TestExecuteInteractivePickAppendsAudio(t *testing.T) {
	client := &stubClient{dumpData: []byte(sampleDump), produce: []string{"video.mkv"}}
	view := &stubView{input: "247"}
	o := New(testConfig(t), client, view, logging.NewNop())

	if _, err := o.Execute(context.Background(), Options{
		Reference:    "dQw4w9WgXcQ",
		Choose:       true,
		WorkspaceDir: t.TempDir(),
	}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if view.shown != 1 {
		t.Fatal("expected catalog shown before prompting")
	}
	if client.lastReq.Expression != "247+bestaudio" {
		t.Fatalf("expected numeric pick paired with audio, got %q", client.lastReq.Expression)
	}
}

func TestExecuteExplicitExpressionSkipsPrompt(t *testing.T) {
	client := &stubClient{dumpData: []byte(sampleDump), produce: []string{"video.mkv"}}
	view := &stubView{}
	o := New(testConfig(t), client, view, logging.NewNop())

	if _, err := o.Execute(context.Background(), Options{
		Reference:    "dQw4w9WgXcQ",
		Expression:   "bestvideo[height<=720]+bestaudio",
		Choose:       true,
		WorkspaceDir: t.TempDir(),
	}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if view.shown != 0 {
		t.Fatal("explicit expression must skip the interactive pick")
	}
	if client.lastReq.Expression != "bestvideo[height<=720]+bestaudio" {
		t.Fatalf("expression not passed through: %q", client.lastReq.Expression)
	}
}

func TestExecuteDownloadFailureWithNoMediaErrors(t *testing.T) {
	client := &stubClient{dumpData: []byte(sampleDump), downloadErr: errors.New("exit status 1")}
	o := New(testConfig(t), client, nil, logging.NewNop())
	workspaceBase := t.TempDir()

	result, err := o.Execute(context.Background(), Options{
		Reference:    "dQw4w9WgXcQ",
		WorkspaceDir: workspaceBase,
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !result.DownloadFailed {
		t.Fatal("expected DownloadFailed set")
	}

	entries, readErr := os.ReadDir(workspaceBase)
	if readErr != nil {
		t.Fatalf("read workspace base: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("workspace must be removed after a failed run, found %v", entries)
	}
}

func TestExecuteDownloadFailureStillRelocatesPartials(t *testing.T) {
	client := &stubClient{
		dumpData:    []byte(sampleDump),
		downloadErr: errors.New("exit status 1"),
		produce:     []string{"partial.mkv"},
	}
	cfg := testConfig(t)
	o := New(cfg, client, nil, logging.NewNop())

	result, err := o.Execute(context.Background(), Options{
		Reference:    "dQw4w9WgXcQ",
		WorkspaceDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("partial delivery must not error: %v", err)
	}
	if !result.DownloadFailed || len(result.Delivered) != 1 {
		t.Fatalf("expected failed download with one delivery, got %#v", result)
	}
}

func TestExecuteFailsFastWhenOutputDirectoryBlocked(t *testing.T) {
	cfg := testConfig(t)
	// Point the output directory at a regular file so it cannot be created.
	blocked := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	cfg.OutputDirectory = blocked

	client := &stubClient{dumpData: []byte(sampleDump), produce: []string{"video.mkv"}}
	o := New(cfg, client, nil, logging.NewNop())

	_, err := o.Execute(context.Background(), Options{
		Reference:    "dQw4w9WgXcQ",
		WorkspaceDir: t.TempDir(),
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if client.downloads != 0 {
		t.Fatal("an unusable output directory must abort before the download")
	}
}

func TestExecuteCountsPerFileMoveFailures(t *testing.T) {
	cfg := testConfig(t)
	cfg.CleanFilenames = false
	// Occupy the target path with a directory so the move fails while the
	// sibling file still goes through.
	if err := os.MkdirAll(filepath.Join(cfg.OutputDirectory, "blocked.mkv"), 0o755); err != nil {
		t.Fatalf("create blocker: %v", err)
	}

	client := &stubClient{dumpData: []byte(sampleDump), produce: []string{"blocked.mkv", "fine.mkv"}}
	o := New(cfg, client, nil, logging.NewNop())

	result, err := o.Execute(context.Background(), Options{
		Reference:    "dQw4w9WgXcQ",
		WorkspaceDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("a per-file move failure must not abort the run: %v", err)
	}
	if result.RenameFailures != 1 {
		t.Fatalf("expected one move failure recorded, got %#v", result)
	}
	if len(result.Delivered) != 1 || filepath.Base(result.Delivered[0]) != "fine.mkv" {
		t.Fatalf("sibling file not delivered: %v", result.Delivered)
	}
}

func TestExecutePassesCookiesAndExtras(t *testing.T) {
	cfg := testConfig(t)
	cfg.Browser = "firefox"
	cfg.Profile = "work"
	client := &stubClient{dumpData: []byte(sampleDump), produce: []string{"video.mkv"}}
	o := New(cfg, client, nil, logging.NewNop())

	_, err := o.Execute(context.Background(), Options{
		Reference:    "dQw4w9WgXcQ",
		Overwrite:    true,
		ExtraArgs:    []string{"--limit-rate", "4M"},
		WorkspaceDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if client.lastReq.CookieSource != "firefox:work" {
		t.Fatalf("cookie source not forwarded: %q", client.lastReq.CookieSource)
	}
	if !client.lastReq.Overwrite {
		t.Fatal("overwrite flag not forwarded")
	}
	if len(client.lastReq.ExtraArgs) != 2 || client.lastReq.ExtraArgs[0] != "--limit-rate" {
		t.Fatalf("extra args not forwarded: %v", client.lastReq.ExtraArgs)
	}
	if !strings.HasPrefix(filepath.Base(client.lastReq.WorkspacePath), "temp_") {
		t.Fatalf("workspace name missing prefix: %q", client.lastReq.WorkspacePath)
	}
}
