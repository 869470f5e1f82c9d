package run

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"tubeget/internal/catalog"
	"tubeget/internal/config"
	"tubeget/internal/logging"
	"tubeget/internal/reference"
	"tubeget/internal/sanitize"
	"tubeget/internal/scoring"
	"tubeget/internal/selection"
	"tubeget/internal/services"
	"tubeget/internal/services/ytdlp"
	"tubeget/internal/workspace"
)

// staleWorkspaceAge is how old an abandoned workspace must be before the
// pre-run sweep reclaims it. Generous enough that a long download in a
// concurrent invocation is never swept out from under it.
const staleWorkspaceAge = 24 * time.Hour

// View is the presentation surface the orchestrator talks to when the run is
// interactive or list-only. The CLI provides the terminal implementation.
type View interface {
	ShowCatalog(title string, scored []scoring.ScoredStream)
	PromptSelection() (string, error)
}

// Options carries the per-invocation inputs that are not configuration.
type Options struct {
	Reference    string
	Expression   string
	ListOnly     bool
	Choose       bool
	Overwrite    bool
	ExtraArgs    []string
	WorkspaceDir string
}

// Result reports what one run produced.
type Result struct {
	Title          string
	Delivered      []string
	DownloadFailed bool
	RenameFailures int
}

// Orchestrator drives one download run through its stages: validate the
// reference, read the catalog, resolve a selection, download into a
// workspace, and relocate the artifacts into the output directory.
type Orchestrator struct {
	cfg    *config.Config
	client ytdlp.Client
	view   View
	logger *slog.Logger
}

// New constructs an orchestrator. The view may be nil for fully automatic
// runs; it is only consulted for list-only and interactive invocations.
func New(cfg *config.Config, client ytdlp.Client, view View, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:    cfg,
		client: client,
		view:   view,
		logger: logging.NewComponentLogger(logger, "run"),
	}
}

// Execute performs one run. Validation failures abort before any side
// effect, and the output directory is secured before the download starts so
// finished media never gets stranded in the workspace. An unreadable catalog
// is never fatal: listing renders empty and selection degrades to the
// configured fallback. A failed download is reported as a warning and
// relocation still runs, so partially fetched artifacts are not silently
// discarded; the run only errors when nothing was delivered. The workspace
// is removed on every exit path.
func (o *Orchestrator) Execute(ctx context.Context, opts Options) (Result, error) {
	var result Result

	ref := strings.TrimSpace(opts.Reference)
	if !reference.Valid(ref) {
		return result, services.Wrap(services.ErrValidation, "validating", "normalize reference",
			"not a recognized video reference: "+ref, nil)
	}
	url := reference.Normalize(ref)
	refID, _ := reference.ExtractID(ref)

	cat, catErr := o.fetchCatalog(ctx, url)
	if catErr != nil {
		o.logger.Warn("catalog unavailable, falling back to default selection",
			logging.Error(catErr),
			logging.String(logging.FieldEventType, "catalog_unavailable"),
			logging.String(logging.FieldImpact, "quality scoring skipped"),
		)
	}

	var scored []scoring.ScoredStream
	if cat != nil {
		result.Title = cat.Title
		scored = scoring.ScoreAll(cat.Streams)
	}

	if opts.ListOnly {
		o.view.ShowCatalog(result.Title, scored)
		return result, nil
	}

	sel, err := o.resolveSelection(opts, scored)
	if err != nil {
		return result, err
	}
	o.logger.Info("selection resolved",
		logging.String("expression", sel.Expression),
		logging.Bool("automatic", sel.Automatic),
	)

	if err := os.MkdirAll(o.cfg.OutputDirectory, 0o755); err != nil {
		return result, services.Wrap(services.ErrConfiguration, "preparing", "create output directory",
			o.cfg.OutputDirectory, err)
	}

	baseDir := opts.WorkspaceDir
	if baseDir == "" {
		baseDir = workspace.DefaultBaseDir()
	}
	workspace.SweepStale(baseDir, staleWorkspaceAge, o.logger)
	ws, err := workspace.Open(baseDir, refID, o.logger)
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, "preparing", "create workspace", "", err)
	}
	defer ws.Close()

	downloadErr := o.client.Download(ctx, ytdlp.DownloadRequest{
		URL:               url,
		CookieSource:      o.cfg.CookieSource(),
		Expression:        sel.Expression,
		Container:         o.cfg.OutputFormat,
		SubtitleLanguages: o.cfg.SubtitleLanguages,
		EmbedSubtitles:    o.cfg.EmbedSubtitles,
		EmbedMetadata:     o.cfg.EmbedMetadata,
		WorkspacePath:     ws.Path,
		Overwrite:         opts.Overwrite,
		ExtraArgs:         opts.ExtraArgs,
	})
	if downloadErr != nil {
		result.DownloadFailed = true
		o.logger.Warn("downloader exited with an error, relocating whatever it produced",
			logging.Error(downloadErr),
			logging.String(logging.FieldEventType, "download_failed"),
			logging.String(logging.FieldErrorHint, "re-run with the same reference to retry"),
		)
	}

	releaseYear := ""
	if cat != nil && o.cfg.AddReleaseYear {
		releaseYear = cat.ReleaseYear
	}
	o.relocate(ws, releaseYear, &result)

	if result.DownloadFailed && len(result.Delivered) == 0 {
		return result, services.Wrap(services.ErrExternalTool, "downloading", "fetch streams",
			"download failed and produced no media", downloadErr)
	}
	return result, nil
}

// fetchCatalog runs the metadata-only dump and parses it into a catalog.
func (o *Orchestrator) fetchCatalog(ctx context.Context, url string) (*catalog.Catalog, error) {
	data, err := o.client.Dump(ctx, url, o.cfg.CookieSource())
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "inspecting", "dump metadata", "", err)
	}
	cat, err := catalog.Parse(data)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "inspecting", "parse metadata", "", err)
	}
	return cat, nil
}

// resolveSelection maps the invocation to exactly one selection request: an
// explicit expression wins, then the interactive pick, then the automatic
// scorer with the configured fallback. With nothing to show, the interactive
// pick degrades to the automatic path instead of prompting over an empty
// table.
func (o *Orchestrator) resolveSelection(opts Options, scored []scoring.ScoredStream) (selection.Request, error) {
	if expr := strings.TrimSpace(opts.Expression); expr != "" {
		return selection.Explicit(expr), nil
	}
	if opts.Choose {
		if len(scored) == 0 {
			return selection.Automatic(scored, o.cfg.DefaultFormat), nil
		}
		o.view.ShowCatalog("", scored)
		input, err := o.view.PromptSelection()
		if err != nil {
			return selection.Request{}, services.Wrap(services.ErrValidation, "selecting", "read selection", "", err)
		}
		return selection.FromInput(input, scored, o.cfg.DefaultFormat), nil
	}
	return selection.Automatic(scored, o.cfg.DefaultFormat), nil
}

// relocate renames each produced media file inside the workspace and moves
// it into the output directory. Failures on one file are logged and do not
// abort the remaining files.
func (o *Orchestrator) relocate(ws *workspace.Workspace, releaseYear string, result *Result) {
	files, err := ws.MediaFiles(o.cfg.OutputFormat)
	if err != nil {
		o.logger.Warn("failed to enumerate workspace media", logging.Error(err))
		return
	}
	if len(files) == 0 {
		return
	}

	for _, file := range files {
		name := filepath.Base(file)
		if o.cfg.CleanFilenames {
			cleaned := sanitize.Clean(name, releaseYear, o.cfg.PhrasesToRemove)
			if cleaned != name {
				renamed := filepath.Join(ws.Path, cleaned)
				if err := os.Rename(file, renamed); err != nil {
					o.logger.Warn("failed to rename media file, keeping the original name",
						logging.String("file", name),
						logging.Error(err),
						logging.String(logging.FieldEventType, "rename_failed"),
					)
					result.RenameFailures++
				} else {
					file = renamed
					name = cleaned
				}
			}
		}

		target := filepath.Join(o.cfg.OutputDirectory, name)
		if err := moveFile(file, target); err != nil {
			o.logger.Warn("failed to move media file into output directory",
				logging.String("file", name),
				logging.Error(err),
				logging.String(logging.FieldEventType, "relocation_failed"),
				logging.String(logging.FieldImpact, "file removed with the workspace"),
			)
			result.RenameFailures++
			continue
		}
		size := "unknown size"
		if info, err := os.Stat(target); err == nil {
			size = humanize.IBytes(uint64(info.Size()))
		}
		o.logger.Info("delivered media file",
			logging.String("file", name),
			logging.String("size", size),
			logging.String("path", target),
		)
		result.Delivered = append(result.Delivered, target)
	}
}

// moveFile renames source to target, falling back to copy+delete when the
// output directory sits on a different filesystem.
func moveFile(source, target string) error {
	renameErr := os.Rename(source, target)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := copyFile(source, target); err != nil {
			return err
		}
		return os.Remove(source)
	}
	return renameErr
}

func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(target)
		return err
	}
	return out.Close()
}
