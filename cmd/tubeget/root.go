package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tubeget/internal/config"
	"tubeget/internal/deps"
	"tubeget/internal/logging"
	"tubeget/internal/run"
	"tubeget/internal/services"
	"tubeget/internal/services/ytdlp"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag       string
		browserFlag      string
		profileFlag      string
		containerFlag    string
		formatFlag       string
		outputDirFlag    string
		outputFormatFlag string
		logLevelFlag     string
		logFormatFlag    string
		listFlag         bool
		chooseFlag       bool
		overwriteFlag    bool
		noCleanFlag      bool
		noYearFlag       bool
	)

	rootCmd := &cobra.Command{
		Use:   "tubeget <reference> [-- yt-dlp args...]",
		Short: "Download videos through yt-dlp and file them with clean names",
		Long: "tubeget accepts a video URL or bare 11-character id, picks the best\n" +
			"available streams by quality score (or lets you pick), downloads into a\n" +
			"scoped workspace, and moves the tidied result into the output directory.\n" +
			"Arguments after -- are passed to yt-dlp unchanged.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			positional := args
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				positional = args[:dash]
			}
			if len(positional) != 1 {
				return fmt.Errorf("expected exactly one video reference, got %d", len(positional))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load(configFlag)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "starting", "load configuration", "", err)
			}

			flags := cmd.Flags()
			if flags.Changed("browser") {
				cfg.Browser = strings.ToLower(strings.TrimSpace(browserFlag))
			}
			if flags.Changed("profile") {
				cfg.Profile = profileFlag
			}
			if flags.Changed("container") {
				cfg.Container = containerFlag
			}
			if flags.Changed("output-dir") {
				expanded, err := config.ExpandPath(outputDirFlag)
				if err != nil {
					return services.Wrap(services.ErrConfiguration, "starting", "resolve output directory", "", err)
				}
				cfg.OutputDirectory = expanded
			}
			if flags.Changed("output-format") {
				cfg.OutputFormat = strings.TrimSpace(outputFormatFlag)
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevelFlag
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = logFormatFlag
			}
			if noCleanFlag {
				cfg.CleanFilenames = false
			}
			if noYearFlag {
				cfg.AddReleaseYear = false
			}
			if err := cfg.Validate(); err != nil {
				return services.Wrap(services.ErrConfiguration, "starting", "validate configuration", "", err)
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
				Writer: cmd.ErrOrStderr(),
			})
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "starting", "configure logging", "", err)
			}

			if err := checkPrerequisites(logger); err != nil {
				return err
			}

			extras := []string{}
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				extras = args[dash:]
			}

			view := newTerminalView(cmd.OutOrStdout(), os.Stdin)
			orchestrator := run.New(cfg, ytdlp.NewCLI(), view, logger)
			result, err := orchestrator.Execute(cmd.Context(), run.Options{
				Reference:  args[0],
				Expression: formatFlag,
				ListOnly:   listFlag,
				Choose:     chooseFlag,
				Overwrite:  overwriteFlag,
				ExtraArgs:  extras,
			})
			if err != nil {
				return err
			}
			if listFlag {
				return nil
			}

			out := cmd.OutOrStdout()
			switch len(result.Delivered) {
			case 0:
				fmt.Fprintln(out, "No media files were produced.")
			case 1:
				fmt.Fprintf(out, "Saved %s\n", result.Delivered[0])
			default:
				fmt.Fprintf(out, "Saved %d files to %s\n", len(result.Delivered), cfg.OutputDirectory)
			}
			if result.RenameFailures > 0 {
				fmt.Fprintf(out, "Warning: %d file(s) could not be renamed or moved; see the log above.\n", result.RenameFailures)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVar(&browserFlag, "browser", "", "Browser to read cookies from (chrome, firefox, ...)")
	rootCmd.Flags().StringVar(&profileFlag, "profile", "", "Browser profile for cookie extraction")
	rootCmd.Flags().StringVar(&containerFlag, "container", "", "Browser cookie container (Firefox Multi-Account Containers)")
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Explicit yt-dlp format expression; a bare stream id is paired with bestaudio")
	rootCmd.Flags().BoolVarP(&listFlag, "list-formats", "F", false, "List the available streams with quality scores and exit")
	rootCmd.Flags().BoolVar(&chooseFlag, "choose", false, "Show the stream table and pick interactively")
	rootCmd.Flags().BoolVar(&overwriteFlag, "overwrite", false, "Overwrite existing files during download")
	rootCmd.Flags().BoolVar(&noCleanFlag, "no-clean", false, "Keep the downloader's filenames unmodified")
	rootCmd.Flags().BoolVar(&noYearFlag, "no-year", false, "Do not append the release year to filenames")
	rootCmd.Flags().StringVarP(&outputDirFlag, "output-dir", "o", "", "Directory the finished files are moved into")
	rootCmd.Flags().StringVar(&outputFormatFlag, "output-format", "", "Output container (mkv, mp4, ...)")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&logFormatFlag, "log-format", "", "Log format (console, json)")

	return rootCmd
}

// checkPrerequisites verifies the external tools before any network call.
// Missing optional tools only warn; missing required tools abort with the
// remediation guidance attached.
func checkPrerequisites(logger *slog.Logger) error {
	statuses := deps.CheckBinaries(deps.Required())
	for _, status := range statuses {
		if status.Optional && !status.Available {
			logger.Warn("optional dependency unavailable",
				logging.String("name", status.Name),
				logging.String(logging.FieldErrorHint, status.Remediation),
				logging.String(logging.FieldImpact, "some script-gated streams may be skipped"),
			)
		}
	}
	if missing, found := deps.FirstMissing(statuses); found {
		return services.Wrap(services.ErrPrerequisite, "starting", "check dependencies",
			fmt.Sprintf("%s is required: %s", missing.Name, missing.Remediation), nil)
	}
	return nil
}
