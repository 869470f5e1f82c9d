package config

const (
	defaultOutputDirectory   = "~/Videos"
	defaultFormatExpression  = "bestvideo*+bestaudio/best"
	defaultOutputFormat      = "mkv"
	defaultSubtitleLanguages = "en.*"
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
)

// defaultPhrasesToRemove is the ordered cleanup rule set applied to output
// filenames. Entries are tried as regular expressions first and fall back to
// literal removal; order matters because broader rules assume the narrower
// ones already ran.
var defaultPhrasesToRemove = []string{
	`(?i)\s*\(official\s+(music\s+|lyric\s+)?video\)`,
	`(?i)\s*\[official\s+(music\s+|lyric\s+)?video\]`,
	`(?i)official\s+music\s+video`,
	`(?i)official\s+lyric\s+video`,
	`(?i)official\s+video`,
	`(?i)lyric\s+video`,
	`(?i)\s*\(official\s+audio\)`,
	`(?i)\s*\(official\s+visualizer\)`,
	`(?i)\s*\(visualizer\)`,
	`(?i)\s*\(lyrics\)`,
	`(?i)\s*\(audio\)`,
	"- Topic",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		OutputDirectory:   defaultOutputDirectory,
		DefaultFormat:     defaultFormatExpression,
		OutputFormat:      defaultOutputFormat,
		SubtitleLanguages: defaultSubtitleLanguages,
		EmbedSubtitles:    true,
		EmbedMetadata:     true,
		CleanFilenames:    true,
		AddReleaseYear:    true,
		PhrasesToRemove:   append([]string(nil), defaultPhrasesToRemove...),
		LogLevel:          defaultLogLevel,
		LogFormat:         defaultLogFormat,
	}
}
