package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.Browser = strings.ToLower(strings.TrimSpace(c.Browser))
	c.Profile = strings.TrimSpace(c.Profile)
	c.Container = strings.TrimSpace(c.Container)

	if strings.TrimSpace(c.OutputDirectory) == "" {
		c.OutputDirectory = defaultOutputDirectory
	}
	var err error
	if c.OutputDirectory, err = expandPath(c.OutputDirectory); err != nil {
		return fmt.Errorf("outputDirectory: %w", err)
	}

	c.DefaultFormat = strings.TrimSpace(c.DefaultFormat)
	if c.DefaultFormat == "" {
		c.DefaultFormat = defaultFormatExpression
	}

	c.OutputFormat = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c.OutputFormat, ".")))
	if c.OutputFormat == "" {
		c.OutputFormat = defaultOutputFormat
	}

	c.SubtitleLanguages = strings.TrimSpace(c.SubtitleLanguages)
	if c.SubtitleLanguages == "" {
		c.SubtitleLanguages = defaultSubtitleLanguages
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "", "console":
		c.LogFormat = "console"
	case "json":
	default:
		c.LogFormat = defaultLogFormat
	}
	return nil
}

// Validate rejects configurations that cannot produce a usable run.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.OutputFormat, `/\ `) {
		return fmt.Errorf("outputFormat %q is not a container extension", c.OutputFormat)
	}
	if c.Browser == "" && (c.Profile != "" || c.Container != "") {
		return fmt.Errorf("profile/container selectors require a browser")
	}
	return nil
}
