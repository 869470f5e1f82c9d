package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency tubeget relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Remediation string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Remediation string
	Optional    bool
	Available   bool
	Detail      string
}

// Required returns the requirements for a download run. yt-dlp performs the
// transfer, ffmpeg remuxes into the target container, and the JavaScript
// runtime unlocks script-gated players.
func Required() []Requirement {
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     "yt-dlp",
			Description: "Performs the metadata fetch and the media download",
			Remediation: "install yt-dlp (https://github.com/yt-dlp/yt-dlp) and ensure it is on PATH",
		},
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Muxes audio/video pairs and remuxes into the output container",
			Remediation: "install ffmpeg and ensure it is on PATH",
		},
		{
			Name:        "Deno",
			Command:     "deno",
			Description: "JavaScript runtime yt-dlp uses for script-gated players",
			Remediation: "install deno (https://deno.land) and ensure it is on PATH",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Remediation: strings.TrimSpace(req.Remediation),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// FirstMissing returns the first unavailable non-optional status, if any.
func FirstMissing(statuses []Status) (Status, bool) {
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			return status, true
		}
	}
	return Status{}, false
}
