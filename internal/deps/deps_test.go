package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary", Remediation: "install it"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement available, got %#v", results[0])
	}
	if results[1].Available {
		t.Fatal("expected missing binary unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}
	if results[1].Remediation != "install it" {
		t.Fatalf("remediation lost: %#v", results[1])
	}
}

func TestFirstMissingSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Name: "Optional", Optional: true, Available: false},
		{Name: "Hard", Available: true},
	}
	if _, missing := FirstMissing(statuses); missing {
		t.Fatal("optional dependency must not count as missing")
	}

	statuses = append(statuses, Status{Name: "Gone", Available: false})
	status, missing := FirstMissing(statuses)
	if !missing || status.Name != "Gone" {
		t.Fatalf("expected Gone reported, got %#v", status)
	}
}

func TestRequiredNamesDownloaderFirst(t *testing.T) {
	reqs := Required()
	if len(reqs) == 0 || reqs[0].Command != "yt-dlp" {
		t.Fatalf("expected yt-dlp as the primary requirement, got %#v", reqs)
	}
	for _, req := range reqs {
		if req.Remediation == "" {
			t.Fatalf("requirement %s missing remediation guidance", req.Name)
		}
	}
}
