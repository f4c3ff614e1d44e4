// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

import "strings"

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/nvnfont/nvnfont-bot-go/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/nvnfont/nvnfont-bot-go/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/nvnfont/nvnfont-bot-go/internal/buildinfo.BuildDate=...
var BuildDate = ""

// String renders the metadata as "version (commit, date)", using "dev"
// for unset fields.
func String() string {
	version := Version
	if version == "" {
		version = "dev"
	}
	var extra []string
	if Commit != "" {
		extra = append(extra, shortCommit(Commit))
	}
	if BuildDate != "" {
		extra = append(extra, BuildDate)
	}
	if len(extra) == 0 {
		return version
	}
	return version + " (" + strings.Join(extra, ", ") + ")"
}

func shortCommit(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
