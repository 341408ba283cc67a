// Package ytdlp knows the command line of the yt-dlp download tool.
package ytdlp

import (
	"fmt"
	"path/filepath"
)

const (
	// FormatPreference prefers an mp4+m4a pair, then any single mp4, then anything.
	FormatPreference = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	MergeFormat      = "mp4"

	// id is bounded separately from the title so the whole name fits maxNameBytes.
	idBytes  = 64
	extBytes = 8
)

// Options for one download invocation.
type Options struct {
	URL         string
	OutDir      string
	CookiesFile string
	// MaxNameBytes caps the output file name; remote titles are untrusted.
	MaxNameBytes int
}

// OutputTemplate bounds title and id in bytes ("B" modifier) and leaves the
// rest to --restrict-filenames.
func OutputTemplate(dir string, maxNameBytes int) string {
	titleBytes := maxNameBytes - idBytes - extBytes - 1
	if titleBytes < 8 {
		titleBytes = 8
	}
	return filepath.Join(dir, fmt.Sprintf("%%(title).%dB-%%(id).%dB.%%(ext)s", titleBytes, idBytes))
}

// Args builds the yt-dlp argument list. The cookies flag goes first, the URL last.
func Args(o Options) []string {
	var args []string
	if o.CookiesFile != "" {
		args = append(args, "--cookies", o.CookiesFile)
	}
	args = append(args,
		"--no-warnings",
		"--no-mtime",
		"--no-playlist",
		"--merge-output-format", MergeFormat,
		"--restrict-filenames",
		"-f", FormatPreference,
		"-o", OutputTemplate(o.OutDir, o.MaxNameBytes),
		"--",
		o.URL,
	)
	return args
}
