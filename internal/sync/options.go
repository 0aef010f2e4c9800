package sync

import (
	"fmt"
	"strings"

	"github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
)

// CleanMode selects how destination files are matched against the source
// during the clean phase.
type CleanMode string

const (
	// CleanModeLiteral checks a destination file against the source under its
	// own name, even when an output extension is appended on copy.
	CleanModeLiteral CleanMode = "literal"
	// CleanModeStrip removes the output extension from a destination name
	// before looking for its source file.
	CleanModeStrip CleanMode = "strip"
)

// ParseCleanMode converts a flag value into a CleanMode. An empty value
// selects CleanModeLiteral.
func ParseCleanMode(value string) (CleanMode, error) {
	switch CleanMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", CleanModeLiteral:
		return CleanModeLiteral, nil
	case CleanModeStrip:
		return CleanModeStrip, nil
	default:
		return "", fmt.Errorf("unknown clean mode %q (want %q or %q)", value, CleanModeLiteral, CleanModeStrip)
	}
}

// Options configures a synchronization run.
type Options struct {
	InputRootPath   string
	OutputRootPath  string
	Extensions      []string
	OutputExtension string
	IgnoreMatcher   *ignore.GitIgnore
	CleanMode       CleanMode
	DryRun          bool
	// Filesystem defaults to the operating system filesystem when nil.
	Filesystem afero.Fs
}

func (options Options) filesystem() afero.Fs {
	if options.Filesystem == nil {
		return afero.NewOsFs()
	}
	return options.Filesystem
}
