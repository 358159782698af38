package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/huangsam/gitcat/schema"
)

// Color variables for console output.
var (
	OKColor      = color.New(color.FgGreen)            // OKColor marks a successful resolution.
	FailedColor  = color.New(color.FgRed, color.Bold)  // FailedColor marks a failed resolution.
	DiskColor    = color.New(color.FgYellow)           // DiskColor marks the raw disk fallback.
	HistoryColor = color.New(color.FgMagenta)          // HistoryColor marks content read from history.
	MutedColor   = color.New(color.FgHiBlack)          // MutedColor marks empty content.
	IndexColor   = color.New(color.FgCyan, color.Bold) // IndexColor marks staged content.
)

// GetColorStatus returns a colored status label for console output (table).
func GetColorStatus(status schema.ResolutionStatus) string {
	if status == schema.StatusOK {
		return OKColor.Sprint(string(status))
	}
	return FailedColor.Sprint(string(status))
}

// GetColorSource returns a colored content source label for console output (table).
func GetColorSource(source schema.ContentSource) string {
	text := string(source)
	switch source {
	case schema.SourceIndex:
		return IndexColor.Sprint(text)
	case schema.SourceHistory:
		return HistoryColor.Sprint(text)
	case schema.SourceDisk:
		return DiskColor.Sprint(text)
	case schema.SourceNone:
		return MutedColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the file handle for output, falling back to
// os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitcat_runs.db"
	}
	return filepath.Join(homeDir, ".gitcat_runs.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
