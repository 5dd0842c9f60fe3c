package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LineContext represents a line from a document with surrounding context
type LineContext struct {
	Before2    string `json:"before2"`    // Two lines before the target
	Before1    string `json:"before1"`    // Line before the target
	Target     string `json:"target"`     // The actual target line
	After1     string `json:"after1"`     // Line after the target
	After2     string `json:"after2"`     // Two lines after the target
	LineNumber int    `json:"lineNumber"` // 1-based line number of the target
	HasBefore2 bool   `json:"hasBefore2"` // Whether there's a second line before
	HasBefore1 bool   `json:"hasBefore1"` // Whether there's a line before
	HasAfter1  bool   `json:"hasAfter1"`  // Whether there's a line after
	HasAfter2  bool   `json:"hasAfter2"`  // Whether there's a second line after
	ErrorMsg   string `json:"errorMsg,omitempty"`
}

// GetLineContext returns the 1-based lineNumber of lines with up to two
// lines of context on either side.
func GetLineContext(lines []string, lineNumber int) LineContext {
	result := LineContext{
		LineNumber: lineNumber,
	}

	if lineNumber < 1 || lineNumber > len(lines) {
		result.ErrorMsg = fmt.Sprintf("Line %d out of range (document has %d lines)", lineNumber, len(lines))
		return result
	}

	// Get the target line (convert to 0-indexed)
	result.Target = lines[lineNumber-1]

	if lineNumber > 2 {
		result.Before2 = lines[lineNumber-3]
		result.HasBefore2 = true
	}
	if lineNumber > 1 {
		result.Before1 = lines[lineNumber-2]
		result.HasBefore1 = true
	}

	if lineNumber < len(lines) {
		result.After1 = lines[lineNumber]
		result.HasAfter1 = true
	}
	if lineNumber+1 < len(lines) {
		result.After2 = lines[lineNumber+1]
		result.HasAfter2 = true
	}

	return result
}

// ExpandTilde expands a leading ~ to the user's home directory
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
	}
	return path
}
