// Package docs holds the embedded help text.
package docs

import (
	_ "embed"
	"strings"

	"dlcini/internal/model"
)

//go:embed help.md
var helpMD string

// Help returns the help markdown with the version filled in.
func Help() string {
	return strings.ReplaceAll(helpMD, "{{VERSION}}", model.Version)
}
