// Package discux provides embedded assets for production builds.
package discux

import (
	"embed"
	"io/fs"
)

// Embedded templates for production builds.
// In dev mode (IsDev=true), templates are loaded from disk for hot reloading.

//go:embed all:frontend/templates
var TemplateFS embed.FS

// Templates returns the embedded templates rooted at the templates directory.
func Templates() (fs.FS, error) {
	return fs.Sub(TemplateFS, "frontend/templates")
}
