// Package static embeds the operator page.
package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed all:dist/*
var distFS embed.FS

// FileSystem returns the embedded page, its script and stylesheet rooted at "/".
func FileSystem() http.FileSystem {
	fsys, err := fs.Sub(distFS, "dist")
	if err != nil {
		// Embedded at build time; cannot fail for a valid binary.
		panic(err)
	}
	return http.FS(fsys)
}
