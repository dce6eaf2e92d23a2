// Package web provides the embedded client build for production.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var distFS embed.FS

// Client returns the client build with the dist/ prefix stripped, so index.html sits at
// the root. The build step replaces the placeholder index.html committed here.
func Client() fs.FS {
	sub, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic(err)
	}
	return sub
}
