// Package web embeds the site's static assets (stylesheet, client script and
// the chart CSV files) for serving from the Go binary.
//
// Usage in the API server:
//
//	import "github.com/lightscameradata/boxoffice/web"
//	fs := web.StaticFS() // returns io/fs.FS rooted at static/
package web

import (
	"embed"
	"io/fs"
	"log"
)

//go:embed all:static
var dist embed.FS

// StaticFS returns a filesystem rooted at the embedded static/ directory.
// This is ready to use with http.FileServerFS or a dataset.Loader.
func StaticFS() fs.FS {
	sub, err := fs.Sub(dist, "static")
	if err != nil {
		log.Fatalf("web.StaticFS: %v", err)
	}
	return sub
}
