// Package web embeds the landing page and its static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed views/index.html
var indexHTML []byte

//go:embed public
var public embed.FS

// IndexHTML returns the landing page.
func IndexHTML() []byte {
	return indexHTML
}

// Public returns the static asset tree rooted at public/.
func Public() fs.FS {
	sub, err := fs.Sub(public, "public")
	if err != nil {
		panic(err)
	}
	return sub
}
