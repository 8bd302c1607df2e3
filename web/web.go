// Package web embeds the browser-facing assets: the API documentation
// page served at the root and the static chat client under /app.
package web

import (
	"embed"
	"io/fs"
)

//go:embed docs.html
var DocsHTML []byte

//go:embed app
var appFS embed.FS

// AppFS returns the chat client assets rooted at the app directory.
func AppFS() fs.FS {
	sub, err := fs.Sub(appFS, "app")
	if err != nil {
		panic(err) // embedded layout is fixed at build time
	}
	return sub
}
