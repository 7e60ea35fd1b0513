// Package web embeds the browser client served alongside the API.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// Handler serves the search page and its static assets. The page at "/"
// talks to the suggestions and recommendations endpoints on the same origin.
func Handler() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
