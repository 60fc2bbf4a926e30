// Package static serves the calculator stylesheet and keyboard script.
package static

import (
	"embed"
	"net/http"
)

//go:embed calc.css keys.js
var files embed.FS

// Handler serves the embedded assets from the root of its path, e.g.
// "/calc.css", with a one hour cache lifetime.
func Handler() http.Handler {
	fileServer := http.FileServerFS(files)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}
