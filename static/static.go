// Package static embeds the browser chat client served at the HTTP
// root.
package static

import (
	"embed"
	"net/http"
)

//go:embed index.html
var files embed.FS

// Handler serves the embedded static files.
func Handler() http.Handler {
	return http.FileServerFS(files)
}
