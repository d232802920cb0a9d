package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// Assets returns the dashboard page, its script and its stylesheet rooted at
// the static directory.
func Assets() http.FileSystem {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic("site: embedded static directory missing: " + err.Error())
	}
	return http.FS(sub)
}
