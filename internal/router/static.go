package router

import (
	"net/http"
	"path"
)

// staticHandler serves the exam pages. Only GET and HEAD reach the files;
// other methods on unknown paths get 404 like the API.
func staticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}
		r.URL.Path = path.Clean("/" + r.URL.Path)
		files.ServeHTTP(w, r)
	})
}
