package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// ServeStatic serves dir for every path no route claims.
func ServeStatic(router *httprouter.Router, dir string) {
	if dir == "" {
		return
	}
	router.NotFound = http.FileServer(http.Dir(dir))
}
