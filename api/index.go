package handler

import (
	"net/http"

	formrelayhttp "github.com/awantoch/formrelay/http"
)

// Handler is the entry point for Vercel serverless functions. vercel.json
// rewrites every route to this function; routing happens in the shared mux.
func Handler(w http.ResponseWriter, r *http.Request) {
	formrelayhttp.ServerlessHandler(w, r)
}
