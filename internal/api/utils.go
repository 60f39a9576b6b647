package api

import (
	"crypto/rand"
	_ "embed"
	"encoding/base64"
	"net/http"
)

//go:embed web/index.html
var indexHTML []byte

func (a *API) handleWebInterface(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

// generateRandomString returns a URL-safe random string of the given length.
func generateRandomString(length int) string {
	b := make([]byte, length)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)[:length]
}
