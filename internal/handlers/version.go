package handlers

import (
	"net/http"
	"time"
)

// Version is set at build time with -ldflags "-X github.com/benvon/todo-chat/internal/handlers.Version=..."
var Version = "dev"

// VersionInfo handles the /version endpoint
func VersionInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
