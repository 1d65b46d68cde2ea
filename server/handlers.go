package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/e-dream-ai/dreamstream/config"
	"github.com/e-dream-ai/dreamstream/core/remote"
	"github.com/e-dream-ai/dreamstream/repository"
)

// Context keys for the authenticated principal.
type contextKey string

const (
	ctxUserID   contextKey = "userID"
	ctxUsername contextKey = "username"
)

// APIHandler bundles the dependencies of all HTTP handlers.
type APIHandler struct {
	userRepo     repository.UserRepository
	dreamRepo    repository.DreamRepository
	playlistRepo repository.PlaylistRepository
	hub          *remote.Hub
	cfg          *config.Config
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	dreamRepo repository.DreamRepository,
	playlistRepo repository.PlaylistRepository,
	hub *remote.Hub,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:     userRepo,
		dreamRepo:    dreamRepo,
		playlistRepo: playlistRepo,
		hub:          hub,
		cfg:          cfg,
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(ctxUserID).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetUsernameFromContext extracts the username from the request context.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(ctxUsername).(string)
	if !ok {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}
