package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/e-dream-ai/dreamstream/cache"
	"github.com/e-dream-ai/dreamstream/core/remote"
	"github.com/e-dream-ai/dreamstream/logger"
	"github.com/e-dream-ai/dreamstream/model"
	"github.com/e-dream-ai/dreamstream/storage"

	"github.com/gorilla/mux"
)

// CurrentDreamResponse wraps the current dream. Dream is null when nothing is
// playing; clients treat that as "keep what you have".
type CurrentDreamResponse struct {
	Dream *model.Dream `json:"dream"`
}

// GetCurrentDreamHandler returns the user's current dream from the cache.
func (h *APIHandler) GetCurrentDreamHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	dream, err := cache.NewDreamCache().GetCurrentDream(r.Context(), userID)
	if err != nil {
		logger.Error("[Dream] failed to read current dream",
			logger.ErrorField(err), logger.Int64("user", userID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, &CurrentDreamResponse{Dream: dream})
}

// SetCurrentDreamRequest selects the dream to play by UUID.
type SetCurrentDreamRequest struct {
	UUID string `json:"uuid"`
}

// SetCurrentDreamHandler records the user's current dream and pushes a
// "playing" event to the user's other devices so they refresh.
func (h *APIHandler) SetCurrentDreamHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SetCurrentDreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UUID == "" {
		http.Error(w, "Dream UUID is required", http.StatusBadRequest)
		return
	}

	dream, err := h.dreamRepo.GetDreamByUUID(req.UUID)
	if err != nil {
		logger.Error("[Dream] failed to look up dream",
			logger.ErrorField(err), logger.String("uuid", req.UUID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if dream == nil {
		http.Error(w, "Dream not found", http.StatusNotFound)
		return
	}

	if err := cache.NewDreamCache().SetCurrentDream(r.Context(), userID, dream); err != nil {
		logger.Error("[Dream] failed to cache current dream",
			logger.ErrorField(err), logger.Int64("user", userID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	username, _ := GetUsernameFromContext(r.Context())
	h.hub.BroadcastEnvelope(userID, &remote.Envelope{
		Event:    string(remote.ActionPlaying),
		UUID:     dream.UUID,
		Name:     dream.Name,
		ID:       dream.ID,
		UserID:   userID,
		Username: username,
	}, "", "")

	writeJSON(w, http.StatusOK, &CurrentDreamResponse{Dream: dream})
}

// GetDreamHandler returns a dream by UUID, with its vote total.
func (h *APIHandler) GetDreamHandler(w http.ResponseWriter, r *http.Request) {
	uuid := mux.Vars(r)["uuid"]

	dream, err := h.dreamRepo.GetDreamByUUID(uuid)
	if err != nil {
		logger.Error("[Dream] failed to look up dream",
			logger.ErrorField(err), logger.String("uuid", uuid))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if dream == nil {
		http.Error(w, "Dream not found", http.StatusNotFound)
		return
	}

	votes, err := h.dreamRepo.VoteTotal(dream.ID)
	if err != nil {
		logger.Warn("[Dream] failed to sum votes",
			logger.ErrorField(err), logger.Int64("dream", dream.ID))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dream": dream,
		"votes": votes,
	})
}

// VoteRequest carries a like (+1) or dislike (-1).
type VoteRequest struct {
	Value int `json:"value"`
}

// VoteDreamHandler records the user's vote on a dream. A second vote by the
// same user replaces the first.
func (h *APIHandler) VoteDreamHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	uuid := mux.Vars(r)["uuid"]
	dream, err := h.dreamRepo.GetDreamByUUID(uuid)
	if err != nil {
		logger.Error("[Vote] failed to look up dream",
			logger.ErrorField(err), logger.String("uuid", uuid))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if dream == nil {
		http.Error(w, "Dream not found", http.StatusNotFound)
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Value != 1 && req.Value != -1 {
		http.Error(w, "Vote value must be 1 or -1", http.StatusBadRequest)
		return
	}

	if err := h.dreamRepo.UpsertVote(&model.DreamVote{
		DreamID: dream.ID,
		UserID:  userID,
		Value:   req.Value,
	}); err != nil {
		logger.Error("[Vote] failed to record vote",
			logger.ErrorField(err), logger.Int64("dream", dream.ID), logger.Int64("user", userID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	votes, err := h.dreamRepo.VoteTotal(dream.ID)
	if err != nil {
		logger.Warn("[Vote] failed to sum votes",
			logger.ErrorField(err), logger.Int64("dream", dream.ID))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"votes": votes})
}

// MediaHandler streams dream media out of MinIO. The path after /media/ is
// the object key.
func (h *APIHandler) MediaHandler(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/media/")
	if key == "" || strings.Contains(key, "..") {
		http.Error(w, "Invalid media path", http.StatusBadRequest)
		return
	}

	object, err := storage.OpenObject(r.Context(), h.cfg.MinioBucket, key)
	if err != nil {
		logger.Error("[Media] failed to open object",
			logger.ErrorField(err), logger.String("key", key))
		http.Error(w, "Media not found", http.StatusNotFound)
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", mediaContentType(key))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, object); err != nil {
		logger.Warn("[Media] streaming interrupted",
			logger.ErrorField(err), logger.String("key", key))
	}
}

func mediaContentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".mp4"):
		return "video/mp4"
	case strings.HasSuffix(key, ".webm"):
		return "video/webm"
	case strings.HasSuffix(key, ".mov"):
		return "video/quicktime"
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(key, ".png"):
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
