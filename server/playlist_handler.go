package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/e-dream-ai/dreamstream/core/playlist"
	"github.com/e-dream-ai/dreamstream/logger"
	"github.com/e-dream-ai/dreamstream/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// CreatePlaylistRequest carries the new playlist's name.
type CreatePlaylistRequest struct {
	Name string `json:"name"`
}

// CreatePlaylistHandler creates an empty playlist owned by the caller.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Playlist name is required", http.StatusBadRequest)
		return
	}

	pl := &model.Playlist{
		UUID:   uuid.New().String(),
		UserID: userID,
		Name:   req.Name,
	}
	if err := h.playlistRepo.CreatePlaylist(pl); err != nil {
		logger.Error("[Playlist] failed to create playlist",
			logger.ErrorField(err), logger.Int64("user", userID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, pl)
}

// ListPlaylistsHandler lists the caller's playlists.
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	playlists, err := h.playlistRepo.ListPlaylistsByUser(userID)
	if err != nil {
		logger.Error("[Playlist] failed to list playlists",
			logger.ErrorField(err), logger.Int64("user", userID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
}

// GetPlaylistHandler returns one playlist with its ordered items.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	pl, err := h.playlistRepo.GetPlaylistByID(id)
	if err != nil {
		logger.Error("[Playlist] failed to get playlist",
			logger.ErrorField(err), logger.Int64("playlist", id))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if pl == nil {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, pl)
}

// DeletePlaylistHandler deletes a playlist owned by the caller.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	if err := h.playlistRepo.DeletePlaylist(id, userID); err != nil {
		logger.Warn("[Playlist] failed to delete playlist",
			logger.ErrorField(err), logger.Int64("playlist", id), logger.Int64("user", userID))
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddPlaylistItemRequest adds one dream or keyframe to a playlist.
type AddPlaylistItemRequest struct {
	Type       string `json:"type"` // dream or keyframe
	DreamID    int64  `json:"dreamId,omitempty"`
	KeyframeID int64  `json:"keyframeId,omitempty"`
	Position   int    `json:"position,omitempty"`
}

// AddPlaylistItemHandler appends an item to a playlist.
func (h *APIHandler) AddPlaylistItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	var req AddPlaylistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch req.Type {
	case model.PlaylistItemTypeDream:
		if req.DreamID == 0 {
			http.Error(w, "dreamId is required for dream items", http.StatusBadRequest)
			return
		}
	case model.PlaylistItemTypeKeyframe:
		if req.KeyframeID == 0 {
			http.Error(w, "keyframeId is required for keyframe items", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "Item type must be dream or keyframe", http.StatusBadRequest)
		return
	}

	item := &model.PlaylistItem{
		PlaylistID: id,
		ItemType:   req.Type,
		DreamID:    req.DreamID,
		KeyframeID: req.KeyframeID,
		Position:   req.Position,
		AddedBy:    userID,
	}
	if err := h.playlistRepo.AddItem(item); err != nil {
		logger.Error("[Playlist] failed to add item",
			logger.ErrorField(err), logger.Int64("playlist", id))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// RemovePlaylistItemHandler removes one item from a playlist.
func (h *APIHandler) RemovePlaylistItemHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}
	itemID, err := strconv.ParseInt(vars["item_id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	if err := h.playlistRepo.RemoveItem(id, itemID); err != nil {
		logger.Warn("[Playlist] failed to remove item",
			logger.ErrorField(err), logger.Int64("playlist", id), logger.Int64("item", itemID))
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PlaylistNavigationHandler computes the next and previous items around the
// current dream, identified by the dreamId query parameter. Either side is
// null at the boundary or when the dream is not in the playlist.
func (h *APIHandler) PlaylistNavigationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	dreamID, err := strconv.ParseInt(r.URL.Query().Get("dreamId"), 10, 64)
	if err != nil {
		http.Error(w, "dreamId query parameter is required", http.StatusBadRequest)
		return
	}

	pl, err := h.playlistRepo.GetPlaylistByID(id)
	if err != nil {
		logger.Error("[Playlist] failed to get playlist",
			logger.ErrorField(err), logger.Int64("playlist", id))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if pl == nil {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}

	result := playlist.Resolve(&model.Dream{ID: dreamID}, pl)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"next":     result.Next,
		"previous": result.Previous,
	})
}
