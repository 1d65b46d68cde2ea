package server

import (
	"context"
	"net/http"

	"github.com/e-dream-ai/dreamstream/cache"
	"github.com/e-dream-ai/dreamstream/core/auth"
	"github.com/e-dream-ai/dreamstream/core/remote"
	"github.com/e-dream-ai/dreamstream/logger"
	"github.com/e-dream-ai/dreamstream/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var remoteUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RemoteWebSocketHandler upgrades the connection and registers the device
// with the remote-control hub. Auth comes from the token query parameter
// (browsers cannot set headers on websocket upgrades) or the Authorization
// header. The device identifier is client-supplied so a reconnecting device
// evicts its stale session; absent one, the server assigns it.
func (h *APIHandler) RemoteWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}
	if token == "" {
		http.Error(w, "Authentication token is required", http.StatusUnauthorized)
		return
	}

	claims, err := auth.ParseToken(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	deviceID := r.URL.Query().Get("device")
	if deviceID == "" {
		deviceID = uuid.New().String()
	}

	kind := r.URL.Query().Get("kind")
	switch kind {
	case remote.KindDesktop, remote.KindWeb, remote.KindController:
	default:
		kind = remote.KindWeb
	}

	if prev := h.hub.GetClient(claims.UserID, deviceID); prev != nil {
		logger.Info("[Remote] device reconnecting, previous session will be evicted",
			logger.Int64("user", claims.UserID), logger.String("device", deviceID))
	}

	conn, err := remoteUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("[Remote] websocket upgrade failed",
			logger.ErrorField(err), logger.Int64("user", claims.UserID))
		return
	}

	client := &remote.HubClient{
		Hub:      h.hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		UserID:   claims.UserID,
		Username: claims.Username,
		DeviceID: deviceID,
		Kind:     kind,
	}

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(context.Background(), h.handleRemoteMessage)
}

// handleRemoteMessage routes one inbound control event. Events not in the
// action catalog are dropped; catalog events either update server state or
// fan out to the user's playback devices, never echoing back to the sender.
func (h *APIHandler) handleRemoteMessage(ctx context.Context, client *remote.HubClient, env *remote.Envelope) {
	entry, ok := remote.Lookup(env.Event)
	if !ok {
		logger.Debug("[Remote] ignoring unknown event",
			logger.String("event", env.Event), logger.Int64("user", client.UserID))
		return
	}

	env.UserID = client.UserID
	env.Username = client.Username

	switch entry.Action {
	case remote.ActionPlaying, remote.ActionPlayDream:
		// A device started playing a dream: remember it and tell the
		// user's other devices to refresh.
		dream := h.resolveDream(env)
		if dream == nil {
			logger.Warn("[Remote] play event for unknown dream",
				logger.String("uuid", env.UUID), logger.Int64("id", env.ID))
			return
		}
		if err := cache.NewDreamCache().SetCurrentDream(ctx, client.UserID, dream); err != nil {
			logger.Warn("[Remote] failed to cache current dream",
				logger.ErrorField(err), logger.Int64("user", client.UserID))
		}
		h.hub.BroadcastEnvelope(client.UserID, &remote.Envelope{
			Event:    string(remote.ActionPlaying),
			UUID:     dream.UUID,
			Name:     dream.Name,
			ID:       dream.ID,
			UserID:   client.UserID,
			Username: client.Username,
		}, client.DeviceID, "")

	case remote.ActionLikeCurrentDream, remote.ActionDislikeCurrentDream:
		value := 1
		if entry.Action == remote.ActionDislikeCurrentDream {
			value = -1
		}
		current, err := cache.NewDreamCache().GetCurrentDream(ctx, client.UserID)
		if err != nil || current == nil {
			logger.Warn("[Remote] vote with no current dream",
				logger.Int64("user", client.UserID))
			return
		}
		if err := h.dreamRepo.UpsertVote(&model.DreamVote{
			DreamID: current.ID,
			UserID:  client.UserID,
			Value:   value,
		}); err != nil {
			logger.Error("[Remote] failed to record vote",
				logger.ErrorField(err), logger.Int64("dream", current.ID))
			return
		}
		h.forwardToPlayers(client, env)

	default:
		// Pure playback commands: forward to the playback surfaces.
		h.forwardToPlayers(client, env)
	}
}

// forwardToPlayers relays an event to the user's desktop and web devices,
// excluding the originator.
func (h *APIHandler) forwardToPlayers(client *remote.HubClient, env *remote.Envelope) {
	h.hub.BroadcastEnvelope(client.UserID, env, client.DeviceID, remote.KindDesktop)
	h.hub.BroadcastEnvelope(client.UserID, env, client.DeviceID, remote.KindWeb)
}

// resolveDream looks up the dream named by a play event, by UUID first and
// numeric id as fallback.
func (h *APIHandler) resolveDream(env *remote.Envelope) *model.Dream {
	if env.UUID != "" {
		dream, err := h.dreamRepo.GetDreamByUUID(env.UUID)
		if err == nil && dream != nil {
			return dream
		}
	}
	if env.ID != 0 {
		dream, err := h.dreamRepo.GetDreamByID(env.ID)
		if err == nil && dream != nil {
			return dream
		}
	}
	return nil
}

// RemoteDevicesHandler lists the caller's online devices.
func (h *APIHandler) RemoteDevicesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	devices, err := cache.NewPresenceCache().GetOnlineDevices(r.Context(), userID)
	if err != nil {
		logger.Error("[Remote] failed to list devices",
			logger.ErrorField(err), logger.Int64("user", userID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"devices": devices})
}

// RemoteActionEntry is the public shape of one catalog action.
type RemoteActionEntry struct {
	Action string `json:"action"`
	Key    string `json:"key,omitempty"`
	Silent bool   `json:"silent,omitempty"`
}

// RemoteActionsHandler lists every supported control action with its
// keybinding, for controller UIs.
func (h *APIHandler) RemoteActionsHandler(w http.ResponseWriter, r *http.Request) {
	catalog := remote.Entries()
	actions := make([]RemoteActionEntry, 0, len(catalog))
	for _, entry := range catalog {
		actions = append(actions, RemoteActionEntry{
			Action: string(entry.Action),
			Key:    entry.Key,
			Silent: entry.Silent,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"actions": actions})
}
