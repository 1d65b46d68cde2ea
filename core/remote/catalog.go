package remote

import (
	"fmt"
	"sort"
)

// Action is the symbolic name of a remote-control command. The set of actions
// is closed: every valid action has an Entry in the catalog, and anything not
// in the catalog is treated as a no-op wherever it appears.
type Action string

const (
	ActionLikeCurrentDream    Action = "like_current_dream"
	ActionDislikeCurrentDream Action = "dislike_current_dream"
	ActionGoNextDream         Action = "go_next_dream"
	ActionGoPreviousDream     Action = "go_previous_dream"
	ActionTogglePlayback      Action = "toggle_playback"
	ActionPlaybackFaster      Action = "playback_faster"
	ActionPlaybackSlower      Action = "playback_slower"
	ActionBrightnessUp        Action = "brightness_up"
	ActionBrightnessDown      Action = "brightness_down"
	ActionPlayDream           Action = "play_dream"     // uuid argument
	ActionPlayPlaylist        Action = "play_playlist"  // id + name arguments

	// Playing is pushed by the server when the current dream changes. It is
	// silent: it triggers a playback-state refresh, never a toast.
	ActionPlaying Action = "playing"
)

// SetSpeed returns the discrete speed action for level 1..9.
func SetSpeed(level int) Action {
	return Action(fmt.Sprintf("set_speed_%d", level))
}

// SetBrightness returns the discrete brightness action for level 1..9.
func SetBrightness(level int) Action {
	return Action(fmt.Sprintf("set_brightness_%d", level))
}

// Entry is the catalog metadata of one action.
type Entry struct {
	Action    Action
	NotifyKey string // localization key for the user-facing toast, empty if none
	Key       string // optional keybinding
	Silent    bool   // true: never toast, even with a NotifyKey
}

var catalog = map[Action]Entry{
	ActionLikeCurrentDream:    {Action: ActionLikeCurrentDream, NotifyKey: "remote.like", Key: "l"},
	ActionDislikeCurrentDream: {Action: ActionDislikeCurrentDream, NotifyKey: "remote.dislike", Key: "d"},
	ActionGoNextDream:         {Action: ActionGoNextDream, NotifyKey: "remote.next", Key: "right"},
	ActionGoPreviousDream:     {Action: ActionGoPreviousDream, NotifyKey: "remote.previous", Key: "left"},
	ActionTogglePlayback:      {Action: ActionTogglePlayback, NotifyKey: "remote.toggle", Key: "space", Silent: true},
	ActionPlaybackFaster:      {Action: ActionPlaybackFaster, NotifyKey: "remote.faster", Key: "up"},
	ActionPlaybackSlower:      {Action: ActionPlaybackSlower, NotifyKey: "remote.slower", Key: "down"},
	ActionBrightnessUp:        {Action: ActionBrightnessUp, NotifyKey: "remote.brighter"},
	ActionBrightnessDown:      {Action: ActionBrightnessDown, NotifyKey: "remote.darker"},
	ActionPlayDream:           {Action: ActionPlayDream, NotifyKey: "remote.play_dream"},
	ActionPlayPlaylist:        {Action: ActionPlayPlaylist, NotifyKey: "remote.play_playlist"},
	ActionPlaying:             {Action: ActionPlaying, Silent: true},
}

func init() {
	// Nine discrete speed and brightness levels.
	for level := 1; level <= 9; level++ {
		speed := SetSpeed(level)
		catalog[speed] = Entry{Action: speed, NotifyKey: "remote.set_speed", Key: fmt.Sprintf("%d", level)}
		brightness := SetBrightness(level)
		catalog[brightness] = Entry{Action: brightness, NotifyKey: "remote.set_brightness"}
	}
}

// Lookup resolves an event name against the catalog. The second return value
// is false for unknown names; callers must treat those as no-ops.
func Lookup(event string) (Entry, bool) {
	entry, ok := catalog[Action(event)]
	return entry, ok
}

// Entries returns the full catalog sorted by action name, for review and
// keybinding listings.
func Entries() []Entry {
	entries := make([]Entry, 0, len(catalog))
	for _, entry := range catalog {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Action < entries[j].Action })
	return entries
}
