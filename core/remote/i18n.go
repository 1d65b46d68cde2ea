package remote

// defaultMessages is the built-in English notification table.
var defaultMessages = map[string]string{
	"remote.like":           "Liked this dream",
	"remote.dislike":        "Disliked this dream",
	"remote.next":           "Next dream",
	"remote.previous":       "Previous dream",
	"remote.toggle":         "Play/pause",
	"remote.faster":         "Playback faster",
	"remote.slower":         "Playback slower",
	"remote.brighter":       "Brightness up",
	"remote.darker":         "Brightness down",
	"remote.set_speed":      "Playback speed set",
	"remote.set_brightness": "Brightness set",
	"remote.play_dream":     "Playing dream",
	"remote.play_playlist":  "Playing playlist",
}

// DefaultTranslator resolves notification keys against the built-in English
// table, falling back to the key itself for unknown keys.
func DefaultTranslator(key string) string {
	if msg, ok := defaultMessages[key]; ok {
		return msg
	}
	return key
}
