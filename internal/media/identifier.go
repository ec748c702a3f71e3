package media

import "strings"

// Playable identifiers follow the backend's native grammar: exactly 11
// characters drawn from [A-Za-z0-9_-]. Anything carrying another provider's
// namespace prefix, or a URL, is rejected outright.
const playableIDLen = 11

var foreignPrefixes = []string{"spotify:", "deezer:", "isrc:"}

func ValidPlayableID(id string) bool {
	if len(id) != playableIDLen {
		return false
	}
	for _, p := range foreignPrefixes {
		if strings.HasPrefix(id, p) {
			return false
		}
	}
	if strings.Contains(id, "://") {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

// SplitArtistTitle extracts an artist name from a free-text "Artist - Title"
// string. Best effort only; returns empty strings when the shape is absent.
func SplitArtistTitle(s string) (artist, title string) {
	for _, sep := range []string{" - ", " – ", " — "} {
		if i := strings.Index(s, sep); i > 0 {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):])
		}
	}
	return "", strings.TrimSpace(s)
}
