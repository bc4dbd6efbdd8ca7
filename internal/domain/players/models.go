package players

import "strings"

// Player is one roster entry for the season.
type Player struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Code             string `json:"code"`
	TeamID           int64  `json:"teamId"`
	TeamAbbreviation string `json:"teamAbbreviation"`
}

// NormalizeName is the key used to match roster names against history entries.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameName reports whether two display names refer to the same player.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}
