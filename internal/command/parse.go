package command

import (
	"regexp"
	"strings"
)

// Response parsers. The remote console's text format is not
// guaranteed-structured, so every parser keeps the raw text as the
// message and only adds Data fields when the shape is recognized.

var listPattern = regexp.MustCompile(`There are (\d+) of a max of (\d+) players online:?\s*(.*)`)

// parseList extracts counts and names from a player list response.
func parseList(_ Args, raw string) Payload {
	m := listPattern.FindStringSubmatch(raw)
	if m == nil {
		return Payload{Message: raw}
	}

	data := map[string]string{
		"online": m[1],
		"max":    m[2],
	}
	if names := strings.TrimSpace(m[3]); names != "" {
		data["players"] = names
	}
	return Payload{Message: raw, Data: data}
}

var seedPattern = regexp.MustCompile(`Seed:\s*\[?(-?\d+)\]?`)

// parseSeed extracts the world seed.
func parseSeed(_ Args, raw string) Payload {
	m := seedPattern.FindStringSubmatch(raw)
	if m == nil {
		return Payload{Message: raw}
	}
	return Payload{Message: raw, Data: map[string]string{"seed": m[1]}}
}

// parsePlayerAction tags the payload with the acted-on player when the
// response mentions them.
func parsePlayerAction(args Args, raw string) Payload {
	player, ok := args.String("player")
	if !ok || !strings.Contains(raw, player) {
		return Payload{Message: raw}
	}
	return Payload{Message: raw, Data: map[string]string{"player": player}}
}
