package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// playerNamePattern matches valid player names. Anything outside this
// set never reaches the remote console.
var playerNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,16}$`)

// requirePlayer validates a required player-name argument. Returns the
// rejection detail, or "" when valid.
func requirePlayer(args Args, name string) string {
	v, ok := args.String(name)
	if !ok || v == "" {
		return fmt.Sprintf("%s is required", name)
	}
	if !playerNamePattern.MatchString(v) {
		return fmt.Sprintf("%s must be 1-16 letters, digits or underscores", name)
	}
	return ""
}

// requireText validates a required free-text argument. Control
// characters are rejected: a console command is a single line.
func requireText(args Args, name string, maxLen int) string {
	v, ok := args.String(name)
	if !ok || strings.TrimSpace(v) == "" {
		return fmt.Sprintf("%s is required", name)
	}
	return checkText(v, name, maxLen)
}

// optionalText validates a free-text argument when present.
func optionalText(args Args, name string, maxLen int) string {
	v, ok := args.String(name)
	if !ok || v == "" {
		return ""
	}
	return checkText(v, name, maxLen)
}

func checkText(v, name string, maxLen int) string {
	if len(v) > maxLen {
		return fmt.Sprintf("%s exceeds %d characters", name, maxLen)
	}
	if strings.ContainsAny(v, "\r\n\x00") {
		return fmt.Sprintf("%s must be a single line", name)
	}
	return ""
}

// requireOneOf validates a required enum argument.
func requireOneOf(args Args, name string, allowed ...string) string {
	v, ok := args.String(name)
	if !ok || v == "" {
		return fmt.Sprintf("%s is required (one of %s)", name, strings.Join(allowed, ", "))
	}
	for _, a := range allowed {
		if v == a {
			return ""
		}
	}
	return fmt.Sprintf("%s must be one of %s", name, strings.Join(allowed, ", "))
}

// optionalBoundedInt validates an integer argument when present.
func optionalBoundedInt(args Args, name string, min, max int) string {
	v, ok := args[name]
	if !ok {
		return ""
	}
	n, ok := args.Int(name)
	if !ok {
		return fmt.Sprintf("%s must be an integer, got %v", name, v)
	}
	if n < min || n > max {
		return fmt.Sprintf("%s must be between %d and %d", name, min, max)
	}
	return ""
}

// isTimeValue accepts the named time-of-day values or a bare tick count.
func isTimeValue(v string) bool {
	switch v {
	case "day", "night", "noon", "midnight":
		return true
	}
	_, err := strconv.Atoi(v)
	return err == nil
}
