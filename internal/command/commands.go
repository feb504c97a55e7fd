package command

import (
	"fmt"
	"strings"
)

// Definitions returns every command kind the bridge supports. Each
// shares the pipeline and differs only in validation, construction,
// and parsing.
func Definitions() []Definition {
	return []Definition{
		// Admin actions.
		{
			Name:     "kick",
			Category: CategoryAdmin,
			Validate: func(args Args) string {
				if d := requirePlayer(args, "player"); d != "" {
					return d
				}
				return optionalText(args, "reason", 100)
			},
			Build: func(args Args) string {
				return playerCommand("kick", args)
			},
			Parse: parsePlayerAction,
		},
		{
			Name:     "ban",
			Category: CategoryAdmin,
			Validate: func(args Args) string {
				if d := requirePlayer(args, "player"); d != "" {
					return d
				}
				return optionalText(args, "reason", 100)
			},
			Build: func(args Args) string {
				return playerCommand("ban", args)
			},
			Parse: parsePlayerAction,
		},
		{
			Name:     "pardon",
			Category: CategoryAdmin,
			Validate: func(args Args) string {
				return requirePlayer(args, "player")
			},
			Build: func(args Args) string {
				return playerCommand("pardon", args)
			},
			Parse: parsePlayerAction,
		},
		{
			Name:     "whitelist",
			Category: CategoryAdmin,
			Validate: func(args Args) string {
				if d := requireOneOf(args, "action", "add", "remove", "list"); d != "" {
					return d
				}
				if action, _ := args.String("action"); action != "list" {
					return requirePlayer(args, "player")
				}
				return ""
			},
			Build: func(args Args) string {
				action, _ := args.String("action")
				if action == "list" {
					return "whitelist list"
				}
				player, _ := args.String("player")
				return fmt.Sprintf("whitelist %s %s", action, player)
			},
		},

		// Read-only queries.
		{
			Name:     "list",
			Category: CategoryQuery,
			Build:    func(Args) string { return "list" },
			Parse:    parseList,
		},
		{
			Name:     "seed",
			Category: CategoryQuery,
			Build:    func(Args) string { return "seed" },
			Parse:    parseSeed,
		},

		// Broadcast and whisper.
		{
			Name:     "say",
			Category: CategoryChat,
			Validate: func(args Args) string {
				return requireText(args, "message", 256)
			},
			Build: func(args Args) string {
				message, _ := args.String("message")
				return "say " + message
			},
		},
		{
			Name:     "tell",
			Category: CategoryChat,
			Validate: func(args Args) string {
				if d := requirePlayer(args, "player"); d != "" {
					return d
				}
				return requireText(args, "message", 256)
			},
			Build: func(args Args) string {
				player, _ := args.String("player")
				message, _ := args.String("message")
				return fmt.Sprintf("tell %s %s", player, message)
			},
			PrivateSuccess: true,
		},

		// Game-state mutations.
		{
			Name:     "time",
			Category: CategoryGame,
			Validate: func(args Args) string {
				if d := requireOneOf(args, "action", "set", "add"); d != "" {
					return d
				}
				value, ok := args.String("value")
				if !ok || value == "" {
					return "value is required"
				}
				if !isTimeValue(value) {
					return "value must be day, night, noon, midnight or a tick count"
				}
				return ""
			},
			Build: func(args Args) string {
				action, _ := args.String("action")
				value, _ := args.String("value")
				return fmt.Sprintf("time %s %s", action, value)
			},
		},
		{
			Name:     "weather",
			Category: CategoryGame,
			Validate: func(args Args) string {
				if d := requireOneOf(args, "kind", "clear", "rain", "thunder"); d != "" {
					return d
				}
				return optionalBoundedInt(args, "duration", 1, 1000000)
			},
			Build: func(args Args) string {
				kind, _ := args.String("kind")
				if duration, ok := args.Int("duration"); ok {
					return fmt.Sprintf("weather %s %d", kind, duration)
				}
				return "weather " + kind
			},
		},
		{
			Name:     "difficulty",
			Category: CategoryGame,
			Validate: func(args Args) string {
				return requireOneOf(args, "level", "peaceful", "easy", "normal", "hard")
			},
			Build: func(args Args) string {
				level, _ := args.String("level")
				return "difficulty " + level
			},
		},
		{
			Name:     "gamemode",
			Category: CategoryGame,
			Validate: func(args Args) string {
				if d := requireOneOf(args, "mode", "survival", "creative", "adventure", "spectator"); d != "" {
					return d
				}
				if _, ok := args["player"]; ok {
					return requirePlayer(args, "player")
				}
				return ""
			},
			Build: func(args Args) string {
				mode, _ := args.String("mode")
				if player, ok := args.String("player"); ok && player != "" {
					return fmt.Sprintf("gamemode %s %s", mode, player)
				}
				return "gamemode " + mode
			},
		},
	}
}

// NewHandlers wraps every definition with the shared pipeline.
func NewHandlers(deps Deps) []Handler {
	defs := Definitions()
	handlers := make([]Handler, 0, len(defs))
	for _, def := range defs {
		handlers = append(handlers, NewHandler(def, deps))
	}
	return handlers
}

// playerCommand builds "<verb> <player> [reason]".
func playerCommand(verb string, args Args) string {
	player, _ := args.String("player")
	parts := []string{verb, player}
	if reason, ok := args.String("reason"); ok && reason != "" {
		parts = append(parts, reason)
	}
	return strings.Join(parts, " ")
}
