package command

// Args holds named, pre-typed arguments as delivered by the platform
// layer. Values are string or int; typed getters report presence.
type Args map[string]interface{}

// String returns a string argument and whether it was present.
func (a Args) String(name string) (string, bool) {
	v, ok := a[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns an integer argument and whether it was present. Platform
// layers that deliver int64, or float64 from decoded JSON, are
// accepted too.
func (a Args) Int(name string) (int, bool) {
	v, ok := a[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// Request is one inbound command invocation, request-scoped.
type Request struct {
	// Command is the invoked command name.
	Command string

	// Identity is the opaque caller id, stable across requests.
	Identity string

	// Args are the named arguments for this invocation.
	Args Args
}
