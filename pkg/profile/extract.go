package profile

import "strings"

var defaultTextKeys = []string{"optimizedDescription", "description", "text"}

// ExtractText reads the generated text out of a rewrite response. Accepted
// shapes are a bare string, an object holding one of keys (by default
// optimizedDescription, description, text), a one-element array of either,
// and the same nested under "data".
func ExtractText(raw any, keys ...string) string {
	if len(keys) == 0 {
		keys = defaultTextKeys
	}
	v := first(decode(raw))
	for depth := 0; depth < 2; depth++ {
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t)
		case map[string]any:
			if s := pick([]map[string]any{t}, keys...); s != "" {
				return strings.TrimSpace(s)
			}
			v = first(t["data"])
		default:
			return ""
		}
	}
	return ""
}

// ExtractSlug reads the public identifier returned by a save.
func ExtractSlug(raw any) string {
	w, c := unwrap(raw)
	return strings.TrimSpace(pick([]map[string]any{w, c}, "slug"))
}
