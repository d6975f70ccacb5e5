package profile

import (
	"encoding/json"
	"strconv"
	"strings"
)

// decode turns any supported input into a generic JSON value
// (map[string]any, []any, string, float64, bool or nil).
func decode(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any, []any:
		return v
	case []byte:
		return decodeBytes(v)
	case json.RawMessage:
		return decodeBytes(v)
	case string:
		if out := decodeBytes([]byte(v)); out != nil {
			return out
		}
		return v
	default:
		// typed values (Record, []Record, structs from other packages)
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return decodeBytes(b)
	}
}

func decodeBytes(b []byte) any {
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}

// first unwraps a one-element array wrapper.
func first(v any) any {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return nil
		}
		return arr[0]
	}
	return v
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// unwrap splits a payload into its outer record and the content found
// under "data" (or the record itself when there is none).
func unwrap(raw any) (wrapper, content map[string]any) {
	wrapper = asMap(first(decode(raw)))
	content = wrapper
	if m, ok := first(wrapper["data"]).(map[string]any); ok {
		content = m
	}
	return wrapper, content
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// pick returns the first non-empty string found under keys in maps, maps
// being searched in order.
func pick(maps []map[string]any, keys ...string) string {
	for _, m := range maps {
		for _, k := range keys {
			if s := str(m[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

func num(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// flag reads loosely typed booleans: true, "true", 1, "1".
func flag(v any) (value, ok bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		return t != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "oui":
			return true, true
		case "false", "0", "no", "non":
			return false, true
		}
	}
	return false, false
}

func flagIn(maps []map[string]any, keys ...string) (value, ok bool) {
	for _, k := range keys {
		for _, m := range maps {
			if v, ok := flag(m[k]); ok {
				return v, true
			}
		}
	}
	return false, false
}

// items returns the elements of the first key holding an array; absent,
// null or scalar values give an empty list.
func items(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if arr, ok := m[k].([]any); ok {
			return arr
		}
	}
	return nil
}

// strList never returns nil; non-string elements are dropped.
func strList(v any) []string {
	out := []string{}
	arr, ok := v.([]any)
	if !ok {
		return out
	}
	for _, it := range arr {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
