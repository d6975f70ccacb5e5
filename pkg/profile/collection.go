package profile

import "strings"

// NormalizeAll normalizes a user's record collection. The payload may be a
// bare array, an object wrapping the array, or a single record.
//
// Exactly one record comes out as master: the first one explicitly flagged
// is_master (or the legacy is_main), else the first record. Variants
// inherit the master's photo.
func NormalizeAll(raw any) []Record {
	list := collection(decode(raw))
	if len(list) == 0 {
		return []Record{}
	}
	masterIdx := 0
	for i, it := range list {
		w, c := unwrap(it)
		if v, ok := explicitMaster([]map[string]any{w, c}); ok && v {
			masterIdx = i
			break
		}
	}
	master := Normalize(list[masterIdx], AsMaster(true), AtIndex(masterIdx))
	img := master.Image()

	out := make([]Record, len(list))
	for i, it := range list {
		if i == masterIdx {
			out[i] = master
			continue
		}
		out[i] = Normalize(it, AsMaster(false), AtIndex(i), InheritImage(img))
	}
	return out
}

func collection(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		if len(t) == 0 {
			return nil
		}
		for _, k := range []string{"data", "cvs", "items"} {
			if arr, ok := t[k].([]any); ok {
				return arr
			}
		}
		return []any{t}
	}
	return nil
}

// Master returns the master record of a normalized collection.
func Master(records []Record) (Record, bool) {
	for _, r := range records {
		if r.IsMaster {
			return r, true
		}
	}
	return Record{}, false
}

// Find returns the record with the given label ("main" for the master) or slug.
func Find(records []Record, name string) (Record, bool) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, MainLabel) {
		return Master(records)
	}
	for _, r := range records {
		if r.Label == name || (r.Slug != "" && r.Slug == name) {
			return r, true
		}
	}
	return Record{}, false
}
