package yahoo

import (
	"fmt"
	"strconv"
	"strings"
)

// Yahoo's JSON rendering of its XML resources has three recurring shapes:
// resource arrays ([meta, {sub-resource}, ...]), attribute lists
// ([{"a":1}, {"b":2}, [], ...]) and index maps ({"0": ..., "count": N}).

// resource returns the named resource array of a fantasy_content object.
func resource(content map[string]any, name string) ([]any, error) {
	items, ok := content[name].([]any)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("yahoo payload has no %q resource", name)
	}
	return items, nil
}

// subResource finds the first map after the meta element that carries key.
func subResource(items []any, key string) (any, bool) {
	for _, item := range items[1:] {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// indexed walks an index map in order. "count" wins when present.
func indexed(v any) []any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	count := int(getInt64(m, "count"))
	if count <= 0 {
		for key := range m {
			if idx, err := strconv.Atoi(key); err == nil && idx+1 > count {
				count = idx + 1
			}
		}
	}
	out := make([]any, 0, count)
	for i := 0; i < count; i++ {
		if item, ok := m[strconv.Itoa(i)]; ok {
			out = append(out, item)
		}
	}
	return out
}

// flatten merges an attribute list into one map; a map is returned as is.
func flatten(v any) map[string]any {
	switch typed := v.(type) {
	case map[string]any:
		return typed
	case []any:
		out := make(map[string]any, len(typed))
		for _, item := range typed {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			for k, val := range m {
				out[k] = val
			}
		}
		return out
	default:
		return nil
	}
}

// record splits a wrapped entity ({"team": [[attrs], {...}, {...}]}) into its
// flattened attributes and the merged trailing maps.
func record(entry any, kind string) (map[string]any, map[string]any, bool) {
	wrapper, ok := entry.(map[string]any)
	if !ok {
		return nil, nil, false
	}
	parts, ok := wrapper[kind].([]any)
	if !ok || len(parts) == 0 {
		return nil, nil, false
	}
	attrs := flatten(parts[0])
	extra := make(map[string]any)
	for _, part := range parts[1:] {
		for k, v := range flatten(part) {
			extra[k] = v
		}
	}
	return attrs, extra, attrs != nil
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	switch typed := src[key].(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}

func getInt64(src map[string]any, key string) int64 {
	if src == nil {
		return 0
	}
	switch typed := src[key].(type) {
	case float64:
		return int64(typed)
	case int:
		return int64(typed)
	case int64:
		return typed
	case string:
		v, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}

func getFloat(src map[string]any, key string) (float64, bool) {
	if src == nil {
		return 0, false
	}
	switch typed := src[key].(type) {
	case float64:
		return typed, true
	case string:
		v, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return v, err == nil
	default:
		return 0, false
	}
}

func getBool(src map[string]any, key string) bool {
	switch typed := src[key].(type) {
	case bool:
		return typed
	case float64:
		return typed != 0
	case string:
		return typed == "1" || strings.EqualFold(typed, "true")
	default:
		return false
	}
}

func getMap(src map[string]any, key string) map[string]any {
	if src == nil {
		return nil
	}
	m, _ := src[key].(map[string]any)
	return m
}

// nestedString reads src[key][field], used for {"name": {"full": ...}}.
func nestedString(src map[string]any, key, field string) string {
	return getString(getMap(src, key), field)
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}
