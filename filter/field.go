package filter

import "strings"

// GetFieldValue walks record along the dot-separated path. The second result
// is false as soon as a segment is missing or a non-object is reached before
// the path ends.
func GetFieldValue(record any, path string) (any, bool) {
	current := record
	for _, segment := range strings.Split(path, ".") {
		switch obj := current.(type) {
		case map[string]any:
			v, ok := obj[segment]
			if !ok {
				return nil, false
			}
			current = v
		case map[string]string:
			v, ok := obj[segment]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}
