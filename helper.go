// File: nofus/helper.go
package nofus

// flattenMap converts a nested map[string]any to a flat map whose keys are
// joined with delim.
func flattenMap(nested map[string]any, prefix, delim string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		newPath := key
		if prefix != "" {
			newPath = prefix + delim + key
		}

		// Check if the value is a map that can be further flattened
		if nestedMap, isMap := value.(map[string]any); isMap {
			for subPath, subValue := range flattenMap(nestedMap, newPath, delim) {
				flat[subPath] = subValue
			}
		} else {
			flat[newPath] = value
		}
	}

	return flat
}

// setNestedValue sets a value in a nested map following segments.
// It creates intermediate maps if they don't exist.
// If a segment exists but is not a map, it will be overwritten by a new map,
// so a scope always wins over a value of the same name.
func setNestedValue(nested map[string]any, segments []string, value any) {
	current := nested

	// Iterate through segments up to the second-to-last one
	for _, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if nextMap, isMap := next.(map[string]any); exists && isMap {
			current = nextMap
			continue
		}
		newMap := make(map[string]any)
		current[segment] = newMap
		current = newMap
	}

	last := segments[len(segments)-1]
	if _, isMap := current[last].(map[string]any); isMap {
		return
	}
	current[last] = value
}
