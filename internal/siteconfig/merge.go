package siteconfig

// DeepMerge returns a new map with overlay applied on top of base. Nested
// maps merge recursively. Any other overlay value, lists included, replaces
// the base value. Neither input is mutated.
func DeepMerge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		out[key] = cloneValue(value)
	}
	for key, value := range overlay {
		overlayMap, overlayIsMap := value.(map[string]any)
		baseMap, baseIsMap := out[key].(map[string]any)
		if overlayIsMap && baseIsMap {
			out[key] = DeepMerge(baseMap, overlayMap)
			continue
		}
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
