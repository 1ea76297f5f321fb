package tools

// Argument accessors for the map[string]any payloads produced by JSON
// decoding of model tool calls. Numbers arrive as float64, arrays as
// []any; these helpers normalize them.

// StringArg returns the string value for key, or "" when absent.
func StringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// IntArg returns the integer value for key. JSON numbers decode as
// float64, so both forms are accepted.
func IntArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// StringSliceArg returns the string-slice value for key. Non-string
// elements are skipped.
func StringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		if vs, ok := args[key].([]string); ok {
			return vs
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
