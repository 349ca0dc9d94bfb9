package utils

// IntField safely extracts an integer from a decoded socket payload.
// JSON numbers arrive as float64.
func IntField(data map[string]interface{}, field string) int {
	if raw, ok := data[field]; ok {
		switch v := raw.(type) {
		case float64:
			return int(v)
		case int:
			return v
		}
	}
	return 0
}

// StringField safely extracts a string from a decoded socket payload
func StringField(data map[string]interface{}, field string) string {
	if raw, ok := data[field]; ok {
		if v, ok := raw.(string); ok {
			return v
		}
	}
	return ""
}
