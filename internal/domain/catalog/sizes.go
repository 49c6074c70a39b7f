package catalog

import (
	"encoding/json"
	"regexp"
	"strings"
)

const maxSizeUnwrapDepth = 5

var sizePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// FormatSizes renders the sizes of a product for display. The backend has
// stored sizes as plain strings, JSON-encoded arrays and doubly encoded
// strings over time, so each entry is unwrapped before the values are
// joined. Only string values made of ASCII letters and digits survive; an
// entry that decodes to a number such as "42" is dropped.
func FormatSizes(raw []string) string {
	if len(raw) == 0 {
		return ""
	}
	var values []string
	for _, entry := range raw {
		for _, v := range unwrapSize(entry) {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if sizePattern.MatchString(s) {
				values = append(values, s)
			}
		}
	}
	if len(values) == 0 {
		return " "
	}
	return strings.Join(values, ", ")
}

// unwrapSize decodes entry until it stops being a JSON string
func unwrapSize(entry string) []any {
	var v any = entry
	for i := 0; i < maxSizeUnwrapDepth; i++ {
		s, ok := v.(string)
		if !ok {
			break
		}
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			break
		}
		v = decoded
	}
	switch t := v.(type) {
	case []any:
		return t
	case nil:
		return nil
	default:
		return []any{t}
	}
}
