package app

import (
	"encoding/json"
	"strings"
)

// ParseScalar reads a text value the way a JSON body would carry it, so that
// "42" becomes a number and "true" a bool. Anything that is not a JSON number,
// bool or string stays the raw text.
func ParseScalar(s string) interface{} {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}

	var v interface{}
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return s
	}

	switch v.(type) {
	case float64, bool, string:
		return v
	}
	return s
}

// ParseCriteria converts column=value pairs into filter criteria
func ParseCriteria(pairs map[string]string) Criteria {
	criteria := make(Criteria, len(pairs))
	for key, value := range pairs {
		criteria[key] = ParseScalar(value)
	}
	return criteria
}
