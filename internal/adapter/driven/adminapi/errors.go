package adminapi

import (
	"encoding/json"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// detailSanitizer strips any markup from server-supplied error text before it
// reaches the operator's terminal.
var detailSanitizer = bluemonday.StrictPolicy()

// errorBody is the error envelope of the admin API. detail is either a string
// or a list of validation issues.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseErrorDetail extracts the human-readable reason from an error body.
// Returns "" when the body is not the expected JSON shape.
func parseErrorDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(eb.Detail, &text); err == nil {
		return sanitize(text)
	}

	var issues []validationIssue
	if err := json.Unmarshal(eb.Detail, &issues); err == nil {
		parts := make([]string, 0, len(issues))
		for _, issue := range issues {
			msg := issue.Msg
			if field := lastLoc(issue.Loc); field != "" {
				msg = field + ": " + msg
			}
			parts = append(parts, msg)
		}
		return sanitize(strings.Join(parts, "; "))
	}

	return ""
}

// lastLoc returns the innermost field name of a validation location.
func lastLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok {
		return s
	}
	return ""
}

func sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(detailSanitizer.Sanitize(s)))
}
