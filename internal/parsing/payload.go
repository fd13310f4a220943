package parsing

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/group-matcher/internal/types"
)

// structuredPayload is the JSON shape produced by the profile editor.
type structuredPayload struct {
	Role   string   `json:"role,omitempty"`
	Skills []string `json:"skills,omitempty"`
}

// ParseSkillsPayload extracts a role and a normalized tag list from a raw
// skills payload. The payload may be a JSON object ({"role": ..., "skills":
// [...]}), a JSON array of strings, or free text with comma/semicolon
// separated tags. Parsing never fails: unusable input yields RoleUnknown and
// no tags.
func ParseSkillsPayload(payload string) (types.Role, []string) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return types.RoleUnknown, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var structured structuredPayload
		if err := json.Unmarshal([]byte(trimmed), &structured); err == nil {
			return ParseRole(structured.Role), NormalizeTags(structured.Skills)
		}
	}

	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
			return types.RoleUnknown, NormalizeTags(list)
		}
	}

	return types.RoleUnknown, NormalizeTags(splitFreeText(trimmed))
}

// splitFreeText splits free-form skill text on common separators.
func splitFreeText(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseRole maps a stored role string onto the role enum.
func ParseRole(raw string) types.Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "frontend", "front-end", "front end", "fe":
		return types.RoleFrontend
	case "backend", "back-end", "back end", "be":
		return types.RoleBackend
	case "other", "fullstack", "full-stack", "full stack", "mobile", "qa", "design", "devops", "data":
		return types.RoleOther
	default:
		return types.RoleUnknown
	}
}

var frontendHints = []string{"frontend", "front-end", "front end", "react", "vue", "angular", "ui", "ux", "css", "html"}

var backendHints = []string{"backend", "back-end", "back end", "api", "server", "database", "golang", "java", "spring", ".net", "node"}

// InferRole guesses a role from free-text position or skill descriptions.
// Frontend hints win over backend hints when both appear, matching how the
// desired-position field is usually phrased ("frontend with some API work").
func InferRole(text string) types.Role {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return types.RoleUnknown
	}
	for _, hint := range frontendHints {
		if strings.Contains(lower, hint) {
			return types.RoleFrontend
		}
	}
	for _, hint := range backendHints {
		if strings.Contains(lower, hint) {
			return types.RoleBackend
		}
	}
	return types.RoleOther
}
