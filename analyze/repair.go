package analyze

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"voxnote/log"
)

// parseJSONObject decodes a model response that is supposed to be a single
// JSON object. Models occasionally wrap the object in markdown fences or
// emit near-miss JSON (comments, trailing commas, truncation), so parsing
// runs through an escalating chain: direct decode, then the jsonrepair
// library, then a conservative comment/trailing-comma stripper. The taken
// path is logged per stage so repair frequency shows up in diagnostics.
func parseJSONObject(stage, raw string) (map[string]any, bool) {
	raw = stripFences(strings.TrimSpace(raw))

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		log.RepairPath(stage, "direct")
		return obj, true
	}

	if fixed, err := jsonrepair.JSONRepair(raw); err == nil {
		if err := json.Unmarshal([]byte(fixed), &obj); err == nil {
			log.RepairPath(stage, "jsonrepair")
			return obj, true
		}
	}

	if cleaned := stripJSONNoise(raw); cleaned != raw {
		if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
			log.RepairPath(stage, "fallback")
			return obj, true
		}
	}

	log.RepairPath(stage, "failed")
	return nil, false
}

// stripFences removes a surrounding ```json ... ``` markdown block.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// stripJSONNoise removes // and /* */ comments and trailing commas, while
// leaving string contents alone.
func stripJSONNoise(s string) string {
	var out strings.Builder
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			out.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			out.WriteByte(c)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				out.WriteByte('\n')
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i++ // skip closing '/'
		case c == ',':
			// Drop the comma if the next non-space char closes a container.
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
			out.WriteByte(c)
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
