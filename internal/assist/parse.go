package assist

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// extractJSON unwraps a markdown code fence when present and unmarshals
// the remainder. Models frequently wrap JSON replies in ``` fences even
// when told not to.
func extractJSON(content string, dest any) error {
	payload := content
	if m := fenceRe.FindStringSubmatch(content); m != nil {
		payload = m[1]
	}
	return json.Unmarshal([]byte(strings.TrimSpace(payload)), dest)
}
