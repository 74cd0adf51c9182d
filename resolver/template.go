package resolver

import (
	"encoding/json"
	"strings"

	"github.com/gs1resolver/resolver/gs1"
)

// substituteTemplates implements spec.md §4.5 step 7: serialize items to
// JSON text, textually replace each bound "{name}" token with its value,
// and parse the result back. A failure here is non-fatal — it is logged
// and the original, unsubstituted items are served instead (spec.md §9's
// note on this pattern).
func substituteTemplates(items []gs1.DataItem, bindings map[string]string) []gs1.DataItem {
	raw, err := json.Marshal(items)
	if err != nil {
		logTemplateFallback(err)
		return items
	}

	text := string(raw)
	for name, value := range bindings {
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}

	var substituted []gs1.DataItem
	if err := json.Unmarshal([]byte(text), &substituted); err != nil {
		logTemplateFallback(err)
		return items
	}
	return substituted
}
