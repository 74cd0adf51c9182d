package toolkit

// aiRule describes the shape GS1 expects for one application identifier:
// a fixed length (numeric-only codes like the GTIN) or a variable length
// bounded by max, for both primary identifiers and qualifiers.
type aiRule struct {
	fixedLength int  // 0 means variable length
	maxLength   int  // only consulted when fixedLength == 0
	numericOnly bool
}

// aiTable is a pragmatic subset of the GS1 General Specifications AI
// table: enough application identifiers to drive syntax validation and
// the scenarios in spec.md §8. It is not a substitute for the full GS1
// ruleset (see SPEC_FULL.md §6.2 / DESIGN.md) — Subprocess exists for
// callers that need the authoritative table.
var aiTable = map[string]aiRule{
	"00":   {fixedLength: 18, numericOnly: true},
	"01":   {fixedLength: 14, numericOnly: true},
	"10":   {maxLength: 20},
	"11":   {fixedLength: 6, numericOnly: true},
	"17":   {fixedLength: 6, numericOnly: true},
	"21":   {maxLength: 20},
	"22":   {maxLength: 20},
	"235":  {maxLength: 28},
	"240":  {maxLength: 30},
	"253":  {maxLength: 30},
	"401":  {maxLength: 30},
	"402":  {fixedLength: 17, numericOnly: true},
	"8003": {maxLength: 30},
	"8004": {maxLength: 30},
	"8006": {fixedLength: 18, numericOnly: true},
	"8010": {maxLength: 30},
	"8011": {maxLength: 12, numericOnly: true},
	"8013": {maxLength: 25},
}

// KnownAI reports whether ai appears in the AI table.
func KnownAI(ai string) bool {
	_, ok := aiTable[ai]
	return ok
}

// validValue reports whether value satisfies the shape rule for ai. An
// unknown ai is treated as invalid.
func validValue(ai, value string) bool {
	rule, ok := aiTable[ai]
	if !ok || value == "" {
		return false
	}
	if rule.numericOnly && !isAllDigits(value) {
		return false
	}
	if rule.fixedLength > 0 {
		return len(value) == rule.fixedLength
	}
	return len(value) <= rule.maxLength
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SupportedPrimaryKeys returns the AI codes valid as a primary (first)
// identifier, sorted, for use in the /.well-known/gs1resolver document.
func SupportedPrimaryKeys() []string {
	primaryKeyAIs := map[string]bool{
		"00": true, "01": true, "253": true, "401": true, "402": true,
		"8003": true, "8004": true, "8006": true, "8010": true, "8013": true,
	}
	keys := make([]string, 0, len(aiTable))
	for k := range aiTable {
		if primaryKeyAIs[k] {
			keys = append(keys, k)
		}
	}
	// simple insertion sort keeps this dependency-free and the table small
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
