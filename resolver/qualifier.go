package resolver

import (
	"strings"

	"github.com/gs1resolver/resolver/gs1"
	"github.com/gs1resolver/resolver/gtin"
	"github.com/gs1resolver/resolver/resolvererr"
)

// filterQualifiers implements spec.md §4.5 step 6: select the data items
// whose qualifiers match qualifierPath (or, when qualifierPath is empty,
// the items with no qualifiers at all), collecting any template
// bindings produced along the way.
func filterQualifiers(items []gs1.DataItem, qualifierPath string) ([]gs1.DataItem, map[string]string, error) {
	if qualifierPath == "" {
		var kept []gs1.DataItem
		for _, item := range items {
			if len(item.Qualifiers) == 0 {
				kept = append(kept, item)
			}
		}
		if len(kept) == 0 {
			return nil, nil, resolvererr.NotFound("no matching qualifiers", nil)
		}
		return kept, map[string]string{}, nil
	}

	request := toQualifierPairs(gtin.ParseQualifierPath(qualifierPath))

	var kept []gs1.DataItem
	bindings := map[string]string{}
	for _, item := range items {
		ok, itemBindings := matchQualifiers(request, toQualifierPairs(qualifiersToPairs(item.Qualifiers)))
		if !ok {
			continue
		}
		kept = append(kept, item)
		for k, v := range itemBindings {
			bindings[k] = v
		}
	}
	if len(kept) == 0 {
		return nil, nil, resolvererr.NotFound("no matching qualifiers", nil)
	}
	return kept, bindings, nil
}

type kv struct {
	key, value string
}

func toQualifierPairs(pairs []gtin.Pair) []kv {
	out := make([]kv, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, kv{key: p.AI, value: p.Value})
	}
	return out
}

func qualifiersToPairs(qs []gs1.Qualifier) []gtin.Pair {
	out := make([]gtin.Pair, 0, len(qs))
	for _, q := range qs {
		for k, v := range q {
			out = append(out, gtin.Pair{AI: k, Value: v})
		}
	}
	return out
}

// matchQualifiers implements spec.md §4.5.1: every (k, dv) in the
// candidate document map D must be satisfiable by some (k, rv) in the
// request map R, either literally (dv == rv) or via a template pattern
// "{name}" (which binds name -> rv). Unmatched keys present only in R
// are allowed.
func matchQualifiers(request, candidate []kv) (bool, map[string]string) {
	bindings := map[string]string{}
	for _, d := range candidate {
		matched := false
		for _, r := range request {
			if r.key != d.key {
				continue
			}
			if name, isTemplate := templateName(d.value); isTemplate {
				bindings[name] = r.value
				matched = true
				break
			}
			if d.value == r.value {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}
	return true, bindings
}

// templateName reports whether v is a template placeholder "{name}" and
// extracts name.
func templateName(v string) (string, bool) {
	if len(v) < 2 || v[0] != '{' || v[len(v)-1] != '}' {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(v, "{"), "}"), true
}
