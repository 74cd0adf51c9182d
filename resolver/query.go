package resolver

import (
	"net/url"
	"strings"
)

// excludedQueryParams lists the query parameters stripped from the
// outgoing Location on a 307 (spec.md §4.5.3), compared case-insensitively.
var excludedQueryParams = map[string]bool{
	"linktype": true,
	"compress": true,
	"context":  true,
}

// preserveQuery appends every incoming query parameter except
// linktype/compress/context onto target, joining with "?" or "&"
// depending on whether target already carries a query string.
func preserveQuery(target string, incoming url.Values) string {
	if len(incoming) == 0 {
		return target
	}

	kept := url.Values{}
	for key, values := range incoming {
		if excludedQueryParams[strings.ToLower(key)] {
			continue
		}
		kept[key] = values
	}
	if len(kept) == 0 {
		return target
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + kept.Encode()
}
