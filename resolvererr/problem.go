package resolvererr

// Problem is the RFC-7807 error body shape required by spec.md §6.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// ProblemFor builds the RFC-7807 body for err, tagging it with a
// correlation id (requestID) when one is available (SPEC_FULL.md §7:
// structured request-id propagation).
func ProblemFor(err error, requestID string) Problem {
	kind := KindOf(err)
	return Problem{
		Type:     "about:blank",
		Title:    kind.Title(),
		Status:   kind.Status(),
		Detail:   DetailOf(err),
		Instance: requestID,
	}
}
