package toolkit

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrMalformedPath is returned by Compress/Uncompress/Analyze when the
// input cannot be parsed into AI/value pairs at all (as opposed to
// TestSyntax, which reports malformed input as `false, nil`).
var ErrMalformedPath = errors.New("toolkit: malformed GS1 path")

// Pure is an in-process port of the GS1 AI rules (aiTable) plus a
// self-consistent, reversible path compression codec. It never shells
// out and never retries; Compress/Uncompress round-trip against each
// other but do not reproduce the bit-for-bit output of GS1's official
// compression algorithm (see DESIGN.md).
type Pure struct{}

// NewPure constructs a Pure adapter. It holds no state.
func NewPure() *Pure { return &Pure{} }

var _ Adapter = (*Pure)(nil)

// TestSyntax reports SUCCESS=true and at least one identifier, matching
// spec.md §4.2: true iff path splits into an even number of non-empty
// segments, grouping into AI/value pairs, all of which are known AIs with
// valid-shaped values, and at least one pair is present.
func (p *Pure) TestSyntax(ctx context.Context, path string) (bool, error) {
	pairs, ok := parseAIValuePairs(path)
	if !ok || len(pairs) == 0 {
		return false, nil
	}
	for _, pr := range pairs {
		if !validValue(pr.ai, pr.value) {
			return false, nil
		}
	}
	return true, nil
}

// Compress encodes a GS1 path into a short opaque token.
func (p *Pure) Compress(ctx context.Context, link string) (string, error) {
	pairs, ok := parseAIValuePairs(stripScheme(link))
	if !ok || len(pairs) == 0 {
		return "", ErrMalformedPath
	}
	var sb strings.Builder
	for i, pr := range pairs {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(pr.ai)
		sb.WriteByte(':')
		sb.WriteString(pr.value)
	}
	return base64.RawURLEncoding.EncodeToString([]byte(sb.String())), nil
}

// Uncompress reverses Compress, splitting the result into a single
// leading identifier and trailing qualifiers.
func (p *Pure) Uncompress(ctx context.Context, compressed string) (Analysis, error) {
	raw, err := base64.RawURLEncoding.DecodeString(compressed)
	if err != nil {
		return Analysis{}, ErrMalformedPath
	}
	pairs, ok := parseEncodedPairs(string(raw))
	if !ok || len(pairs) == 0 {
		return Analysis{}, ErrMalformedPath
	}
	return analysisFromPairs(pairs), nil
}

// Analyze performs the same structural breakdown as Uncompress, but on
// an already-uncompressed GS1 path.
func (p *Pure) Analyze(ctx context.Context, link string) (Analysis, error) {
	pairs, ok := parseAIValuePairs(stripScheme(link))
	if !ok || len(pairs) == 0 {
		return Analysis{}, ErrMalformedPath
	}
	return analysisFromPairs(pairs), nil
}

func analysisFromPairs(pairs []aiValuePair) Analysis {
	a := Analysis{
		Identifiers: []Identifier{{AI: pairs[0].ai, Value: pairs[0].value}},
	}
	for _, pr := range pairs[1:] {
		a.Qualifiers = append(a.Qualifiers, Identifier{AI: pr.ai, Value: pr.value})
	}
	return a
}

type aiValuePair struct {
	ai    string
	value string
}

// parseAIValuePairs splits a "/ai/value/ai/value..." path into pairs. ok
// is false when the path has no non-empty segments or an odd count of
// them (an unpaired trailing segment — see spec.md §9's open question,
// which this function treats as malformed for syntax-testing purposes,
// distinct from gtin.ParseQualifierPath's silent-drop behavior used
// downstream in the resolver pipeline).
func parseAIValuePairs(path string) ([]aiValuePair, bool) {
	raw := strings.Split(path, "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 || len(segments)%2 != 0 {
		return nil, false
	}
	pairs := make([]aiValuePair, 0, len(segments)/2)
	for i := 0; i+1 < len(segments); i += 2 {
		pairs = append(pairs, aiValuePair{ai: segments[i], value: segments[i+1]})
	}
	return pairs, true
}

// parseEncodedPairs splits the "ai:value/ai:value" form produced by
// Compress back into pairs.
func parseEncodedPairs(encoded string) ([]aiValuePair, bool) {
	if encoded == "" {
		return nil, false
	}
	parts := strings.Split(encoded, "/")
	pairs := make([]aiValuePair, 0, len(parts))
	for _, part := range parts {
		idx := strings.IndexByte(part, ':')
		if idx < 0 {
			return nil, false
		}
		pairs = append(pairs, aiValuePair{ai: part[:idx], value: part[idx+1:]})
	}
	return pairs, true
}

// stripScheme drops a leading "https://host" prefix so callers may pass
// either a bare GS1 path or a full link.
func stripScheme(link string) string {
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(link, scheme) {
			rest := link[len(scheme):]
			if idx := strings.IndexByte(rest, '/'); idx >= 0 {
				return rest[idx:]
			}
			return ""
		}
	}
	return link
}
