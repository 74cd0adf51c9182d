package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/gs1resolver/resolver/resolvererr"
)

// CompressLink implements spec.md §4.8: invoke the toolkit's compressor
// over the full link and return its short form, or a validation failure
// on error (toolkit errors on the compression path map to 400, not 500
// — spec.md §4.11).
func (p *Pipeline) CompressLink(ctx context.Context, identifier, qualifierPath string) (Result, error) {
	link := fmt.Sprintf("https://%s%s%s", p.FQDN, identifier, qualifierPath)
	compressed, err := p.Toolkit.Compress(ctx, link)
	if err != nil {
		return Result{}, resolvererr.Validation("compression failed", err)
	}
	return Result{
		Status:      200,
		ContentType: "application/json",
		Body:        map[string]string{"compressedLink": compressed},
	}, nil
}

// ResolveCompressed implements spec.md §4.9: treat segment as a
// compressed path, uncompress it into identifiers/qualifiers, and enter
// the normal pipeline with the reconstructed identifier and qualifier
// path. A toolkit error on this path is a validation (400) failure.
func (p *Pipeline) ResolveCompressed(ctx context.Context, segment string, req Request) (Result, error) {
	analysis, err := p.Toolkit.Uncompress(ctx, segment)
	if err != nil {
		return Result{}, resolvererr.Validation("decompression failed", err)
	}
	if len(analysis.Identifiers) == 0 {
		return Result{}, resolvererr.Validation("decompression produced no identifier", nil)
	}

	first := analysis.Identifiers[0]
	identifier := fmt.Sprintf("/%s/%s", first.AI, first.Value)

	var qb strings.Builder
	for _, q := range analysis.Qualifiers {
		fmt.Fprintf(&qb, "/%s/%s", q.AI, q.Value)
	}

	return p.Resolve(ctx, identifier, qb.String(), req)
}
