package toolkit

import "testing"

func TestPure_TestSyntax(t *testing.T) {
	p := NewPure()
	ctx := t.Context()

	ok, err := p.TestSyntax(ctx, "/01/09506000134376")
	if err != nil || !ok {
		t.Fatalf("expected valid syntax, got ok=%v err=%v", ok, err)
	}

	ok, err = p.TestSyntax(ctx, "/01/09506000134376/10/LOT01")
	if err != nil || !ok {
		t.Fatalf("expected valid syntax with qualifier, got ok=%v err=%v", ok, err)
	}

	ok, err = p.TestSyntax(ctx, "/99/unknown-ai")
	if err != nil || ok {
		t.Fatalf("expected invalid syntax for unknown AI, got ok=%v err=%v", ok, err)
	}

	ok, err = p.TestSyntax(ctx, "/01/123")
	if err != nil || ok {
		t.Fatalf("expected invalid syntax for wrong-length GTIN, got ok=%v err=%v", ok, err)
	}

	ok, err = p.TestSyntax(ctx, "")
	if err != nil || ok {
		t.Fatalf("expected invalid syntax for empty path, got ok=%v err=%v", ok, err)
	}
}

func TestPure_CompressUncompressRoundTrip(t *testing.T) {
	p := NewPure()
	ctx := t.Context()

	link := "/01/09506000134376/10/LOT01"
	compressed, err := p.Compress(ctx, link)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if compressed == "" {
		t.Fatal("expected non-empty compressed token")
	}

	analysis, err := p.Uncompress(ctx, compressed)
	if err != nil {
		t.Fatalf("Uncompress: %v", err)
	}
	if len(analysis.Identifiers) != 1 || analysis.Identifiers[0].AI != "01" || analysis.Identifiers[0].Value != "09506000134376" {
		t.Errorf("unexpected identifiers: %+v", analysis.Identifiers)
	}
	if len(analysis.Qualifiers) != 1 || analysis.Qualifiers[0].AI != "10" || analysis.Qualifiers[0].Value != "LOT01" {
		t.Errorf("unexpected qualifiers: %+v", analysis.Qualifiers)
	}
}

func TestPure_Analyze(t *testing.T) {
	p := NewPure()
	a, err := p.Analyze(t.Context(), "https://example.com/01/09506000134376/10/LOT01")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Identifiers) != 1 || a.Identifiers[0].Value != "09506000134376" {
		t.Errorf("unexpected identifiers: %+v", a.Identifiers)
	}
}

func TestPure_UncompressMalformed(t *testing.T) {
	p := NewPure()
	if _, err := p.Uncompress(t.Context(), "not-valid-base64!!"); err == nil {
		t.Error("expected error for malformed compressed token")
	}
}
