package gtin

import (
	"reflect"
	"testing"
)

func TestPathToID_Basic(t *testing.T) {
	id, err := PathToID("/01/123/21/X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "01_123_21_X" {
		t.Errorf("got %q, want %q", id, "01_123_21_X")
	}
}

func TestPathToID_EmptyPath(t *testing.T) {
	if _, err := PathToID(""); err != ErrEmptyPath {
		t.Errorf("got %v, want ErrEmptyPath", err)
	}
	if _, err := PathToID("///"); err != ErrEmptyPath {
		t.Errorf("got %v, want ErrEmptyPath", err)
	}
}

func TestIDToPath_RoundTrip(t *testing.T) {
	paths := []string{"/01/123/21/X", "/8004/095060001343", "/01/09506000134376"}
	for _, p := range paths {
		id, err := PathToID(p)
		if err != nil {
			t.Fatalf("PathToID(%q): %v", p, err)
		}
		if got := IDToPath(id); got != p {
			t.Errorf("IDToPath(PathToID(%q)) = %q, want %q", p, got, p)
		}
	}
}

func TestParseQualifierPath_Pairs(t *testing.T) {
	got := ParseQualifierPath("/10/LOT01/21/SER1")
	want := []Pair{{AI: "10", Value: "LOT01"}, {AI: "21", Value: "SER1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseQualifierPath_TrailingOddSegmentDropped(t *testing.T) {
	got := ParseQualifierPath("/10/LOT01/21")
	want := []Pair{{AI: "10", Value: "LOT01"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseQualifierPath_Empty(t *testing.T) {
	if got := ParseQualifierPath(""); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestNormalizeGTIN13(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/01/9506000134376", "/01/09506000134376"},
		{"/01/09506000134376", "/01/09506000134376"},
		{"/01/9506000134376/10/LOT01", "/01/09506000134376/10/LOT01"},
		{"/8004/095060001343", "/8004/095060001343"},
	}
	for _, c := range cases {
		if got := NormalizeGTIN13(c.in); got != c.want {
			t.Errorf("NormalizeGTIN13(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsSerializedAI(t *testing.T) {
	for _, ai := range []string{"8003", "8004", "00"} {
		if !IsSerializedAI(ai) {
			t.Errorf("expected %q to be serialized", ai)
		}
	}
	if IsSerializedAI("10") {
		t.Error("expected 10 to not be serialized")
	}
}
