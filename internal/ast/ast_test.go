package ast

import (
	"reflect"
	"testing"

	"github.com/ymirscript/ymir/internal/source"
)

var zeroPos = source.Position{}

func TestOptionMap_PreservesInsertionOrder(t *testing.T) {
	m := NewOptionMap()
	m.Set("b", StringValue("2", zeroPos))
	m.Set("a", StringValue("1", zeroPos))
	m.Set("b", StringValue("2-updated", zeroPos))

	want := []string{"b", "a"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("want key order %v, got %v", want, got)
	}
	if v, _ := m.GetString("b"); v != "2-updated" {
		t.Errorf("re-Set should update the value in place, got %q", v)
	}
}

func TestMerge_DescendantKeysWinOverAncestor(t *testing.T) {
	base := NewOptionMap()
	base.Set("version", StringValue("v1", zeroPos))
	base.Set("shared", StringValue("from-base", zeroPos))

	overlay := NewOptionMap()
	overlay.Set("shared", StringValue("from-overlay", zeroPos))
	overlay.Set("extra", StringValue("only-overlay", zeroPos))

	merged := Merge(base, overlay)

	if v, _ := merged.GetString("version"); v != "v1" {
		t.Errorf("want ancestor-only key preserved, got %q", v)
	}
	if v, _ := merged.GetString("shared"); v != "from-overlay" {
		t.Errorf("want descendant key to win, got %q", v)
	}
	if v, _ := merged.GetString("extra"); v != "only-overlay" {
		t.Errorf("want descendant-only key preserved, got %q", v)
	}
	if want := []string{"version", "shared", "extra"}; !reflect.DeepEqual(merged.Keys(), want) {
		t.Errorf("want key order %v, got %v", want, merged.Keys())
	}
}

func TestMerge_NilMapsAreSafe(t *testing.T) {
	overlay := NewOptionMap()
	overlay.Set("a", StringValue("1", zeroPos))

	merged := Merge(nil, overlay)
	if v, _ := merged.GetString("a"); v != "1" {
		t.Fatalf("merging a nil base should keep overlay's entries, got %q", v)
	}

	merged = Merge(overlay, nil)
	if v, _ := merged.GetString("a"); v != "1" {
		t.Fatalf("merging a nil overlay should keep base's entries, got %q", v)
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	cases := []struct{ in, want string }{
		{"searchProducts", "searchProducts"},
		{"my-alias", "myalias"},
		{"123abc", "_123abc"},
		{"", "_"},
		{"!!!", "_"},
	}
	for _, c := range cases {
		if got := SanitizeIdentifier(c.in); got != c.want {
			t.Errorf("SanitizeIdentifier(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}

func TestAlphanumericOnly(t *testing.T) {
	if got := AlphanumericOnly("/users/:id"); got != "usersid" {
		t.Errorf("want %q, got %q", "usersid", got)
	}
}

func TestPascalAndCamelCase(t *testing.T) {
	if got := PascalCase("search_products"); got != "SearchProducts" {
		t.Errorf("PascalCase: want %q, got %q", "SearchProducts", got)
	}
	if got := CamelCase("search_products"); got != "searchProducts" {
		t.Errorf("CamelCase: want %q, got %q", "searchProducts", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("apiKey"); got != "ApiKey" {
		t.Errorf("want %q, got %q", "ApiKey", got)
	}
	if got := DisplayName("bearer"); got != "Bearer" {
		t.Errorf("want %q, got %q", "Bearer", got)
	}
}
