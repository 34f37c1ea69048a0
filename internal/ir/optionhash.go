package ir

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ymirscript/ymir/internal/ast"
	"github.com/zeebo/blake3"
)

// OptionHash computes the deterministic fingerprint spec.md §4.4 describes
// ("JSON of the option mapping with keys recursively sorted and
// whitespace stripped, then base64"), used by both emitters to dedupe
// generated DTOs across routes with identical body schemas. The hash is
// computed with blake3 (already present, indirectly, via the teacher's
// tliron/kutil dependency) rather than a cryptographic hash, since this is
// a dedup key, not a security boundary.
func OptionHash(m *ast.OptionMap) string {
	var b strings.Builder
	writeCanonicalMap(&b, m)
	sum := blake3.Sum256([]byte(b.String()))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// writeCanonicalMap writes m as compact JSON with keys sorted
// lexicographically at every nesting level, so hash({a:1,b:2}) ==
// hash({b:2,a:1}) (spec.md §8).
func writeCanonicalMap(b *strings.Builder, m *ast.OptionMap) {
	b.WriteByte('{')
	keys := append([]string(nil), m.Keys()...)
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeJSONString(b, k)
		b.WriteByte(':')
		v, _ := m.Get(k)
		writeCanonicalValue(b, v)
	}
	b.WriteByte('}')
}

func writeCanonicalValue(b *strings.Builder, v ast.OptionValue) {
	switch v.Kind {
	case ast.OVString:
		writeJSONString(b, v.Str)
	case ast.OVNumber:
		b.WriteString(strconv.FormatFloat(v.Num, 'g', -1, 64))
	case ast.OVBool:
		b.WriteString(strconv.FormatBool(v.Bool))
	case ast.OVMap:
		writeCanonicalMap(b, v.Map)
	case ast.OVList:
		b.WriteByte('[')
		for i, item := range v.List {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonicalValue(b, item)
		}
		b.WriteByte(']')
	case ast.OVGlobalVariable:
		writeJSONString(b, fmt.Sprintf("@%s.%s", v.Global.Name, strings.Join(v.Global.Path, ".")))
	}
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
