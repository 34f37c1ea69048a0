// Package ast defines the typed AST/semantic model the parser builds and
// every emitter walks: Project, Router, Route, Path, QueryParameter,
// Middleware, AuthBlock, AuthenticateClause, RenderBlock, and the
// recursive OptionValue sum type (spec.md §3).
package ast

import "github.com/ymirscript/ymir/internal/source"

// OptionValueKind tags which alternative of the OptionValue sum is active.
type OptionValueKind int

const (
	OVString OptionValueKind = iota
	OVNumber
	OVBool
	OVMap
	OVList
	OVGlobalVariable
)

// GlobalVariable is a deferred lookup such as "@env.PORT": name is the
// first segment ("env"), Path holds the remaining dotted segments
// ("PORT").
type GlobalVariable struct {
	Name string
	Path []string
}

// OptionValue is the dynamically typed tree every "use"/"auth"/"render"
// option argument parses into. Modeled as a tagged sum per SPEC_FULL.md
// design notes rather than an interface, so emitters can switch on Kind
// without type assertions.
type OptionValue struct {
	Kind OptionValueKind

	Str    string
	Num    float64
	Bool   bool
	Map    *OptionMap
	List   []OptionValue
	Global *GlobalVariable

	Position source.Position
}

func StringValue(s string, pos source.Position) OptionValue {
	return OptionValue{Kind: OVString, Str: s, Position: pos}
}

func NumberValue(n float64, pos source.Position) OptionValue {
	return OptionValue{Kind: OVNumber, Num: n, Position: pos}
}

func BoolValue(b bool, pos source.Position) OptionValue {
	return OptionValue{Kind: OVBool, Bool: b, Position: pos}
}

func MapValue(m *OptionMap, pos source.Position) OptionValue {
	return OptionValue{Kind: OVMap, Map: m, Position: pos}
}

func ListValue(items []OptionValue, pos source.Position) OptionValue {
	return OptionValue{Kind: OVList, List: items, Position: pos}
}

func GlobalValue(name string, path []string, pos source.Position) OptionValue {
	return OptionValue{Kind: OVGlobalVariable, Global: &GlobalVariable{Name: name, Path: path}, Position: pos}
}

// AsString returns the string value and whether the option was a string.
func (v OptionValue) AsString() (string, bool) {
	if v.Kind != OVString {
		return "", false
	}
	return v.Str, true
}

// AsBool returns the bool value and whether the option was a boolean.
func (v OptionValue) AsBool() (bool, bool) {
	if v.Kind != OVBool {
		return false, false
	}
	return v.Bool, true
}

// OptionMap is an ordered string->OptionValue mapping: keys are unique,
// first-occurrence order is preserved on Set, which is what lets emission
// be deterministic given deterministic AST order (spec.md §5, §8).
type OptionMap struct {
	keys   []string
	values map[string]OptionValue
}

// NewOptionMap returns an empty ordered map.
func NewOptionMap() *OptionMap {
	return &OptionMap{values: map[string]OptionValue{}}
}

// Set inserts or updates key. The first Set call for a given key fixes
// its position in Keys(); later Set calls for the same key only update
// the value.
func (m *OptionMap) Set(key string, value OptionValue) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *OptionMap) Get(key string) (OptionValue, bool) {
	if m == nil {
		return OptionValue{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// GetString is a convenience accessor for a string-valued option.
func (m *OptionMap) GetString(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// GetBool is a convenience accessor for a bool-valued option.
func (m *OptionMap) GetBool(key string) (bool, bool) {
	v, ok := m.Get(key)
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// Keys returns the keys in first-occurrence (insertion) order.
func (m *OptionMap) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Len returns the number of entries, 0 for a nil map.
func (m *OptionMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Merge returns a new OptionMap containing base's entries overridden by
// overlay's entries, overlay's keys winning on conflict, base-only keys
// appearing first in the result — this is the "ancestor merged with
// descendant, descendant keys winning" rule spec.md §3/§4.4 specifies for
// effective header/body schemas.
func Merge(base, overlay *OptionMap) *OptionMap {
	out := NewOptionMap()
	for _, k := range base.Keys() {
		v, _ := base.Get(k)
		out.Set(k, v)
	}
	for _, k := range overlay.Keys() {
		v, _ := overlay.Get(k)
		out.Set(k, v)
	}
	return out
}
