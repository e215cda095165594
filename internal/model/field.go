package model

import (
	"fmt"
	"strings"
	"unicode"
)

// FieldKind declares how a habit field's raw values are coerced and how the
// aggregation engine treats the field.
type FieldKind string

const (
	FieldBool   FieldKind = "bool"
	FieldNumber FieldKind = "number"
	FieldText   FieldKind = "text"
)

// FieldSpec declares one tracked habit field: its canonical key, its kind,
// a display label, and the source column names it may appear under.
type FieldSpec struct {
	Key     string    `json:"key"`
	Kind    FieldKind `json:"kind"`
	Label   string    `json:"label"`
	Aliases []string  `json:"-"`
}

// FieldMapping is the versioned field-name table. Backends resolve incoming
// column names through it; anything unresolvable is skipped, never guessed
// at by substring matching.
type FieldMapping struct {
	Version int
	Fields  []FieldSpec

	byKey   map[string]FieldSpec
	byAlias map[string]FieldSpec
}

// NewFieldMapping validates the table and builds its lookup indexes. An
// invalid table is a configuration error and should abort startup.
func NewFieldMapping(version int, fields []FieldSpec) (*FieldMapping, error) {
	m := &FieldMapping{
		Version: version,
		Fields:  fields,
		byKey:   make(map[string]FieldSpec, len(fields)),
		byAlias: make(map[string]FieldSpec),
	}

	for _, f := range fields {
		if f.Key == "" || f.Key != CanonicalKey(f.Key) {
			return nil, fmt.Errorf("field key %q is not canonical", f.Key)
		}
		switch f.Kind {
		case FieldBool, FieldNumber, FieldText:
		default:
			return nil, fmt.Errorf("field %q has unknown kind %q", f.Key, f.Kind)
		}
		if _, dup := m.byKey[f.Key]; dup {
			return nil, fmt.Errorf("duplicate field key %q", f.Key)
		}
		m.byKey[f.Key] = f

		for _, alias := range append([]string{f.Key, f.Label}, f.Aliases...) {
			canon := CanonicalKey(alias)
			if canon == "" {
				continue
			}
			if prev, dup := m.byAlias[canon]; dup && prev.Key != f.Key {
				return nil, fmt.Errorf("alias %q claimed by both %q and %q", alias, prev.Key, f.Key)
			}
			m.byAlias[canon] = f
		}
	}

	return m, nil
}

// Lookup resolves a canonical habit key.
func (m *FieldMapping) Lookup(key string) (FieldSpec, bool) {
	f, ok := m.byKey[key]
	return f, ok
}

// Resolve maps a raw backend column name to its field spec.
func (m *FieldMapping) Resolve(column string) (FieldSpec, bool) {
	f, ok := m.byAlias[CanonicalKey(column)]
	return f, ok
}

// CanonicalKey lowercases and collapses a name to the snake_case form used
// as canonical habit keys: "Water Bottles " -> "water_bottles".
func CanonicalKey(s string) string {
	var b strings.Builder
	lastUnderscore := true // trim leading separators
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// DefaultFieldMapping is the mapping shipped with the tracker. Version bumps
// whenever a key or alias changes meaning.
func DefaultFieldMapping() (*FieldMapping, error) {
	return NewFieldMapping(2, []FieldSpec{
		{Key: "coffee", Kind: FieldBool, Label: "Coffee", Aliases: []string{"Had Coffee", "Drank Coffee"}},
		{Key: "alcohol", Kind: FieldBool, Label: "Alcohol", Aliases: []string{"Had Alcohol", "Drinks"}},
		{Key: "exercise", Kind: FieldBool, Label: "Exercise", Aliases: []string{"Worked Out", "Workout"}},
		{Key: "meditation", Kind: FieldBool, Label: "Meditation", Aliases: []string{"Meditated"}},
		{Key: "junk_food", Kind: FieldBool, Label: "Junk Food", Aliases: []string{"Ate Junk Food", "Fast Food"}},
		{Key: "sleep_hours", Kind: FieldNumber, Label: "Sleep Hours", Aliases: []string{"Hours of Sleep", "Sleep"}},
		{Key: "water_bottles_count", Kind: FieldNumber, Label: "Water Bottles", Aliases: []string{"Water Bottles Count", "Water"}},
		{Key: "mood", Kind: FieldNumber, Label: "Mood", Aliases: []string{"Mood (1-10)", "Mood Score"}},
		{Key: "notes", Kind: FieldText, Label: "Notes", Aliases: []string{"Daily Notes", "Note"}},
	})
}
