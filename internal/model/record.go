package model

import (
	"encoding/json"
	"fmt"
)

// ValueKind tags a FieldValue. Null means "not recorded", which is distinct
// from a recorded false or zero and must stay distinct through aggregation.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindText
)

// FieldValue is the typed form of one habit field in one daily record.
type FieldValue struct {
	Kind   ValueKind
	Bool   bool
	Number float64
	Text   string
}

func NullValue() FieldValue            { return FieldValue{Kind: KindNull} }
func BoolValue(b bool) FieldValue      { return FieldValue{Kind: KindBool, Bool: b} }
func NumberValue(f float64) FieldValue { return FieldValue{Kind: KindNumber, Number: f} }
func TextValue(s string) FieldValue    { return FieldValue{Kind: KindText, Text: s} }

func (v FieldValue) IsNull() bool {
	return v.Kind == KindNull
}

// MarshalJSON renders the value as the native JSON scalar it represents.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindBool:
		return json.Marshal(v.Bool)
	case KindNumber:
		return json.Marshal(v.Number)
	case KindText:
		return json.Marshal(v.Text)
	default:
		return []byte("null"), nil
	}
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch val := raw.(type) {
	case nil:
		*v = NullValue()
	case bool:
		*v = BoolValue(val)
	case float64:
		*v = NumberValue(val)
	case string:
		*v = TextValue(val)
	default:
		return fmt.Errorf("unsupported field value type %T", raw)
	}
	return nil
}

// DailyRecord is the normalized shape every backend payload is reduced to:
// one calendar date plus a map of canonical habit keys to typed values.
type DailyRecord struct {
	Date   string                `json:"date"` // YYYY-MM-DD
	Fields map[string]FieldValue `json:"fields"`
}

// Field returns the value for key, NullValue when absent.
func (r DailyRecord) Field(key string) FieldValue {
	if v, ok := r.Fields[key]; ok {
		return v
	}
	return NullValue()
}

// DateRange is an inclusive calendar window. Empty sides are unbounded; an
// inverted range matches nothing, it is not an error.
type DateRange struct {
	Start string `json:"start,omitempty"` // YYYY-MM-DD
	End   string `json:"end,omitempty"`   // YYYY-MM-DD
}

// Contains reports whether a normalized YYYY-MM-DD date falls in the range.
// Normalized dates compare correctly as strings.
func (r DateRange) Contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

// HabitSeriesPoint is one chart bucket. SampleSize distinguishes "zero
// activity" from "no data"; buckets without data are never emitted.
type HabitSeriesPoint struct {
	Bucket     string  `json:"bucket"` // "2024-01" or "2024-W05"
	Value      float64 `json:"value"`
	SampleSize int     `json:"sample_size"`
	Percentage *int    `json:"percentage,omitempty"` // boolean habits only
}

// Granularity selects the aggregation bucket size.
type Granularity string

const (
	GranularityMonth Granularity = "month"
	GranularityWeek  Granularity = "week"
)

// ParseGranularity maps a query parameter to a Granularity, defaulting to
// monthly when empty.
func ParseGranularity(s string) (Granularity, bool) {
	switch s {
	case "", string(GranularityMonth):
		return GranularityMonth, true
	case string(GranularityWeek):
		return GranularityWeek, true
	default:
		return "", false
	}
}
