package logstore

import (
	"errors"
	"testing"

	"habitlog/internal/model"
	pkgerrors "habitlog/pkg/errors"
)

func testMapping(t *testing.T) *model.FieldMapping {
	t.Helper()
	mapping, err := model.DefaultFieldMapping()
	if err != nil {
		t.Fatalf("default mapping should be valid: %v", err)
	}
	return mapping
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-02-07", "2024-02-07"},
		{"2024-2-7", "2024-02-07"},
		{"2024/02/07", "2024-02-07"},
		{"02/07/2024", "2024-02-07"},
		{"2/7/2024", "2024-02-07"},
		{"February 7, 2024", "2024-02-07"},
		{"Feb 7, 2024", "2024-02-07"},
		{"7 February 2024", "2024-02-07"},
		{"  2024-02-07  ", "2024-02-07"},
	}

	for _, tc := range cases {
		got, err := NormalizeDate(tc.in)
		if err != nil {
			t.Errorf("NormalizeDate(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeDate_Rejects(t *testing.T) {
	// Two-digit years are ambiguous and must not parse.
	bad := []interface{}{"02/07/24", "24-02-07", "", "not a date", 20240207.0, nil}

	for _, in := range bad {
		if got, err := NormalizeDate(in); err == nil {
			t.Errorf("NormalizeDate(%v) = %q, expected an error", in, got)
		}
	}
}

func TestCoerceBool(t *testing.T) {
	cases := []struct {
		in   interface{}
		want model.FieldValue
	}{
		{true, model.BoolValue(true)},
		{false, model.BoolValue(false)},
		{"yes", model.BoolValue(true)},
		{"Yes", model.BoolValue(true)},
		{"TRUE", model.BoolValue(true)},
		{"y", model.BoolValue(true)},
		{"1", model.BoolValue(true)},
		{"no", model.BoolValue(false)},
		{"false", model.BoolValue(false)},
		{"n", model.BoolValue(false)},
		{"0", model.BoolValue(false)},
		{1.0, model.BoolValue(true)},
		{0.0, model.BoolValue(false)},
		{nil, model.NullValue()},
		{"", model.NullValue()},
		{"maybe", model.NullValue()},
		{2.0, model.NullValue()},
	}

	for _, tc := range cases {
		if got := CoerceBool(tc.in); got != tc.want {
			t.Errorf("CoerceBool(%v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		in   interface{}
		want model.FieldValue
	}{
		{7.5, model.NumberValue(7.5)},
		{3, model.NumberValue(3)},
		{"7.5", model.NumberValue(7.5)},
		{" 8 ", model.NumberValue(8)},
		{"0", model.NumberValue(0)},
		{nil, model.NullValue()},
		{"", model.NullValue()},
		{"eight", model.NullValue()},
		{true, model.NullValue()},
	}

	for _, tc := range cases {
		if got := CoerceNumber(tc.in); got != tc.want {
			t.Errorf("CoerceNumber(%v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeRow(t *testing.T) {
	mapping := testMapping(t)
	headers := []string{"Date", "Had Coffee", "Sleep Hours", "Step Tracker"}

	rec, err := NormalizeRow(mapping, headers, []interface{}{"2024-02-07", "yes", "7.5", "12000"})
	if err != nil {
		t.Fatalf("NormalizeRow failed: %v", err)
	}

	if rec.Date != "2024-02-07" {
		t.Errorf("expected date 2024-02-07, got %s", rec.Date)
	}
	if got := rec.Field("coffee"); got != model.BoolValue(true) {
		t.Errorf("expected coffee=true via alias, got %+v", got)
	}
	if got := rec.Field("sleep_hours"); got != model.NumberValue(7.5) {
		t.Errorf("expected sleep_hours=7.5, got %+v", got)
	}
	// "Step Tracker" is not in the mapping: skipped, never guessed at.
	if _, ok := rec.Fields["step_tracker"]; ok {
		t.Errorf("unmapped column must not leak into the record")
	}
}

func TestNormalizeRow_BadDateFailsRow(t *testing.T) {
	mapping := testMapping(t)

	if _, err := NormalizeRow(mapping, []string{"Date", "Coffee"}, []interface{}{"02/07/24", "yes"}); err == nil {
		t.Error("two-digit-year date should fail the row")
	}
	if _, err := NormalizeRow(mapping, []string{"Coffee"}, []interface{}{"yes"}); err == nil {
		t.Error("row without a date column should fail")
	}
}

func TestBuildRecord(t *testing.T) {
	mapping := testMapping(t)

	rec, err := BuildRecord(mapping, "2024-02-07", map[string]interface{}{
		"coffee":      true,
		"sleep_hours": 7.5,
		"notes":       "long day",
	})
	if err != nil {
		t.Fatalf("BuildRecord failed: %v", err)
	}
	if rec.Field("coffee") != model.BoolValue(true) {
		t.Errorf("expected coffee=true, got %+v", rec.Field("coffee"))
	}
	if rec.Field("notes") != model.TextValue("long day") {
		t.Errorf("expected notes text, got %+v", rec.Field("notes"))
	}
}

func TestBuildRecord_UnknownHabitRejected(t *testing.T) {
	mapping := testMapping(t)

	_, err := BuildRecord(mapping, "2024-02-07", map[string]interface{}{"step_tracker": 12000})
	if !errors.Is(err, pkgerrors.UnknownHabit) {
		t.Errorf("expected UnknownHabit, got %v", err)
	}
}

func TestBuildRecord_InvalidDate(t *testing.T) {
	mapping := testMapping(t)

	_, err := BuildRecord(mapping, "yesterday", map[string]interface{}{"coffee": true})
	if !errors.Is(err, pkgerrors.InvalidDate) {
		t.Errorf("expected InvalidDate, got %v", err)
	}
}

func TestDecodeSheetPayload(t *testing.T) {
	mapping := testMapping(t)
	payload := sheetPayload{
		Headers: []string{"Date", "Had Coffee", "Sleep Hours"},
		Rows: [][]interface{}{
			{"2024-02-08", "no", "6"},
			{"2024-02-07", "yes", "7.5"},
			{"not a date", "yes", "8"},
			{"2024-02-09", nil, ""},
		},
	}

	records, dropped := decodeSheetPayload(mapping, payload)

	if dropped != 1 {
		t.Errorf("expected 1 dropped row, got %d", dropped)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	want := []string{"2024-02-07", "2024-02-08", "2024-02-09"}
	for i, rec := range records {
		if rec.Date != want[i] {
			t.Errorf("record %d: expected date %s, got %s", i, want[i], rec.Date)
		}
	}

	// Blank cells stay null, they never collapse to false or zero.
	if got := records[2].Field("coffee"); !got.IsNull() {
		t.Errorf("expected null coffee on the blank row, got %+v", got)
	}
	if got := records[2].Field("sleep_hours"); !got.IsNull() {
		t.Errorf("expected null sleep_hours on the blank row, got %+v", got)
	}
}
