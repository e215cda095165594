package aggregate

import (
	"reflect"
	"testing"

	"habitlog/internal/model"
)

func boolSpec(key string) model.FieldSpec {
	return model.FieldSpec{Key: key, Kind: model.FieldBool, Label: key}
}

func numberSpec(key string) model.FieldSpec {
	return model.FieldSpec{Key: key, Kind: model.FieldNumber, Label: key}
}

func record(date string, fields map[string]model.FieldValue) model.DailyRecord {
	return model.DailyRecord{Date: date, Fields: fields}
}

func TestSeries_BooleanMonthlyCountAndPercentage(t *testing.T) {
	records := []model.DailyRecord{
		record("2024-01-01", map[string]model.FieldValue{"coffee": model.BoolValue(true)}),
		record("2024-01-02", map[string]model.FieldValue{"coffee": model.BoolValue(true)}),
		record("2024-01-03", map[string]model.FieldValue{"coffee": model.BoolValue(false)}),
		record("2024-01-04", map[string]model.FieldValue{"coffee": model.NullValue()}),
	}

	points := Series(records, boolSpec("coffee"), model.DateRange{}, model.GranularityMonth)

	if len(points) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(points))
	}

	p := points[0]
	if p.Bucket != "2024-01" {
		t.Errorf("expected bucket 2024-01, got %s", p.Bucket)
	}
	if p.Value != 2 {
		t.Errorf("expected count 2, got %v", p.Value)
	}
	// The null day joins neither the count nor the sample size.
	if p.SampleSize != 3 {
		t.Errorf("expected sample size 3, got %d", p.SampleSize)
	}
	if p.Percentage == nil || *p.Percentage != 67 {
		t.Errorf("expected percentage 67, got %v", p.Percentage)
	}
}

func TestSeries_NumericMeanTwoDecimals(t *testing.T) {
	records := []model.DailyRecord{
		record("2024-02-01", map[string]model.FieldValue{"sleep_hours": model.NumberValue(7.5)}),
		record("2024-02-02", map[string]model.FieldValue{"sleep_hours": model.NumberValue(6)}),
		record("2024-02-03", map[string]model.FieldValue{"sleep_hours": model.NumberValue(8)}),
	}

	points := Series(records, numberSpec("sleep_hours"), model.DateRange{}, model.GranularityMonth)

	if len(points) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(points))
	}
	// (7.5 + 6 + 8) / 3 = 7.1666... rounds to 7.17
	if points[0].Value != 7.17 {
		t.Errorf("expected mean 7.17, got %v", points[0].Value)
	}
	if points[0].SampleSize != 3 {
		t.Errorf("expected sample size 3, got %d", points[0].SampleSize)
	}
	if points[0].Percentage != nil {
		t.Errorf("numeric habits must not carry a percentage, got %v", *points[0].Percentage)
	}
}

func TestSeries_NullsExcludedFromNumeratorAndDenominator(t *testing.T) {
	records := []model.DailyRecord{
		record("2024-03-01", map[string]model.FieldValue{"mood": model.NumberValue(4)}),
		record("2024-03-02", map[string]model.FieldValue{"mood": model.NullValue()}),
		record("2024-03-03", map[string]model.FieldValue{}), // field absent entirely
		record("2024-03-04", map[string]model.FieldValue{"mood": model.NumberValue(8)}),
	}

	points := Series(records, numberSpec("mood"), model.DateRange{}, model.GranularityMonth)

	if len(points) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(points))
	}
	if points[0].Value != 6 {
		t.Errorf("expected mean 6 over the two recorded days, got %v", points[0].Value)
	}
	if points[0].SampleSize != 2 {
		t.Errorf("expected sample size 2, got %d", points[0].SampleSize)
	}
}

func TestSeries_AllNullBucketOmitted(t *testing.T) {
	records := []model.DailyRecord{
		record("2024-04-01", map[string]model.FieldValue{"coffee": model.NullValue()}),
		record("2024-04-02", map[string]model.FieldValue{}),
		record("2024-05-01", map[string]model.FieldValue{"coffee": model.BoolValue(true)}),
	}

	points := Series(records, boolSpec("coffee"), model.DateRange{}, model.GranularityMonth)

	if len(points) != 1 {
		t.Fatalf("expected the all-null April bucket to vanish, got %d buckets", len(points))
	}
	if points[0].Bucket != "2024-05" {
		t.Errorf("expected bucket 2024-05, got %s", points[0].Bucket)
	}
}

func TestSeries_WeeklyISOBuckets(t *testing.T) {
	// 2024-01-01 is a Monday, ISO week 2024-W01.
	// 2023-12-31 is a Sunday and belongs to ISO week 2023-W52.
	records := []model.DailyRecord{
		record("2023-12-31", map[string]model.FieldValue{"exercise": model.BoolValue(true)}),
		record("2024-01-01", map[string]model.FieldValue{"exercise": model.BoolValue(true)}),
		record("2024-01-07", map[string]model.FieldValue{"exercise": model.BoolValue(false)}),
		record("2024-01-08", map[string]model.FieldValue{"exercise": model.BoolValue(true)}),
	}

	points := Series(records, boolSpec("exercise"), model.DateRange{}, model.GranularityWeek)

	want := []string{"2023-W52", "2024-W01", "2024-W02"}
	if len(points) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(points))
	}
	for i, p := range points {
		if p.Bucket != want[i] {
			t.Errorf("bucket %d: expected %s, got %s", i, want[i], p.Bucket)
		}
	}

	if points[1].Value != 1 || points[1].SampleSize != 2 {
		t.Errorf("2024-W01: expected count 1 over 2 samples, got %v over %d",
			points[1].Value, points[1].SampleSize)
	}
}

func TestSeries_RangeFilterAndSortedBuckets(t *testing.T) {
	records := []model.DailyRecord{
		record("2024-06-15", map[string]model.FieldValue{"mood": model.NumberValue(5)}),
		record("2024-03-15", map[string]model.FieldValue{"mood": model.NumberValue(3)}),
		record("2024-09-15", map[string]model.FieldValue{"mood": model.NumberValue(9)}),
		record("2023-12-15", map[string]model.FieldValue{"mood": model.NumberValue(1)}),
	}

	points := Series(records, numberSpec("mood"),
		model.DateRange{Start: "2024-01-01", End: "2024-06-30"}, model.GranularityMonth)

	want := []string{"2024-03", "2024-06"}
	if len(points) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(points))
	}
	for i, p := range points {
		if p.Bucket != want[i] {
			t.Errorf("bucket %d: expected %s, got %s", i, want[i], p.Bucket)
		}
	}
}

func TestSeries_SingleRecordMonth(t *testing.T) {
	records := []model.DailyRecord{
		record("2024-07-04", map[string]model.FieldValue{"water_bottles_count": model.NumberValue(3)}),
	}

	points := Series(records, numberSpec("water_bottles_count"), model.DateRange{}, model.GranularityMonth)

	if len(points) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(points))
	}
	if points[0].Value != 3 || points[0].SampleSize != 1 {
		t.Errorf("expected value 3 with sample size 1, got %v with %d",
			points[0].Value, points[0].SampleSize)
	}
}

func TestSeries_InvertedRangeMatchesNothing(t *testing.T) {
	records := []model.DailyRecord{
		record("2024-01-15", map[string]model.FieldValue{"coffee": model.BoolValue(true)}),
	}

	points := Series(records, boolSpec("coffee"),
		model.DateRange{Start: "2024-06-01", End: "2024-01-01"}, model.GranularityMonth)

	if len(points) != 0 {
		t.Errorf("inverted range should produce no buckets, got %d", len(points))
	}
}

func TestSeries_Pure(t *testing.T) {
	records := []model.DailyRecord{
		record("2024-01-01", map[string]model.FieldValue{"coffee": model.BoolValue(true)}),
		record("2024-02-01", map[string]model.FieldValue{"coffee": model.BoolValue(false)}),
	}
	spec := boolSpec("coffee")

	first := Series(records, spec, model.DateRange{}, model.GranularityMonth)
	second := Series(records, spec, model.DateRange{}, model.GranularityMonth)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregating the same input twice produced different output:\n%v\n%v", first, second)
	}
}

func TestSeries_TextFieldProducesNothing(t *testing.T) {
	records := []model.DailyRecord{
		record("2024-01-01", map[string]model.FieldValue{"notes": model.TextValue("fine day")}),
	}
	spec := model.FieldSpec{Key: "notes", Kind: model.FieldText, Label: "Notes"}

	points := Series(records, spec, model.DateRange{}, model.GranularityMonth)
	if len(points) != 0 {
		t.Errorf("text fields have no aggregate, got %d buckets", len(points))
	}
}
