package logstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"habitlog/internal/model"
	pkgerrors "habitlog/pkg/errors"
	"habitlog/pkg/logger"
)

const dateLayout = "2006-01-02"

// Column names accepted as the record's date column.
var dateAliases = map[string]struct{}{
	"date":       {},
	"day":        {},
	"log_date":   {},
	"entry_date": {},
}

func isDateColumn(column string) bool {
	_, ok := dateAliases[model.CanonicalKey(column)]
	return ok
}

// Accepted date layouts, in resolution order. Two-digit-year forms are
// deliberately absent: they are ambiguous and such rows get dropped.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// NormalizeDate coerces a raw date cell into canonical YYYY-MM-DD form.
func NormalizeDate(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.Format(dateLayout), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return "", fmt.Errorf("empty date")
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t.Format(dateLayout), nil
			}
		}
		return "", fmt.Errorf("unrecognized date %q", trimmed)
	default:
		return "", fmt.Errorf("unsupported date type %T", raw)
	}
}

// CoerceBool implements the boolean coercion table. Anything outside the
// table maps to Null, never to false: "habit not done" and "habit not
// recorded" must stay distinguishable.
func CoerceBool(raw interface{}) model.FieldValue {
	switch v := raw.(type) {
	case nil:
		return model.NullValue()
	case bool:
		return model.BoolValue(v)
	case float64:
		switch v {
		case 1:
			return model.BoolValue(true)
		case 0:
			return model.BoolValue(false)
		}
		return model.NullValue()
	case int:
		return CoerceBool(float64(v))
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true", "y", "1":
			return model.BoolValue(true)
		case "no", "false", "n", "0":
			return model.BoolValue(false)
		}
		return model.NullValue()
	default:
		return model.NullValue()
	}
}

// CoerceNumber accepts numbers and numeric strings; everything else is Null.
func CoerceNumber(raw interface{}) model.FieldValue {
	switch v := raw.(type) {
	case nil:
		return model.NullValue()
	case float64:
		return model.NumberValue(v)
	case int:
		return model.NumberValue(float64(v))
	case int64:
		return model.NumberValue(float64(v))
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return model.NullValue()
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return model.NumberValue(f)
		}
		return model.NullValue()
	default:
		return model.NullValue()
	}
}

// CoerceText keeps short free-form text, rendering scalars to strings.
func CoerceText(raw interface{}) model.FieldValue {
	switch v := raw.(type) {
	case nil:
		return model.NullValue()
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return model.NullValue()
		}
		return model.TextValue(trimmed)
	case float64:
		return model.TextValue(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		return model.TextValue(strconv.FormatBool(v))
	default:
		return model.NullValue()
	}
}

// CoerceField dispatches on the field's declared kind.
func CoerceField(spec model.FieldSpec, raw interface{}) model.FieldValue {
	switch spec.Kind {
	case model.FieldBool:
		return CoerceBool(raw)
	case model.FieldNumber:
		return CoerceNumber(raw)
	default:
		return CoerceText(raw)
	}
}

// NormalizeFields resolves raw column names through the mapping and coerces
// each value. Unresolvable columns come back in the second return for the
// caller to log once per fetch.
func NormalizeFields(mapping *model.FieldMapping, raw map[string]interface{}) (map[string]model.FieldValue, []string) {
	fields := make(map[string]model.FieldValue, len(raw))
	var unknown []string

	for column, value := range raw {
		if isDateColumn(column) {
			continue
		}
		spec, ok := mapping.Resolve(column)
		if !ok {
			unknown = append(unknown, column)
			continue
		}
		fields[spec.Key] = CoerceField(spec, value)
	}

	return fields, unknown
}

// NormalizeRow turns one headers+cells row into a DailyRecord. A missing or
// malformed date fails the row, which the caller drops with a warning.
func NormalizeRow(mapping *model.FieldMapping, headers []string, row []interface{}) (model.DailyRecord, error) {
	raw := make(map[string]interface{}, len(headers))
	var rawDate interface{}
	haveDate := false

	for i, header := range headers {
		if i >= len(row) {
			break
		}
		if isDateColumn(header) {
			rawDate = row[i]
			haveDate = true
			continue
		}
		raw[header] = row[i]
	}

	if !haveDate {
		return model.DailyRecord{}, fmt.Errorf("row has no date column")
	}

	date, err := NormalizeDate(rawDate)
	if err != nil {
		return model.DailyRecord{}, err
	}

	fields, unknown := NormalizeFields(mapping, raw)
	warnUnknownColumns("row", unknown)

	return model.DailyRecord{Date: date, Fields: fields}, nil
}

// BuildRecord validates a client submission against the mapping and returns
// the normalized record. Unknown habit keys are a client error, not a column
// to silently drop.
func BuildRecord(mapping *model.FieldMapping, date string, rawFields map[string]interface{}) (model.DailyRecord, error) {
	normalizedDate, err := NormalizeDate(date)
	if err != nil {
		return model.DailyRecord{}, pkgerrors.InvalidDate
	}

	fields := make(map[string]model.FieldValue, len(rawFields))
	for key, value := range rawFields {
		spec, ok := mapping.Lookup(model.CanonicalKey(key))
		if !ok {
			logger.Logger.Warn("Rejecting record with unknown habit key",
				zap.String("key", key),
			)
			return model.DailyRecord{}, pkgerrors.UnknownHabit
		}
		fields[spec.Key] = CoerceField(spec, value)
	}

	return model.DailyRecord{Date: normalizedDate, Fields: fields}, nil
}

func warnUnknownColumns(source string, unknown []string) {
	if len(unknown) == 0 {
		return
	}
	logger.Logger.Warn("Skipping columns missing from the field mapping",
		zap.String("source", source),
		zap.Strings("columns", unknown),
	)
}
