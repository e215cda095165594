package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"habitlog/internal/model"
)

const dateLayout = "2006-01-02"

// bucketKey orders buckets chronologically: idx is the month number or the
// ISO week number under the matching (ISO) year.
type bucketKey struct {
	year int
	idx  int
}

type bucketAcc struct {
	trueCount int
	sum       float64
	samples   int
}

// Series turns normalized records into one habit's chart series.
//
// Records outside the range or with unparseable dates are excluded. Null
// values count for nothing: they join neither the value nor the sample
// size, so "not recorded" never masquerades as zero. Buckets without any
// contributing sample are omitted entirely; callers wanting a continuous
// axis interpolate on their side. The function is pure, aggregating the
// same input twice yields identical output.
func Series(records []model.DailyRecord, spec model.FieldSpec, rng model.DateRange, gran model.Granularity) []model.HabitSeriesPoint {
	buckets := make(map[bucketKey]*bucketAcc)

	for _, rec := range records {
		if !rng.Contains(rec.Date) {
			continue
		}
		t, err := time.Parse(dateLayout, rec.Date)
		if err != nil {
			continue
		}

		value := rec.Field(spec.Key)

		var key bucketKey
		if gran == model.GranularityWeek {
			isoYear, isoWeek := t.ISOWeek()
			key = bucketKey{year: isoYear, idx: isoWeek}
		} else {
			key = bucketKey{year: t.Year(), idx: int(t.Month())}
		}

		switch spec.Kind {
		case model.FieldBool:
			if value.Kind != model.KindBool {
				continue
			}
			acc := accFor(buckets, key)
			acc.samples++
			if value.Bool {
				acc.trueCount++
			}
		case model.FieldNumber:
			if value.Kind != model.KindNumber {
				continue
			}
			acc := accFor(buckets, key)
			acc.samples++
			acc.sum += value.Number
		default:
			// text habits have no chartable aggregate
		}
	}

	keys := make([]bucketKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].idx < keys[j].idx
	})

	points := make([]model.HabitSeriesPoint, 0, len(keys))
	for _, key := range keys {
		acc := buckets[key]
		point := model.HabitSeriesPoint{
			Bucket:     bucketLabel(key, gran),
			SampleSize: acc.samples,
		}

		if spec.Kind == model.FieldBool {
			point.Value = float64(acc.trueCount)
			pct := int(math.Round(float64(acc.trueCount) / float64(acc.samples) * 100))
			point.Percentage = &pct
		} else {
			point.Value = math.Round(acc.sum/float64(acc.samples)*100) / 100
		}

		points = append(points, point)
	}

	return points
}

func accFor(buckets map[bucketKey]*bucketAcc, key bucketKey) *bucketAcc {
	if acc, ok := buckets[key]; ok {
		return acc
	}
	acc := &bucketAcc{}
	buckets[key] = acc
	return acc
}

func bucketLabel(key bucketKey, gran model.Granularity) string {
	if gran == model.GranularityWeek {
		return fmt.Sprintf("%04d-W%02d", key.year, key.idx)
	}
	return fmt.Sprintf("%04d-%02d", key.year, key.idx)
}
