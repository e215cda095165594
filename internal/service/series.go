package service

import (
	"context"

	"habitlog/internal/aggregate"
	"habitlog/internal/logstore"
	"habitlog/internal/model"
	"habitlog/internal/model/dto"
	pkgerrors "habitlog/pkg/errors"
)

// SeriesService turns the cached record set into chart-ready series.
type SeriesService struct {
	logs    *LogService
	mapping *model.FieldMapping
}

// BuildSeries aggregates one habit over the requested window. An inverted
// or empty window yields an empty series, not an error.
func (s *SeriesService) BuildSeries(ctx context.Context, userID int64, habitKey string, q dto.SeriesQuery) (*dto.SeriesResponse, error) {
	spec, ok := s.mapping.Lookup(model.CanonicalKey(habitKey))
	if !ok {
		return nil, pkgerrors.UnknownHabit
	}
	if spec.Kind == model.FieldText {
		return nil, pkgerrors.HabitNotChartable
	}

	gran, ok := model.ParseGranularity(q.Granularity)
	if !ok {
		return nil, pkgerrors.InvalidGranularity
	}

	rng, err := parseRange(q.From, q.To)
	if err != nil {
		return nil, err
	}

	records, err := s.logs.Records(ctx, userID, q.Fresh)
	if err != nil {
		return nil, err
	}

	points := aggregate.Series(records, spec, rng, gran)

	return &dto.SeriesResponse{
		Habit:       spec.Key,
		Kind:        string(spec.Kind),
		Granularity: string(gran),
		Range:       rng,
		Points:      points,
	}, nil
}

func parseRange(from, to string) (model.DateRange, error) {
	var rng model.DateRange

	if from != "" {
		start, err := logstore.NormalizeDate(from)
		if err != nil {
			return model.DateRange{}, pkgerrors.InvalidDate
		}
		rng.Start = start
	}
	if to != "" {
		end, err := logstore.NormalizeDate(to)
		if err != nil {
			return model.DateRange{}, pkgerrors.InvalidDate
		}
		rng.End = end
	}

	return rng, nil
}
