package service

import (
	"habitlog/internal/model"
	"habitlog/internal/model/dto"
)

// FieldService exposes the active field mapping so clients render forms and
// dashboards from configuration instead of hardcoded keys.
type FieldService struct {
	mapping *model.FieldMapping
}

func (s *FieldService) ListFields() dto.HabitFieldsResponse {
	items := make([]dto.HabitFieldItem, 0, len(s.mapping.Fields))
	for _, f := range s.mapping.Fields {
		items = append(items, dto.HabitFieldItem{
			Key:   f.Key,
			Kind:  string(f.Kind),
			Label: f.Label,
		})
	}

	return dto.HabitFieldsResponse{
		Version: s.mapping.Version,
		Fields:  items,
	}
}
