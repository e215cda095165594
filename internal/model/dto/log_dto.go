package dto

import "habitlog/internal/model"

// ========== Daily log DTOs ==========

// UpsertLogRequest carries one day's submitted habit values. Values arrive
// loosely typed (form/spreadsheet strings included) and are coerced through
// the adapter's coercion tables.
type UpsertLogRequest struct {
	Fields map[string]interface{} `json:"fields"`
}

// UpsertLogResponse echoes the normalized record that was written.
type UpsertLogResponse struct {
	Record model.DailyRecord `json:"record"`
}

// LogListQuery filters the raw record listing.
type LogListQuery struct {
	From  string `query:"from"`
	To    string `query:"to"`
	Fresh bool   `query:"fresh"`
}

// ========== Series DTOs ==========

// SeriesQuery selects the window and bucket size for one habit's chart.
type SeriesQuery struct {
	From        string `query:"from"`
	To          string `query:"to"`
	Granularity string `query:"granularity"`
	Fresh       bool   `query:"fresh"`
}

// SeriesResponse is a chart-ready, chronologically ascending series.
type SeriesResponse struct {
	Habit       string                   `json:"habit"`
	Kind        string                   `json:"kind"`
	Granularity string                   `json:"granularity"`
	Range       model.DateRange          `json:"range"`
	Points      []model.HabitSeriesPoint `json:"points"`
}

// ========== Habit field DTOs ==========

// HabitFieldItem describes one tracked field so clients can render forms
// from configuration instead of hardcoding keys.
type HabitFieldItem struct {
	Key   string `json:"key"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

type HabitFieldsResponse struct {
	Version int              `json:"version"`
	Fields  []HabitFieldItem `json:"fields"`
}

// ========== Auth DTOs ==========

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}
