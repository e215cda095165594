package logstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"habitlog/config"
	"habitlog/internal/model"
	pkgerrors "habitlog/pkg/errors"
	"habitlog/pkg/logger"
	"habitlog/pkg/metrics"
)

// sheetPayload is the webhook's read shape: one header row plus raw cell
// rows, everything string-or-primitive typed.
type sheetPayload struct {
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows"`
}

type sheetWriteResponse struct {
	Row   string `json:"row,omitempty"`
	Error string `json:"error,omitempty"`
}

// Sheet talks to the spreadsheet webhook. The sheet belongs to a single
// user, so the user id only scopes the cache key upstream and is not sent.
type Sheet struct {
	cli     *client.Client
	url     string
	token   string
	mapping *model.FieldMapping
}

func NewSheet(mapping *model.FieldMapping) (*Sheet, error) {
	timeout := time.Duration(config.Cfg.SheetTimeoutSeconds) * time.Second
	cli, err := client.NewClient(
		client.WithDialTimeout(5*time.Second),
		client.WithClientReadTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook client: %w", err)
	}

	return &Sheet{
		cli:     cli,
		url:     config.Cfg.SheetWebhookURL,
		token:   config.Cfg.SheetWebhookToken,
		mapping: mapping,
	}, nil
}

func (s *Sheet) Name() string {
	return "sheet"
}

func (s *Sheet) FetchAll(ctx context.Context, userID int64) ([]model.DailyRecord, error) {
	start := time.Now()

	req, resp := protocol.AcquireRequest(), protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetRequestURI(s.url)
	req.SetMethod(consts.MethodGet)
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	err := s.cli.Do(ctx, req, resp)
	metrics.GetMetrics().RecordFetch(ctx, s.Name(), time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("%w: webhook fetch: %v", pkgerrors.UpstreamUnavailable, err)
	}

	if resp.StatusCode() != consts.StatusOK {
		logger.Logger.Warn("Sheet webhook returned non-success status",
			zap.Int("status", resp.StatusCode()),
		)
		return nil, fmt.Errorf("%w: webhook status %d", pkgerrors.UpstreamUnavailable, resp.StatusCode())
	}

	var payload sheetPayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook payload: %v", pkgerrors.UpstreamUnavailable, err)
	}

	records, dropped := decodeSheetPayload(s.mapping, payload)
	metrics.GetMetrics().RecordRowsDropped(ctx, s.Name(), dropped)
	return records, nil
}

// decodeSheetPayload normalizes every row it can and counts the ones it
// drops; a bad row never fails the whole fetch.
func decodeSheetPayload(mapping *model.FieldMapping, payload sheetPayload) ([]model.DailyRecord, int64) {
	records := make([]model.DailyRecord, 0, len(payload.Rows))
	var dropped int64

	for i, row := range payload.Rows {
		rec, err := NormalizeRow(mapping, payload.Headers, row)
		if err != nil {
			dropped++
			logger.Logger.Warn("Skipping malformed sheet row",
				zap.Int("row", i),
				zap.Error(err),
			)
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})

	return records, dropped
}

func (s *Sheet) Upsert(ctx context.Context, userID int64, rec model.DailyRecord) error {
	body, err := json.Marshal(map[string]interface{}{
		"row_token": uuid.NewString(),
		"date":      rec.Date,
		"fields":    rec.Fields,
	})
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	req, resp := protocol.AcquireRequest(), protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetRequestURI(s.url)
	req.SetMethod(consts.MethodPost)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.SetBody(body)

	err = s.cli.Do(ctx, req, resp)
	metrics.GetMetrics().RecordUpsert(ctx, s.Name(), err)
	if err != nil {
		return fmt.Errorf("%w: webhook write: %v", pkgerrors.UpstreamUnavailable, err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 400 && status < 500:
		var writeResp sheetWriteResponse
		_ = json.Unmarshal(resp.Body(), &writeResp)
		logger.Logger.Warn("Sheet webhook rejected record",
			zap.Int("status", status),
			zap.String("detail", writeResp.Error),
		)
		if writeResp.Error != "" {
			return pkgerrors.Definition{
				Code:    pkgerrors.ValidationFailure.Code,
				Message: writeResp.Error,
			}
		}
		return pkgerrors.ValidationFailure
	default:
		return fmt.Errorf("%w: webhook status %d", pkgerrors.UpstreamUnavailable, status)
	}
}
